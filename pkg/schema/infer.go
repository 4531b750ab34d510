// Package schema infers a table field's semantic type and option
// configuration from sample cell values. Inference runs when a field lacks
// usable configuration, either explicitly at field creation or implicitly
// when rows referencing the field are inserted.
package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pythagonacci/trak/pkg/types"
)

// Inference is the result of classifying a field from samples.
type Inference struct {
	Type    types.FieldType
	Options []types.FieldOption
}

var (
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9][0-9\s().-]{5,}$`)
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

func looksLikeDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func looksLikeURL(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "www.")
}

// priorityLabels and statusLabels anchor both the name heuristics and the
// fixed colors known labels get.
var priorityLabels = map[string]string{
	"urgent": "red",
	"high":   "orange",
	"medium": "yellow",
	"low":    "gray",
}

var statusLabels = map[string]string{
	"todo":        "gray",
	"to do":       "gray",
	"backlog":     "gray",
	"open":        "blue",
	"in progress": "blue",
	"in review":   "purple",
	"blocked":     "red",
	"done":        "green",
	"complete":    "green",
	"completed":   "green",
	"closed":      "green",
}

// palette rotates over categorical options with no fixed color.
var palette = []string{"blue", "green", "yellow", "orange", "red", "purple", "pink", "teal", "gray"}

// nameHints maps field-name substrings to types. Checked before value-shape
// analysis; a column called "Due date" holding messy strings is still a date.
func typeFromName(name string) (types.FieldType, bool) {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "priority"):
		return types.FieldPriority, true
	case strings.Contains(n, "status") || strings.Contains(n, "stage") || n == "state":
		return types.FieldStatus, true
	case strings.Contains(n, "date") || strings.Contains(n, "deadline") || strings.Contains(n, "due"):
		return types.FieldDate, true
	case strings.Contains(n, "email") || strings.Contains(n, "e-mail"):
		return types.FieldEmail, true
	case strings.Contains(n, "url") || strings.Contains(n, "link") || strings.Contains(n, "website"):
		return types.FieldURL, true
	case strings.Contains(n, "phone") || strings.Contains(n, "mobile"):
		return types.FieldPhone, true
	case strings.Contains(n, "amount") || strings.Contains(n, "price") || strings.Contains(n, "budget") ||
		strings.Contains(n, "cost") || strings.Contains(n, "count") || strings.Contains(n, "revenue"):
		return types.FieldNumber, true
	case strings.Contains(n, "tag") || strings.Contains(n, "categories") || strings.Contains(n, "labels"):
		return types.FieldMultiSelect, true
	}
	return "", false
}

// Infer classifies a field from its name and non-null sample values and, for
// categorical classes, synthesizes a deduplicated, color-coded option set.
func Infer(fieldName string, samples []any) Inference {
	strs, sawArray, sawNumber := flatten(samples)

	t, named := typeFromName(fieldName)
	if !named {
		t = typeFromValues(strs, sawArray, sawNumber)
	}

	inf := Inference{Type: t}
	if t.SelectLike() {
		inf.Options = BuildOptions(t, strs)
	}
	return inf
}

// flatten drops nulls, stringifies scalars and unwraps arrays, tracking the
// shapes seen along the way.
func flatten(samples []any) (strs []string, sawArray, sawNumber bool) {
	var walk func(v any, inArray bool)
	walk = func(v any, inArray bool) {
		switch vv := v.(type) {
		case nil:
		case []any:
			sawArray = true
			for _, e := range vv {
				walk(e, true)
			}
		case string:
			if s := strings.TrimSpace(vv); s != "" {
				strs = append(strs, s)
			}
		case float64:
			sawNumber = true
			strs = append(strs, strconv.FormatFloat(vv, 'f', -1, 64))
		case int:
			sawNumber = true
			strs = append(strs, strconv.Itoa(vv))
		case bool:
			strs = append(strs, strconv.FormatBool(vv))
		case map[string]any:
			// Relation-shaped {id,name}; classify by the visible name.
			if name, ok := vv["name"].(string); ok {
				strs = append(strs, name)
			}
		default:
			strs = append(strs, fmt.Sprintf("%v", vv))
		}
	}
	for _, s := range samples {
		walk(s, false)
	}
	return strs, sawArray, sawNumber
}

func typeFromValues(strs []string, sawArray, sawNumber bool) types.FieldType {
	if len(strs) == 0 {
		return types.FieldText
	}
	if sawArray {
		return types.FieldMultiSelect
	}

	allNumber, allDate, allEmail, allURL, allPhone := true, true, true, true, true
	priorityHits, statusHits := 0, 0
	for _, s := range strs {
		if _, ok := parseLooseNumber(s); !ok {
			allNumber = false
		}
		if !looksLikeDate(s) {
			allDate = false
		}
		if !emailRe.MatchString(s) {
			allEmail = false
		}
		if !looksLikeURL(s) {
			allURL = false
		}
		if !phoneRe.MatchString(s) {
			allPhone = false
		}
		low := strings.ToLower(s)
		if _, ok := priorityLabels[low]; ok {
			priorityHits++
		}
		if _, ok := statusLabels[low]; ok {
			statusHits++
		}
	}

	switch {
	case sawNumber || allNumber:
		return types.FieldNumber
	case allDate:
		return types.FieldDate
	case allEmail:
		return types.FieldEmail
	case allURL:
		return types.FieldURL
	case allPhone:
		return types.FieldPhone
	case priorityHits == len(strs):
		return types.FieldPriority
	case statusHits == len(strs):
		return types.FieldStatus
	}

	// Short repeated strings behave like a select; long or mostly-unique
	// values stay text.
	distinct := make(map[string]bool)
	short := true
	for _, s := range strs {
		distinct[strings.ToLower(s)] = true
		if len(s) > 40 || strings.Contains(s, "\n") {
			short = false
		}
	}
	if short && len(strs) >= 2 && len(distinct) <= (len(strs)+1)/2+1 {
		return types.FieldSelect
	}
	return types.FieldText
}

// BuildOptions deduplicates values case-insensitively and assigns each label
// a color and order index. Known priority/status labels keep their fixed
// colors; the rest rotate through the palette. The first occurrence's casing
// is the label.
func BuildOptions(t types.FieldType, values []string) []types.FieldOption {
	seen := make(map[string]bool)
	var opts []types.FieldOption
	rotation := 0
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if seen[key] {
			continue
		}
		seen[key] = true

		color := ""
		switch t {
		case types.FieldPriority:
			color = priorityLabels[key]
		case types.FieldStatus:
			color = statusLabels[key]
		}
		if color == "" {
			color = palette[rotation%len(palette)]
			rotation++
		}
		opts = append(opts, types.FieldOption{
			ID:    types.GenerateOptionID(),
			Label: v,
			Color: color,
			Order: len(opts),
		})
	}
	return opts
}

// OptionsFromValues synthesizes an option set for an explicitly typed field
// from raw sample values, reusing the same flattening and dedupe rules as
// full inference.
func OptionsFromValues(t types.FieldType, samples []any) []types.FieldOption {
	strs, _, _ := flatten(samples)
	return BuildOptions(t, strs)
}

// AppendOptions extends an existing option set with new labels, skipping
// labels already present case-insensitively. Existing options keep their ids
// and colors.
func AppendOptions(t types.FieldType, existing []types.FieldOption, labels []string) []types.FieldOption {
	out := append([]types.FieldOption(nil), existing...)
	seen := make(map[string]bool, len(existing))
	for _, o := range existing {
		seen[strings.ToLower(o.Label)] = true
	}
	rotation := len(existing)
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" || seen[strings.ToLower(l)] {
			continue
		}
		seen[strings.ToLower(l)] = true

		key := strings.ToLower(l)
		color := ""
		switch t {
		case types.FieldPriority:
			color = priorityLabels[key]
		case types.FieldStatus:
			color = statusLabels[key]
		}
		if color == "" {
			color = palette[rotation%len(palette)]
			rotation++
		}
		out = append(out, types.FieldOption{
			ID:    types.GenerateOptionID(),
			Label: l,
			Color: color,
			Order: len(out),
		})
	}
	return out
}

// parseLooseNumber parses numbers the way people type them: plain decimals,
// comma separators, currency prefixes and the k/m/b magnitude suffixes
// ("10k" -> 10000, "2.5m" -> 2500000, "1b" -> 1000000000).
func parseLooseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}

	mult := 1.0
	switch {
	case strings.HasSuffix(s, "k"):
		mult, s = 1e3, strings.TrimSuffix(s, "k")
	case strings.HasSuffix(s, "m"):
		mult, s = 1e6, strings.TrimSuffix(s, "m")
	case strings.HasSuffix(s, "b"):
		mult, s = 1e9, strings.TrimSuffix(s, "b")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f * mult, true
}

// ParseNumber exposes loose numeric parsing to the filter matcher so both
// sides of a comparison normalize identically.
func ParseNumber(v any) (float64, bool) {
	switch vv := v.(type) {
	case float64:
		return vv, true
	case int:
		return float64(vv), true
	case int64:
		return float64(vv), true
	case string:
		return parseLooseNumber(vv)
	}
	return 0, false
}

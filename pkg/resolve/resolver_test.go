package resolve

import (
	"context"
	"testing"

	"github.com/pythagonacci/trak/pkg/actions/memory"
	"github.com/pythagonacci/trak/pkg/types"
)

func TestAssigneeUniqueMatch(t *testing.T) {
	store := memory.NewStore()
	alice := store.SeedMember(types.Member{Name: "Alice Chen", Email: "alice@acme.io"})
	store.SeedMember(types.Member{Name: "Bob Ito", Email: "bob@acme.io"})

	res, err := Assignee(context.Background(), store, "ws", "alice")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Kind != KindResolved {
		t.Fatalf("expected resolved, got kind %d", res.Kind)
	}
	if res.ID != alice.ID {
		t.Fatalf("bound wrong member: %s", res.ID)
	}
}

func TestAssigneeNoMatchIsExternal(t *testing.T) {
	store := memory.NewStore()
	store.SeedMember(types.Member{Name: "Alice Chen"})

	res, err := Assignee(context.Background(), store, "ws", "Zed Outside")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Kind != KindExternal {
		t.Fatalf("expected external, got kind %d", res.Kind)
	}
	if res.Name != "Zed Outside" {
		t.Fatalf("external name not kept: %q", res.Name)
	}
	if res.ID != "" {
		t.Fatalf("external resolution must not carry an id")
	}
}

func TestAssigneeAmbiguousListsCandidates(t *testing.T) {
	store := memory.NewStore()
	store.SeedMember(types.Member{Name: "Jo Malone", Email: "jo.m@acme.io"})
	store.SeedMember(types.Member{Name: "Joanna Reyes", Email: "jo.r@acme.io"})

	res, err := Assignee(context.Background(), store, "ws", "jo")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Kind != KindAmbiguous {
		t.Fatalf("expected ambiguous, got kind %d", res.Kind)
	}
	if len(res.Matches) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(res.Matches))
	}
	for _, m := range res.Matches {
		if m.ID == "" || m.Name == "" || m.Email == "" {
			t.Fatalf("candidate missing detail: %+v", m)
		}
	}
}

func TestAssigneeExactBeatsPrefix(t *testing.T) {
	store := memory.NewStore()
	sam := store.SeedMember(types.Member{Name: "Sam"})
	store.SeedMember(types.Member{Name: "Samantha Ortiz"})

	res, err := Assignee(context.Background(), store, "ws", "sam")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Kind != KindResolved || res.ID != sam.ID {
		t.Fatalf("exact tier did not win: %+v", res)
	}
}

func TestAssigneeEmailBindsDespiteNameCollision(t *testing.T) {
	store := memory.NewStore()
	a := store.SeedMember(types.Member{Name: "Jo", Email: "jo@acme.io"})
	store.SeedMember(types.Member{Name: "Jo", Email: "jo@other.io"})

	res, err := Assignee(context.Background(), store, "ws", "jo@acme.io")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Kind != KindResolved || res.ID != a.ID {
		t.Fatalf("email should bind exactly: %+v", res)
	}
}

func TestAssigneeEmailSubstringJoinsCandidates(t *testing.T) {
	store := memory.NewStore()
	alice := store.SeedMember(types.Member{Name: "Alice Chen", Email: "alice@acme.io"})
	store.SeedMember(types.Member{Name: "Bob Ito", Email: "bob@other.io"})

	// "acme" appears in no member name; the email hit must still bind
	// instead of classifying the reference as external.
	res, err := Assignee(context.Background(), store, "ws", "acme")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Kind != KindResolved || res.ID != alice.ID {
		t.Fatalf("email substring should bind: %+v", res)
	}

	store.SeedMember(types.Member{Name: "Cara Voss", Email: "cara@acme.io"})
	res, err = Assignee(context.Background(), store, "ws", "acme")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Kind != KindAmbiguous || len(res.Matches) != 2 {
		t.Fatalf("two email hits should be ambiguous: %+v", res)
	}
}

func TestAssigneesDeduplicatesInputs(t *testing.T) {
	store := memory.NewStore()
	alice := store.SeedMember(types.Member{Name: "Alice Chen"})

	out, err := Assignees(context.Background(), store, "ws", []string{"alice", " alice ", "alice"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected one deduplicated entry, got %d", len(out))
	}
	if out["alice"].ID != alice.ID {
		t.Fatalf("wrong binding: %+v", out["alice"])
	}
}

func TestTableAndClientResolution(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	tbl, err := store.CreateTable(ctx, "ws", "Pipeline")
	if err != nil {
		t.Fatalf("create table: %v", err)
	}

	res, err := Table(ctx, store, "ws", "pipe")
	if err != nil {
		t.Fatalf("resolve table: %v", err)
	}
	if res.Kind != KindResolved || res.ID != tbl.ID {
		t.Fatalf("table prefix match failed: %+v", res)
	}

	cres, err := Client(ctx, store, "ws", "nobody")
	if err != nil {
		t.Fatalf("resolve client: %v", err)
	}
	if cres.Kind != KindExternal {
		t.Fatalf("unknown client should classify external, got %d", cres.Kind)
	}
}

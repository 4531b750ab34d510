package engine

import (
	"context"
	"errors"

	"github.com/pythagonacci/trak/pkg/actions"
)

// sagaStep is one granular external call with an optional manual
// compensation.
type sagaStep struct {
	name       string
	run        func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

// strategy is the reusable execution policy: try the composite atomic RPC
// when one exists, otherwise walk the saga steps with best-effort
// compensation. The atomic attempt's failure is never surfaced; only the
// fallback path's own failure reaches the caller.
type strategy struct {
	atomic func(ctx context.Context) (any, error)
	steps  []sagaStep
	result func(ctx context.Context) (any, error)
}

func (e *Engine) runStrategy(ctx context.Context, op string, s strategy) (any, error) {
	if s.atomic != nil {
		data, err := s.atomic(ctx)
		if err == nil {
			return data, nil
		}
		if errors.Is(err, actions.ErrUnsupported) {
			e.log.Debug("atomic rpc unsupported, using saga path", "op", op)
		} else {
			e.log.Warn("atomic rpc failed, using saga path", "op", op, "error", err)
		}
	}

	for i, step := range s.steps {
		if err := step.run(ctx); err != nil {
			// Reverse already-applied steps. Compensation is itself not
			// transactional: failures are logged, not retried, and the
			// user-visible error stays the original one.
			for j := i - 1; j >= 0; j-- {
				if s.steps[j].compensate == nil {
					continue
				}
				if cerr := s.steps[j].compensate(ctx); cerr != nil {
					e.log.Warn("compensation failed", "op", op, "step", s.steps[j].name, "error", cerr)
				}
			}
			return nil, err
		}
	}
	return s.result(ctx)
}

package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Saga runs steps in order. When a step fails, the compensations of the
// steps that already succeeded run in reverse order.
type Saga struct {
	steps  []step
	logger *zap.Logger
}

type step struct {
	name       string
	fn         func(context.Context) error
	compensate func(context.Context) error
}

func NewSaga(logger *zap.Logger) *Saga {
	return &Saga{logger: logger}
}

// AddStep appends a step. compensate may be nil.
func (s *Saga) AddStep(name string, fn, compensate func(context.Context) error) {
	s.steps = append(s.steps, step{name: name, fn: fn, compensate: compensate})
}

func (s *Saga) Execute(ctx context.Context) error {
	for i, st := range s.steps {
		if err := st.fn(ctx); err != nil {
			s.rollback(ctx, i)
			return fmt.Errorf("step %s: %w", st.name, err)
		}
	}
	return nil
}

func (s *Saga) rollback(ctx context.Context, failedAt int) {
	// Compensations run even if the request context is already done.
	ctx = context.WithoutCancel(ctx)
	for i := failedAt - 1; i >= 0; i-- {
		st := s.steps[i]
		if st.compensate == nil {
			continue
		}
		if err := st.compensate(ctx); err != nil {
			s.logger.Warn("compensation failed",
				zap.String("step", st.name),
				zap.Error(err),
			)
		}
	}
}

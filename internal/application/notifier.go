package application

import (
	"context"
	"errors"

	"insteon-alert/internal/domain"
)

type Notifier interface {
	Notify(ctx context.Context, summary domain.RunSummary) error
}

type NoopNotifier struct{}

func (n *NoopNotifier) Notify(_ context.Context, _ domain.RunSummary) error {
	return nil
}

// MultiNotifier delivers to every notifier and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, summary domain.RunSummary) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, summary); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

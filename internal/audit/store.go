package audit

import (
	"context"
	"errors"
)

type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}

// FanOut appends to every sink and lists from the first. Append attempts all
// sinks and joins their errors.
type FanOut struct {
	primary Store
	sinks   []Store
}

// NewFanOut returns a store writing to primary and then each sink.
func NewFanOut(primary Store, sinks ...Store) *FanOut {
	return &FanOut{primary: primary, sinks: sinks}
}

func (f *FanOut) Append(ctx context.Context, event Event) error {
	errs := []error{f.primary.Append(ctx, event)}
	for _, s := range f.sinks {
		errs = append(errs, s.Append(ctx, event))
	}
	return errors.Join(errs...)
}

func (f *FanOut) ListBySubject(ctx context.Context, subject string) ([]Event, error) {
	return f.primary.ListBySubject(ctx, subject)
}

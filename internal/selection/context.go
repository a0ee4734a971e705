package selection

import (
	"context"

	"github.com/conneroisu/codetour/internal/logging"
)

type storeKey struct{}

// WithStore returns a context carrying store.
func WithStore(ctx context.Context, store Store) context.Context {
	return context.WithValue(ctx, storeKey{}, store)
}

// FromContext returns the store bound to ctx. When none is bound it returns a
// NoopStore that logs through logger, so callers never need a nil check.
func FromContext(ctx context.Context, logger logging.Logger) Store {
	if ctx != nil {
		if store, ok := ctx.Value(storeKey{}).(Store); ok && store != nil {
			return store
		}
	}
	return NewNoopStore(logger)
}

// Bound reports whether ctx carries a real store.
func Bound(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	store, ok := ctx.Value(storeKey{}).(Store)
	return ok && store != nil
}

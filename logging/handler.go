package logging

import (
	"context"
	"log/slog"
)

// componentKey is the attribute that names a component; loggers opt in
// via logger.With("component", "reconciler").
const componentKey = "component"

// filterHandler gates records on the effective level of the component
// they were logged under.
type filterHandler struct {
	inner     slog.Handler
	spec      *Spec
	component string
}

func newFilterHandler(inner slog.Handler, spec *Spec) slog.Handler {
	return &filterHandler{inner: inner, spec: spec}
}

func (h *filterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.spec.LevelFor(h.component)
}

func (h *filterHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.Enabled(ctx, r.Level) {
		return nil
	}
	return h.inner.Handle(ctx, r)
}

func (h *filterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &filterHandler{
		inner:     h.inner.WithAttrs(attrs),
		spec:      h.spec,
		component: h.component,
	}
	for _, attr := range attrs {
		if attr.Key == componentKey {
			next.component = attr.Value.String()
			break
		}
	}
	return next
}

func (h *filterHandler) WithGroup(name string) slog.Handler {
	return &filterHandler{
		inner:     h.inner.WithGroup(name),
		spec:      h.spec,
		component: h.component,
	}
}

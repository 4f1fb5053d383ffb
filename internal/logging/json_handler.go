package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// jsonHandler writes one JSON object per record. Correlation fields carried
// on the record's context are added unless the logger already bound them.
type jsonHandler struct {
	inner slog.Handler
	bound map[string]struct{}
	// grouped is set once WithGroup is called; context fields are then
	// left to the caller so they do not nest under the group.
	grouped bool
}

func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	opts := slog.HandlerOptions{
		Level:       lvl,
		AddSource:   addSource,
		ReplaceAttr: replaceJSONAttr,
	}
	return &jsonHandler{inner: slog.NewJSONHandler(w, &opts), bound: map[string]struct{}{}}
}

func replaceJSONAttr(_ []string, attr slog.Attr) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		attr.Key = "ts"
		if attr.Value.Kind() == slog.KindTime {
			attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339Nano))
		}
		return attr
	case slog.LevelKey:
		attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
		return attr
	case slog.SourceKey:
		if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
			attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
		}
		return attr
	}
	if attr.Value.Kind() == slog.KindDuration {
		attr.Value = slog.StringValue(attr.Value.Duration().Round(time.Millisecond).String())
	}
	return attr
}

func (h *jsonHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *jsonHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.grouped {
		return h.inner.Handle(ctx, record)
	}
	var present map[string]struct{}
	for _, field := range ContextFields(ctx) {
		if _, ok := h.bound[field.Key]; ok {
			continue
		}
		if present == nil {
			present = make(map[string]struct{}, record.NumAttrs())
			record.Attrs(func(a slog.Attr) bool {
				present[a.Key] = struct{}{}
				return true
			})
		}
		if _, ok := present[field.Key]; ok {
			continue
		}
		record.AddAttrs(field)
	}
	return h.inner.Handle(ctx, record)
}

func (h *jsonHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := &jsonHandler{inner: h.inner.WithAttrs(attrs), bound: make(map[string]struct{}, len(h.bound)+len(attrs)), grouped: h.grouped}
	for key := range h.bound {
		next.bound[key] = struct{}{}
	}
	if !h.grouped {
		for _, a := range attrs {
			next.bound[a.Key] = struct{}{}
		}
	}
	return next
}

func (h *jsonHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &jsonHandler{inner: h.inner.WithGroup(name), bound: h.bound, grouped: true}
}

package logging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"
)

// SentryHandler forwards ERROR+ records to Sentry as events. Attributes become
// event extras; "request_id" and "user_id" are promoted to tags.
type SentryHandler struct {
	hub   *sentry.Hub
	attrs []slog.Attr
	group string
}

// NewSentryHandler reports through hub, or through the current hub when hub is nil.
func NewSentryHandler(hub *sentry.Hub) *SentryHandler {
	return &SentryHandler{hub: hub}
}

func (h *SentryHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *SentryHandler) Handle(ctx context.Context, record slog.Record) error {
	hub := h.hub
	if hub == nil {
		hub = sentry.GetHubFromContext(ctx)
	}
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return nil
	}

	event := sentry.NewEvent()
	event.Level = sentry.LevelError
	if record.Level > slog.LevelError {
		event.Level = sentry.LevelFatal
	}
	event.Message = record.Message
	event.Timestamp = record.Time
	event.Logger = "slog"

	add := func(a slog.Attr) {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		switch a.Key {
		case "request_id", "user_id", "module":
			event.Tags[key] = a.Value.String()
		default:
			event.Extra[key] = attrValue(a.Value)
		}
	}
	for _, a := range h.attrs {
		add(a)
	}
	record.Attrs(func(a slog.Attr) bool {
		add(a)
		return true
	})

	hub.CaptureEvent(event)
	return nil
}

func (h *SentryHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &SentryHandler{hub: h.hub, attrs: merged, group: h.group}
}

func (h *SentryHandler) WithGroup(name string) slog.Handler {
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &SentryHandler{hub: h.hub, attrs: h.attrs, group: group}
}

func attrValue(v slog.Value) interface{} {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	case slog.KindGroup:
		out := make(map[string]interface{}, len(v.Group()))
		for _, a := range v.Group() {
			out[a.Key] = attrValue(a.Value)
		}
		return out
	default:
		return v.Any()
	}
}

// Package logtee forwards slog records to a base handler and copies
// warnings to a sink, which the app turns into UI toasts.
package logtee

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"
	"time"
)

// DefaultQuietPeriod suppresses repeats of the same message for the sink.
const DefaultQuietPeriod = 2 * time.Second

// Entry is the sink's view of a record.
type Entry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
	Source  string    `json:"source,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// Sink receives entries at or above the handler threshold.
type Sink func(Entry)

// dedupe is shared by every handler derived through WithAttrs/WithGroup.
type dedupe struct {
	mu     sync.Mutex
	quiet  time.Duration
	lastAt map[string]time.Time
}

func (d *dedupe) allow(key string, at time.Time) bool {
	if d.quiet <= 0 {
		return true
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if last, ok := d.lastAt[key]; ok && at.Sub(last) < d.quiet {
		return false
	}
	d.lastAt[key] = at
	return true
}

// Handler wraps a base slog.Handler. All records reach the base handler;
// the sink only sees records at or above threshold.
type Handler struct {
	base      slog.Handler
	sink      Sink
	threshold slog.Leveler
	group     string
	errAttr   string
	seen      *dedupe
}

// New returns a Handler teeing records at or above threshold to sink. A nil
// sink makes the handler a pass-through.
func New(base slog.Handler, threshold slog.Leveler, sink Sink) *Handler {
	if threshold == nil {
		threshold = slog.LevelWarn
	}
	return &Handler{
		base:      base,
		sink:      sink,
		threshold: threshold,
		seen:      &dedupe{quiet: DefaultQuietPeriod, lastAt: map[string]time.Time{}},
	}
}

// WithQuietPeriod sets how long identical messages are withheld from the
// sink. Zero disables suppression.
func (h *Handler) WithQuietPeriod(d time.Duration) *Handler {
	h.seen.mu.Lock()
	h.seen.quiet = d
	h.seen.mu.Unlock()
	return h
}

// Enabled defers to the base handler.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

// Handle forwards to the base handler, then notifies the sink. The sink is
// notified even when the base handler fails.
func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	err := h.base.Handle(ctx, record)

	if h.sink != nil && record.Level >= h.threshold.Level() {
		entry := Entry{
			Time:    record.Time,
			Level:   record.Level.String(),
			Message: record.Message,
			Source:  h.group,
			Error:   h.errAttr,
		}
		record.Attrs(func(a slog.Attr) bool {
			if a.Key == "error" {
				entry.Error = a.Value.String()
				return false
			}
			return true
		})
		if h.seen.allow(entry.Source+"\x00"+entry.Message, entry.Time) {
			h.emit(entry)
		}
	}
	return err
}

func (h *Handler) emit(entry Entry) {
	defer func() {
		if r := recover(); r != nil {
			// stderr, not slog: logging here would re-enter this handler.
			fmt.Fprintf(os.Stderr, "[logtee] sink panicked: %v\n%s\n", r, debug.Stack())
		}
	}()
	h.sink(entry)
}

// WithAttrs applies attrs to the base handler. An "error" attr is also
// remembered for the sink.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := h.clone()
	next.base = h.base.WithAttrs(attrs)
	for _, a := range attrs {
		if a.Key == "error" {
			next.errAttr = a.Value.String()
		}
	}
	return next
}

// WithGroup extends the dot-separated source reported to the sink.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.base = h.base.WithGroup(name)
	if h.group != "" {
		next.group = h.group + "." + name
	} else {
		next.group = name
	}
	return next
}

func (h *Handler) clone() *Handler {
	c := *h
	return &c
}

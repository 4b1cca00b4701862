package overlay

import (
	"log/slog"
	"sync"
)

// Controller shows the window as an overlay using the selected strategy.
type Controller struct {
	window Window

	mu       sync.RWMutex
	strategy Strategy
}

// NewController returns a controller for w. A nil strategy means NoOp.
func NewController(w Window, strategy Strategy) *Controller {
	if strategy == nil {
		strategy = NoOp{}
	}
	return &Controller{window: w, strategy: strategy}
}

// Strategy returns the active strategy.
func (c *Controller) Strategy() Strategy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.strategy
}

// SetStrategy swaps the strategy used by later Show calls.
func (c *Controller) SetStrategy(s Strategy) {
	if s == nil {
		s = NoOp{}
	}
	c.mu.Lock()
	c.strategy = s
	c.mu.Unlock()
}

// Show runs the full show sequence with a freshly read cursor position.
// Step failures are logged; the returned error is informational only.
func (c *Controller) Show() error {
	strategy := c.Strategy()

	cursor, err := c.window.CursorPosition()
	haveCursor := err == nil
	if err != nil {
		slog.Debug("[DEBUG-OVERLAY] cursor unavailable, showing without repositioning", "error", err)
	}

	showErr := strategy.ShowOverlay(c.window, cursor, haveCursor)
	if showErr != nil {
		slog.Warn("[WARN-OVERLAY] overlay show completed with errors", "strategy", strategy.Name(), "error", showErr)
	}
	return showErr
}

package overlay

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"freecastnotes/internal/config"
)

// State is the window state observed at toggle time.
type State int

const (
	Hidden State = iota
	VisibleUnfocused
	VisibleFocused
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case VisibleUnfocused:
		return "visible-unfocused"
	case VisibleFocused:
		return "visible-focused"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Policy decides what a toggle does when the window is visible but
// another application has focus.
type Policy string

const (
	// PolicyFocus refocuses the window in place.
	PolicyFocus Policy = config.UnfocusedFocus
	// PolicyHide hides the window.
	PolicyHide Policy = config.UnfocusedHide
	// PolicyReposition reruns the full show sequence at the cursor.
	PolicyReposition Policy = config.UnfocusedReposition
)

// ParsePolicy maps a config value to a Policy. Unknown values yield
// PolicyReposition.
func ParsePolicy(value string) Policy {
	switch Policy(strings.ToLower(strings.TrimSpace(value))) {
	case PolicyFocus:
		return PolicyFocus
	case PolicyHide:
		return PolicyHide
	default:
		return PolicyReposition
	}
}

// Action is what a toggle did.
type Action string

const (
	ActionHide    Action = "hide"
	ActionShow    Action = "show"
	ActionRefocus Action = "refocus"
)

// Toggler is the single entry point for hotkey presses, tray clicks, and
// show/hide commands. Calls are serialized so a show sequence never
// interleaves with a hide.
type Toggler struct {
	mu         sync.Mutex
	window     Window
	controller *Controller

	policyMu sync.RWMutex
	policy   Policy
}

// NewToggler returns a toggler with the given unfocused-window policy.
func NewToggler(w Window, controller *Controller, policy Policy) *Toggler {
	return &Toggler{window: w, controller: controller, policy: policy}
}

// Policy returns the active unfocused-window policy.
func (t *Toggler) Policy() Policy {
	t.policyMu.RLock()
	defer t.policyMu.RUnlock()
	return t.policy
}

// SetPolicy changes the unfocused-window policy.
func (t *Toggler) SetPolicy(p Policy) {
	t.policyMu.Lock()
	t.policy = p
	t.policyMu.Unlock()
}

// Toggle observes the window and hides, refocuses, or shows it.
func (t *Toggler) Toggle() Action {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.observe()
	action := t.decide(state)
	slog.Debug("[DEBUG-OVERLAY] toggle", "state", state.String(), "action", string(action))

	switch action {
	case ActionHide:
		t.hideLocked()
	case ActionRefocus:
		if err := t.window.Focus(); err != nil {
			slog.Warn("[WARN-OVERLAY] refocus failed", "error", err)
		}
	default:
		_ = t.controller.Show()
	}
	return action
}

// Show runs the full show sequence regardless of current state.
func (t *Toggler) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()
	_ = t.controller.Show()
}

// Hide hides the window.
func (t *Toggler) Hide() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hideLocked()
}

func (t *Toggler) hideLocked() {
	if err := t.window.Hide(); err != nil {
		slog.Warn("[WARN-OVERLAY] hide failed", "error", err)
	}
}

func (t *Toggler) decide(state State) Action {
	switch state {
	case VisibleFocused:
		return ActionHide
	case VisibleUnfocused:
		switch t.Policy() {
		case PolicyFocus:
			return ActionRefocus
		case PolicyHide:
			return ActionHide
		default:
			return ActionShow
		}
	default:
		return ActionShow
	}
}

// observe reads visibility and focus live. A failed visibility query reads
// as hidden so the toggle shows the window. A failed focus query on a
// visible window reads as focused so the toggle can still hide it.
func (t *Toggler) observe() State {
	visible, err := t.window.IsVisible()
	if err != nil {
		slog.Debug("[DEBUG-OVERLAY] visibility query failed", "error", err)
		return Hidden
	}
	if !visible {
		return Hidden
	}
	focused, err := t.window.IsFocused()
	if err != nil {
		slog.Debug("[DEBUG-OVERLAY] focus query failed", "error", err)
		return VisibleFocused
	}
	if focused {
		return VisibleFocused
	}
	return VisibleUnfocused
}

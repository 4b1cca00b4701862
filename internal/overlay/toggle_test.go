package overlay

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"

	"freecastnotes/internal/geometry"
)

func newTestToggler(w *fakeWindow, policy Policy) *Toggler {
	return NewToggler(w, NewController(w, BasicAlwaysOnTop{}), policy)
}

func TestToggleHiddenShowsThenHides(t *testing.T) {
	w := newFakeWindow()
	w.cursor = geometry.Point{X: 1430, Y: 30}
	tg := newTestToggler(w, PolicyReposition)

	if got := tg.Toggle(); got != ActionShow {
		t.Fatalf("first Toggle() = %q, want show", got)
	}
	if !w.visible || !w.focused || !w.onTop {
		t.Fatalf("after show: visible=%v focused=%v onTop=%v", w.visible, w.focused, w.onTop)
	}
	area := w.monitors[0]
	if w.x < int(area.X+geometry.Margin) || w.x > int(area.X+area.Width-w.size.Width-geometry.Margin) {
		t.Fatalf("x = %d outside clamped range", w.x)
	}
	if w.y < int(area.Y+geometry.Margin) || w.y > int(area.Y+area.Height-w.size.Height-geometry.Margin) {
		t.Fatalf("y = %d outside clamped range", w.y)
	}

	if got := tg.Toggle(); got != ActionHide {
		t.Fatalf("second Toggle() = %q, want hide", got)
	}
	if w.visible {
		t.Fatal("window should be hidden after second toggle")
	}
}

func TestToggleVisibleUnfocusedPolicies(t *testing.T) {
	tests := []struct {
		policy      Policy
		want        Action
		wantVisible bool
		wantCalls   []string
	}{
		{PolicyFocus, ActionRefocus, true, []string{"focus"}},
		{PolicyHide, ActionHide, false, []string{"hide"}},
		{PolicyReposition, ActionShow, true, []string{"hide", "position 300,344", "always-on-top", "all-workspaces", "show", "focus"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			w := newFakeWindow()
			w.visible = true
			w.focused = false
			tg := newTestToggler(w, tt.policy)

			if got := tg.Toggle(); got != tt.want {
				t.Fatalf("Toggle() = %q, want %q", got, tt.want)
			}
			if w.visible != tt.wantVisible {
				t.Fatalf("visible = %v, want %v", w.visible, tt.wantVisible)
			}
			if got := w.Calls(); !slices.Equal(got, tt.wantCalls) {
				t.Fatalf("calls = %v, want %v", got, tt.wantCalls)
			}
		})
	}
}

func TestToggleQueryFailures(t *testing.T) {
	tests := []struct {
		name    string
		failure string
		visible bool
		policy  Policy
		want    Action
	}{
		{"visibility query fails", "is-visible", true, PolicyHide, ActionShow},
		{"focus query fails reads as focused", "is-focused", true, PolicyFocus, ActionHide},
		{"focus query fails hides under reposition", "is-focused", true, PolicyReposition, ActionHide},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newFakeWindow()
			w.visible = tt.visible
			w.focused = true
			w.failures[tt.failure] = errors.New("query failed")
			if got := newTestToggler(w, tt.policy).Toggle(); got != tt.want {
				t.Fatalf("Toggle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToggleSerializesConcurrentCalls(t *testing.T) {
	w := newFakeWindow()
	tg := newTestToggler(w, PolicyReposition)

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() { tg.Toggle() })
	}
	wg.Wait()

	// Each show sequence must appear contiguously: hide ... show focus.
	calls := w.Calls()
	for i := 0; i < len(calls); {
		if calls[i] != "hide" {
			t.Fatalf("sequence at %d starts with %q: %v", i, calls[i], calls)
		}
		if i+1 == len(calls) || !strings.HasPrefix(calls[i+1], "position") {
			i++ // a lone hide from a visible-focused toggle
			continue
		}
		end := i + 6
		if end > len(calls) || calls[end-2] != "show" || calls[end-1] != "focus" {
			t.Fatalf("interleaved show sequence at %d: %v", i, calls)
		}
		i = end
	}
	// Eight alternating toggles end hidden.
	if w.visible {
		t.Fatal("window should be hidden after an even number of toggles")
	}
}

func TestTogglerShowAndHide(t *testing.T) {
	w := newFakeWindow()
	w.visible, w.focused = true, true
	tg := newTestToggler(w, PolicyFocus)

	tg.Show()
	if calls := w.Calls(); calls[0] != "hide" || calls[len(calls)-1] != "focus" {
		t.Fatalf("Show() calls = %v, want full sequence", calls)
	}
	w.resetCalls()

	tg.Hide()
	if calls := w.Calls(); !slices.Equal(calls, []string{"hide"}) {
		t.Fatalf("Hide() calls = %v", calls)
	}
}

func TestSetPolicy(t *testing.T) {
	tg := newTestToggler(newFakeWindow(), PolicyReposition)
	tg.SetPolicy(PolicyHide)
	if got := tg.Policy(); got != PolicyHide {
		t.Fatalf("Policy() = %q", got)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := map[string]Policy{
		"focus":      PolicyFocus,
		" HIDE ":     PolicyHide,
		"reposition": PolicyReposition,
		"":           PolicyReposition,
		"bogus":      PolicyReposition,
	}
	for in, want := range tests {
		if got := ParsePolicy(in); got != want {
			t.Errorf("ParsePolicy(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStateString(t *testing.T) {
	if Hidden.String() != "hidden" || VisibleFocused.String() != "visible-focused" || State(9).String() != "State(9)" {
		t.Fatal("unexpected State.String output")
	}
}

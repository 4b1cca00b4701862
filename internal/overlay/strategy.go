package overlay

import (
	"errors"
	"fmt"
	"log/slog"

	"freecastnotes/internal/config"
	"freecastnotes/internal/geometry"
)

// Strategy applies the platform-specific part of the show sequence.
// Every variant runs the same steps; they differ in which window-level
// directives they attempt.
type Strategy interface {
	Name() string
	// ShowOverlay hides, positions, elevates, and shows+focuses w.
	// Failures are collected; show and focus are always attempted.
	ShowOverlay(w Window, cursor geometry.Point, haveCursor bool) error
}

// stepError tags a best-effort failure with the step that produced it.
type stepError struct {
	Step string
	Err  error
}

func (e *stepError) Error() string { return fmt.Sprintf("%s: %v", e.Step, e.Err) }
func (e *stepError) Unwrap() error { return e.Err }

type sequence struct {
	errs []error
}

func (s *sequence) try(step string, err error) {
	if err != nil {
		s.errs = append(s.errs, &stepError{Step: step, Err: err})
	}
}

func (s *sequence) err() error { return errors.Join(s.errs...) }

// runSequence executes the show steps in order around the strategy's
// elevate and attach hooks. Nil hooks are skipped.
func runSequence(w Window, cursor geometry.Point, haveCursor bool, elevate func(*sequence), attach func(*sequence)) error {
	var seq sequence

	seq.try("hide", w.Hide())
	if haveCursor {
		seq.try("position", placeNearCursor(w, cursor))
	}
	if elevate != nil {
		elevate(&seq)
	}
	if attach != nil {
		attach(&seq)
	}
	seq.try("show", w.Show())
	seq.try("focus", w.Focus())
	return seq.err()
}

// placeNearCursor resolves the clamped top-left for w and applies it.
func placeNearCursor(w Window, cursor geometry.Point) error {
	size, err := w.OuterSize()
	if err != nil {
		inner, innerErr := w.InnerSize()
		if innerErr != nil {
			return errors.Join(err, innerErr)
		}
		size = inner
	}

	var area *geometry.WorkArea
	if wa, ok := geometry.FirstWorkArea(
		func() (geometry.WorkArea, bool) { return w.MonitorAt(cursor) },
		w.CurrentMonitor,
		w.PrimaryMonitor,
	); ok {
		area = &wa
	}

	x, y := geometry.Round(geometry.Resolve(cursor, size, area))
	return w.SetPosition(x, y)
}

// NativeSpacesIntegration sets an elevated window level and collection
// behavior, then explicitly attaches the window to the active space. Until
// the native window resolves it runs the basic sequence instead.
type NativeSpacesIntegration struct {
	Native SpacesIntegration
}

func (NativeSpacesIntegration) Name() string { return config.StrategyNative }

func (s NativeSpacesIntegration) ShowOverlay(w Window, cursor geometry.Point, haveCursor bool) error {
	if s.Native == nil || !s.Native.Available() {
		slog.Debug("[DEBUG-OVERLAY] native window not resolvable, using basic always-on-top for this show")
		return BasicAlwaysOnTop{}.ShowOverlay(w, cursor, haveCursor)
	}
	return runSequence(w, cursor, haveCursor,
		func(seq *sequence) {
			// No coarse always-on-top here: on macOS it resets the level to
			// floating after the overlay level is applied.
			seq.try("overlay-level", s.Native.SetOverlayLevel())
		},
		func(seq *sequence) {
			seq.try("attach-space", s.Native.AttachToActiveSpace())
		},
	)
}

// Auto picks native spaces integration whenever the native window resolves
// and basic always-on-top otherwise. It resolves again on every show: a
// start-hidden window only resolves natively once it has been mapped.
type Auto struct {
	Native SpacesIntegration
}

func (a Auto) resolve() Strategy {
	if a.Native != nil && a.Native.Available() {
		return NativeSpacesIntegration{Native: a.Native}
	}
	return BasicAlwaysOnTop{}
}

// Name reports the strategy the next show would use.
func (a Auto) Name() string { return a.resolve().Name() }

func (a Auto) ShowOverlay(w Window, cursor geometry.Point, haveCursor bool) error {
	return a.resolve().ShowOverlay(w, cursor, haveCursor)
}

// BasicAlwaysOnTop uses the coarse always-on-top and all-workspaces flags.
type BasicAlwaysOnTop struct{}

func (BasicAlwaysOnTop) Name() string { return config.StrategyBasic }

func (BasicAlwaysOnTop) ShowOverlay(w Window, cursor geometry.Point, haveCursor bool) error {
	return runSequence(w, cursor, haveCursor,
		func(seq *sequence) {
			seq.try("always-on-top", w.SetAlwaysOnTop(true))
			if err := w.SetVisibleOnAllWorkspaces(true); !errors.Is(err, ErrUnsupported) {
				seq.try("all-workspaces", err)
			}
		},
		nil,
	)
}

// NoOp leaves window-manager rules alone: position, show, focus only.
type NoOp struct{}

func (NoOp) Name() string { return config.StrategyNoOp }

func (NoOp) ShowOverlay(w Window, cursor geometry.Point, haveCursor bool) error {
	return runSequence(w, cursor, haveCursor, nil, nil)
}

// SelectStrategy picks the strategy named by the config value. Unknown
// values mean "auto".
func SelectStrategy(name string, native SpacesIntegration) Strategy {
	switch name {
	case config.StrategyNoOp:
		return NoOp{}
	case config.StrategyBasic:
		return BasicAlwaysOnTop{}
	case config.StrategyNative:
		if native == nil {
			slog.Warn("[WARN-OVERLAY] native overlay strategy unavailable, using basic always-on-top")
			return BasicAlwaysOnTop{}
		}
		return NativeSpacesIntegration{Native: native}
	default:
		return Auto{Native: native}
	}
}

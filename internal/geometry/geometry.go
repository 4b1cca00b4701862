// Package geometry computes where the overlay window appears relative to the
// cursor and the usable area of the monitor under it.
//
// All coordinates are global device pixels with the origin at the top-left of
// the primary display and y growing downwards. Platform layers convert into
// this space before calling Resolve.
package geometry

import "math"

const (
	// Margin is the minimum gap kept between the window and the work-area edge.
	Margin = 14.0
	// VerticalOffset places the window just below a menu-bar-height click point.
	VerticalOffset = 56.0
)

// Point is a global screen coordinate.
type Point struct {
	X float64
	Y float64
}

// Size is a window extent.
type Size struct {
	Width  float64
	Height float64
}

// WorkArea is the usable rectangle of a monitor, excluding taskbars and docks.
type WorkArea struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Contains reports whether p lies inside the work area. The right and bottom
// edges are exclusive so adjacent monitors never both claim a point.
func (w WorkArea) Contains(p Point) bool {
	return p.X >= w.X && p.X < w.X+w.Width && p.Y >= w.Y && p.Y < w.Y+w.Height
}

// Desired returns the unclamped top-left position for a window of size
// centred horizontally on the cursor.
func Desired(cursor Point, size Size) Point {
	return Point{
		X: cursor.X - size.Width/2,
		Y: cursor.Y - VerticalOffset,
	}
}

// Resolve returns the top-left coordinate for the window. When area is nil
// the desired position is returned unclamped. Otherwise both axes are clamped
// into [origin+Margin, origin+extent-size-Margin]; if the window does not fit
// the minimum wins and the window overflows the far edge.
func Resolve(cursor Point, size Size, area *WorkArea) Point {
	desired := Desired(cursor, size)
	if area == nil {
		return desired
	}
	return Point{
		X: clamp(desired.X, area.X+Margin, area.X+area.Width-size.Width-Margin),
		Y: clamp(desired.Y, area.Y+Margin, area.Y+area.Height-size.Height-Margin),
	}
}

// Round converts p to integral device coordinates, rounding half away from zero.
func Round(p Point) (int, int) {
	return int(math.Round(p.X)), int(math.Round(p.Y))
}

func clamp(value, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	return math.Min(math.Max(value, lo), hi)
}

// Lookup yields a work area when the corresponding monitor can be resolved.
type Lookup func() (WorkArea, bool)

// FirstWorkArea walks lookups in order and returns the first resolvable work
// area. Callers pass monitor-under-cursor, current monitor, then primary
// monitor. Nil lookups are skipped.
func FirstWorkArea(lookups ...Lookup) (WorkArea, bool) {
	for _, lookup := range lookups {
		if lookup == nil {
			continue
		}
		if area, ok := lookup(); ok {
			return area, true
		}
	}
	return WorkArea{}, false
}

// MonitorAt returns the first work area in areas that contains p.
func MonitorAt(areas []WorkArea, p Point) (WorkArea, bool) {
	for _, area := range areas {
		if area.Contains(p) {
			return area, true
		}
	}
	return WorkArea{}, false
}

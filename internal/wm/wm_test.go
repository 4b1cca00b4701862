package wm

import (
	"testing"

	"freecastnotes/internal/geometry"
)

func TestFlipRect(t *testing.T) {
	// A 1440x900 primary with a 25pt menu bar and a second screen above it.
	tests := []struct {
		name       string
		x, y, w, h float64
		want       geometry.WorkArea
	}{
		{"primary visible frame", 0, 0, 1440, 875, geometry.WorkArea{X: 0, Y: 25, Width: 1440, Height: 875}},
		{"screen above primary", 0, 900, 1920, 1080, geometry.WorkArea{X: 0, Y: -1080, Width: 1920, Height: 1080}},
		{"screen to the right", 1440, 0, 1280, 800, geometry.WorkArea{X: 1440, Y: 100, Width: 1280, Height: 800}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := flipRect(tt.x, tt.y, tt.w, tt.h, 900); got != tt.want {
				t.Fatalf("flipRect() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFlipPoint(t *testing.T) {
	if got := flipPoint(100, 850, 900); got != (geometry.Point{X: 100, Y: 50}) {
		t.Fatalf("flipPoint() = %+v", got)
	}
}

func TestIntersect(t *testing.T) {
	tests := []struct {
		name   string
		a, b   geometry.WorkArea
		want   geometry.WorkArea
		wantOK bool
	}{
		{
			name:   "workarea trims panel",
			a:      geometry.WorkArea{X: 0, Y: 0, Width: 1920, Height: 1080},
			b:      geometry.WorkArea{X: 0, Y: 32, Width: 3840, Height: 1048},
			want:   geometry.WorkArea{X: 0, Y: 32, Width: 1920, Height: 1048},
			wantOK: true,
		},
		{
			name:   "second monitor",
			a:      geometry.WorkArea{X: 1920, Y: 0, Width: 1920, Height: 1080},
			b:      geometry.WorkArea{X: 0, Y: 32, Width: 3840, Height: 1048},
			want:   geometry.WorkArea{X: 1920, Y: 32, Width: 1920, Height: 1048},
			wantOK: true,
		},
		{
			name: "disjoint",
			a:    geometry.WorkArea{X: 0, Y: 0, Width: 100, Height: 100},
			b:    geometry.WorkArea{X: 100, Y: 0, Width: 100, Height: 100},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := intersect(tt.a, tt.b)
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("intersect() = (%+v, %v), want (%+v, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMonitorForFrame(t *testing.T) {
	areas := []geometry.WorkArea{
		{X: 0, Y: 0, Width: 1920, Height: 1040},
		{X: 1920, Y: 0, Width: 1280, Height: 1024},
	}
	frame := geometry.WorkArea{X: 1800, Y: 100, Width: 400, Height: 300}
	got, ok := MonitorForFrame(areas, frame)
	if !ok || got != areas[1] {
		t.Fatalf("MonitorForFrame() = (%+v, %v), want second monitor", got, ok)
	}
	if _, ok := MonitorForFrame(areas, geometry.WorkArea{X: -5000, Y: 0, Width: 10, Height: 10}); ok {
		t.Fatal("off-screen frame should not resolve")
	}
}

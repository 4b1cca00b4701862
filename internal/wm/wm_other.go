//go:build !darwin && !linux && !windows

package wm

import "freecastnotes/internal/geometry"

type platform struct{}

func openPlatform() *platform { return &platform{} }

func (*platform) supported() bool { return false }
func (*platform) spacesAvailable() bool { return false }

func (*platform) cursor() (geometry.Point, error) { return geometry.Point{}, ErrUnsupported }
func (*platform) workAreas() ([]geometry.WorkArea, error) { return nil, ErrUnsupported }
func (*platform) frame() (geometry.WorkArea, error) { return geometry.WorkArea{}, ErrUnsupported }
func (*platform) visible() (bool, error) { return false, ErrUnsupported }
func (*platform) focused() (bool, error) { return false, ErrUnsupported }
func (*platform) setPosition(int, int) error { return ErrUnsupported }
func (*platform) focus() error { return ErrUnsupported }
func (*platform) setAlwaysOnTop(bool) error { return ErrUnsupported }
func (*platform) setAllWorkspaces(bool) error { return ErrUnsupported }
func (*platform) setOverlayLevel() error { return ErrUnsupported }
func (*platform) attachToActiveSpace() error { return ErrUnsupported }
func (*platform) close() error { return nil }

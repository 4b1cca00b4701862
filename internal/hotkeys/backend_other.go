//go:build !darwin && !linux && !windows

package hotkeys

type systemBackend struct{}

func newSystemBackend() Backend { return systemBackend{} }

func (systemBackend) Register(Binding) (Registration, error) {
	return nil, ErrUnsupported
}

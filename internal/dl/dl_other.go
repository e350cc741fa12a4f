//go:build !darwin && !freebsd && !linux && !windows

package dl

type systemLoader struct{}

func (systemLoader) Open(string) (Library, error) {
	return nil, ErrNotSupported
}

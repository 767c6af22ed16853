package filestore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/ports"
)

// Local reads from the host filesystem.
type Local struct{}

// NewLocal returns the host filesystem store.
func NewLocal() Local {
	return Local{}
}

// ReadFile returns the file contents or an error wrapping ErrFileNotFound or ErrReadFailed.
func (Local) ReadFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, domain.ErrFileNotFound)
		}
		return nil, fmt.Errorf("%s: %v: %w", path, err, domain.ErrReadFailed)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", path, domain.ErrReadFailed)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", path, err, domain.ErrReadFailed)
	}
	return data, nil
}

// Exists reports whether path names a regular file.
func (Local) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

var _ ports.FileStore = Local{}

package store

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/RichardoC/chatwidget/internal/models"
	"github.com/pkg/errors"
)

// File stores the history as a JSON document on disk.
type File struct {
	path string
	mu   sync.Mutex
}

func NewFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "ensure history dir")
	}
	return &File{path: path}, nil
}

func (f *File) Read() ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Message{}, nil
		}
		return nil, errors.Wrap(err, "read history")
	}
	return Decode(data)
}

// Write replaces the file through a temp file and rename so a crash never
// leaves a half-written history.
func (f *File) Write(messages []models.Message) error {
	data, err := Encode(messages)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "write history")
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return errors.Wrap(err, "replace history")
	}
	return nil
}

package store

import (
	"os"
	"path/filepath"

	"github.com/RichardoC/chatwidget/internal/models"
	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
)

// Pebble keeps histories in an embedded pebble database, one value per key.
type Pebble struct {
	db  *pebble.DB
	key []byte
}

func NewPebble(path, key string) (*Pebble, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "ensure pebble dir")
	}
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrap(err, "open pebble")
	}
	return &Pebble{db: db, key: []byte("history:" + key)}, nil
}

func (p *Pebble) Read() ([]models.Message, error) {
	v, closer, err := p.db.Get(p.key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return []models.Message{}, nil
		}
		return nil, errors.Wrap(err, "get history")
	}
	defer closer.Close()
	// v is only valid until closer is closed; Decode copies what it needs.
	return Decode(v)
}

func (p *Pebble) Write(messages []models.Message) error {
	data, err := Encode(messages)
	if err != nil {
		return err
	}
	if err := p.db.Set(p.key, data, pebble.Sync); err != nil {
		return errors.Wrap(err, "set history")
	}
	return nil
}

func (p *Pebble) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

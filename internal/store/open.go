package store

import (
	"io"
	"path/filepath"

	"github.com/RichardoC/chatwidget/internal/db"
	"github.com/pkg/errors"
)

// Drivers accepted by Open.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverPebble = "pebble"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Options selects and configures a driver.
type Options struct {
	Driver    string
	Path      string
	RedisAddr string
	Key       string
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Open builds the store named by opts.Driver. The returned closer releases
// the driver's resources and is never nil.
func Open(opts Options) (Store, io.Closer, error) {
	key := opts.Key
	if key == "" {
		key = DefaultKey
	}
	if opts.Path == "" {
		opts.Path = defaultPath(opts.Driver, key)
	}
	noop := closerFunc(func() error { return nil })

	switch opts.Driver {
	case DriverFile, "":
		s, err := NewFile(opts.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case DriverSQLite:
		database, err := db.New(opts.Path)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open sqlite history")
		}
		return NewSQLite(database, key), database, nil
	case DriverPebble:
		s, err := NewPebble(opts.Path, key)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case DriverRedis:
		s := NewRedis(opts.RedisAddr, key)
		return s, s, nil
	case DriverMemory:
		return NewMemory(), noop, nil
	default:
		return nil, nil, errors.Errorf("unknown store driver %q", opts.Driver)
	}
}

func defaultPath(driver, key string) string {
	switch driver {
	case DriverSQLite:
		return filepath.Join("data", "chatwidget.db")
	case DriverPebble:
		return filepath.Join("data", "pebble")
	default:
		return filepath.Join("data", key+".json")
	}
}

package store

import (
	"github.com/RichardoC/chatwidget/internal/db"
	"github.com/RichardoC/chatwidget/internal/models"
	"github.com/pkg/errors"
)

// SQLite keeps one history per key in the widget_messages table.
type SQLite struct {
	db  *db.Database
	key string
}

func NewSQLite(database *db.Database, key string) *SQLite {
	return &SQLite{db: database, key: key}
}

func (s *SQLite) Read() ([]models.Message, error) {
	messages, err := s.db.LoadHistory(s.key)
	if err != nil {
		return nil, errors.Wrap(err, "load history")
	}
	return persistable(messages), nil
}

func (s *SQLite) Write(messages []models.Message) error {
	return errors.Wrap(s.db.SaveHistory(s.key, messages), "save history")
}

// Package store persists widget chat histories. Every driver keeps the
// history of one key as a single JSON document, the same shape the browser
// widget writes to localStorage.
package store

import (
	"encoding/json"

	"github.com/RichardoC/chatwidget/internal/models"
	"github.com/pkg/errors"
)

// DefaultKey is the history key the browser widget uses.
const DefaultKey = "bolashak_chat_history_v1"

// Store reads and writes a whole history.
type Store interface {
	Read() ([]models.Message, error)
	Write(messages []models.Message) error
}

// Encode serializes messages, dropping typing placeholders.
func Encode(messages []models.Message) ([]byte, error) {
	data, err := json.Marshal(persistable(messages))
	if err != nil {
		return nil, errors.Wrap(err, "encode history")
	}
	return data, nil
}

// Decode parses a stored history. Empty input is an empty history.
func Decode(data []byte) ([]models.Message, error) {
	if len(data) == 0 {
		return []models.Message{}, nil
	}
	var messages []models.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, errors.Wrap(err, "decode history")
	}
	return persistable(messages), nil
}

func persistable(messages []models.Message) []models.Message {
	out := make([]models.Message, 0, len(messages))
	for _, m := range messages {
		if !m.Typing {
			out = append(out, m)
		}
	}
	return out
}

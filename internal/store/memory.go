package store

import (
	"sync"

	"github.com/RichardoC/chatwidget/internal/models"
)

// Memory keeps the encoded history in process, for tests and the memory driver.
type Memory struct {
	mu   sync.Mutex
	data []byte
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Read() ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Decode(m.data)
}

func (m *Memory) Write(messages []models.Message) error {
	data, err := Encode(messages)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

// Raw returns the stored document.
func (m *Memory) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

// SetRaw replaces the stored document, valid or not.
func (m *Memory) SetRaw(data []byte) {
	m.mu.Lock()
	m.data = append([]byte(nil), data...)
	m.mu.Unlock()
}

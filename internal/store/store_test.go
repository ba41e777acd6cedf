package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/RichardoC/chatwidget/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleHistory() []models.Message {
	return []models.Message{
		{Text: "Hello", Who: models.WhoUser, Lang: "ru", Agent: "ai_assistant"},
		{ID: "42", Text: "**Hi**", Who: models.WhoBot, Rating: models.RatingLike},
		{Text: "again", Who: models.WhoUser, Lang: "en", Agent: "ai_navigator"},
		{Text: "Ошибка соединения. Попробуйте ещё раз.", Who: models.WhoBot, Error: true},
		{Text: "", Who: models.WhoBot, Typing: true},
	}
}

func persisted() []models.Message {
	return sampleHistory()[:4]
}

func roundTrip(t *testing.T, s Store) {
	t.Helper()

	empty, err := s.Read()
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, s.Write(sampleHistory()))
	got, err := s.Read()
	require.NoError(t, err)
	assert.Equal(t, persisted(), got)

	require.NoError(t, s.Write(nil))
	got, err = s.Read()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeBrowserHistory(t *testing.T) {
	raw := `[
		{"text":"Как поступить?","who":"user","lang":"ru","model":"ai_assistant"},
		{"text":"<span class=\"typing-indicator\"></span>","who":"bot","typing":true},
		{"text":"Ответ","who":"bot","id":17,"user_rating":"dislike"},
		{"text":"Ещё","who":"bot","id":"a1"}
	]`
	got, err := Decode([]byte(raw))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "ai_assistant", got[0].Agent)
	assert.Equal(t, "17", got[1].ID)
	assert.Equal(t, models.RatingDislike, got[1].Rating)
	assert.Equal(t, "a1", got[2].ID)

	_, err = Decode([]byte("{broken"))
	assert.Error(t, err)

	got, err = Decode(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEncodeOmitsTransientFields(t *testing.T) {
	data, err := Encode(sampleHistory())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "typing")
	assert.NotContains(t, string(data), `"id":""`)
}

func TestMemoryRoundTrip(t *testing.T) {
	roundTrip(t, NewMemory())
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.json")
	s, err := NewFile(path)
	require.NoError(t, err)
	roundTrip(t, s)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	s, err := NewFile(path)
	require.NoError(t, err)

	_, err = s.Read()
	assert.Error(t, err)
}

func TestSQLiteRoundTrip(t *testing.T) {
	s, closer, err := Open(Options{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "chat.db"), Key: "a"})
	require.NoError(t, err)
	defer closer.Close()
	roundTrip(t, s)
}

func TestSQLiteKeysAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.db")
	a, closer, err := Open(Options{Driver: DriverSQLite, Path: path, Key: "a"})
	require.NoError(t, err)
	defer closer.Close()
	b, closerB, err := Open(Options{Driver: DriverSQLite, Path: path, Key: "b"})
	require.NoError(t, err)
	defer closerB.Close()

	require.NoError(t, a.Write(sampleHistory()))
	got, err := b.Read()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPebbleRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pebble")
	s, err := NewPebble(dir, DefaultKey)
	require.NoError(t, err)
	roundTrip(t, s)

	require.NoError(t, s.Write(sampleHistory()))
	require.NoError(t, s.Close())

	reopened, err := NewPebble(dir, DefaultKey)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Read()
	require.NoError(t, err)
	assert.Equal(t, persisted(), got)
}

func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("CHATWIDGET_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CHATWIDGET_TEST_REDIS_ADDR not set")
	}
	s := NewRedis(addr, t.Name())
	defer s.Close()
	roundTrip(t, s)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, _, err := Open(Options{Driver: "localstorage"})
	assert.Error(t, err)
}

func TestOpenDefaultsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.json")
	s, closer, err := Open(Options{Path: path})
	require.NoError(t, err)
	defer closer.Close()
	_, ok := s.(*File)
	assert.True(t, ok)
}

package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/RichardoC/chatwidget/internal/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestSaveAndRateQuery(t *testing.T) {
	database := newTestDB(t)

	q := &models.Query{Message: "Какие документы нужны?", Response: "Паспорт и аттестат.", Agent: "ai_navigator", Language: "ru"}
	require.NoError(t, database.SaveQuery(q))
	require.NotEmpty(t, q.ID)
	assert.False(t, q.CreatedAt.IsZero())

	got, err := database.GetQuery(q.ID)
	require.NoError(t, err)
	assert.Equal(t, q.Message, got.Message)
	assert.Equal(t, models.RatingNone, got.Rating)
	assert.Nil(t, got.RatedAt)

	at := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, database.RateQuery(q.ID, models.RatingLike, at))
	got, err = database.GetQuery(q.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RatingLike, got.Rating)
	require.NotNil(t, got.RatedAt)
	assert.True(t, at.Equal(*got.RatedAt))

	// a later rating overwrites the earlier one
	require.NoError(t, database.RateQuery(q.ID, models.RatingDislike, at.Add(time.Minute)))
	got, err = database.GetQuery(q.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RatingDislike, got.Rating)
}

func TestRateUnknownQuery(t *testing.T) {
	database := newTestDB(t)

	err := database.RateQuery("nope", models.RatingLike, time.Now())
	assert.True(t, errors.Is(err, ErrQueryNotFound))

	_, err = database.GetQuery("nope")
	assert.True(t, errors.Is(err, ErrQueryNotFound))
}

func TestHistoryRoundTrip(t *testing.T) {
	database := newTestDB(t)

	history := []models.Message{
		{Text: "Привет", Who: models.WhoUser, Lang: "ru", Agent: "ai_assistant"},
		{ID: "42", Text: "Здравствуйте!", Who: models.WhoBot, Rating: models.RatingLike},
		{Text: "Бот печатает...", Who: models.WhoBot, Typing: true},
	}
	require.NoError(t, database.SaveHistory("k1", history))
	require.NoError(t, database.SaveHistory("k2", history[:1]))

	got, err := database.LoadHistory("k1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, history[0], got[0])
	assert.Equal(t, history[1], got[1])

	require.NoError(t, database.SaveHistory("k1", nil))
	got, err = database.LoadHistory("k1")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = database.LoadHistory("k2")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestPing(t *testing.T) {
	assert.NoError(t, newTestDB(t).Ping())
}

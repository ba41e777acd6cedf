package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RichardoC/chatwidget/internal/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", WithTimeout(5*time.Second))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestSend(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, chatRequest{Message: "Hello", Agent: "ai_navigator", AgentType: "ai_navigator", Language: "kz"}, req)

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":    true,
			"response":   "Hi",
			"query_id":   42,
			"agent_name": "Navigator",
		})
	}))

	reply, err := c.Send(context.Background(), "Hello", models.Settings{Language: "kz", Agent: "ai_navigator"})
	require.NoError(t, err)
	assert.Equal(t, Reply{Text: "Hi", ID: "42", Agent: "Navigator"}, reply)
}

func TestSendFallsBackToMessageID(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":    true,
			"response":   "Hi",
			"query_id":   nil,
			"message_id": "msg-7",
		})
	}))

	reply, err := c.Send(context.Background(), "Hello", models.Settings{Language: "ru", Agent: "ai_assistant"})
	require.NoError(t, err)
	assert.Equal(t, "msg-7", reply.ID)
}

func TestSendBackendError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "Извините, произошла ошибка.",
		})
	}))

	_, err := c.Send(context.Background(), "Hello", models.Settings{})
	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, http.StatusInternalServerError, be.Status)
	assert.Equal(t, "Извините, произошла ошибка.", be.Message)
}

func TestSendErrorWithOKStatus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"error": "Пустое сообщение"})
	}))

	_, err := c.Send(context.Background(), "Hello", models.Settings{})
	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "Пустое сообщение", be.Message)
}

func TestSendStatusError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))

	_, err := c.Send(context.Background(), "Hello", models.Settings{})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.Status)
	assert.Equal(t, "bad gateway", se.Body)
}

func TestSendConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := New(srv.URL).Send(context.Background(), "Hello", models.Settings{})
	require.Error(t, err)
	var be *BackendError
	assert.False(t, errors.As(err, &be))
}

func TestSendRating(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rate/a%2Fb", r.URL.EscapedPath())
		var req rateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "dislike", req.Rating)
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "rating": "dislike"})
	}))

	require.NoError(t, c.SendRating(context.Background(), "a/b", models.RatingDislike))
}

func TestSendRatingRejected(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "Query not found"})
	}))

	err := c.SendRating(context.Background(), "9", models.RatingLike)
	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, http.StatusNotFound, be.Status)

	c = newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": false})
	}))
	assert.Error(t, c.SendRating(context.Background(), "9", models.RatingLike))
}

func TestHealth(t *testing.T) {
	var down atomic.Bool
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		if down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}))

	assert.NoError(t, c.Health(context.Background()))
	down.Store(true)
	assert.Error(t, c.Health(context.Background()))
}

func TestGroupsAndSchedules(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/schedule/groups", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"groups": []map[string]interface{}{
				{"id": 1, "name": "ИС-21", "year": 2, "semester": 3, "faculty": map[string]interface{}{"id": 4, "name": "ИТ", "code": "IT"}},
			},
			"total": 1,
		})
	})
	mux.HandleFunc("/api/schedule/today/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/schedule/today/ИС 21", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"date":    "2026-10-16",
			"group":   "ИС 21",
			"schedules": []map[string]interface{}{
				{"id": 3, "start_time": "09:00", "end_time": "10:30", "subject_name": "Математика", "classroom": "101"},
			},
		})
	})
	mux.HandleFunc("/api/schedule/date/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/schedule/date/IS/2026-10-19", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "date": "2026-10-19", "group": "IS", "schedules": []interface{}{}})
	})
	mux.HandleFunc("/api/schedule/week/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":    true,
			"start_date": "2026-10-12",
			"end_date":   "2026-10-18",
			"group":      "IS",
			"schedule_by_days": map[string]interface{}{
				"2026-10-12": []map[string]interface{}{{"id": 1, "subject_name": "Физика"}},
			},
			"total_lessons": 1,
		})
	})
	mux.HandleFunc("/api/schedule/tomorrow/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "error": "Ошибка при получении расписания на завтра"})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	groups, err := c.Groups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "ИТ", groups[0].Faculty.Name)

	day, err := c.Schedule(ctx, PeriodToday, "ИС 21")
	require.NoError(t, err)
	require.Len(t, day.Lessons, 1)
	assert.Equal(t, "Математика", day.Lessons[0].SubjectName)
	assert.Equal(t, "2026-10-16", day.Date)

	on, err := c.ScheduleOn(ctx, "IS", time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, on.Lessons)

	week, err := c.Week(ctx, "IS")
	require.NoError(t, err)
	assert.Equal(t, 1, week.Total)
	assert.Equal(t, "Физика", week.Days["2026-10-12"][0].SubjectName)

	_, err = c.Schedule(ctx, PeriodTomorrow, "IS")
	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Contains(t, be.Message, "завтра")

	_, err = c.Schedule(ctx, "yesterday", "IS")
	assert.Error(t, err)
}

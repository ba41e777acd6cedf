package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/RichardoC/chatwidget/internal/db"
	"github.com/RichardoC/chatwidget/internal/models"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	serviceName    = "bolashak-chat"
	serviceVersion = "1.0.0"
	defaultAgent   = "ai_assistant"
)

// Answerer produces the bot reply for a chat request.
type Answerer interface {
	Answer(ctx context.Context, message, agent, language string) (string, error)
}

// QueryStore records answered queries and their ratings.
type QueryStore interface {
	SaveQuery(q *models.Query) error
	RateQuery(id string, rating models.Rating, at time.Time) error
	Ping() error
}

type Handler struct {
	db      QueryStore
	llm     Answerer
	logger  *zap.Logger
	agents  func(string) bool
	now     func() time.Time
	chats   *prometheus.CounterVec
	ratings *prometheus.CounterVec
}

func NewHandler(store QueryStore, answerer Answerer, logger *zap.Logger, reg prometheus.Registerer, knownAgent func(string) bool) *Handler {
	h := &Handler{
		db:     store,
		llm:    answerer,
		logger: logger,
		agents: knownAgent,
		now:    time.Now,
		chats: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatwidget_chat_requests_total",
			Help: "Chat requests by agent and outcome.",
		}, []string{"agent", "outcome"}),
		ratings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatwidget_ratings_total",
			Help: "Ratings received by value.",
		}, []string{"rating"}),
	}
	if reg != nil {
		reg.MustRegister(h.chats, h.ratings)
	}
	return h
}

// Register mounts the widget API on r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/chat", h.HandleChat).Methods(http.MethodPost)
	r.HandleFunc("/api/rate/{id}", h.HandleRate).Methods(http.MethodPost)
	r.HandleFunc("/api/health", h.HandleHealth).Methods(http.MethodGet)
}

type ChatRequest struct {
	Message   string `json:"message"`
	Agent     string `json:"agent"`
	AgentType string `json:"agent_type"`
	Language  string `json:"language"`
}

type ChatResponse struct {
	Success          bool    `json:"success"`
	Response         string  `json:"response,omitempty"`
	QueryID          string  `json:"query_id,omitempty"`
	AgentType        string  `json:"agent_type,omitempty"`
	DetectedLanguage string  `json:"detected_language,omitempty"`
	ResponseTime     float64 `json:"response_time,omitempty"`
	Error            string  `json:"error,omitempty"`
}

type RateRequest struct {
	Rating string `json:"rating"`
}

type RateResponse struct {
	Success bool   `json:"success,omitempty"`
	Rating  string `json:"rating,omitempty"`
	QueryID string `json:"query_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

var apologies = map[string]string{
	"ru": "Извините, произошла ошибка. Попробуйте еще раз.",
	"kz": "Кешіріңіз, қате орын алды. Қайталап көріңіз.",
	"en": "Sorry, something went wrong. Please try again.",
}

func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ChatResponse{Error: "Сообщение не найдено"})
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeJSON(w, http.StatusBadRequest, ChatResponse{Error: "Пустое сообщение"})
		return
	}

	language := normalizeLanguage(req.Language)
	agent := h.resolveAgent(req)
	start := h.now()

	answer, err := h.llm.Answer(r.Context(), message, agent, language)
	if err != nil {
		h.logger.Error("Failed to process message",
			zap.Error(err),
			zap.String("agent", agent),
			zap.String("language", language))
		h.chats.WithLabelValues(agent, "error").Inc()
		writeJSON(w, http.StatusInternalServerError, ChatResponse{Error: apologies[language]})
		return
	}

	query := &models.Query{
		Message:  message,
		Response: answer,
		Agent:    agent,
		Language: language,
	}
	if err := h.db.SaveQuery(query); err != nil {
		h.logger.Error("Failed to save query", zap.Error(err))
		h.chats.WithLabelValues(agent, "error").Inc()
		writeJSON(w, http.StatusInternalServerError, ChatResponse{Error: apologies[language]})
		return
	}

	elapsed := h.now().Sub(start)
	h.logger.Info("Chat response generated",
		zap.String("query_id", query.ID),
		zap.String("agent", agent),
		zap.String("language", language),
		zap.Duration("elapsed", elapsed))
	h.chats.WithLabelValues(agent, "ok").Inc()

	writeJSON(w, http.StatusOK, ChatResponse{
		Success:          true,
		Response:         answer,
		QueryID:          query.ID,
		AgentType:        agent,
		DetectedLanguage: language,
		ResponseTime:     elapsed.Seconds(),
	})
}

func (h *Handler) HandleRate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Rating == "" {
		writeJSON(w, http.StatusBadRequest, RateResponse{Error: "Rating not provided"})
		return
	}
	rating := models.Rating(req.Rating)
	if !rating.Valid() {
		writeJSON(w, http.StatusBadRequest, RateResponse{Error: `Invalid rating. Must be "like" or "dislike"`})
		return
	}

	if err := h.db.RateQuery(id, rating, h.now()); err != nil {
		if errors.Is(err, db.ErrQueryNotFound) {
			writeJSON(w, http.StatusNotFound, RateResponse{Error: "Query not found"})
			return
		}
		h.logger.Error("Failed to save rating", zap.Error(err), zap.String("query_id", id))
		writeJSON(w, http.StatusInternalServerError, RateResponse{Error: "Failed to save rating"})
		return
	}

	h.logger.Info("Query rated", zap.String("query_id", id), zap.String("rating", req.Rating))
	h.ratings.WithLabelValues(req.Rating).Inc()
	writeJSON(w, http.StatusOK, RateResponse{Success: true, Rating: req.Rating, QueryID: id})
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":    "healthy",
		"timestamp": h.now().Unix(),
		"service":   serviceName,
		"version":   serviceVersion,
	}
	if r.URL.Query().Get("detailed") == "true" {
		if err := h.db.Ping(); err != nil {
			body["database"] = "unavailable"
			body["db_error"] = err.Error()
		} else {
			body["database"] = "connected"
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) resolveAgent(req ChatRequest) string {
	agent := req.Agent
	if agent == "" {
		agent = req.AgentType
	}
	if agent == "" || agent == "auto" || (h.agents != nil && !h.agents(agent)) {
		return defaultAgent
	}
	return agent
}

func normalizeLanguage(language string) string {
	if _, ok := apologies[language]; ok {
		return language
	}
	return "ru"
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package session

import (
	"strings"
	"sync"

	"github.com/RichardoC/chatwidget/internal/models"
	"go.uber.org/zap"
)

// Store persists the non-transient part of the history.
type Store interface {
	Read() ([]models.Message, error)
	Write(messages []models.Message) error
}

// Outcome is the result of a bot turn, either Answered or Failed.
type Outcome interface {
	outcome()
}

// Answered carries a backend reply.
type Answered struct {
	Text string
	ID   string
}

// Failed carries the text shown in place of a reply.
type Failed struct {
	DisplayText string
}

func (Answered) outcome() {}
func (Failed) outcome()   {}

// Session owns the ordered message history of one chat.
type Session struct {
	mu        sync.Mutex
	store     Store
	config    *Config
	logger    *zap.Logger
	messages  []models.Message
	listeners []Listener
}

type Option func(*Session)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

func WithListener(l Listener) Option {
	return func(s *Session) { s.listeners = append(s.listeners, l) }
}

// New creates an empty session. Call LoadHistory to restore persisted messages.
func New(store Store, config *Config, opts ...Option) *Session {
	s := &Session{
		store:  store,
		config: config,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers a listener for subsequent events.
func (s *Session) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// Config returns the session configuration.
func (s *Session) Config() *Config {
	return s.config
}

// LoadHistory replaces the in-memory history with the persisted one.
// Unreadable storage yields an empty history. An outstanding typing
// placeholder is kept so the current turn can still be completed.
func (s *Session) LoadHistory() []models.Message {
	loaded, err := s.store.Read()
	if err != nil {
		s.logger.Warn("Failed to read chat history, starting empty", zap.Error(err))
		loaded = nil
	}

	s.mu.Lock()
	typing, hasTyping := s.typingLocked()
	messages := withoutTyping(loaded)
	if hasTyping {
		messages = append(messages, typing)
	}
	s.messages = messages
	ev := s.eventLocked(EventHistoryLoaded, models.Message{})
	s.mu.Unlock()

	s.emit(ev)
	return withoutTyping(ev.History)
}

// SubmitUserMessage appends a user message. Blank input produces no message
// and reports false.
func (s *Session) SubmitUserMessage(text string) (models.Message, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Message{}, false
	}

	msg := models.Message{Text: text, Who: models.WhoUser}
	if s.config != nil {
		settings := s.config.Settings()
		msg.Lang = settings.Language
		msg.Agent = settings.Agent
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.persistLocked()
	ev := s.eventLocked(EventMessageAdded, msg)
	s.mu.Unlock()

	s.emit(ev)
	return msg, true
}

// BeginBotTurn inserts the typing placeholder. It is not persisted.
func (s *Session) BeginBotTurn() error {
	s.mu.Lock()
	if _, ok := s.typingLocked(); ok {
		s.mu.Unlock()
		return ErrTurnInProgress
	}
	placeholder := models.Message{Who: models.WhoBot, Typing: true}
	s.messages = append(s.messages, placeholder)
	ev := s.eventLocked(EventTurnStarted, placeholder)
	s.mu.Unlock()

	s.emit(ev)
	return nil
}

// CompleteBotTurn retires the typing placeholder and appends the bot message
// for the outcome. It must be called once per BeginBotTurn.
func (s *Session) CompleteBotTurn(outcome Outcome) (models.Message, error) {
	var msg models.Message
	switch o := outcome.(type) {
	case Answered:
		msg = models.Message{Text: o.Text, ID: o.ID, Who: models.WhoBot}
	case Failed:
		msg = models.Message{Text: o.DisplayText, Who: models.WhoBot, Error: true}
	default:
		panic("session: unknown turn outcome")
	}

	s.mu.Lock()
	if _, ok := s.typingLocked(); !ok {
		s.mu.Unlock()
		return models.Message{}, ErrNoTurn
	}
	s.messages = append(withoutTyping(s.messages), msg)
	s.persistLocked()
	ev := s.eventLocked(EventTurnCompleted, msg)
	s.mu.Unlock()

	s.emit(ev)
	return msg, nil
}

// Rate applies a rating to the bot message with the given id. A message can
// be rated once; later attempts fail with ErrAlreadyRated.
func (s *Session) Rate(id string, rating models.Rating) (models.Message, error) {
	if !rating.Valid() {
		return models.Message{}, ErrInvalidRating
	}

	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Message{}, ErrNotFound
	}
	if s.messages[i].Rating != models.RatingNone {
		msg := s.messages[i]
		s.mu.Unlock()
		return msg, ErrAlreadyRated
	}
	s.messages[i].Rating = rating
	msg := s.messages[i]
	s.persistLocked()
	ev := s.eventLocked(EventRatingApplied, msg)
	s.mu.Unlock()

	s.emit(ev)
	return msg, nil
}

// ClearHistory drops every message, including an outstanding placeholder,
// and persists the empty history.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	s.messages = nil
	s.persistLocked()
	ev := s.eventLocked(EventHistoryCleared, models.Message{})
	s.mu.Unlock()

	s.emit(ev)
}

// Messages returns a copy of the in-memory history, typing placeholder included.
func (s *Session) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyMessages(s.messages)
}

// Message looks up a bot message by id.
func (s *Session) Message(id string) (models.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return models.Message{}, false
	}
	return s.messages[i], true
}

// TurnInProgress reports whether a typing placeholder exists.
func (s *Session) TurnInProgress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.typingLocked()
	return ok
}

// LastUserMessage returns the most recent user message, used to recall the
// previous input.
func (s *Session) LastUserMessage() (models.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Who == models.WhoUser {
			return s.messages[i], true
		}
	}
	return models.Message{}, false
}

// ShowSuggestions reports whether starter questions should be offered.
func (s *Session) ShowSuggestions() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages) == 0
}

func (s *Session) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i, m := range s.messages {
		if m.Who == models.WhoBot && !m.Typing && m.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) typingLocked() (models.Message, bool) {
	for _, m := range s.messages {
		if m.Typing {
			return m, true
		}
	}
	return models.Message{}, false
}

// persistLocked writes the non-transient history. Failures are logged only;
// the in-memory history stays authoritative.
func (s *Session) persistLocked() {
	if err := s.store.Write(withoutTyping(s.messages)); err != nil {
		s.logger.Warn("Failed to persist chat history",
			zap.Error(err),
			zap.Int("messages", len(s.messages)))
	}
}

func (s *Session) eventLocked(kind EventKind, msg models.Message) Event {
	return Event{Kind: kind, Message: msg, History: copyMessages(s.messages)}
}

func (s *Session) emit(ev Event) {
	s.mu.Lock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()
	for _, l := range listeners {
		l.OnEvent(ev)
	}
}

func withoutTyping(messages []models.Message) []models.Message {
	out := make([]models.Message, 0, len(messages))
	for _, m := range messages {
		if !m.Typing {
			out = append(out, m)
		}
	}
	return out
}

func copyMessages(messages []models.Message) []models.Message {
	out := make([]models.Message, len(messages))
	copy(out, messages)
	return out
}

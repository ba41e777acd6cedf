// Package widget binds a chat session to the backend transports. It plays
// the part of the browser's submit and rating handlers: one turn at a time,
// ratings only after the backend accepted them.
package widget

import (
	"context"
	"sync"

	"github.com/RichardoC/chatwidget/internal/models"
	"github.com/RichardoC/chatwidget/internal/session"
	"github.com/RichardoC/chatwidget/internal/transport"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultConnectionError is shown when the backend cannot be reached.
const DefaultConnectionError = "Ошибка соединения. Попробуйте ещё раз."

var (
	// ErrBusy is returned by Submit while a reply is pending.
	ErrBusy = errors.New("a reply is still pending")
	// ErrRatingPending is returned while a rating for the same message is in flight.
	ErrRatingPending = errors.New("rating already being sent")
)

// Transport is the backend the controller talks to.
type Transport interface {
	Send(ctx context.Context, text string, settings models.Settings) (transport.Reply, error)
	SendRating(ctx context.Context, id string, rating models.Rating) error
}

// Turn is the result of one submission. Agent is the agent name the backend
// reported for the reply. Err is the delivery error behind a failed reply,
// if any.
type Turn struct {
	User  models.Message
	Reply models.Message
	Agent string
	Err   error
}

type Controller struct {
	session         *session.Session
	transport       Transport
	logger          *zap.Logger
	connectionError string

	mu      sync.Mutex
	busy    bool
	pending map[string]bool
}

type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithConnectionError overrides the text shown when the backend is unreachable.
func WithConnectionError(text string) Option {
	return func(c *Controller) { c.connectionError = text }
}

func New(s *session.Session, t Transport, opts ...Option) *Controller {
	c := &Controller{
		session:         s,
		transport:       t,
		logger:          zap.NewNop(),
		connectionError: DefaultConnectionError,
		pending:         make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Session() *session.Session {
	return c.session
}

// Busy reports whether input should be disabled.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Submit runs a full turn: the user message, the typing placeholder, the
// backend call and the reply. Blank input returns a nil Turn. Backend
// failures do not return an error; they complete the turn with an error
// reply.
func (c *Controller) Submit(ctx context.Context, text string) (*Turn, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.busy = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	if c.session.TurnInProgress() {
		return nil, session.ErrTurnInProgress
	}
	user, ok := c.session.SubmitUserMessage(text)
	if !ok {
		return nil, nil
	}
	if err := c.session.BeginBotTurn(); err != nil {
		return nil, err
	}

	settings := models.Settings{Language: user.Lang, Agent: user.Agent}
	reply, sendErr := c.transport.Send(ctx, user.Text, settings)

	var outcome session.Outcome
	if sendErr != nil {
		var backendErr *transport.BackendError
		if errors.As(sendErr, &backendErr) {
			outcome = session.Failed{DisplayText: backendErr.Message}
		} else {
			outcome = session.Failed{DisplayText: c.connectionError}
		}
		c.logger.Warn("Chat request failed",
			zap.Error(sendErr),
			zap.String("agent", settings.Agent),
			zap.String("language", settings.Language))
	} else {
		outcome = session.Answered{Text: reply.Text, ID: reply.ID}
	}

	bot, err := c.session.CompleteBotTurn(outcome)
	if err != nil {
		return nil, err
	}
	return &Turn{User: user, Reply: bot, Agent: reply.Agent, Err: sendErr}, nil
}

// Rate sends a rating to the backend and applies it locally once accepted.
// A failed send leaves the message unrated so the user can try again.
func (c *Controller) Rate(ctx context.Context, id string, rating models.Rating) (models.Message, error) {
	if !rating.Valid() {
		return models.Message{}, session.ErrInvalidRating
	}

	c.mu.Lock()
	if c.pending[id] {
		c.mu.Unlock()
		msg, _ := c.session.Message(id)
		return msg, ErrRatingPending
	}
	c.pending[id] = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	// Looked up under the claim: an earlier call has applied its rating by now.
	msg, ok := c.session.Message(id)
	if !ok {
		return models.Message{}, session.ErrNotFound
	}
	if msg.Rating != models.RatingNone {
		return msg, session.ErrAlreadyRated
	}
	if !msg.Rateable() {
		return msg, session.ErrNotFound
	}

	if err := c.transport.SendRating(ctx, id, rating); err != nil {
		c.logger.Warn("Failed to send rating",
			zap.Error(err),
			zap.String("id", id),
			zap.String("rating", string(rating)))
		return msg, errors.Wrap(err, "send rating")
	}
	return c.session.Rate(id, rating)
}

package session

import "github.com/pkg/errors"

var (
	// ErrNotFound is returned when no bot message carries the requested id.
	ErrNotFound = errors.New("message not found")
	// ErrAlreadyRated is returned when a rating was already applied to the message.
	ErrAlreadyRated = errors.New("message already rated")
	// ErrInvalidRating is returned for ratings other than like and dislike.
	ErrInvalidRating = errors.New("rating must be like or dislike")

	// ErrTurnInProgress is returned by BeginBotTurn while a typing placeholder exists.
	ErrTurnInProgress = errors.New("bot turn already in progress")
	// ErrNoTurn is returned by CompleteBotTurn when there is nothing to complete.
	ErrNoTurn = errors.New("no bot turn in progress")

	// ErrInvalidLanguage is returned by Config for languages other than ru, kz and en.
	ErrInvalidLanguage = errors.New("unsupported language")
	// ErrInvalidAgent is returned by Config for an empty or unknown agent.
	ErrInvalidAgent = errors.New("unknown agent")
)

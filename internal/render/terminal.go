// Package render turns session events into terminal output.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/RichardoC/chatwidget/internal/models"
	"github.com/RichardoC/chatwidget/internal/session"
	"github.com/charmbracelet/glamour"
	"github.com/pkg/errors"
)

// TypingIndicator is printed while a reply is pending.
const TypingIndicator = "Бот печатает..."

// DefaultSuggestions are offered while the history is empty.
var DefaultSuggestions = []string{
	"Как поступить в университет?",
	"Какие документы нужны для поступления?",
	"Сроки подачи документов",
	"Какие специальности доступны?",
	"Стоимость обучения",
	"Общежитие и проживание",
	"Стипендии и гранты",
	"Расписание занятий",
}

// Terminal writes one block per event. It implements session.Listener.
type Terminal struct {
	mu          sync.Mutex
	out         io.Writer
	md          *glamour.TermRenderer
	suggestions []string
}

type Option func(*Terminal) error

// WithMarkdown renders bot replies through glamour using the named style
// ("dark", "light", "notty", ...).
func WithMarkdown(style string, width int) Option {
	return func(t *Terminal) error {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return errors.Wrap(err, "markdown renderer")
		}
		t.md = r
		return nil
	}
}

func WithSuggestions(s []string) Option {
	return func(t *Terminal) error {
		t.suggestions = s
		return nil
	}
}

func NewTerminal(out io.Writer, opts ...Option) (*Terminal, error) {
	t := &Terminal{out: out, suggestions: DefaultSuggestions}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Terminal) OnEvent(e session.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e.Kind {
	case session.EventHistoryLoaded:
		for _, m := range e.History {
			t.write(t.Format(m))
		}
		t.writeSuggestions(e.History)
	case session.EventMessageAdded, session.EventTurnStarted, session.EventTurnCompleted:
		t.write(t.Format(e.Message))
	case session.EventRatingApplied:
		t.write(RatingMark(e.Message.Rating))
	case session.EventHistoryCleared:
		t.write("История очищена.")
		t.writeSuggestions(e.History)
	}
}

// Format renders a single message.
func (t *Terminal) Format(m models.Message) string {
	switch {
	case m.Typing:
		return "bot> " + TypingIndicator
	case m.Who == models.WhoUser:
		return "you> " + m.Text
	case m.Error:
		return "bot! " + m.Text
	}

	body := m.Text
	if t.md != nil {
		if rendered, err := t.md.Render(m.Text); err == nil {
			body = strings.Trim(rendered, "\n")
		}
	}
	var b strings.Builder
	b.WriteString("bot> ")
	b.WriteString(body)
	switch {
	case m.Rating != models.RatingNone:
		b.WriteString("\n     " + RatingMark(m.Rating))
	case m.ID != "":
		fmt.Fprintf(&b, "\n     [%s] /like %s  /dislike %s", m.ID, m.ID, m.ID)
	}
	return b.String()
}

// RatingMark is the acknowledgement shown for an applied rating.
func RatingMark(r models.Rating) string {
	if r == models.RatingLike {
		return "👍 Спасибо!"
	}
	return "👎 Принято"
}

func (t *Terminal) writeSuggestions(history []models.Message) {
	if len(history) != 0 || len(t.suggestions) == 0 {
		return
	}
	t.write("Попробуйте спросить:")
	for _, s := range t.suggestions {
		t.write("  • " + s)
	}
}

func (t *Terminal) write(s string) {
	fmt.Fprintln(t.out, s)
}

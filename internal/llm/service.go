package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// agentPrompts gives each selectable agent its role.
var agentPrompts = map[string]string{
	"ai_assistant":      "You are the university's general AI assistant. Answer questions about admission, studies and campus life.",
	"ai_navigator":      "You are AI-Navigator. Help applicants choose a programme and guide them through the admission steps and deadlines.",
	"student_navigator": "You are the student navigator. Help enrolled students with scholarships, dormitories, schedules and university services.",
	"green_navigator":   "You are Green Navigator. Answer questions about the university's sustainability initiatives and eco activities.",
	"communication":     "You are the communications assistant. Help with contacts, departments and official university announcements.",
}

var languageNames = map[string]string{
	"ru": "Russian",
	"kz": "Kazakh",
	"en": "English",
}

type Service struct {
	llm     llms.Model
	timeout time.Duration
}

func New(baseURL, token, model string, timeout time.Duration) (*Service, error) {
	llm, err := openai.New(
		openai.WithToken(token),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, err
	}
	return NewWithModel(llm, timeout), nil
}

// NewWithModel wraps an existing model, e.g. a fake in tests.
func NewWithModel(model llms.Model, timeout time.Duration) *Service {
	return &Service{llm: model, timeout: timeout}
}

// KnownAgent reports whether agent has a dedicated prompt.
func KnownAgent(agent string) bool {
	_, ok := agentPrompts[agent]
	return ok
}

// Answer asks the model to reply to message as the given agent, in language.
func (s *Service) Answer(ctx context.Context, message, agent, language string) (string, error) {
	prompt := BuildPrompt(message, agent, language)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	completion, err := llms.GenerateFromSinglePrompt(ctx, s.llm, prompt)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate completion")
	}
	return strings.TrimSpace(completion), nil
}

// BuildPrompt assembles the single prompt sent to the model. Unknown agents
// fall back to the general assistant.
func BuildPrompt(message, agent, language string) string {
	system, ok := agentPrompts[agent]
	if !ok {
		system = agentPrompts["ai_assistant"]
	}
	lang, ok := languageNames[language]
	if !ok {
		lang = languageNames["ru"]
	}

	var b strings.Builder
	b.WriteString(system)
	fmt.Fprintf(&b, "\nAlways answer in %s. Use Markdown for lists and emphasis.", lang)
	b.WriteString("\n\nUser message:\n")
	b.WriteString(message)
	b.WriteString("\n\nResponse:")
	return b.String()
}

package session

import (
	"sync"

	"github.com/RichardoC/chatwidget/internal/models"
	"github.com/pkg/errors"
)

// DefaultLanguage is used when no language is configured.
const DefaultLanguage = "ru"

// Languages lists the languages the backend answers in.
var Languages = []string{"ru", "kz", "en"}

// AgentSet reports whether an agent value is known.
type AgentSet interface {
	Has(value string) bool
}

// Config holds the user's current language and agent choice. It is created
// with the session and only changed through SetLanguage and SetAgent.
type Config struct {
	mu       sync.RWMutex
	agents   AgentSet
	language string
	agent    string
}

// NewConfig validates the initial language and agent. An empty language
// falls back to DefaultLanguage. A nil agent set accepts any non-empty agent.
func NewConfig(agents AgentSet, language, agent string) (*Config, error) {
	c := &Config{agents: agents}
	if language == "" {
		language = DefaultLanguage
	}
	if err := c.SetLanguage(language); err != nil {
		return nil, err
	}
	if err := c.SetAgent(agent); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Language() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.language
}

func (c *Config) Agent() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.agent
}

// SetLanguage switches the language used for new messages.
func (c *Config) SetLanguage(language string) error {
	if !validLanguage(language) {
		return errors.Wrapf(ErrInvalidLanguage, "%q", language)
	}
	c.mu.Lock()
	c.language = language
	c.mu.Unlock()
	return nil
}

// SetAgent switches the agent that answers new messages.
func (c *Config) SetAgent(agent string) error {
	if agent == "" || (c.agents != nil && !c.agents.Has(agent)) {
		return errors.Wrapf(ErrInvalidAgent, "%q", agent)
	}
	c.mu.Lock()
	c.agent = agent
	c.mu.Unlock()
	return nil
}

// Settings returns a snapshot suitable for a single backend call.
func (c *Config) Settings() models.Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return models.Settings{Language: c.language, Agent: c.agent}
}

func validLanguage(language string) bool {
	for _, l := range Languages {
		if l == language {
			return true
		}
	}
	return false
}

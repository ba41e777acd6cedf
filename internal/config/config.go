package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Client configures the terminal chat widget.
type Client struct {
	BackendURL     string        `env:"CHAT_BACKEND_URL" envDefault:"http://localhost:8100"`
	RequestTimeout time.Duration `env:"CHAT_REQUEST_TIMEOUT" envDefault:"60s"`

	// History persistence
	StoreDriver string `env:"CHAT_STORE_DRIVER" envDefault:"file"`
	StorePath   string `env:"CHAT_STORE_PATH"`
	RedisAddr   string `env:"CHAT_REDIS_ADDR" envDefault:"localhost:6379"`
	HistoryKey  string `env:"CHAT_HISTORY_KEY" envDefault:"bolashak_chat_history_v1"`

	// Session defaults
	Language   string `env:"CHAT_LANGUAGE" envDefault:"ru"`
	Agent      string `env:"CHAT_AGENT"`
	AgentsFile string `env:"CHAT_AGENTS_FILE"`

	// Shown in place of a reply when the backend cannot be reached.
	ConnectionError string `env:"CHAT_CONNECTION_ERROR"`

	StatusInterval time.Duration `env:"CHAT_STATUS_INTERVAL" envDefault:"15s"`
	MarkdownStyle  string        `env:"CHAT_MARKDOWN_STYLE" envDefault:"auto"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"warn"`
}

// Server configures the development backend.
type Server struct {
	Addr     string `env:"SERVER_ADDR" envDefault:":8100"`
	DBPath   string `env:"SERVER_DB_PATH" envDefault:"pad-i.db"`
	WebDir   string `env:"SERVER_WEB_DIR" envDefault:"web"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	OpenAIBaseURL string        `env:"OPENAI_BASE_URL" envDefault:"http://localhost:11434/v1/"`
	OpenAIAPIKey  string        `env:"OPENAI_API_KEY"`
	OpenAIModel   string        `env:"OPENAI_MODEL" envDefault:"llama3.1:8b"`
	LLMTimeout    time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`
}

// LoadClient reads the client configuration from the environment, after
// loading a .env file when one exists.
func LoadClient() (*Client, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	cfg := &Client{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse client config")
	}
	return cfg, nil
}

func LoadServer() (*Server, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	cfg := &Server{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse server config")
	}
	return cfg, nil
}

func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return errors.Wrap(godotenv.Load(), "load .env")
}

// NewLogger builds a production zap logger at the given level.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "log level %q", level)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

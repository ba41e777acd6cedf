package main

import (
	"fmt"
	"io"
	"os"

	"github.com/RichardoC/chatwidget/internal/config"
	"github.com/RichardoC/chatwidget/internal/selector"
	"github.com/RichardoC/chatwidget/internal/session"
	"github.com/RichardoC/chatwidget/internal/status"
	"github.com/RichardoC/chatwidget/internal/store"
	"github.com/RichardoC/chatwidget/internal/transport"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds what every subcommand needs.
type app struct {
	cfg     *config.Client
	logger  *zap.Logger
	catalog *selector.Catalog
	client  *transport.Client
}

func newApp() (*app, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	catalog := selector.Default()
	if cfg.AgentsFile != "" {
		if catalog, err = selector.Load(cfg.AgentsFile); err != nil {
			return nil, err
		}
	}

	client := transport.New(cfg.BackendURL,
		transport.WithTimeout(cfg.RequestTimeout),
		transport.WithLogger(logger))

	return &app{cfg: cfg, logger: logger, catalog: catalog, client: client}, nil
}

// openSession opens the configured history store and builds a session on
// it. The caller must close the returned closer.
func (a *app) openSession(opts ...session.Option) (*session.Session, io.Closer, error) {
	st, closer, err := store.Open(store.Options{
		Driver:    a.cfg.StoreDriver,
		Path:      a.cfg.StorePath,
		RedisAddr: a.cfg.RedisAddr,
		Key:       a.cfg.HistoryKey,
	})
	if err != nil {
		return nil, nil, err
	}

	agent := a.cfg.Agent
	if agent == "" {
		agent = a.catalog.First().Value
	}
	sc, err := session.NewConfig(a.catalog, a.cfg.Language, agent)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}

	opts = append([]session.Option{session.WithLogger(a.logger)}, opts...)
	return session.New(st, sc, opts...), closer, nil
}

func (a *app) monitor() *status.Monitor {
	return status.New(a.client, a.cfg.StatusInterval, status.WithLogger(a.logger))
}

func main() {
	var a *app

	root := &cobra.Command{
		Use:           "chatwidget",
		Short:         "Terminal client for the university chatbot",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.AddCommand(
		newChatCmd(&a),
		newHistoryCmd(&a),
		newClearCmd(&a),
		newStatusCmd(&a),
		newAgentsCmd(&a),
		newScheduleCmd(&a),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

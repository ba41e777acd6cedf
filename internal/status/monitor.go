// Package status tracks whether the chatbot backend is reachable.
package status

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultInterval matches the widget's polling period.
const DefaultInterval = 15 * time.Second

// Checker probes the backend.
type Checker interface {
	Health(ctx context.Context) error
}

// Monitor polls a Checker on a cron schedule and reports online/offline
// transitions.
type Monitor struct {
	checker  Checker
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	known     bool
	online    bool
	listeners []func(online bool)
}

type Option func(*Monitor)

func WithLogger(l *zap.Logger) Option {
	return func(m *Monitor) { m.logger = l }
}

// WithTimeout bounds each probe.
func WithTimeout(d time.Duration) Option {
	return func(m *Monitor) { m.timeout = d }
}

func New(checker Checker, interval time.Duration, opts ...Option) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Monitor{
		checker:  checker,
		interval: interval,
		timeout:  5 * time.Second,
		logger:   zap.NewNop(),
		cron:     cron.New(),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnChange registers fn to be called with the new state whenever it changes.
// The first probe always counts as a change.
func (m *Monitor) OnChange(fn func(online bool)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// Online returns the last observed state; false before the first probe.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Check probes the backend once and records the result.
func (m *Monitor) Check(ctx context.Context) bool {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	err := m.checker.Health(ctx)
	online := err == nil
	if err != nil {
		m.logger.Debug("Backend health check failed", zap.Error(err))
	}

	m.mu.Lock()
	changed := !m.known || m.online != online
	m.known = true
	m.online = online
	listeners := append([]func(online bool){}, m.listeners...)
	m.mu.Unlock()

	if changed {
		m.logger.Info("Backend status changed", zap.Bool("online", online))
		for _, fn := range listeners {
			fn(online)
		}
	}
	return online
}

// Start probes immediately and then every interval until Stop.
func (m *Monitor) Start() error {
	spec := fmt.Sprintf("@every %s", m.interval)
	if _, err := m.cron.AddFunc(spec, func() { m.Check(m.ctx) }); err != nil {
		return err
	}
	m.Check(m.ctx)
	m.cron.Start()
	return nil
}

// Stop halts polling and waits for a running probe to finish.
func (m *Monitor) Stop() {
	m.cancel()
	<-m.cron.Stop().Done()
}

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/crucial707/todo-api/internal/metrics"
	"github.com/robfig/cron/v3"
)

// Counter is satisfied by *repo.UserRepo and *repo.TodoRepo.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// StatsRefresher publishes row counts to the users/todos gauges.
type StatsRefresher struct {
	Users   Counter
	Todos   Counter
	Timeout time.Duration
	Logger  *slog.Logger
}

// Refresh reads both counts and updates the gauges. Gauges are left untouched on error.
func (s *StatsRefresher) Refresh(ctx context.Context) error {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	users, err := s.Users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	todos, err := s.Todos.Count(ctx)
	if err != nil {
		return fmt.Errorf("count todos: %w", err)
	}
	metrics.SetCounts(users, todos)
	return nil
}

// Start runs an initial refresh and then schedules Refresh on spec. The caller
// stops the returned cron on shutdown. An empty spec returns a nil cron.
func Start(spec string, s *StatsRefresher) (*cron.Cron, error) {
	if spec == "" {
		return nil, nil
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	run := func() {
		if err := s.Refresh(context.Background()); err != nil {
			logger.Warn("stats refresh failed", "err", err)
		}
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, run); err != nil {
		return nil, fmt.Errorf("scheduler: invalid cron spec %q: %w", spec, err)
	}

	run()
	c.Start()
	logger.Info("stats scheduler started", "cron", spec)
	return c, nil
}

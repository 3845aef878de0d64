// Package sweeper runs periodic housekeeping: expired sessions and stale
// rate-limit windows.
package sweeper

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SessionPurger deletes sessions past their expiry.
type SessionPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Cleaner drops in-memory state that has aged out.
type Cleaner interface {
	Cleanup()
}

type Sweeper struct {
	mu       sync.RWMutex
	sessions SessionPurger
	cleaners []Cleaner
	interval time.Duration
	logger   *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

func New(sessions SessionPurger, interval time.Duration, logger *slog.Logger, cleaners ...Cleaner) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		sessions: sessions,
		cleaners: cleaners,
		interval: interval,
		logger:   logger.With("component", "sweeper"),
	}
}

// Start runs one sweep immediately and then one per interval, until Stop
// or ctx is done.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.Sweep(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for it to exit.
func (s *Sweeper) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Sweeper) Sweep(ctx context.Context) {
	n, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		s.logger.Error("delete expired sessions", "error", err)
	} else if n > 0 {
		s.logger.Info("deleted expired sessions", "count", n)
	}
	for _, c := range s.cleaners {
		c.Cleanup()
	}
}

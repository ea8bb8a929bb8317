// Package reconnect decides whether a terminated session is replaced.
package reconnect

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/whonix/sdwdate-gui/internal/session"
)

// DefaultBackoff is the delay before a replacement session is built.
const DefaultBackoff = time.Second

// Runner is one session lifetime.
type Runner interface {
	Run(context.Context) session.Result
}

// Factory builds a fresh session for the next connection attempt.
type Factory func(context.Context) Runner

// Controller runs sessions one at a time and applies the reconnect policy.
type Controller struct {
	logger    *slog.Logger
	factory   Factory
	managedVM bool
	backoff   time.Duration

	suppressed atomic.Bool
	sessions   atomic.Int64

	after func(time.Duration) <-chan time.Time
}

// New builds a controller. Reconnection is only attempted when managedVM is
// true, since only there the server side is restarted independently of the
// client.
func New(managedVM bool, backoff time.Duration, factory Factory, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if backoff < 0 {
		backoff = 0
	}
	return &Controller{
		logger:    logger,
		factory:   factory,
		managedVM: managedVM,
		backoff:   backoff,
		after:     time.After,
	}
}

// Suppress forbids any further reconnection for the rest of the process.
func (c *Controller) Suppress() {
	if !c.suppressed.Swap(true) {
		c.logger.Info("server suppressed client reconnect")
	}
}

// Suppressed reports whether the server asked the client not to reconnect.
func (c *Controller) Suppressed() bool {
	return c.suppressed.Load()
}

// ShouldReconnect reports whether a terminated session is replaced.
func (c *Controller) ShouldReconnect() bool {
	return c.managedVM && !c.Suppressed()
}

// Sessions returns how many sessions have been constructed.
func (c *Controller) Sessions() int {
	return int(c.sessions.Load())
}

// Run blocks until the policy gives up or ctx ends. A nil return means the
// client should exit successfully.
func (c *Controller) Run(ctx context.Context) error {
	for {
		s := c.factory(ctx)
		n := c.sessions.Add(1)

		result := s.Run(ctx)
		c.logResult(n, result)

		if err := ctx.Err(); err != nil {
			return err
		}
		if !c.ShouldReconnect() {
			c.logger.Info("not reconnecting; exiting",
				"managed_vm", c.managedVM,
				"suppressed", c.Suppressed(),
			)
			return nil
		}

		c.logger.Info("reconnecting", "backoff_ms", c.backoff.Milliseconds())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.after(c.backoff):
		}
	}
}

func (c *Controller) logResult(n int64, result session.Result) {
	fields := []any{
		"attempt", n,
		"session", result.ID,
		"state", result.State,
		"reason", result.Reason,
		"handshake", result.Handshake.String(),
		"frames_dispatched", result.FramesDispatched,
		"reports_sent", result.ReportsSent,
		"duration_ms", result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
	}
	if result.Err != nil && result.Reason != session.ReasonLocal {
		c.logger.Warn("session ended", append(fields, "error", result.Err.Error())...)
		return
	}
	c.logger.Info("session ended", fields...)
}

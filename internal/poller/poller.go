// Package poller waits for a placed call to reach a terminal status and
// resolves its duration.
package poller

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ssasrajita121/DS-ai-WScaller/internal/metrics"
	"github.com/ssasrajita121/DS-ai-WScaller/internal/provider"
)

// Result is the outcome of one Poll. Snapshot is nil when Status is
// StatusTimedOut.
type Result struct {
	Status   Status
	Snapshot *provider.Call
	Polls    int
	Waited   time.Duration
}

// TimedOut reports whether the wait budget ran out.
func (r Result) TimedOut() bool {
	return r.Status == StatusTimedOut
}

// Poller queries call status at a fixed interval until a terminal status is
// observed or MaxWait elapses.
type Poller struct {
	client   provider.Client
	interval time.Duration
	maxWait  time.Duration
	clock    Clock
	logger   *zap.Logger
}

// Option configures a Poller.
type Option func(*Poller)

// WithClock sets the time source.
func WithClock(c Clock) Option {
	return func(p *Poller) { p.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Poller) { p.logger = l }
}

// New creates a Poller.
func New(client provider.Client, interval, maxWait time.Duration, opts ...Option) *Poller {
	p := &Poller{
		client:   client,
		interval: interval,
		maxWait:  maxWait,
		clock:    RealClock{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Poll blocks until callID reaches a terminal status or the wait budget
// elapses. Query errors are logged and polling continues against the same
// deadline. Context cancellation ends the wait as a timeout.
func (p *Poller) Poll(ctx context.Context, callID string) Result {
	start := p.clock.Now()
	deadline := start.Add(p.maxWait)
	log := p.logger.With(zap.String("call_id", callID))

	res := Result{Status: StatusTimedOut}
	defer func() {
		res.Waited = p.clock.Now().Sub(start)
		metrics.PollWait.Observe(res.Waited.Seconds())
	}()

	for {
		if ctx.Err() != nil || !p.clock.Now().Before(deadline) {
			log.Warn("call did not reach a terminal status in time",
				zap.Int("attempts", res.Polls),
				zap.Duration("max_wait", p.maxWait))
			return res
		}

		res.Polls++
		metrics.PollAttempts.Inc()
		call, err := p.client.GetCall(ctx, callID)
		switch {
		case err != nil:
			log.Warn("status query failed, retrying", zap.Int("attempt", res.Polls), zap.Error(err))
		default:
			status := Status(call.Status)
			log.Debug("call status", zap.Int("attempt", res.Polls), zap.String("status", call.Status))
			if status.IsTerminal() {
				res.Status = status
				res.Snapshot = call
				return res
			}
		}

		wait := p.interval
		if remaining := deadline.Sub(p.clock.Now()); remaining < wait {
			wait = remaining
		}
		if wait <= 0 {
			continue
		}
		if err := p.clock.Sleep(ctx, wait); err != nil {
			log.Warn("polling cancelled", zap.Error(err))
			return res
		}
	}
}

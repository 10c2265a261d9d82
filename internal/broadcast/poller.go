// Package broadcast streams auction snapshots to viewers by re-reading the
// auction row on a fixed interval, and early whenever the hub reports a
// mutation.
package broadcast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/cricket-auction-backend/internal/metrics"
	"github.com/DoyleJ11/cricket-auction-backend/internal/models"
	"github.com/DoyleJ11/cricket-auction-backend/internal/store"
)

var ErrSustainedFailure = errors.New("snapshot reads kept failing")

// Source reads the auction matching both ids with its tournament loaded.
type Source interface {
	GetAuctionSnapshot(ctx context.Context, tournamentID, auctionID string) (*models.Auction, error)
}

// Snapshot is one pushed event. Payload is nil when no auction matches.
type Snapshot struct {
	Payload *models.Auction `json:"payload"`
}

// SendFunc delivers a snapshot to the viewer. An error ends the loop.
type SendFunc func(ctx context.Context, snap Snapshot) error

type Policy struct {
	Interval    time.Duration
	MaxBackoff  time.Duration
	MaxFailures int
}

func DefaultPolicy() Policy {
	return Policy{Interval: 2 * time.Second, MaxBackoff: 30 * time.Second, MaxFailures: 5}
}

// backoff returns the wait after the given number of consecutive failures.
func (p Policy) backoff(failures int) time.Duration {
	d := p.Interval
	for i := 1; i < failures && (p.MaxBackoff <= 0 || d < p.MaxBackoff); i++ {
		d *= 2
	}
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		d = p.MaxBackoff
	}
	return d
}

type Poller struct {
	src     Source
	hub     *Hub
	policy  Policy
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewPoller(src Source, hub *Hub, policy Policy, log *zap.Logger, m *metrics.Metrics) *Poller {
	if log == nil {
		log = zap.NewNop()
	}
	if policy.Interval <= 0 {
		policy.Interval = DefaultPolicy().Interval
	}
	return &Poller{src: src, hub: hub, policy: policy, log: log, metrics: m}
}

// Run reads and sends a full snapshot right away, then again after every
// interval or wake, until ctx is cancelled or send fails. A read that finds
// no auction sends a null payload. Wakes are dropped while reads are
// failing and the loop is backing off.
func (p *Poller) Run(ctx context.Context, tournamentID, auctionID string, send SendFunc) error {
	var wake <-chan struct{}
	if p.hub != nil {
		w, leave := p.hub.Subscribe(auctionID)
		defer leave()
		wake = w
	}

	log := p.log.With(zap.String("tournamentId", tournamentID), zap.String("auctionId", auctionID))
	failures := 0
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		case _, ok := <-wake:
			if !ok {
				wake = nil
				continue
			}
			if failures > 0 {
				// backing off; the timer decides the next read
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		a, err := p.src.GetAuctionSnapshot(ctx, tournamentID, auctionID)
		switch {
		case ctx.Err() != nil:
			return nil
		case err != nil && !errors.Is(err, store.ErrNotFound):
			failures++
			p.metrics.PollError()
			log.Warn("snapshot read failed", zap.Error(err), zap.Int("consecutiveFailures", failures))
			if p.policy.MaxFailures > 0 && failures >= p.policy.MaxFailures {
				log.Error("giving up on snapshot stream", zap.Int("consecutiveFailures", failures))
				return fmt.Errorf("%w: %w", ErrSustainedFailure, err)
			}
			timer.Reset(p.policy.backoff(failures))
			continue
		}

		failures = 0
		if err := send(ctx, Snapshot{Payload: a}); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		timer.Reset(p.policy.Interval)
	}
}

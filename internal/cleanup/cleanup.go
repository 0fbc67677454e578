// Package cleanup removes lobbies nobody started within the TTL.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DoyleJ11/live-draft-backend/internal/store"
	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Deleter removes a draft only if it is still a LOBBY created before
// cutoff at the moment its room handles the request.
type Deleter interface {
	DeleteIfStale(ctx context.Context, id string, cutoff time.Time) (bool, error)
}

type Cleaner struct {
	store  store.Store
	drafts Deleter
	clock  clockwork.Clock
	ttl    time.Duration
	log    *zap.Logger
	sched  gocron.Scheduler
}

func New(st store.Store, drafts Deleter, clock clockwork.Clock, ttl time.Duration, log *zap.Logger) *Cleaner {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cleaner{store: st, drafts: drafts, clock: clock, ttl: ttl, log: log}
}

// Run deletes every LOBBY draft created more than ttl ago, together with
// its participants and picks, and closes its room. A draft that fails to
// delete is logged and skipped; the failures are returned joined. It
// returns how many drafts were removed.
func (c *Cleaner) Run(ctx context.Context) (int, error) {
	cutoff := c.clock.Now().Add(-c.ttl)
	stale, err := c.store.ListStaleLobbies(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list stale lobbies: %w", err)
	}

	removed := 0
	var errs []error
	for _, d := range stale {
		deleted, err := c.drafts.DeleteIfStale(ctx, d.ID, cutoff)
		if err != nil {
			c.log.Error("delete stale lobby failed", zap.String("draft_id", d.ID), zap.Error(err))
			errs = append(errs, fmt.Errorf("delete draft %s: %w", d.ID, err))
			continue
		}
		if !deleted {
			continue
		}
		removed++
		c.log.Info("deleted stale lobby",
			zap.String("draft_id", d.ID),
			zap.String("draft_name", d.Name),
			zap.Time("created_at", d.CreatedAt))
	}
	return removed, errors.Join(errs...)
}

// Start runs the cleanup every interval until ctx ends or Stop is called.
func (c *Cleaner) Start(ctx context.Context, interval time.Duration) error {
	s, err := gocron.NewScheduler(gocron.WithClock(c.clock))
	if err != nil {
		return fmt.Errorf("new scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			n, err := c.Run(ctx)
			if err != nil {
				c.log.Error("stale lobby cleanup failed", zap.Int("deleted", n), zap.Error(err))
				return
			}
			if n > 0 {
				c.log.Info("stale lobby cleanup finished", zap.Int("deleted", n))
			}
		}),
		gocron.WithName("stale-lobby-cleanup"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("schedule cleanup: %w", err)
	}
	c.sched = s
	s.Start()
	return nil
}

func (c *Cleaner) Stop() error {
	if c.sched == nil {
		return nil
	}
	return c.sched.Shutdown()
}

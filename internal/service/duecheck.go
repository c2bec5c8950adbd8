package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ihirwe/event-locator/internal/domain"
	"github.com/ihirwe/event-locator/internal/notify"
	"github.com/ihirwe/event-locator/internal/store"
	"github.com/jonboulle/clockwork"
)

// DueChecker periodically classifies events and publishes a notification the
// first time an event is seen as due or overdue. The dedupe set is held in
// memory, so a restart may re-announce events that are still due.
type DueChecker struct {
	store     store.EventStore
	publisher notify.Publisher
	clock     clockwork.Clock
	interval  time.Duration
	logger    *slog.Logger

	mu       sync.Mutex
	notified map[string]domain.EventStatus
}

func NewDueChecker(
	st store.EventStore,
	publisher notify.Publisher,
	clock clockwork.Clock,
	interval time.Duration,
	logger *slog.Logger,
) *DueChecker {
	return &DueChecker{
		store:     st,
		publisher: publisher,
		clock:     clock,
		interval:  interval,
		logger:    logger,
		notified:  make(map[string]domain.EventStatus),
	}
}

// Run checks immediately, then on every tick until the context is cancelled.
func (c *DueChecker) Run(ctx context.Context) error {
	c.logger.Info("due checker started", "interval", c.interval)

	if err := c.CheckOnce(ctx); err != nil && ctx.Err() == nil {
		c.logger.Error("due check failed", "error", err)
	}

	ticker := c.clock.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("due checker stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			if err := c.CheckOnce(ctx); err != nil && ctx.Err() == nil {
				c.logger.Error("due check failed", "error", err)
			}
		}
	}
}

// CheckOnce classifies every event and publishes transitions into due or
// overdue that have not been announced yet.
func (c *DueChecker) CheckOnce(ctx context.Context) error {
	events, err := c.store.FindMany(ctx, store.Filter{}, store.SortByStartTime)
	if err != nil {
		return err
	}

	now := c.clock.Now().UTC()
	for _, ev := range events {
		status := domain.ClassifyStatus(ev.StartTime, now)
		if status == domain.StatusPending || !c.markNotified(ev.ID, status) {
			continue
		}

		ev.Status = status
		if err := c.publisher.Publish(ctx, notify.For(ev)); err != nil {
			c.logger.Warn("publish status notification failed", "event_id", ev.ID, "status", status, "error", err)
			c.unmark(ev.ID)
		}
	}
	return nil
}

// markNotified records the (event, status) pair and reports whether it was
// new.
func (c *DueChecker) markNotified(id string, status domain.EventStatus) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.notified[id] == status {
		return false
	}
	c.notified[id] = status
	return true
}

func (c *DueChecker) unmark(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.notified, id)
}

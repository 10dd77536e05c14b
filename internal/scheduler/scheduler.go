// Package scheduler periodically advances campaign statuses and announces the changes.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"admin_dashboard/internal/model"
	"admin_dashboard/internal/recency"
	"admin_dashboard/internal/storage"
)

// Sender is the interface for sending chat messages.
type Sender interface {
	SendMessage(chatID int64, text string)
}

// Event names a campaign status transition.
type Event string

// Campaign events.
const (
	EventOpened    Event = "CAMPAIGN_OPENED"
	EventCompleted Event = "CAMPAIGN_COMPLETED"
	EventClosed    Event = "CAMPAIGN_CLOSED"
	EventReopened  Event = "CAMPAIGN_REOPENED"
)

// Scheduler periodically checks campaigns and moves them through their lifecycle.
type Scheduler struct {
	store  storage.Storage
	sender Sender
	chatID int64
	clock  recency.Clock
	log    *slog.Logger
	tick   time.Duration
}

// New creates a Scheduler. Notifications go to chatID through sender; a nil sender or
// a zero chatID disables them.
func New(store storage.Storage, sender Sender, chatID int64, log *slog.Logger) *Scheduler {
	return &Scheduler{
		store:  store,
		sender: sender,
		chatID: chatID,
		clock:  recency.SystemClock{},
		log:    log,
		tick:   1 * time.Minute,
	}
}

// SetTickInterval overrides the default 1-minute check interval.
func (s *Scheduler) SetTickInterval(d time.Duration) {
	s.tick = d
}

// SetClock overrides the wall clock.
func (s *Scheduler) SetClock(c recency.Clock) {
	s.clock = c
}

// Run starts the scheduler loop, blocking until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.checkAll(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAll(ctx)
		}
	}
}

func (s *Scheduler) checkAll(ctx context.Context) {
	campaigns, err := s.store.ListCampaigns(ctx)
	if err != nil {
		s.log.Error("list campaigns", "error", err)
		return
	}

	s.log.Debug("checking campaign statuses", "count", len(campaigns))

	now := s.clock.Now()
	for _, c := range campaigns {
		if ctx.Err() != nil {
			return
		}
		s.processCampaign(ctx, c, now)
	}
}

func (s *Scheduler) processCampaign(ctx context.Context, c model.Campaign, now time.Time) {
	next, event, ok := NextStatus(c, now)
	if !ok {
		return
	}

	if err := s.store.UpdateCampaignStatus(ctx, c.ID, next); err != nil {
		s.log.Error("update campaign status", "campaign_id", c.ID, "error", err)
		return
	}
	s.log.Info("campaign status changed",
		"campaign_id", c.ID,
		"from", c.Status,
		"to", next,
		"event", event,
	)

	if s.sender != nil && s.chatID != 0 {
		c.Status = next
		s.sender.SendMessage(s.chatID, FormatEvent(c, event))
	}
}

// NextStatus returns the status c moves to at now, or ok=false when it stays put.
func NextStatus(c model.Campaign, now time.Time) (model.CampaignStatus, Event, bool) {
	started := !now.Before(c.StartTime)
	switch c.Status {
	case model.CampaignCreated:
		if started {
			return model.CampaignOpen, EventOpened, true
		}
	case model.CampaignOpen:
		if c.Donated >= c.Goal {
			return model.CampaignComplete, EventCompleted, true
		}
	case model.CampaignComplete:
		if !now.Before(c.EndTime) {
			return model.CampaignClosed, EventClosed, true
		}
	case model.CampaignClosed:
		if started && c.DonatedPercent() < 100 {
			return model.CampaignOpen, EventReopened, true
		}
	}
	return c.Status, "", false
}

// FormatEvent renders the announcement of a campaign transition.
func FormatEvent(c model.Campaign, event Event) string {
	var what string
	switch event {
	case EventOpened:
		what = "is now open for donations"
	case EventCompleted:
		what = "has reached its goal"
	case EventClosed:
		what = "has closed"
	case EventReopened:
		what = "has reopened"
	default:
		what = "changed status"
	}
	return fmt.Sprintf("Campaign #%d \"%s\" %s.\nStatus: %s\nDonated: %d%% of %d\nEnds: %s",
		c.ID, c.Name, what, c.Status, c.DonatedPercent(), c.Goal,
		c.EndTime.UTC().Format("2006-01-02 15:04 UTC"))
}

package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"admin_dashboard/internal/model"
	"admin_dashboard/internal/storage"
)

type sentMessage struct {
	ChatID int64
	Text   string
}

type mockSender struct {
	mu       sync.Mutex
	messages []sentMessage
}

func (m *mockSender) SendMessage(chatID int64, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, sentMessage{ChatID: chatID, Text: text})
}

func (m *mockSender) getMessages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]sentMessage, len(m.messages))
	copy(cp, m.messages)
	return cp
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

func newTestStore(t *testing.T) *storage.SQLite {
	t.Helper()
	s, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

var (
	now   = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	past  = now.Add(-48 * time.Hour)
	later = now.Add(48 * time.Hour)
)

func TestNextStatus(t *testing.T) {
	tests := []struct {
		name      string
		campaign  model.Campaign
		want      model.CampaignStatus
		wantEvent Event
		wantOK    bool
	}{
		{
			name:     "created before start",
			campaign: model.Campaign{Status: model.CampaignCreated, Goal: 100, StartTime: later, EndTime: later},
			want:     model.CampaignCreated,
		},
		{
			name:      "created at start",
			campaign:  model.Campaign{Status: model.CampaignCreated, Goal: 100, StartTime: now, EndTime: later},
			want:      model.CampaignOpen,
			wantEvent: EventOpened,
			wantOK:    true,
		},
		{
			name:     "open below goal",
			campaign: model.Campaign{Status: model.CampaignOpen, Goal: 100, Donated: 99, StartTime: past, EndTime: later},
			want:     model.CampaignOpen,
		},
		{
			name:      "open reaching goal",
			campaign:  model.Campaign{Status: model.CampaignOpen, Goal: 100, Donated: 100, StartTime: past, EndTime: later},
			want:      model.CampaignComplete,
			wantEvent: EventCompleted,
			wantOK:    true,
		},
		{
			name:      "open without goal completes",
			campaign:  model.Campaign{Status: model.CampaignOpen, StartTime: past, EndTime: later},
			want:      model.CampaignComplete,
			wantEvent: EventCompleted,
			wantOK:    true,
		},
		{
			name:     "complete before end",
			campaign: model.Campaign{Status: model.CampaignComplete, Goal: 100, Donated: 100, StartTime: past, EndTime: later},
			want:     model.CampaignComplete,
		},
		{
			name:      "complete after end",
			campaign:  model.Campaign{Status: model.CampaignComplete, Goal: 100, Donated: 100, StartTime: past, EndTime: past},
			want:      model.CampaignClosed,
			wantEvent: EventClosed,
			wantOK:    true,
		},
		{
			name:      "closed below goal reopens",
			campaign:  model.Campaign{Status: model.CampaignClosed, Goal: 100, Donated: 40, StartTime: past, EndTime: past},
			want:      model.CampaignOpen,
			wantEvent: EventReopened,
			wantOK:    true,
		},
		{
			name:     "closed at goal stays closed",
			campaign: model.Campaign{Status: model.CampaignClosed, Goal: 100, Donated: 150, StartTime: past, EndTime: past},
			want:     model.CampaignClosed,
		},
		{
			name:     "closed before start stays closed",
			campaign: model.Campaign{Status: model.CampaignClosed, Goal: 100, StartTime: later, EndTime: later},
			want:     model.CampaignClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, event, ok := NextStatus(tt.campaign, now)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("status mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantEvent, event); diff != "" {
				t.Errorf("event mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantOK, ok); diff != "" {
				t.Errorf("ok mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormatEvent(t *testing.T) {
	c := model.Campaign{
		ID:      3,
		Name:    "Clean water",
		Status:  model.CampaignOpen,
		Goal:    1000,
		Donated: 250,
		EndTime: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	want := "Campaign #3 \"Clean water\" is now open for donations.\n" +
		"Status: open\n" +
		"Donated: 25% of 1000\n" +
		"Ends: 2024-06-01 00:00 UTC"
	if diff := cmp.Diff(want, FormatEvent(c, EventOpened)); diff != "" {
		t.Errorf("FormatEvent mismatch (-want +got):\n%s", diff)
	}
}

func seedCampaigns(t *testing.T, store *storage.SQLite) (starting, funded, future model.Campaign) {
	t.Helper()
	ctx := context.Background()

	starting = model.Campaign{Name: "Starting", Goal: 100, StartTime: past, EndTime: later}
	funded = model.Campaign{Name: "Funded", Status: model.CampaignOpen, Goal: 100, StartTime: past, EndTime: later}
	future = model.Campaign{Name: "Future", Goal: 100, StartTime: later, EndTime: later.Add(time.Hour)}
	for _, c := range []*model.Campaign{&starting, &funded, &future} {
		if err := store.CreateCampaign(ctx, c); err != nil {
			t.Fatalf("create campaign: %v", err)
		}
	}

	d := model.Donation{CampaignID: funded.ID, Amount: 120, Confirmed: true}
	if err := store.CreateDonation(ctx, &d); err != nil {
		t.Fatalf("create donation: %v", err)
	}
	return starting, funded, future
}

func TestSchedulerAdvancesCampaigns(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	starting, funded, future := seedCampaigns(t, store)

	sender := &mockSender{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sched := New(store, sender, 42, log)
	sched.SetClock(fixedClock(now))
	sched.checkAll(ctx)

	wantStatus := map[int64]model.CampaignStatus{
		starting.ID: model.CampaignOpen,
		funded.ID:   model.CampaignComplete,
		future.ID:   model.CampaignCreated,
	}
	for id, want := range wantStatus {
		c, err := store.GetCampaign(ctx, id)
		if err != nil {
			t.Fatalf("get campaign: %v", err)
		}
		if diff := cmp.Diff(want, c.Status); diff != "" {
			t.Errorf("campaign %d status mismatch (-want +got):\n%s", id, diff)
		}
	}

	msgs := sender.getMessages()
	if diff := cmp.Diff(2, len(msgs)); diff != "" {
		t.Fatalf("message count mismatch (-want +got):\n%s", diff)
	}
	for _, m := range msgs {
		if diff := cmp.Diff(int64(42), m.ChatID); diff != "" {
			t.Errorf("chatID mismatch (-want +got):\n%s", diff)
		}
	}

	// A second pass moves nothing further: the opened campaign is still unfunded.
	sched.checkAll(ctx)
	if diff := cmp.Diff(2, len(sender.getMessages())); diff != "" {
		t.Errorf("message count after second pass (-want +got):\n%s", diff)
	}
}

func TestSchedulerWithoutChatOnlyUpdates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	starting, _, _ := seedCampaigns(t, store)

	sender := &mockSender{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sched := New(store, sender, 0, log)
	sched.SetClock(fixedClock(now))
	sched.checkAll(ctx)

	c, err := store.GetCampaign(ctx, starting.ID)
	if err != nil {
		t.Fatalf("get campaign: %v", err)
	}
	if c.Status != model.CampaignOpen {
		t.Errorf("status = %q, want open", c.Status)
	}
	if n := len(sender.getMessages()); n != 0 {
		t.Errorf("expected no messages, got %d", n)
	}
}

func TestSchedulerRunStopsOnCancel(t *testing.T) {
	store := newTestStore(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sched := New(store, nil, 0, log)
	sched.SetTickInterval(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

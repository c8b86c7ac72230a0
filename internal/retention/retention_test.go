package retention

import (
	"context"
	"testing"
	"time"

	"chatsim/pkg/config"
	"chatsim/pkg/models"
	"chatsim/pkg/store"
)

func seeded(t *testing.T) (*store.Store, string, int) {
	t.Helper()
	s := store.New(nil)
	c := s.CreateDirect("Alex", "alex")
	for i := 0; i < 5; i++ {
		if _, err := s.AppendMessage(c.ID, models.Me, store.Body{Text: "msg"}, 0); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return s, c.ID, 5
}

func TestRunOncePurgesOldMessages(t *testing.T) {
	s, convID, _ := seeded(t)

	// A negative period puts the cutoff in the future, so every message
	// qualifies as expired.
	if err := RunOnce(context.Background(), s, config.RetentionConfig{}, -time.Second); err != nil {
		t.Fatalf("run once: %v", err)
	}
	conv, err := s.Conversation(convID)
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}
	if len(conv.Messages) != 0 {
		t.Fatalf("expected all messages purged, %d remain", len(conv.Messages))
	}
}

func TestRunOnceRetainsRecentMessages(t *testing.T) {
	s, convID, n := seeded(t)

	if err := RunOnce(context.Background(), s, config.RetentionConfig{}, time.Hour); err != nil {
		t.Fatalf("run once: %v", err)
	}
	conv, _ := s.Conversation(convID)
	if len(conv.Messages) != n {
		t.Fatalf("recent messages purged: %d of %d remain", len(conv.Messages), n)
	}
}

func TestRunOnceDryRun(t *testing.T) {
	s, convID, n := seeded(t)

	cfg := config.RetentionConfig{DryRun: true}
	if err := RunOnce(context.Background(), s, cfg, -time.Second); err != nil {
		t.Fatalf("run once: %v", err)
	}
	conv, _ := s.Conversation(convID)
	if len(conv.Messages) != n {
		t.Fatalf("dry run deleted messages: %d of %d remain", len(conv.Messages), n)
	}
}

func TestStartDisabled(t *testing.T) {
	cancel, err := Start(context.Background(), store.New(nil), config.RetentionConfig{})
	if err != nil {
		t.Fatalf("disabled retention should start cleanly: %v", err)
	}
	cancel()
}

func TestStartRejectsBadConfig(t *testing.T) {
	s := store.New(nil)
	if _, err := Start(context.Background(), s, config.RetentionConfig{Enabled: true, Period: "not-a-duration"}); err == nil {
		t.Fatalf("expected error for invalid period")
	}
	if _, err := Start(context.Background(), s, config.RetentionConfig{Enabled: true, Period: "24h", Cron: "bogus"}); err == nil {
		t.Fatalf("expected error for invalid cron expression")
	}
}

func TestStartValidConfig(t *testing.T) {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	cancel, err := Start(ctx, store.New(nil), config.RetentionConfig{Enabled: true, Period: "24h"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	cancel()
}

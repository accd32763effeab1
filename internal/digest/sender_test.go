package digest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"rss_digest/internal/model"
	"rss_digest/internal/storage"
)

type fakeNotifier struct {
	mu       sync.Mutex
	err      error
	messages []string
}

func (f *fakeNotifier) Send(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeNotifier) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeNotifier) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

func newTestStore(t *testing.T) *storage.SQLite {
	t.Helper()
	s, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestSender(t *testing.T) (*Sender, *storage.SQLite, *fakeNotifier) {
	t.Helper()
	store := newTestStore(t)
	notifier := &fakeNotifier{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	schedule := Schedule{Location: utcMinus3, Hour: 20, Minute: 0}
	return NewSender(store, notifier, schedule, 20, log), store, notifier
}

func isSent(t *testing.T, store *storage.SQLite, dateKey string) bool {
	t.Helper()
	sent, err := store.IsDigestSent(context.Background(), dateKey)
	if err != nil {
		t.Fatalf("is sent: %v", err)
	}
	return sent
}

func TestSendIfDueBeforeTime(t *testing.T) {
	ctx := context.Background()
	sender, store, notifier := newTestSender(t)

	sent, err := sender.SendIfDue(ctx, time.Date(2026, 5, 10, 19, 59, 0, 0, utcMinus3))
	if err != nil {
		t.Fatalf("send if due: %v", err)
	}
	if sent {
		t.Error("digest should not be sent before 20:00")
	}
	if len(notifier.sent()) != 0 {
		t.Error("notifier should not be called")
	}
	if isSent(t, store, "2026-05-10") {
		t.Error("day should still be pending")
	}
}

func TestSendIfDueOncePerDay(t *testing.T) {
	ctx := context.Background()
	sender, store, notifier := newTestSender(t)

	if err := store.AddDigestItem(ctx, model.DigestItem{
		EntryID: "e1", DateKey: "2026-05-10", Title: "Promo Miami", Link: "https://a.com/1", Source: "a.com",
	}); err != nil {
		t.Fatalf("add item: %v", err)
	}

	sent, err := sender.SendIfDue(ctx, time.Date(2026, 5, 10, 20, 0, 0, 0, utcMinus3))
	if err != nil {
		t.Fatalf("send if due: %v", err)
	}
	if !sent {
		t.Fatal("digest should be sent at 20:00")
	}

	sent, err = sender.SendIfDue(ctx, time.Date(2026, 5, 10, 20, 1, 0, 0, utcMinus3))
	if err != nil {
		t.Fatalf("send if due: %v", err)
	}
	if sent {
		t.Error("digest should not be sent twice on the same day")
	}

	msgs := notifier.sent()
	if diff := cmp.Diff(1, len(msgs)); diff != "" {
		t.Fatalf("message count mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(msgs[0], "Promo Miami") {
		t.Errorf("digest should list the item:\n%s", msgs[0])
	}
	if !isSent(t, store, "2026-05-10") {
		t.Error("day should be marked sent")
	}

	// A new day starts pending.
	sent, err = sender.SendIfDue(ctx, time.Date(2026, 5, 11, 20, 30, 0, 0, utcMinus3))
	if err != nil {
		t.Fatalf("send if due: %v", err)
	}
	if !sent {
		t.Error("next day's digest should be sent")
	}
}

func TestSendFailureLeavesDayPending(t *testing.T) {
	ctx := context.Background()
	sender, store, notifier := newTestSender(t)
	now := time.Date(2026, 5, 10, 20, 15, 0, 0, utcMinus3)

	notifier.fail(errors.New("telegram: bad gateway"))

	sent, err := sender.SendIfDue(ctx, now)
	if err == nil {
		t.Fatal("expected delivery error")
	}
	if sent {
		t.Error("failed delivery must not report sent")
	}
	if isSent(t, store, "2026-05-10") {
		t.Fatal("failed delivery must not mark the day sent")
	}

	// The next cycle retries.
	notifier.fail(nil)
	sent, err = sender.SendIfDue(ctx, now.Add(15*time.Minute))
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !sent {
		t.Fatal("retry should deliver the digest")
	}
	if !isSent(t, store, "2026-05-10") {
		t.Error("day should be marked sent after retry")
	}
}

func TestSendEmptyDay(t *testing.T) {
	ctx := context.Background()
	sender, store, notifier := newTestSender(t)

	if err := sender.Send(ctx, "2026-05-10"); err != nil {
		t.Fatalf("send: %v", err)
	}

	msgs := notifier.sent()
	if diff := cmp.Diff(1, len(msgs)); diff != "" {
		t.Fatalf("message count mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(msgs[0], "No relevant promotions found today.") {
		t.Errorf("expected empty-day notice:\n%s", msgs[0])
	}
	if !isSent(t, store, "2026-05-10") {
		t.Error("empty day should still be marked sent")
	}
}

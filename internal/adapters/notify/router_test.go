package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/geniusbot/core/internal/domain"
)

type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent []string
}

func (f *fakeSender) Send(_ context.Context, channelHandle, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, channelHandle+":"+text)
	return nil
}

type fakeQueue struct {
	mu        sync.Mutex
	byAccount map[string][]domain.Notification
}

func (f *fakeQueue) Push(_ context.Context, notification domain.Notification, cap int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	queue := append(f.byAccount[notification.AccountID], notification)
	if cap > 0 && len(queue) > cap {
		queue = queue[len(queue)-cap:]
	}
	f.byAccount[notification.AccountID] = queue
	return nil
}

func (f *fakeQueue) ListFor(_ context.Context, accountID string) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Notification(nil), f.byAccount[accountID]...), nil
}

func (f *fakeQueue) MarkRead(context.Context, string, []string) (int64, error) { return 0, nil }

func (f *fakeQueue) CountUnread(_ context.Context, accountID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byAccount[accountID]), nil
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{byAccount: map[string][]domain.Notification{}}
}

func TestNotifyPrefersPrimaryChannel(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	queue := newFakeQueue()
	router := NewRouter(sender, queue, 5, nil)

	account := domain.Account{ID: "ACC1", LinkedChannelID: "555001"}
	router.Notify(context.Background(), account, domain.NotifyCredits, "credits granted")

	if len(sender.sent) != 1 {
		t.Fatalf("expected primary delivery, got %v", sender.sent)
	}
	if queued, _ := queue.ListFor(context.Background(), "ACC1"); len(queued) != 0 {
		t.Fatalf("delivered message must not be queued, got %v", queued)
	}
}

func TestNotifyFallsBackOnSendFailure(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{err: errors.New("chat unreachable")}
	queue := newFakeQueue()
	router := NewRouter(sender, queue, 5, nil)

	account := domain.Account{ID: "ACC2", LinkedChannelID: "555002"}
	router.Notify(context.Background(), account, domain.NotifyPurchase, "purchase approved")

	queued, _ := queue.ListFor(context.Background(), "ACC2")
	if len(queued) != 1 {
		t.Fatalf("failed send must queue the notification, got %v", queued)
	}
	if queued[0].Kind != domain.NotifyPurchase || queued[0].Message != "purchase approved" {
		t.Fatalf("queued notification malformed: %+v", queued[0])
	}
}

func TestNotifyQueuesWhenNoChannelLinked(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	queue := newFakeQueue()
	router := NewRouter(sender, queue, 5, nil)

	account := domain.Account{ID: "ACC3"}
	router.Notify(context.Background(), account, domain.NotifyInfo, "hello")

	if len(sender.sent) != 0 {
		t.Fatalf("no channel, nothing should be sent: %v", sender.sent)
	}
	if queued, _ := queue.ListFor(context.Background(), "ACC3"); len(queued) != 1 {
		t.Fatalf("expected queued fallback, got %v", queued)
	}
}

func TestFallbackQueueDropsOldestBeyondCap(t *testing.T) {
	t.Parallel()

	queue := newFakeQueue()
	router := NewRouter(nil, queue, 3, nil)

	account := domain.Account{ID: "ACC4"}
	for _, message := range []string{"one", "two", "three", "four", "five"} {
		router.Notify(context.Background(), account, domain.NotifyInfo, message)
	}

	queued, _ := queue.ListFor(context.Background(), "ACC4")
	if len(queued) != 3 {
		t.Fatalf("expected queue trimmed to cap 3, got %d", len(queued))
	}
	if queued[0].Message != "three" || queued[2].Message != "five" {
		t.Fatalf("expected oldest dropped, got %+v", queued)
	}
}

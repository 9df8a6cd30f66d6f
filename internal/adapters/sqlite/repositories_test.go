package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/geniusbot/core/internal/domain"
)

func newTestRepositories(t *testing.T) Repositories {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
	})
	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return NewRepositories(db)
}

func testAccount(id, username, origin string) domain.Account {
	return domain.Account{
		ID:             id,
		Username:       username,
		PasswordHash:   "hashed",
		CreationOrigin: origin,
		CreatedAt:      time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestAccountRepositoryUniqueConstraints(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	if err := repos.Accounts.Create(ctx, testAccount("AAAA1111", "alice", "tg:1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repos.Accounts.Create(ctx, testAccount("BBBB2222", "alice2", "tg:1")); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate origin should conflict, got %v", err)
	}
	if err := repos.Accounts.Create(ctx, testAccount("BBBB2222", "alice", "tg:2")); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate username should conflict, got %v", err)
	}

	account, err := repos.Accounts.GetByOrigin(ctx, "tg:1")
	if err != nil || account.ID != "AAAA1111" {
		t.Fatalf("get by origin: %v %v", account.ID, err)
	}
	if _, err := repos.Accounts.GetByChannel(ctx, "555"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown channel should be NotFound, got %v", err)
	}
}

func TestAccountRepositoryRebindOrigin(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	if err := repos.Accounts.Create(ctx, testAccount("AAAA1111", "alice", "tg:1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repos.Accounts.Create(ctx, testAccount("BBBB2222", "bob", "tg:2")); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repos.Accounts.RebindOrigin(ctx, "AAAA1111", "tg:2"); !errors.Is(err, domain.ErrDuplicateOrigin) {
		t.Fatalf("rebind onto an occupied origin should fail, got %v", err)
	}
	if err := repos.Accounts.RebindOrigin(ctx, "AAAA1111", "tg:3"); err != nil {
		t.Fatalf("rebind: %v", err)
	}
	if _, err := repos.Accounts.GetByOrigin(ctx, "tg:1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("old origin should be unbound, got %v", err)
	}
	account, err := repos.Accounts.GetByOrigin(ctx, "tg:3")
	if err != nil || account.ID != "AAAA1111" {
		t.Fatalf("new origin should resolve, got %v %v", account.ID, err)
	}
}

func TestSessionRepositoryReplaceKeepsSingleSession(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	if err := repos.Accounts.Create(ctx, testAccount("AAAA1111", "alice", "tg:1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	now := time.Now().UTC()
	if err := repos.Sessions.Replace(ctx, domain.Session{AccountID: "AAAA1111", Token: "first", Origin: "web:alice", CreatedAt: now}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := repos.Sessions.Replace(ctx, domain.Session{AccountID: "AAAA1111", Token: "second", Origin: "tg:1", CreatedAt: now.Add(time.Second)}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	session, err := repos.Sessions.GetByAccount(ctx, "AAAA1111")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if session.Token != "second" || session.Origin != "tg:1" {
		t.Fatalf("replace did not supersede: %+v", session)
	}

	if err := repos.Sessions.Delete(ctx, "AAAA1111"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repos.Sessions.GetByAccount(ctx, "AAAA1111"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("deleted session should be NotFound, got %v", err)
	}
}

func TestLedgerRepositoryGuardsNegativeBalance(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	if err := repos.Accounts.Create(ctx, testAccount("AAAA1111", "alice", "tg:1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	now := time.Now().UTC()

	balance, err := repos.Ledger.Init(ctx, "AAAA1111", 50, now)
	if err != nil || balance.Credits != 50 {
		t.Fatalf("init: %v %v", balance.Credits, err)
	}

	if _, err := repos.Ledger.ApplyDelta(ctx, "AAAA1111", -30, domain.LedgerReasonSpend, now); err != nil {
		t.Fatalf("spend: %v", err)
	}
	if _, err := repos.Ledger.ApplyDelta(ctx, "AAAA1111", -21, domain.LedgerReasonSpend, now); !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Fatalf("overdraft should fail InsufficientCredits, got %v", err)
	}
	if _, err := repos.Ledger.ApplyDelta(ctx, "MISSING0", -1, domain.LedgerReasonSpend, now); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown balance should be NotFound, got %v", err)
	}

	balance, err = repos.Ledger.GetBalance(ctx, "AAAA1111")
	if err != nil || balance.Credits != 20 {
		t.Fatalf("balance after refused overdraft: %v %v", balance.Credits, err)
	}

	entries, err := repos.Ledger.Entries(ctx, "AAAA1111")
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	sum := 0
	for _, entry := range entries {
		sum += entry.Delta
	}
	if sum != balance.Credits {
		t.Fatalf("ledger sum %d != balance %d", sum, balance.Credits)
	}

	total, err := repos.Ledger.TotalCredits(ctx)
	if err != nil || total != 20 {
		t.Fatalf("total credits: %d %v", total, err)
	}
}

func TestPurchaseRepositoryResolveIsConditional(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	if err := repos.Accounts.Create(ctx, testAccount("AAAA1111", "alice", "tg:1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	now := time.Now().UTC().Truncate(time.Second)

	request := domain.PurchaseRequest{
		ID:            "AAAA1111_1",
		AccountID:     "AAAA1111",
		Pack:          domain.PackSilver,
		OriginChannel: domain.ChannelChat,
		Status:        domain.PurchasePending,
		CreatedAt:     now,
	}
	if err := repos.Purchases.Create(ctx, request); err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	if err := repos.Purchases.Create(ctx, request); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate id should conflict, got %v", err)
	}

	resolved, err := repos.Purchases.Resolve(ctx, request.ID, domain.PurchaseAccepted, "ok", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Status != domain.PurchaseAccepted || resolved.Seen {
		t.Fatalf("resolve did not apply: %+v", resolved)
	}
	if _, err := repos.Purchases.Resolve(ctx, request.ID, domain.PurchaseRefused, "", now.Add(2*time.Minute)); !errors.Is(err, domain.ErrAlreadyProcessed) {
		t.Fatalf("second resolve should fail AlreadyProcessed, got %v", err)
	}
	if _, err := repos.Purchases.Resolve(ctx, "MISSING", domain.PurchaseRefused, "", now); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown request should be NotFound, got %v", err)
	}

	unseen, err := repos.Purchases.UnseenFor(ctx, "AAAA1111")
	if err != nil || len(unseen) != 1 {
		t.Fatalf("unseen: %v %v", unseen, err)
	}
	marked, err := repos.Purchases.MarkSeen(ctx, "AAAA1111", nil)
	if err != nil || marked != 1 {
		t.Fatalf("mark seen: %d %v", marked, err)
	}
}

func TestPurchaseRepositoryResolveAllPending(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	if err := repos.Accounts.Create(ctx, testAccount("AAAA1111", "alice", "tg:1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	now := time.Now().UTC().Truncate(time.Second)

	for i, id := range []string{"AAAA1111_1", "AAAA1111_2"} {
		if err := repos.Purchases.Create(ctx, domain.PurchaseRequest{
			ID:            id,
			AccountID:     "AAAA1111",
			Pack:          domain.PackBronze,
			OriginChannel: domain.ChannelChat,
			Status:        domain.PurchasePending,
			CreatedAt:     now.Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatalf("create purchase: %v", err)
		}
	}
	resolved, err := repos.Purchases.Resolve(ctx, "AAAA1111_1", domain.PurchaseAccepted, "", now)
	if err != nil || resolved.Status != domain.PurchaseAccepted {
		t.Fatalf("resolve: %v %v", resolved.Status, err)
	}

	swept, err := repos.Purchases.ResolveAllPending(ctx, domain.PurchaseUnavailable, "closed", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("resolve all: %v", err)
	}
	if len(swept) != 1 || swept[0].ID != "AAAA1111_2" {
		t.Fatalf("sweep should only touch pendings, got %+v", swept)
	}
	pending, err := repos.Purchases.CountPending(ctx)
	if err != nil || pending != 0 {
		t.Fatalf("pending after sweep: %d %v", pending, err)
	}

	kept, err := repos.Purchases.GetByID(ctx, "AAAA1111_1")
	if err != nil || kept.Status != domain.PurchaseAccepted {
		t.Fatalf("sweep must not touch terminal requests: %+v %v", kept, err)
	}
}

func TestNotificationRepositoryCapsQueue(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	if err := repos.Accounts.Create(ctx, testAccount("AAAA1111", "alice", "tg:1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		err := repos.Notifications.Push(ctx, domain.Notification{
			ID:        string(rune('a' + i)),
			AccountID: "AAAA1111",
			Kind:      domain.NotifyInfo,
			Message:   string(rune('a' + i)),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}, 3)
		if err != nil {
			t.Fatalf("push: %v", err)
		}
	}

	queued, err := repos.Notifications.ListFor(ctx, "AAAA1111")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(queued) != 3 {
		t.Fatalf("expected queue capped at 3, got %d", len(queued))
	}
	// Newest first.
	if queued[0].Message != "e" || queued[2].Message != "c" {
		t.Fatalf("expected oldest trimmed, got %+v", queued)
	}

	unread, err := repos.Notifications.CountUnread(ctx, "AAAA1111")
	if err != nil || unread != 3 {
		t.Fatalf("unread: %d %v", unread, err)
	}
	marked, err := repos.Notifications.MarkRead(ctx, "AAAA1111", nil)
	if err != nil || marked != 3 {
		t.Fatalf("mark read: %d %v", marked, err)
	}
}

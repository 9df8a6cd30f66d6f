package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/geniusbot/core/internal/domain"
	"github.com/geniusbot/core/internal/ports"
)

type fakeAccounts struct {
	mu   sync.Mutex
	byID map[string]domain.Account
}

func (f *fakeAccounts) Create(_ context.Context, account domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[account.ID]; ok {
		return domain.ErrConflict
	}
	for _, existing := range f.byID {
		if existing.CreationOrigin == account.CreationOrigin || existing.Username == account.Username {
			return domain.ErrConflict
		}
	}
	f.byID[account.ID] = account
	return nil
}

func (f *fakeAccounts) GetByID(_ context.Context, id string) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.byID[id]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	return account, nil
}

func (f *fakeAccounts) GetByUsername(_ context.Context, username string) (domain.Account, error) {
	return f.find(func(a domain.Account) bool { return a.Username == username })
}

func (f *fakeAccounts) GetByOrigin(_ context.Context, origin string) (domain.Account, error) {
	return f.find(func(a domain.Account) bool { return a.CreationOrigin == origin })
}

func (f *fakeAccounts) GetByChannel(_ context.Context, channelHandle string) (domain.Account, error) {
	return f.find(func(a domain.Account) bool { return a.LinkedChannelID == channelHandle })
}

func (f *fakeAccounts) find(match func(domain.Account) bool) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.byID {
		if match(account) {
			return account, nil
		}
	}
	return domain.Account{}, domain.ErrNotFound
}

func (f *fakeAccounts) SetLockState(_ context.Context, id string, failedAttempts int, lockedUntil time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	account.FailedAttempts = failedAttempts
	account.LockedUntil = lockedUntil
	f.byID[id] = account
	return nil
}

func (f *fakeAccounts) SetChannel(_ context.Context, id, channelHandle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	account.LinkedChannelID = channelHandle
	f.byID[id] = account
	return nil
}

func (f *fakeAccounts) RebindOrigin(_ context.Context, id, origin string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	for otherID, other := range f.byID {
		if otherID != id && other.CreationOrigin == origin {
			return domain.ErrDuplicateOrigin
		}
	}
	account.CreationOrigin = origin
	f.byID[id] = account
	return nil
}

func (f *fakeAccounts) ListIDs(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.byID))
	for id := range f.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeAccounts) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.byID)), nil
}

type fakeSessions struct {
	mu        sync.Mutex
	byAccount map[string]domain.Session
}

func (f *fakeSessions) Replace(_ context.Context, session domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byAccount[session.AccountID] = session
	return nil
}

func (f *fakeSessions) GetByAccount(_ context.Context, accountID string) (domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.byAccount[accountID]
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	return session, nil
}

func (f *fakeSessions) Delete(_ context.Context, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byAccount, accountID)
	return nil
}

type fakeLedger struct {
	mu       sync.Mutex
	balances map[string]domain.CreditBalance
	entries  []domain.LedgerEntry
	nextID   int64
}

func (f *fakeLedger) GetBalance(_ context.Context, accountID string) (domain.CreditBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	balance, ok := f.balances[accountID]
	if !ok {
		return domain.CreditBalance{}, domain.ErrNotFound
	}
	return balance, nil
}

func (f *fakeLedger) Init(_ context.Context, accountID string, credits int, at time.Time) (domain.CreditBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.balances[accountID]; ok {
		return existing, nil
	}
	balance := domain.CreditBalance{AccountID: accountID, Credits: credits, UpdatedAt: at}
	f.balances[accountID] = balance
	f.appendEntryLocked(accountID, credits, domain.LedgerReasonInit, at)
	return balance, nil
}

func (f *fakeLedger) ApplyDelta(_ context.Context, accountID string, delta int, reason string, at time.Time) (domain.CreditBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	balance, ok := f.balances[accountID]
	if !ok {
		return domain.CreditBalance{}, domain.ErrNotFound
	}
	if balance.Credits+delta < 0 {
		return domain.CreditBalance{}, domain.ErrInsufficientCredits
	}
	balance.Credits += delta
	balance.UpdatedAt = at
	f.balances[accountID] = balance
	f.appendEntryLocked(accountID, delta, reason, at)
	return balance, nil
}

func (f *fakeLedger) appendEntryLocked(accountID string, delta int, reason string, at time.Time) {
	f.nextID++
	f.entries = append(f.entries, domain.LedgerEntry{
		ID:        f.nextID,
		AccountID: accountID,
		Delta:     delta,
		Reason:    reason,
		CreatedAt: at,
	})
}

func (f *fakeLedger) Entries(_ context.Context, accountID string) ([]domain.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.LedgerEntry
	for _, entry := range f.entries {
		if entry.AccountID == accountID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeLedger) TotalCredits(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total int64
	for _, balance := range f.balances {
		total += int64(balance.Credits)
	}
	return total, nil
}

// entrySum mirrors the audit invariant checked by tests.
func (f *fakeLedger) entrySum(accountID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum := 0
	for _, entry := range f.entries {
		if entry.AccountID == accountID {
			sum += entry.Delta
		}
	}
	return sum
}

type fakePurchases struct {
	mu   sync.Mutex
	byID map[string]domain.PurchaseRequest
}

func (f *fakePurchases) Create(_ context.Context, request domain.PurchaseRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[request.ID]; ok {
		return domain.ErrConflict
	}
	f.byID[request.ID] = request
	return nil
}

func (f *fakePurchases) GetByID(_ context.Context, id string) (domain.PurchaseRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.byID[id]
	if !ok {
		return domain.PurchaseRequest{}, domain.ErrNotFound
	}
	return request, nil
}

func (f *fakePurchases) LatestPending(_ context.Context, accountID string, pack *domain.PackSize) (domain.PurchaseRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *domain.PurchaseRequest
	for id := range f.byID {
		request := f.byID[id]
		if request.AccountID != accountID || request.Status != domain.PurchasePending {
			continue
		}
		if pack != nil && request.Pack != *pack {
			continue
		}
		if latest == nil || request.CreatedAt.After(latest.CreatedAt) {
			latest = &request
		}
	}
	if latest == nil {
		return domain.PurchaseRequest{}, domain.ErrNotFound
	}
	return *latest, nil
}

func (f *fakePurchases) Resolve(_ context.Context, id string, status domain.PurchaseStatus, note string, at time.Time) (domain.PurchaseRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.byID[id]
	if !ok {
		return domain.PurchaseRequest{}, domain.ErrNotFound
	}
	if err := request.Resolve(status, note, at); err != nil {
		return domain.PurchaseRequest{}, err
	}
	f.byID[id] = request
	return request, nil
}

func (f *fakePurchases) ResolveAllPending(_ context.Context, status domain.PurchaseStatus, note string, at time.Time) ([]domain.PurchaseRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var swept []domain.PurchaseRequest
	for id := range f.byID {
		request := f.byID[id]
		if request.Status != domain.PurchasePending {
			continue
		}
		if err := request.Resolve(status, note, at); err != nil {
			return nil, err
		}
		f.byID[id] = request
		swept = append(swept, request)
	}
	return swept, nil
}

func (f *fakePurchases) UnseenFor(_ context.Context, accountID string) ([]domain.PurchaseRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.PurchaseRequest
	for _, request := range f.byID {
		if request.AccountID == accountID && !request.Seen && request.Status != domain.PurchasePending {
			out = append(out, request)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakePurchases) MarkSeen(_ context.Context, accountID string, ids []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := map[string]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	var marked int64
	for id, request := range f.byID {
		if request.AccountID != accountID || request.Seen || request.Status == domain.PurchasePending {
			continue
		}
		if len(ids) > 0 && !wanted[id] {
			continue
		}
		request.Seen = true
		f.byID[id] = request
		marked++
	}
	return marked, nil
}

func (f *fakePurchases) CountPending(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, request := range f.byID {
		if request.Status == domain.PurchasePending {
			n++
		}
	}
	return n, nil
}

func (f *fakePurchases) all() []domain.PurchaseRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.PurchaseRequest, 0, len(f.byID))
	for _, request := range f.byID {
		out = append(out, request)
	}
	return out
}

type fakeNotifications struct {
	mu        sync.Mutex
	byAccount map[string][]domain.Notification
}

func (f *fakeNotifications) Push(_ context.Context, notification domain.Notification, cap int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	queue := append(f.byAccount[notification.AccountID], notification)
	if cap > 0 && len(queue) > cap {
		queue = queue[len(queue)-cap:]
	}
	f.byAccount[notification.AccountID] = queue
	return nil
}

func (f *fakeNotifications) ListFor(_ context.Context, accountID string) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	queue := f.byAccount[accountID]
	out := make([]domain.Notification, len(queue))
	for i, notification := range queue {
		out[len(queue)-1-i] = notification
	}
	return out, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, accountID string, ids []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := map[string]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	var marked int64
	queue := f.byAccount[accountID]
	for i, notification := range queue {
		if notification.Read {
			continue
		}
		if len(ids) > 0 && !wanted[notification.ID] {
			continue
		}
		queue[i].Read = true
		marked++
	}
	return marked, nil
}

func (f *fakeNotifications) CountUnread(_ context.Context, accountID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, notification := range f.byAccount[accountID] {
		if !notification.Read {
			n++
		}
	}
	return n, nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("hash mismatch")
	}
	return nil
}

// gateHasher blocks inside Compare until released, letting tests observe
// how many comparisons are in flight at once.
type gateHasher struct {
	arrivals chan struct{}
	release  chan struct{}
}

func (gateHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (h gateHasher) Compare(hash, password string) error {
	h.arrivals <- struct{}{}
	<-h.release
	if hash != "hashed:"+password {
		return errors.New("hash mismatch")
	}
	return nil
}

type sentMessage struct {
	AccountID string
	Kind      string
	Message   string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeNotifier) Notify(_ context.Context, account domain.Account, kind, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{AccountID: account.ID, Kind: kind, Message: message})
}

func (f *fakeNotifier) sentTo(accountID string) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, message := range f.sent {
		if message.AccountID == accountID {
			out = append(out, message)
		}
	}
	return out
}

type fakeDownloader struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeDownloader) Download(_ context.Context, url, mode string) (ports.DownloadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return ports.DownloadResult{}, f.err
	}
	return ports.DownloadResult{
		Path:  fmt.Sprintf("/tmp/media.%s", mode),
		Title: "media for " + url,
	}, nil
}

type fixture struct {
	service       *Service
	accounts      *fakeAccounts
	sessions      *fakeSessions
	ledger        *fakeLedger
	purchases     *fakePurchases
	notifications *fakeNotifications
	notifier      *fakeNotifier
	downloader    *fakeDownloader

	mu  sync.Mutex
	now time.Time
}

func newFixture() *fixture {
	return newFixtureWithConfig(Config{})
}

func newFixtureWithConfig(cfg Config) *fixture {
	f := &fixture{
		accounts:      &fakeAccounts{byID: map[string]domain.Account{}},
		sessions:      &fakeSessions{byAccount: map[string]domain.Session{}},
		ledger:        &fakeLedger{balances: map[string]domain.CreditBalance{}},
		purchases:     &fakePurchases{byID: map[string]domain.PurchaseRequest{}},
		notifications: &fakeNotifications{byAccount: map[string][]domain.Notification{}},
		notifier:      &fakeNotifier{},
		downloader:    &fakeDownloader{},
		now:           time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC),
	}
	f.service = NewService(Dependencies{
		Config:        cfg,
		Accounts:      f.accounts,
		Sessions:      f.sessions,
		Ledger:        f.ledger,
		Purchases:     f.purchases,
		Notifications: f.notifications,
		Notifier:      f.notifier,
		Downloader:    f.downloader,
		Hasher:        fakeHasher{},
	})
	f.service.nowFn = func() time.Time {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.now
	}
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *fixture) register(ctx context.Context, username, origin string) (domain.Account, error) {
	return f.service.Register(ctx, RegisterRequest{
		Username: username,
		Password: "SecurePass123",
		Origin:   origin,
	})
}

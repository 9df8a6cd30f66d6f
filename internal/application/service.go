package application

import (
	"sync"
	"time"

	"github.com/geniusbot/core/internal/ports"
)

// Config carries the policy knobs the core service applies.
type Config struct {
	// InitialCredits is the first-touch grant for a new balance.
	InitialCredits int
	// FailedThreshold is the failed-authentication count that triggers lockout.
	FailedThreshold int
	// LockWindow is how long a triggered lockout lasts.
	LockWindow time.Duration
	// RecoveryCooldown is the minimum account age before origin/channel recovery.
	RecoveryCooldown time.Duration
	// IDAttempts bounds retries when a freshly minted account ID collides.
	IDAttempts int
}

func (c Config) withDefaults() Config {
	if c.InitialCredits <= 0 {
		c.InitialCredits = 50
	}
	if c.FailedThreshold <= 0 {
		c.FailedThreshold = 5
	}
	if c.LockWindow <= 0 {
		c.LockWindow = 5 * time.Minute
	}
	if c.RecoveryCooldown <= 0 {
		c.RecoveryCooldown = 24 * time.Hour
	}
	if c.IDAttempts <= 0 {
		c.IDAttempts = 5
	}
	return c
}

// Service is the shared credit/purchase/session core every front end links.
// The per-store mutexes give each read-modify-write the mutual-exclusion
// scope the stores require; they are held across the in-memory mutation and
// the bounded store write, never across chat or download I/O.
type Service struct {
	cfg           Config
	accounts      ports.AccountRepository
	sessions      ports.SessionRepository
	ledger        ports.LedgerRepository
	purchases     ports.PurchaseRepository
	notifications ports.NotificationRepository
	notifier      ports.Notifier
	alerter       ports.AdminAlerter
	downloader    ports.Downloader
	hasher        ports.PasswordHasher
	nowFn         func() time.Time

	identityMu sync.Mutex // accounts + sessions
	creditsMu  sync.Mutex // balances + ledger entries
	purchaseMu sync.Mutex // purchase requests
}

// Dependencies is the construction bag for Service.
type Dependencies struct {
	Config        Config
	Accounts      ports.AccountRepository
	Sessions      ports.SessionRepository
	Ledger        ports.LedgerRepository
	Purchases     ports.PurchaseRepository
	Notifications ports.NotificationRepository
	Notifier      ports.Notifier
	Alerter       ports.AdminAlerter
	Downloader    ports.Downloader
	Hasher        ports.PasswordHasher
}

func NewService(deps Dependencies) *Service {
	return &Service{
		cfg:           deps.Config.withDefaults(),
		accounts:      deps.Accounts,
		sessions:      deps.Sessions,
		ledger:        deps.Ledger,
		purchases:     deps.Purchases,
		notifications: deps.Notifications,
		notifier:      deps.Notifier,
		alerter:       deps.Alerter,
		downloader:    deps.Downloader,
		hasher:        deps.Hasher,
		nowFn:         func() time.Time { return time.Now().UTC() },
	}
}

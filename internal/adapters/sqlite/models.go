package sqlite

import "time"

type accountModel struct {
	AccountID      string     `gorm:"column:account_id;primaryKey"`
	Username       string     `gorm:"column:username"`
	PasswordHash   string     `gorm:"column:password_hash"`
	Origin         string     `gorm:"column:origin"`
	ChannelID      string     `gorm:"column:channel_id"`
	FailedAttempts int        `gorm:"column:failed_attempts"`
	LockedUntil    *time.Time `gorm:"column:locked_until"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
}

func (accountModel) TableName() string { return "accounts" }

type sessionModel struct {
	AccountID string    `gorm:"column:account_id;primaryKey"`
	Token     string    `gorm:"column:token"`
	Origin    string    `gorm:"column:origin"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (sessionModel) TableName() string { return "sessions" }

type creditBalanceModel struct {
	AccountID string    `gorm:"column:account_id;primaryKey"`
	Credits   int       `gorm:"column:credits"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (creditBalanceModel) TableName() string { return "credit_balances" }

type ledgerEntryModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	AccountID string    `gorm:"column:account_id"`
	Delta     int       `gorm:"column:delta"`
	Reason    string    `gorm:"column:reason"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (ledgerEntryModel) TableName() string { return "ledger_entries" }

type purchaseRequestModel struct {
	RequestID     string     `gorm:"column:request_id;primaryKey"`
	AccountID     string     `gorm:"column:account_id"`
	Pack          int        `gorm:"column:pack"`
	OriginChannel string     `gorm:"column:origin_channel"`
	Status        string     `gorm:"column:status"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	ProcessedAt   *time.Time `gorm:"column:processed_at"`
	ResponseNote  string     `gorm:"column:response_note"`
	Seen          bool       `gorm:"column:seen"`
}

func (purchaseRequestModel) TableName() string { return "purchase_requests" }

type notificationModel struct {
	NotificationID string    `gorm:"column:notification_id;primaryKey"`
	AccountID      string    `gorm:"column:account_id"`
	Kind           string    `gorm:"column:kind"`
	Message        string    `gorm:"column:message"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	IsRead         bool      `gorm:"column:is_read"`
}

func (notificationModel) TableName() string { return "notifications" }

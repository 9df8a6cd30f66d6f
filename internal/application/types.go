package application

import "time"

// RegisterRequest is the account-creation input shared by the front ends.
type RegisterRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	Origin        string `json:"-"`
	ChannelHandle string `json:"channel_handle,omitempty"`
}

// LoginRequest is the web authentication input.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Origin   string `json:"-"`
}

// NotificationItem is the fallback-queue record shaped for API responses.
type NotificationItem struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}

// PurchaseItem is a purchase request shaped for API responses.
type PurchaseItem struct {
	ID           string     `json:"id"`
	Pack         int        `json:"pack"`
	Origin       string     `json:"origin_channel"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	ResponseNote string     `json:"response_note,omitempty"`
	Seen         bool       `json:"seen"`
}

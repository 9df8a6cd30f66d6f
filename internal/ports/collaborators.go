package ports

import (
	"context"

	"github.com/geniusbot/core/internal/domain"
)

// ChatSender delivers a text message to an external chat channel handle.
// A non-nil error means the message did not reach the channel; it carries
// no delivery guarantee beyond that.
type ChatSender interface {
	Send(ctx context.Context, channelHandle, text string) error
}

// DownloadResult is what the opaque media engine hands back on success.
type DownloadResult struct {
	Path  string
	Title string
}

// Downloader is the external media-extraction engine. The core treats it as
// a black box: spend a credit, call it, grant the credit back on failure.
type Downloader interface {
	Download(ctx context.Context, url, mode string) (DownloadResult, error)
}

// Notifier fans a status-change message out to the account's channels.
// Implementations must not return delivery errors to the caller; primary
// channel failure degrades to the fallback queue.
type Notifier interface {
	Notify(ctx context.Context, account domain.Account, kind, message string)
}

// AdminAlerter pushes operator alerts (new purchase requests) to the admin
// channel. Like Notifier it is best effort and never fails the caller.
type AdminAlerter interface {
	AlertPurchase(ctx context.Context, request domain.PurchaseRequest)
}

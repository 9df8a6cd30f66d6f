package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/geniusbot/core/internal/domain"
	"github.com/geniusbot/core/internal/observability"
	"github.com/geniusbot/core/internal/ports"
)

// StartDownload spends one credit and hands the URL to the opaque download
// engine. The spend and the download are a compensating pair, not one
// transaction: the engine runs outside every ledger lock, and its failure
// is repaid with a rollback grant.
func (s *Service) StartDownload(ctx context.Context, accountID, url, mode string) (ports.DownloadResult, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return ports.DownloadResult{}, fmt.Errorf("%w: url is required", domain.ErrInvalidInput)
	}
	if mode != "mp3" && mode != "mp4" {
		return ports.DownloadResult{}, fmt.Errorf("%w: unknown download mode %q", domain.ErrInvalidInput, mode)
	}

	ok, err := s.Spend(ctx, accountID, 1)
	if err != nil {
		return ports.DownloadResult{}, err
	}
	if !ok {
		return ports.DownloadResult{}, domain.ErrInsufficientCredits
	}

	result, err := s.downloader.Download(ctx, url, mode)
	if err != nil {
		if rollbackErr := s.Grant(ctx, accountID, 1, domain.LedgerReasonRollback); rollbackErr != nil {
			slog.Default().ErrorContext(ctx, "credit rollback failed after download error",
				"module", "application",
				"layer", "application",
				"operation", "download_rollback",
				"outcome", "failure",
				"account_id", accountID,
				"error", rollbackErr,
			)
		}
		observability.DownloadsTotal.WithLabelValues(mode, "failure").Inc()
		return ports.DownloadResult{}, fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err)
	}
	observability.DownloadsTotal.WithLabelValues(mode, "success").Inc()
	return result, nil
}

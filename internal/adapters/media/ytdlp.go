// Package media wraps yt-dlp for audio/video retrieval. The wrapper keeps
// the application layer free of tool-specific flags.
package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/geniusbot/core/internal/domain"
	"github.com/geniusbot/core/internal/ports"
	"github.com/lrstanley/go-ytdlp"
)

// Downloader implements ports.Downloader via the yt-dlp binary. Each call
// shells out once; concurrency is bounded by the caller.
type Downloader struct {
	outputDir string
}

// NewDownloader prepares the output directory. The yt-dlp binary is
// installed on first use if missing.
func NewDownloader(outputDir string) (*Downloader, error) {
	if outputDir == "" {
		outputDir = os.TempDir()
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}
	ytdlp.MustInstall(context.Background(), nil)
	return &Downloader{outputDir: outputDir}, nil
}

func (d *Downloader) Download(ctx context.Context, url, mode string) (ports.DownloadResult, error) {
	outputTemplate := filepath.Join(d.outputDir, "%(title)s.%(ext)s")

	dl := ytdlp.New().
		NoPlaylist().
		Output(outputTemplate).
		PrintJSON()

	switch mode {
	case "mp3":
		dl = dl.ExtractAudio().AudioFormat("mp3")
	case "mp4":
		dl = dl.Format("bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best")
	default:
		return ports.DownloadResult{}, fmt.Errorf("%w: unsupported mode %q", domain.ErrInvalidInput, mode)
	}

	result, err := dl.Run(ctx, url)
	if err != nil {
		return ports.DownloadResult{}, fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err)
	}

	info, err := result.GetExtractedInfo()
	if err != nil || len(info) == 0 {
		return ports.DownloadResult{}, fmt.Errorf("%w: no media info extracted", domain.ErrDownloadFailed)
	}
	title := ""
	if info[0].Title != nil {
		title = *info[0].Title
	}

	path := ""
	if info[0].Filename != nil {
		path = *info[0].Filename
	}
	if mode == "mp3" && path != "" {
		ext := filepath.Ext(path)
		path = strings.TrimSuffix(path, ext) + ".mp3"
	}

	return ports.DownloadResult{Path: path, Title: title}, nil
}

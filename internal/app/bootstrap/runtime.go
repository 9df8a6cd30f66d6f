package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	httpadapter "github.com/geniusbot/core/internal/adapters/http"
	"github.com/geniusbot/core/internal/adapters/media"
	"github.com/geniusbot/core/internal/adapters/notify"
	"github.com/geniusbot/core/internal/adapters/security"
	"github.com/geniusbot/core/internal/adapters/sqlite"
	"github.com/geniusbot/core/internal/adapters/telegram"
	"github.com/geniusbot/core/internal/application"
	"github.com/geniusbot/core/internal/ports"
)

// Runtime holds the wired core plus whatever front end the binary runs.
// Every binary builds the same core against the same store file; process
// separation is the deployment model, not a data boundary.
type Runtime struct {
	cfg     Config
	logger  *slog.Logger
	service *application.Service
	signer  ports.TokenSigner

	cleanupFn func()
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping genius core", "store_path", cfg.StorePath, "http_port", cfg.HTTPPort)

	db, err := sqlite.Open(ctx, cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	closeDB := func() {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
	}
	if err := sqlite.RunMigrations(ctx, db); err != nil {
		closeDB()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	repos := sqlite.NewRepositories(db)

	var signer ports.TokenSigner
	if cfg.JWTSecret != "" {
		signer, err = security.NewJWTSigner(cfg.JWTSecret, cfg.TokenTTL)
	} else {
		logger.Warn("using ephemeral JWT key for local/dev runtime")
		signer, err = security.NewEphemeralJWTSigner(cfg.TokenTTL)
	}
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("init jwt signer: %w", err)
	}

	var sender ports.ChatSender
	var alerter ports.AdminAlerter
	if cfg.UserBotToken != "" {
		userBot, botErr := tgbotapi.NewBotAPI(cfg.UserBotToken)
		if botErr != nil {
			closeDB()
			return nil, fmt.Errorf("init user bot: %w", botErr)
		}
		sender = telegram.NewSender(userBot, cfg.SendTimeout)
	}
	if cfg.AdminBotToken != "" && cfg.AdminChatID != 0 {
		adminBot, botErr := tgbotapi.NewBotAPI(cfg.AdminBotToken)
		if botErr != nil {
			closeDB()
			return nil, fmt.Errorf("init admin bot: %w", botErr)
		}
		alerter = telegram.NewAnnouncer(adminBot, cfg.AdminChatID, logger)
	}

	downloader, err := media.NewDownloader(cfg.DownloadDir)
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("init downloader: %w", err)
	}

	service := application.NewService(application.Dependencies{
		Config: application.Config{
			InitialCredits:   cfg.InitialCredits,
			FailedThreshold:  cfg.FailedThreshold,
			LockWindow:       cfg.LockWindow,
			RecoveryCooldown: cfg.RecoveryCooldown,
		},
		Accounts:      repos.Accounts,
		Sessions:      repos.Sessions,
		Ledger:        repos.Ledger,
		Purchases:     repos.Purchases,
		Notifications: repos.Notifications,
		Notifier:      notify.NewRouter(sender, repos.Notifications, cfg.NotificationCap, logger),
		Alerter:       alerter,
		Downloader:    downloader,
		Hasher:        security.NewBcryptHasher(cfg.BcryptCost),
	})

	return &Runtime{
		cfg:       cfg,
		logger:    logger,
		service:   service,
		signer:    signer,
		cleanupFn: closeDB,
	}, nil
}

// RunWeb serves the HTTP front end until interrupted.
func (r *Runtime) RunWeb(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := httpadapter.NewHandler(r.service, r.signer, r.cfg.AdminAPIKey)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", r.cfg.HTTPPort),
		Handler:           httpadapter.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("http server started", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	r.cleanupFn()
	return nil
}

// RunUserBot serves the customer Telegram front end until interrupted.
func (r *Runtime) RunUserBot(ctx context.Context) error {
	if r.cfg.UserBotToken == "" {
		return errors.New("missing TELEGRAM_USER_BOT_TOKEN")
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	api, err := tgbotapi.NewBotAPI(r.cfg.UserBotToken)
	if err != nil {
		return fmt.Errorf("init user bot: %w", err)
	}
	bot := telegram.NewUserBot(api, r.service, r.logger)

	r.logger.Info("user bot started", "bot", api.Self.UserName)
	err = bot.Run(ctx)
	r.cleanupFn()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// RunAdminBot serves the operator Telegram front end until interrupted.
func (r *Runtime) RunAdminBot(ctx context.Context) error {
	if r.cfg.AdminBotToken == "" || r.cfg.AdminChatID == 0 {
		return errors.New("missing TELEGRAM_ADMIN_BOT_TOKEN or TELEGRAM_ADMIN_CHAT_ID")
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	api, err := tgbotapi.NewBotAPI(r.cfg.AdminBotToken)
	if err != nil {
		return fmt.Errorf("init admin bot: %w", err)
	}
	bot := telegram.NewAdminBot(api, r.service, r.cfg.AdminChatID, r.logger)

	r.logger.Info("admin bot started", "bot", api.Self.UserName)
	err = bot.Run(ctx)
	r.cleanupFn()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/geniusbot/core/internal/application"
	"github.com/geniusbot/core/internal/domain"
)

// AdminBot is the operator front end. Only the configured admin chat may
// use it; every other chat is ignored.
type AdminBot struct {
	bot         *tgbotapi.BotAPI
	service     *application.Service
	adminChatID int64
	logger      *slog.Logger
}

func NewAdminBot(bot *tgbotapi.BotAPI, service *application.Service, adminChatID int64, logger *slog.Logger) *AdminBot {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminBot{
		bot:         bot,
		service:     service,
		adminChatID: adminChatID,
		logger:      logger,
	}
}

// Run consumes updates until ctx is cancelled.
func (b *AdminBot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.bot.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.bot.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *AdminBot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		// Message is nil on callbacks for messages older than 48h.
		if update.CallbackQuery.Message == nil || update.CallbackQuery.Message.Chat.ID != b.adminChatID {
			return
		}
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		if update.Message.Chat.ID != b.adminChatID {
			return
		}
		b.handleMessage(ctx, update.Message)
	}
}

func (b *AdminBot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		return
	}
	args := strings.Fields(msg.CommandArguments())
	switch msg.Command() {
	case "start", "help":
		b.reply("Commandes: /pending /stats /closeshop /addcredits <compte> <montant> /broadcast <message>")
	case "pending":
		b.showPending(ctx)
	case "stats":
		b.showStats(ctx)
	case "closeshop":
		b.closeShop(ctx, strings.TrimSpace(msg.CommandArguments()))
	case "addcredits":
		b.addCredits(ctx, args)
	case "broadcast":
		b.broadcast(ctx, strings.TrimSpace(msg.CommandArguments()))
	default:
		b.reply("Commande inconnue. /help pour la liste.")
	}
}

func (b *AdminBot) showPending(ctx context.Context) {
	stats, err := b.service.AdminStats(ctx)
	if err != nil {
		b.logError(ctx, "pending", err)
		b.reply("❌ Lecture impossible.")
		return
	}
	if stats.PendingPurchases == 0 {
		b.reply("✅ Aucune demande en attente.")
		return
	}
	b.reply(fmt.Sprintf("📋 %d demande(s) en attente. Les boutons d'approbation arrivent avec chaque demande.", stats.PendingPurchases))
}

func (b *AdminBot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	b.answerCallback(cb.ID)
	parts := strings.SplitN(cb.Data, "|", 2)
	if len(parts) != 2 {
		return
	}
	requestID := parts[1]

	var status domain.PurchaseStatus
	switch parts[0] {
	case "admin_ok":
		status = domain.PurchaseAccepted
	case "admin_no":
		status = domain.PurchaseRefused
	default:
		return
	}

	request, err := b.service.ResolvePurchase(ctx, requestID, status, "")
	switch {
	case errors.Is(err, domain.ErrAlreadyProcessed):
		b.reply(fmt.Sprintf("⚠️ Réf `%s` déjà traitée.", requestID))
	case errors.Is(err, domain.ErrNotFound):
		b.reply(fmt.Sprintf("❌ Réf `%s` introuvable.", requestID))
	case err != nil:
		b.logError(ctx, "resolve", err)
		b.reply("❌ Traitement impossible, réessayez.")
	case status == domain.PurchaseAccepted:
		b.reply(fmt.Sprintf("✅ Pack de %d crédits crédité sur `%s`.", request.Pack.Credits(), request.AccountID))
	default:
		b.reply(fmt.Sprintf("❌ Demande `%s` refusée.", requestID))
	}
}

func (b *AdminBot) showStats(ctx context.Context) {
	stats, err := b.service.AdminStats(ctx)
	if err != nil {
		b.logError(ctx, "stats", err)
		b.reply("❌ Lecture impossible.")
		return
	}
	b.reply(fmt.Sprintf(
		"📊 **Statistiques**\nComptes: %d\nCrédits en circulation: %d\nDemandes en attente: %d",
		stats.Accounts, stats.TotalCredits, stats.PendingPurchases,
	))
}

func (b *AdminBot) closeShop(ctx context.Context, note string) {
	if note == "" {
		note = "Boutique fermée pour maintenance."
	}
	count, err := b.service.CloseShop(ctx, note)
	if err != nil {
		b.logError(ctx, "closeshop", err)
		b.reply("❌ Fermeture impossible, réessayez.")
		return
	}
	b.reply(fmt.Sprintf("🔒 Boutique fermée. %d demande(s) marquée(s) indisponibles.", count))
}

func (b *AdminBot) addCredits(ctx context.Context, args []string) {
	if len(args) != 2 {
		b.reply("Usage: /addcredits <compte> <montant>")
		return
	}
	amount, err := strconv.Atoi(args[1])
	if err != nil || amount <= 0 {
		b.reply("❌ Montant invalide.")
		return
	}
	if err := b.service.AddCredits(ctx, args[0], amount); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			b.reply(fmt.Sprintf("❌ Compte `%s` introuvable.", args[0]))
			return
		}
		b.logError(ctx, "addcredits", err)
		b.reply("❌ Crédit impossible, réessayez.")
		return
	}
	b.reply(fmt.Sprintf("✅ %d crédits ajoutés sur `%s`.", amount, args[0]))
}

func (b *AdminBot) broadcast(ctx context.Context, message string) {
	if message == "" {
		b.reply("Usage: /broadcast <message>")
		return
	}
	count, err := b.service.Broadcast(ctx, message)
	if err != nil {
		b.logError(ctx, "broadcast", err)
		b.reply("❌ Diffusion impossible, réessayez.")
		return
	}
	b.reply(fmt.Sprintf("📣 Message diffusé à %d compte(s).", count))
}

func (b *AdminBot) reply(text string) {
	msg := tgbotapi.NewMessage(b.adminChatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	b.send(msg)
}

func (b *AdminBot) send(c tgbotapi.Chattable) {
	if _, err := b.bot.Send(c); err != nil {
		b.logger.Warn("telegram send failed",
			slog.String("module", "telegram"),
			slog.String("layer", "adapter"),
			slog.String("error", err.Error()),
		)
	}
}

func (b *AdminBot) answerCallback(id string) {
	if _, err := b.bot.Request(tgbotapi.NewCallback(id, "")); err != nil {
		b.logger.Warn("telegram callback ack failed",
			slog.String("module", "telegram"),
			slog.String("layer", "adapter"),
			slog.String("error", err.Error()),
		)
	}
}

func (b *AdminBot) logError(ctx context.Context, operation string, err error) {
	b.logger.ErrorContext(ctx, "admin bot operation failed",
		slog.String("module", "telegram"),
		slog.String("layer", "adapter"),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

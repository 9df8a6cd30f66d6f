package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/geniusbot/core/internal/domain"
)

// Announcer implements ports.AdminAlerter: it pushes each new purchase
// request to the admin chat with the approval buttons. Any process that
// creates purchases builds one from the admin bot token, so requests from
// the web front end land in the same approval stream.
type Announcer struct {
	bot         *tgbotapi.BotAPI
	adminChatID int64
	logger      *slog.Logger
}

func NewAnnouncer(bot *tgbotapi.BotAPI, adminChatID int64, logger *slog.Logger) *Announcer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Announcer{bot: bot, adminChatID: adminChatID, logger: logger}
}

func (a *Announcer) AlertPurchase(ctx context.Context, request domain.PurchaseRequest) {
	text := fmt.Sprintf(
		"💰 **Demande d'achat**\nCompte: `%s`\nPack: %d crédits\nCanal: %s\nRéf: `%s`",
		request.AccountID, request.Pack.Credits(), request.OriginChannel, request.ID,
	)
	msg := tgbotapi.NewMessage(a.adminChatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ ACCEPTER", "admin_ok|"+request.ID),
			tgbotapi.NewInlineKeyboardButtonData("❌ REFUSER", "admin_no|"+request.ID),
		),
	)
	if _, err := a.bot.Send(msg); err != nil {
		a.logger.WarnContext(ctx, "admin purchase alert failed",
			slog.String("module", "telegram"),
			slog.String("layer", "adapter"),
			slog.String("operation", "alert_purchase"),
			slog.String("request_id", request.ID),
			slog.String("error", err.Error()),
		)
	}
}

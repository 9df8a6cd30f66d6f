// Package telegram hosts the two bot front ends. The user bot serves
// account, credit, shop and download commands; the admin bot serves
// purchase approval and maintenance commands. Both embed the same
// application service and share the store, so either process sees the
// other's writes.
package telegram

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/geniusbot/core/internal/application"
	"github.com/geniusbot/core/internal/domain"
)

// UserBot is the customer-facing front end.
type UserBot struct {
	bot     *tgbotapi.BotAPI
	service *application.Service
	logger  *slog.Logger

	// Short link IDs keep callback payloads under Telegram's 64-byte
	// limit; full URLs never travel inside callback data.
	linksMu sync.Mutex
	links   map[string]string
	linkSeq int
}

func NewUserBot(bot *tgbotapi.BotAPI, service *application.Service, logger *slog.Logger) *UserBot {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserBot{
		bot:     bot,
		service: service,
		logger:  logger,
		links:   make(map[string]string),
	}
}

// Run consumes updates until ctx is cancelled.
func (b *UserBot) Run(ctx context.Context) error {
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

func (b *UserBot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		// Telegram omits Message on callbacks for messages older than
		// 48h; without it there is no chat to route the action to.
		if update.CallbackQuery.Message == nil {
			return
		}
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func originFor(chatID int64) string {
	return fmt.Sprintf("tg:%d", chatID)
}

func (b *UserBot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch {
	case msg.IsCommand():
		b.handleCommand(ctx, msg)
	case strings.Contains(text, "youtu"):
		b.offerDownload(ctx, chatID, text)
	case text == "💰 Mes Crédits":
		b.showCredits(ctx, chatID)
	case text == "🛒 Boutique":
		b.showShop(chatID)
	default:
		b.reply(chatID, "Envoyez un lien YouTube, ou /menu pour les options.")
	}
}

func (b *UserBot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start", "menu":
		b.sendWelcome(ctx, chatID)
	case "credits":
		b.showCredits(ctx, chatID)
	case "shop":
		b.showShop(chatID)
	case "notifications":
		b.showNotifications(ctx, chatID)
	case "recover":
		b.recoverAccount(ctx, chatID)
	default:
		b.reply(chatID, "Commande inconnue. /menu pour les options.")
	}
}

// sendWelcome also provisions the account on first contact. Registration
// is keyed on the chat origin so a returning chat never creates a second
// account.
func (b *UserBot) sendWelcome(ctx context.Context, chatID int64) {
	account, err := b.ensureAccount(ctx, chatID)
	if err != nil {
		b.logError(ctx, "welcome", chatID, err)
		b.reply(chatID, "❌ Service indisponible, réessayez plus tard.")
		return
	}

	reply := tgbotapi.NewMessage(chatID, fmt.Sprintf("👋 **Bienvenue sur Genius Bot !**\nCompte: `%s`", account.ID))
	reply.ParseMode = tgbotapi.ModeMarkdown
	reply.ReplyMarkup = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("💰 Mes Crédits"),
			tgbotapi.NewKeyboardButton("🛒 Boutique"),
		),
	)
	b.send(reply)
}

// ensureAccount returns the account bound to this chat, creating it on
// first touch and linking the chat as the notification channel.
func (b *UserBot) ensureAccount(ctx context.Context, chatID int64) (domain.Account, error) {
	origin := originFor(chatID)
	account, err := b.service.AccountByOrigin(ctx, origin)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Account{}, err
	}

	// Chat accounts get synthesized credentials; the owner can set real
	// ones from the web front end later.
	account, err = b.service.Register(ctx, application.RegisterRequest{
		Username:      fmt.Sprintf("tg_%d", chatID),
		Password:      randomPassword(),
		Origin:        origin,
		ChannelHandle: strconv.FormatInt(chatID, 10),
	})
	if errors.Is(err, domain.ErrDuplicateOrigin) || errors.Is(err, domain.ErrConflict) {
		// Lost a race with ourselves; the account exists now.
		return b.service.AccountByOrigin(ctx, origin)
	}
	if err != nil {
		return domain.Account{}, err
	}
	return account, nil
}

func randomPassword() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

func (b *UserBot) showCredits(ctx context.Context, chatID int64) {
	account, err := b.ensureAccount(ctx, chatID)
	if err != nil {
		b.logError(ctx, "credits", chatID, err)
		b.reply(chatID, "❌ Service indisponible, réessayez plus tard.")
		return
	}
	balance, err := b.service.Balance(ctx, account.ID)
	if err != nil {
		b.logError(ctx, "credits", chatID, err)
		b.reply(chatID, "❌ Service indisponible, réessayez plus tard.")
		return
	}
	b.reply(chatID, fmt.Sprintf("💰 Vous avez %d crédits.", balance.Credits))
}

func (b *UserBot) showShop(chatID int64) {
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🥉 Pack Bronze : 10 Crédits", "buy_10")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🥈 Pack Argent : 50 Crédits", "buy_50")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🥇 Pack Or : 100 Crédits", "buy_100")),
	)
	reply := tgbotapi.NewMessage(chatID, "🛒 **BOUTIQUE GENIUS BOT**\nChoisissez un pack ci-dessous :")
	reply.ParseMode = tgbotapi.ModeMarkdown
	reply.ReplyMarkup = markup
	b.send(reply)
}

func (b *UserBot) showNotifications(ctx context.Context, chatID int64) {
	account, err := b.ensureAccount(ctx, chatID)
	if err != nil {
		b.logError(ctx, "notifications", chatID, err)
		b.reply(chatID, "❌ Service indisponible, réessayez plus tard.")
		return
	}
	items, err := b.service.Notifications(ctx, account.ID)
	if err != nil {
		b.logError(ctx, "notifications", chatID, err)
		b.reply(chatID, "❌ Service indisponible, réessayez plus tard.")
		return
	}
	if len(items) == 0 {
		b.reply(chatID, "🔔 Aucune notification.")
		return
	}
	var sb strings.Builder
	sb.WriteString("🔔 Notifications :\n")
	for _, item := range items {
		sb.WriteString("• " + item.Message + "\n")
	}
	b.reply(chatID, sb.String())
	if _, err := b.service.MarkNotificationsRead(ctx, account.ID, nil); err != nil {
		b.logError(ctx, "notifications", chatID, err)
	}
}

// recoverAccount rebinds an existing account to this chat after the owner
// lost the previous front end. Cooldown refusals are shown with the wait.
func (b *UserBot) recoverAccount(ctx context.Context, chatID int64) {
	account, _, err := b.service.RecoverByChannel(ctx, strconv.FormatInt(chatID, 10), originFor(chatID))
	switch {
	case err == nil:
		b.reply(chatID, fmt.Sprintf("✅ Compte `%s` récupéré sur ce chat.", account.ID))
	case errors.Is(err, domain.ErrRecoveryTooSoon):
		b.reply(chatID, "⏳ Récupération trop récente, réessayez plus tard.")
	case errors.Is(err, domain.ErrNotFound):
		b.reply(chatID, "❌ Aucun compte lié à ce chat. /start pour en créer un.")
	default:
		b.logError(ctx, "recover", chatID, err)
		b.reply(chatID, "❌ Service indisponible, réessayez plus tard.")
	}
}

func (b *UserBot) offerDownload(ctx context.Context, chatID int64, url string) {
	account, err := b.ensureAccount(ctx, chatID)
	if err != nil {
		b.logError(ctx, "offer_download", chatID, err)
		b.reply(chatID, "❌ Service indisponible, réessayez plus tard.")
		return
	}
	balance, err := b.service.Balance(ctx, account.ID)
	if err != nil {
		b.logError(ctx, "offer_download", chatID, err)
		b.reply(chatID, "❌ Service indisponible, réessayez plus tard.")
		return
	}
	if balance.Credits <= 0 {
		b.reply(chatID, "🚫 **Crédits insuffisants.** /shop pour recharger.")
		return
	}

	linkID := b.storeLink(url)
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎵 MP3", "dl_mp3|"+linkID),
			tgbotapi.NewInlineKeyboardButtonData("🎥 MP4", "dl_mp4|"+linkID),
		),
	)
	reply := tgbotapi.NewMessage(chatID, "✅ **Lien détecté !** Choisissez le format :")
	reply.ParseMode = tgbotapi.ModeMarkdown
	reply.ReplyMarkup = markup
	b.send(reply)
}

func (b *UserBot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	data := cb.Data
	chatID := cb.Message.Chat.ID
	b.answerCallback(cb.ID)

	switch {
	case strings.HasPrefix(data, "dl_"):
		b.startDownload(ctx, chatID, data)
	case strings.HasPrefix(data, "buy_"):
		b.requestPurchase(ctx, chatID, strings.TrimPrefix(data, "buy_"))
	}
}

func (b *UserBot) startDownload(ctx context.Context, chatID int64, data string) {
	parts := strings.SplitN(data, "|", 2)
	if len(parts) != 2 {
		return
	}
	mode := strings.TrimPrefix(parts[0], "dl_")
	url, ok := b.takeLink(parts[1])
	if !ok {
		b.reply(chatID, "❌ Lien expiré, veuillez renvoyer le lien.")
		return
	}

	account, err := b.ensureAccount(ctx, chatID)
	if err != nil {
		b.logError(ctx, "download", chatID, err)
		b.reply(chatID, "❌ Service indisponible, réessayez plus tard.")
		return
	}

	b.reply(chatID, "📡 **Analyse...**")
	result, err := b.service.StartDownload(ctx, account.ID, url, mode)
	switch {
	case errors.Is(err, domain.ErrInsufficientCredits):
		b.reply(chatID, "🚫 **Crédits insuffisants.** /shop pour recharger.")
		return
	case err != nil:
		b.logError(ctx, "download", chatID, err)
		b.reply(chatID, "❌ Le téléchargement a échoué. Votre crédit a été remboursé.")
		return
	}

	file := tgbotapi.FilePath(result.Path)
	if mode == "mp4" {
		video := tgbotapi.NewVideo(chatID, file)
		video.Caption = "🎥 Vidéo prête !"
		b.send(video)
	} else {
		audio := tgbotapi.NewAudio(chatID, file)
		audio.Caption = "🎵 Audio prêt !"
		b.send(audio)
	}
}

func (b *UserBot) requestPurchase(ctx context.Context, chatID int64, pack string) {
	account, err := b.ensureAccount(ctx, chatID)
	if err != nil {
		b.logError(ctx, "purchase", chatID, err)
		b.reply(chatID, "❌ Service indisponible, réessayez plus tard.")
		return
	}
	request, err := b.service.CreatePurchase(ctx, account.ID, pack, domain.ChannelChat)
	switch {
	case errors.Is(err, domain.ErrInvalidPackSize):
		b.reply(chatID, "❌ Pack inconnu.")
	case err != nil:
		b.logError(ctx, "purchase", chatID, err)
		b.reply(chatID, "❌ Service indisponible, réessayez plus tard.")
	default:
		b.reply(chatID, fmt.Sprintf(
			"⏳ **Demande pour le pack %d envoyée.**\nUn administrateur vérifie votre compte... (réf: %s)",
			request.Pack.Credits(), request.ID,
		))
	}
}

func (b *UserBot) storeLink(url string) string {
	b.linksMu.Lock()
	defer b.linksMu.Unlock()
	b.linkSeq++
	id := strconv.Itoa(b.linkSeq)
	b.links[id] = url
	return id
}

func (b *UserBot) takeLink(id string) (string, bool) {
	b.linksMu.Lock()
	defer b.linksMu.Unlock()
	url, ok := b.links[id]
	if ok {
		delete(b.links, id)
	}
	return url, ok
}

func (b *UserBot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	b.send(msg)
}

func (b *UserBot) send(c tgbotapi.Chattable) {
	if _, err := b.bot.Send(c); err != nil {
		b.logger.Warn("telegram send failed",
			slog.String("module", "telegram"),
			slog.String("layer", "adapter"),
			slog.String("error", err.Error()),
		)
	}
}

func (b *UserBot) answerCallback(id string) {
	if _, err := b.bot.Request(tgbotapi.NewCallback(id, "")); err != nil {
		b.logger.Warn("telegram callback ack failed",
			slog.String("module", "telegram"),
			slog.String("layer", "adapter"),
			slog.String("error", err.Error()),
		)
	}
}

func (b *UserBot) logError(ctx context.Context, operation string, chatID int64, err error) {
	b.logger.ErrorContext(ctx, "user bot operation failed",
		slog.String("module", "telegram"),
		slog.String("layer", "adapter"),
		slog.String("operation", operation),
		slog.Int64("chat_id", chatID),
		slog.String("error", err.Error()),
	)
}

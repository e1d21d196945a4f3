package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dexscreener-telegram-bot/internal/tracker"
	"dexscreener-telegram-bot/internal/types"
	"dexscreener-telegram-bot/lib/helpers"
	"dexscreener-telegram-bot/lib/translation"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// commandTimeout bounds the outbound calls a single command may spend on
// pair resolution and price fetches.
const commandTimeout = 30 * time.Second

// TrackerService is the alert lifecycle surface the bot drives.
type TrackerService interface {
	Create(ctx context.Context, chatID int64, tokenAddress string) (types.Alert, error)
	Delete(alertID string) error
	List(ctx context.Context, chatID int64) []tracker.ListEntry
}

// NewBot creates new telegram bot
func NewBot(c BotConfig, service TrackerService) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(c.Token)
	if err != nil {
		return nil, errors.Wrap(err, "could not create telegram bot")
	}

	bot.Debug = c.Debug

	return &Bot{
		Bot:     bot,
		Config:  c,
		Tracker: service,
	}, nil
}

// GetUpdatesChannel gets new updates updates
func (b *Bot) GetUpdatesChannel() (tgbotapi.UpdatesChannel, error) {
	updatesConfig := tgbotapi.NewUpdate(0)
	if b.Config.UpdatesTimeout > 0 {
		updatesConfig.Timeout = b.Config.UpdatesTimeout
	}
	return b.Bot.GetUpdatesChan(updatesConfig), nil
}

// SendMessage sends a telegram message
func (b *Bot) SendMessage(m Message) error {
	msg := tgbotapi.NewMessage(int64(m.ChatID), m.Text)
	msg.ReplyToMessageID = m.MessageID
	msg.DisableWebPagePreview = true
	msg.ParseMode = "MarkdownV2"
	_, err := b.Bot.Send(msg)
	return errors.Wrapf(err, "could not send message: %v", m)
}

// Notify implements the monitor's notification sink.
func (b *Bot) Notify(chatID int64, text string) error {
	return b.SendMessage(Message{ChatID: int(chatID), Text: text})
}

// HandleUpdate processes Telegram updates
func (b *Bot) HandleUpdate(u tgbotapi.Update) string {
	log.Debugf("received command: %s", u.Message.Command())

	chatID := u.Message.Chat.ID
	args := strings.TrimSpace(u.Message.CommandArguments())

	switch u.Message.Command() {
	case "start":
		return helpers.EscapeMarkdownV2(fmt.Sprintf(
			translation.Translate("Welcome! Send me the token address (e.g., 5D27E...pump), and I'll track its price against %s."),
			b.Config.QuoteSymbol,
		))
	case "track":
		return b.handleTrackCommand(chatID, args)
	case "delete":
		return b.handleDeleteCommand(args)
	case "list":
		return b.handleListCommand(chatID)
	}

	return helpers.EscapeMarkdownV2(translation.Translate("Commands: /track <tokenAddress>, /list, /delete <alertId>"))
}

func (b *Bot) handleTrackCommand(chatID int64, tokenAddress string) string {
	if tokenAddress == "" {
		return helpers.EscapeMarkdownV2(translation.Translate("Please provide a token address. Example: /track 5D27E...pump"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	alert, err := b.Tracker.Create(ctx, chatID, tokenAddress)
	switch {
	case errors.Is(err, tracker.ErrQuotaExceeded):
		return helpers.EscapeMarkdownV2(fmt.Sprintf(
			translation.Translate("You can only track a maximum of %d tokens at a time. Delete some before adding new ones."),
			tracker.MaxAlertsPerChat,
		))
	case errors.Is(err, tracker.ErrPairNotFound):
		return helpers.EscapeMarkdownV2(fmt.Sprintf(
			translation.Translate("Could not find a %s trading pair for this token."),
			b.Config.QuoteSymbol,
		))
	case errors.Is(err, tracker.ErrPriceUnavailable):
		return helpers.EscapeMarkdownV2(translation.Translate("Failed to fetch the token price."))
	case err != nil:
		log.Errorf("track command failed for chat %d: %v", chatID, err)
		return helpers.EscapeMarkdownV2(translation.Translate("Failed to fetch the token price."))
	}

	return fmt.Sprintf(
		"🔔 *Tracking Started\\!*\n"+
			"📌 Alert ID: `%s`\n"+
			"🪙 Token: %s \\(%s\\)\n"+
			"💰 Starting Price: $%s\n"+
			"🏦 Market Cap: $%s\n"+
			"❌ Use `/delete %s` to stop tracking\\.",
		alert.AlertID,
		helpers.EscapeMarkdownV2(alert.TokenName),
		helpers.EscapeMarkdownV2(alert.TokenAddress),
		helpers.FormatPriceFixed(alert.BasePrice),
		helpers.FormatMarketCapUS(alert.MarketCap),
		alert.AlertID,
	)
}

func (b *Bot) handleDeleteCommand(alertID string) string {
	if alertID == "" {
		return helpers.EscapeMarkdownV2(translation.Translate("Please provide an alert ID to delete. Example: /delete abc12345"))
	}

	err := b.Tracker.Delete(alertID)
	switch {
	case errors.Is(err, tracker.ErrAlertNotFound):
		return helpers.EscapeMarkdownV2(translation.Translate("Alert ID not found."))
	case err != nil:
		log.Errorf("delete command failed for alert %s: %v", alertID, err)
		return helpers.EscapeMarkdownV2(translation.Translate("Failed to delete the alert. Please try again later."))
	}

	return fmt.Sprintf(translation.Translate("✅ Alert `%s` has been deleted successfully\\."), alertID)
}

func (b *Bot) handleListCommand(chatID int64) string {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	entries := b.Tracker.List(ctx, chatID)
	if len(entries) == 0 {
		return helpers.EscapeMarkdownV2(translation.Translate("You are not tracking any tokens."))
	}

	var list strings.Builder
	list.WriteString(translation.Translate("📋 *Your Active Alerts:*\n"))
	for idx, entry := range entries {
		currentPrice := "N/A"
		currentMarketCap := "N/A"
		currentMultiple := "N/A"
		if entry.Available {
			currentPrice = "$" + helpers.FormatPriceFixed(entry.CurrentPrice)
			currentMarketCap = "$" + helpers.FormatMarketCapUS(entry.CurrentMarketCap)
			currentMultiple = helpers.EscapeMarkdownV2(fmt.Sprintf("%.2f", entry.CurrentMultiple))
		}

		list.WriteString(fmt.Sprintf(
			"\n%d\\. 🪙 *%s* \\(%s\\)\n"+
				"   📌 Alert ID: `%s`\n"+
				"   💰 Base Price: $%s\n"+
				"   💰 Current Price: %s\n"+
				"   🏦 Base Market Cap: $%s\n"+
				"   🏦 Current Market Cap: %s\n"+
				"   🔢 Current Multiple: %s\n",
			idx+1,
			helpers.EscapeMarkdownV2(entry.Alert.TokenName),
			helpers.EscapeMarkdownV2(entry.Alert.TokenAddress),
			entry.Alert.AlertID,
			helpers.FormatPriceFixed(entry.Alert.BasePrice),
			currentPrice,
			helpers.FormatMarketCapUS(entry.Alert.MarketCap),
			currentMarketCap,
			currentMultiple,
		))
	}

	return list.String()
}

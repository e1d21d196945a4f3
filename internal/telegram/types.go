package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// BotConfig configuration of the bot
type BotConfig struct {
	Token          string
	Debug          bool
	UpdatesTimeout int
	QuoteSymbol    string
}

// Bot telegram interaction client
type Bot struct {
	Bot     *tgbotapi.BotAPI
	Config  BotConfig
	Tracker TrackerService
}

// Message a telegram message struct
type Message struct {
	ChatID    int
	MessageID int
	Text      string
}

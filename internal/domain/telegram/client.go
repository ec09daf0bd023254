package telegram

import "gopkg.in/telebot.v3"

// Client sends messages to a Telegram chat. The scheduler posts recaps through it
// without depending on a running bot.
type Client interface {
	SendMessage(chatID int64, text string, options *telebot.SendOptions) error
}

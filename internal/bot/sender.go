package bot

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// Sender is the slice of the Telegram client the application depends on.
// *tgbotapi.BotAPI satisfies it; tests substitute a recording fake. The
// concrete client is constructed once in the entry point and passed down.
type Sender interface {
	// Send delivers a message, location or photo to a chat.
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)

	// Request performs a raw API call, used to acknowledge callback queries.
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

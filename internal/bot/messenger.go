package bot

import (
	"context"

	api "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramMessenger adapts the bot API to the narrow outbound interface the
// moderation and notifier packages consume.
type TelegramMessenger struct {
	bot *api.BotAPI
}

func NewMessenger(bot *api.BotAPI) *TelegramMessenger {
	return &TelegramMessenger{bot: bot}
}

func (m *TelegramMessenger) SendText(ctx context.Context, chatID int64, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		_, err := m.bot.Send(api.NewMessage(chatID, text))
		return err
	}
}

func (m *TelegramMessenger) SendPrompt(ctx context.Context, chatID int64, text string, markup api.InlineKeyboardMarkup) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		msg := api.NewMessage(chatID, text)
		msg.ReplyMarkup = markup
		_, err := m.bot.Send(msg)
		return err
	}
}

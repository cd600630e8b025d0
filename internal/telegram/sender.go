package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// Sender delivers outbound messages through the Bot API behind a global
// rate limiter (the API caps bots at roughly 30 messages per second).
type Sender struct {
	bot     *tgbotapi.BotAPI
	limiter *rate.Limiter
}

func NewSender(bot *tgbotapi.BotAPI) *Sender {
	return &Sender{
		bot:     bot,
		limiter: rate.NewLimiter(rate.Limit(25), 5),
	}
}

// SendMessage sends a plain text message to the given chat. This makes
// Sender satisfy scheduler.Sender.
func (s *Sender) SendMessage(chatID int64, text string) error {
	_ = s.limiter.Wait(context.Background())
	_, err := s.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// Reply sends a text message as a reply to an existing message.
func (s *Sender) Reply(chatID int64, replyTo int, text string) error {
	_ = s.limiter.Wait(context.Background())
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo
	_, err := s.bot.Send(msg)
	return err
}

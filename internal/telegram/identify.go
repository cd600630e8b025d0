package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/del-passero/victim-of-the-day-bot/internal/domain"
)

func memberFromUser(u *tgbotapi.User) domain.Member {
	return domain.Member{
		ID:        u.ID,
		FirstName: u.FirstName,
		Username:  u.UserName,
		IsBot:     u.IsBot,
	}
}

// target resolves the user a command is aimed at, in order of preference:
// the replied-to message's author, a text_mention entity, an @username
// matched against stored member records, or a raw numeric id argument.
// Returns domain.ErrUnknownUser when nothing resolves.
func (r *Router) target(ctx context.Context, msg *tgbotapi.Message) (domain.Member, error) {
	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil {
		return memberFromUser(msg.ReplyToMessage.From), nil
	}

	if msg.Entities != nil {
		for _, e := range msg.Entities {
			if e.Type == "text_mention" && e.User != nil {
				return memberFromUser(e.User), nil
			}
		}
	}

	for _, arg := range strings.Fields(msg.CommandArguments()) {
		if strings.HasPrefix(arg, "@") {
			m, err := r.repo.MemberByUsername(ctx, msg.Chat.ID, arg)
			if err == nil {
				return *m, nil
			}
			continue
		}
		if id, err := strconv.ParseInt(arg, 10, 64); err == nil && id > 0 {
			if m, err := r.repo.Member(ctx, msg.Chat.ID, id); err == nil {
				return *m, nil
			}
			return domain.Member{ID: id}, nil
		}
	}

	return domain.Member{}, domain.ErrUnknownUser
}

// mentionFor builds display text for a user id: the stored member record
// first, then a live Bot API lookup, then a raw identifier.
func (r *Router) mentionFor(ctx context.Context, chatID, userID int64) string {
	if m, err := r.repo.Member(ctx, chatID, userID); err == nil {
		return m.Mention()
	}
	cm, err := r.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
	})
	if err == nil && cm.User != nil {
		return memberFromUser(cm.User).Mention()
	}
	return fmt.Sprintf("User %d", userID)
}

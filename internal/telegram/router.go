package telegram

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/del-passero/victim-of-the-day-bot/internal/domain"
	"github.com/del-passero/victim-of-the-day-bot/internal/game"
	"github.com/del-passero/victim-of-the-day-bot/internal/store"
)

const adminCacheTTL = 5 * time.Minute

type adminEntry struct {
	owners  map[int64]bool // chat creator(s): the privileged selection subset
	admins  map[int64]bool // creator + administrators
	expires time.Time
}

// Router wires Telegram updates to handlers. It tracks activity from plain
// group messages and dispatches commands; admin lookups are cached briefly
// to keep privileged commands from hammering the Bot API.
type Router struct {
	bot    *tgbotapi.BotAPI
	log    *zap.Logger
	repo   store.Repo
	game   *game.Service
	sender *Sender
	clock  domain.Clock

	mu         sync.RWMutex
	adminCache map[int64]adminEntry
}

func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, repo store.Repo, g *game.Service, sender *Sender, clock domain.Clock) *Router {
	return &Router{
		bot:        bot,
		log:        log,
		repo:       repo,
		game:       g,
		sender:     sender,
		clock:      clock,
		adminCache: make(map[int64]adminEntry),
	}
}

// HandleUpdate routes a single update.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.From == nil {
		return
	}

	if msg.Chat.IsPrivate() {
		if msg.IsCommand() {
			r.reply(msg, welcomePrivateText)
		}
		return
	}
	if !msg.Chat.IsGroup() && !msg.Chat.IsSuperGroup() {
		return
	}

	// Activity tracking: every sender becomes a known member.
	if err := r.repo.TouchMember(ctx, msg.Chat.ID, memberFromUser(msg.From)); err != nil {
		r.log.Error("touch member failed", zap.Error(err), zap.Int64("chat", msg.Chat.ID))
	}

	if !msg.IsCommand() {
		return
	}
	r.dispatch(ctx, msg)
}

func (r *Router) dispatch(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		r.handleStart(ctx, msg)
	case "help":
		r.reply(msg, helpText)
	case "victim":
		r.handleVictim(ctx, msg)
	case "statistics":
		r.handleStatistics(ctx, msg)
	case "set_limit":
		r.handleSetLimit(ctx, msg)
	case "set_autorun":
		r.handleSetAutorun(ctx, msg)
	case "chance_owner":
		r.handleChanceOwner(ctx, msg)
	case "add_picker":
		r.handleAddPicker(ctx, msg)
	case "del_picker":
		r.handleDelPicker(ctx, msg)
	case "list_pickers":
		r.handleListPickers(ctx, msg)
	case "exclude":
		r.handleExclude(ctx, msg)
	case "include":
		r.handleInclude(ctx, msg)
	case "list_excluded":
		r.handleListExcluded(ctx, msg)
	case "add_phrase":
		r.handleAddPhrase(ctx, msg)
	case "del_phrase":
		r.handleDelPhrase(ctx, msg)
	case "list_phrases":
		r.handleListPhrases(ctx, msg)
	case "phrases_source":
		r.handlePhrasesSource(ctx, msg)
	case "reminder_on":
		r.handleReminderOn(ctx, msg)
	case "reminder_off":
		r.handleReminderOff(ctx, msg)
	case "reminder_time":
		r.handleReminderTime(ctx, msg)
	case "reminder_weekends_on":
		r.handleReminderWeekends(ctx, msg, false)
	case "reminder_weekends_off":
		r.handleReminderWeekends(ctx, msg, true)
	}
}

// chatAdmins returns the cached creator/admin identity sets for a chat. A
// Bot API failure degrades to empty sets: the caller then falls back to the
// trusted-picker list alone.
func (r *Router) chatAdmins(chatID int64) (owners, admins map[int64]bool) {
	r.mu.RLock()
	e, ok := r.adminCache[chatID]
	r.mu.RUnlock()
	if ok && time.Now().Before(e.expires) {
		return e.owners, e.admins
	}

	members, err := r.bot.GetChatAdministrators(tgbotapi.ChatAdministratorsConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		r.log.Warn("admin lookup failed", zap.Error(err), zap.Int64("chat", chatID))
		return map[int64]bool{}, map[int64]bool{}
	}

	e = adminEntry{
		owners:  make(map[int64]bool),
		admins:  make(map[int64]bool),
		expires: time.Now().Add(adminCacheTTL),
	}
	for _, m := range members {
		if m.User == nil {
			continue
		}
		e.admins[m.User.ID] = true
		if m.IsCreator() {
			e.owners[m.User.ID] = true
		}
	}
	r.mu.Lock()
	r.adminCache[chatID] = e
	r.mu.Unlock()
	return e.owners, e.admins
}

// isPrivileged reports whether the user may run privileged commands: chat
// creator, administrator, or trusted picker.
func (r *Router) isPrivileged(ctx context.Context, chatID, userID int64) bool {
	_, admins := r.chatAdmins(chatID)
	if admins[userID] {
		return true
	}
	trusted, err := r.repo.TrustedPickers(ctx, chatID)
	if err != nil {
		r.log.Error("read trusted pickers failed", zap.Error(err), zap.Int64("chat", chatID))
		return false
	}
	for _, id := range trusted {
		if id == userID {
			return true
		}
	}
	return false
}

func (r *Router) reply(msg *tgbotapi.Message, text string) {
	if err := r.sender.Reply(msg.Chat.ID, msg.MessageID, text); err != nil {
		r.log.Error("reply failed", zap.Error(err), zap.Int64("chat", msg.Chat.ID))
	}
}

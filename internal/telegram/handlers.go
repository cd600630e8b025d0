package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/del-passero/victim-of-the-day-bot/internal/domain"
)

// requirePrivilege guards owner/admin/trusted-picker commands. The denial
// uses the chat's only-owner phrase pool.
func (r *Router) requirePrivilege(ctx context.Context, msg *tgbotapi.Message) bool {
	if r.isPrivileged(ctx, msg.Chat.ID, msg.From.ID) {
		return true
	}
	r.reply(msg, r.game.DenialPhrase(ctx, msg.Chat.ID, domain.CategoryOnlyOwner))
	return false
}

// requireTarget resolves the user a command is aimed at, replying with a
// hint when nothing resolves.
func (r *Router) requireTarget(ctx context.Context, msg *tgbotapi.Message) (domain.Member, bool) {
	m, err := r.target(ctx, msg)
	if err != nil {
		r.reply(msg, unknownTargetText)
		return domain.Member{}, false
	}
	return m, true
}

// updateChat wraps the transactional settings update with uniform error
// reporting for command handlers.
func (r *Router) updateChat(ctx context.Context, msg *tgbotapi.Message, fn func(*domain.ChatSettings) error) bool {
	if err := r.repo.UpdateChat(ctx, msg.Chat.ID, fn); err != nil {
		r.log.Error("update chat failed", zap.Error(err), zap.Int64("chat", msg.Chat.ID))
		r.reply(msg, internalErrorText)
		return false
	}
	return true
}

func (r *Router) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	c, err := r.repo.GetChat(ctx, msg.Chat.ID)
	if err != nil {
		r.log.Error("read chat failed", zap.Error(err), zap.Int64("chat", msg.Chat.ID))
		c = domain.DefaultChatSettings(msg.Chat.ID, r.clock.Now())
	}
	limit := c.DailyLimit
	if limit < 1 {
		limit = domain.DefaultDailyLimit
	}
	r.reply(msg, fmt.Sprintf(welcomeGroupFmt, limit))
}

func (r *Router) handleVictim(ctx context.Context, msg *tgbotapi.Message) {
	if !r.requirePrivilege(ctx, msg) {
		return
	}

	owners, _ := r.chatAdmins(msg.Chat.ID)
	res, err := r.game.Pick(ctx, msg.Chat.ID, msg.From.ID, owners)

	var limitErr *domain.LimitExhaustedError
	switch {
	case errors.Is(err, domain.ErrInsufficientCandidates):
		r.reply(msg, fmt.Sprintf(insufficientFmt, domain.MinCandidates))
	case errors.As(err, &limitErr):
		denial := r.game.DenialPhrase(ctx, msg.Chat.ID, domain.CategoryCant)
		r.reply(msg, fmt.Sprintf(limitSpentFmt, denial, limitErr.Limit))
	case err != nil:
		r.log.Error("pick failed", zap.Error(err), zap.Int64("chat", msg.Chat.ID))
		r.reply(msg, internalErrorText)
	default:
		r.log.Info("victim picked",
			zap.Int64("chat", msg.Chat.ID),
			zap.Int64("victim", res.Victim.ID),
			zap.String("category", res.Category.String()))
		r.reply(msg, res.Text)
	}
}

func (r *Router) handleStatistics(ctx context.Context, msg *tgbotapi.Message) {
	entries, err := r.game.Statistics(ctx, msg.Chat.ID)
	if err != nil {
		r.log.Error("read stats failed", zap.Error(err), zap.Int64("chat", msg.Chat.ID))
		r.reply(msg, internalErrorText)
		return
	}
	if len(entries) == 0 {
		r.reply(msg, noStatsText)
		return
	}
	var b strings.Builder
	b.WriteString(statsHeader)
	for i, e := range entries {
		fmt.Fprintf(&b, "\n%d. %s — %d", i+1, r.mentionFor(ctx, msg.Chat.ID, e.UserID), e.Hits)
	}
	r.reply(msg, b.String())
}

func (r *Router) handleSetLimit(ctx context.Context, msg *tgbotapi.Message) {
	if !r.requirePrivilege(ctx, msg) {
		return
	}
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		c, err := r.repo.GetChat(ctx, msg.Chat.ID)
		if err != nil {
			r.reply(msg, internalErrorText)
			return
		}
		r.reply(msg, fmt.Sprintf("Current limit: %d draw(s) per day.", c.DailyLimit))
		return
	}
	n, err := domain.ParseLimit(args)
	if err != nil {
		r.replyUsage(msg, err)
		return
	}
	if r.updateChat(ctx, msg, func(c *domain.ChatSettings) error {
		c.DailyLimit = n
		return nil
	}) {
		r.reply(msg, fmt.Sprintf("The daily draw limit is now %d.", n))
	}
}

func (r *Router) handleSetAutorun(ctx context.Context, msg *tgbotapi.Message) {
	if !r.requirePrivilege(ctx, msg) {
		return
	}
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		c, err := r.repo.GetChat(ctx, msg.Chat.ID)
		if err != nil {
			r.reply(msg, internalErrorText)
			return
		}
		r.reply(msg, fmt.Sprintf("Current autorun threshold: %d idle day(s).", c.AutorunDays))
		return
	}
	n, err := domain.ParseAutorunDays(args)
	if err != nil {
		r.replyUsage(msg, err)
		return
	}
	if r.updateChat(ctx, msg, func(c *domain.ChatSettings) error {
		c.AutorunDays = n
		return nil
	}) {
		r.reply(msg, fmt.Sprintf("Autorun fires after %d idle day(s) now.", n))
	}
}

func (r *Router) handleChanceOwner(ctx context.Context, msg *tgbotapi.Message) {
	if !r.requirePrivilege(ctx, msg) {
		return
	}
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		c, err := r.repo.GetChat(ctx, msg.Chat.ID)
		if err != nil {
			r.reply(msg, internalErrorText)
			return
		}
		if c.BiasMode == domain.BiasExplicit {
			r.reply(msg, fmt.Sprintf("Owner chance: %.2f.", c.ExplicitBias()))
		} else {
			r.reply(msg, "Owner chance: auto (same odds as everyone).")
		}
		return
	}
	mode, p, err := domain.ParseOwnerChance(args)
	if err != nil {
		r.replyUsage(msg, err)
		return
	}
	if r.updateChat(ctx, msg, func(c *domain.ChatSettings) error {
		c.BiasMode = mode
		if mode == domain.BiasExplicit {
			c.OwnerBias = p
		}
		return nil
	}) {
		if mode == domain.BiasExplicit {
			r.reply(msg, fmt.Sprintf("Owner chance set to %.2f.", p))
		} else {
			r.reply(msg, "Owner chance set to auto.")
		}
	}
}

func (r *Router) handleAddPicker(ctx context.Context, msg *tgbotapi.Message) {
	if !r.requirePrivilege(ctx, msg) {
		return
	}
	target, ok := r.requireTarget(ctx, msg)
	if !ok {
		return
	}
	if err := r.repo.AddTrustedPicker(ctx, msg.Chat.ID, target.ID); err != nil {
		r.log.Error("add picker failed", zap.Error(err), zap.Int64("chat", msg.Chat.ID))
		r.reply(msg, internalErrorText)
		return
	}
	r.reply(msg, pickerAddedText)
}

func (r *Router) handleDelPicker(ctx context.Context, msg *tgbotapi.Message) {
	if !r.requirePrivilege(ctx, msg) {
		return
	}
	target, ok := r.requireTarget(ctx, msg)
	if !ok {
		return
	}
	if err := r.repo.RemoveTrustedPicker(ctx, msg.Chat.ID, target.ID); err != nil {
		r.log.Error("del picker failed", zap.Error(err), zap.Int64("chat", msg.Chat.ID))
		r.reply(msg, internalErrorText)
		return
	}
	r.reply(msg, pickerRemovedText)
}

func (r *Router) handleListPickers(ctx context.Context, msg *tgbotapi.Message) {
	ids, err := r.repo.TrustedPickers(ctx, msg.Chat.ID)
	if err != nil {
		r.reply(msg, internalErrorText)
		return
	}
	if len(ids) == 0 {
		r.reply(msg, noPickersText)
		return
	}
	r.reply(msg, "Trusted pickers: "+r.mentionList(ctx, msg.Chat.ID, ids))
}

func (r *Router) handleExclude(ctx context.Context, msg *tgbotapi.Message) {
	if !r.requirePrivilege(ctx, msg) {
		return
	}
	target, ok := r.requireTarget(ctx, msg)
	if !ok {
		return
	}
	err := r.game.Exclude(ctx, msg.Chat.ID, target.ID)
	switch {
	case errors.Is(err, domain.ErrInsufficientCandidates):
		r.reply(msg, excludeRefused)
	case err != nil:
		r.log.Error("exclude failed", zap.Error(err), zap.Int64("chat", msg.Chat.ID))
		r.reply(msg, internalErrorText)
	default:
		r.reply(msg, excludedText)
	}
}

func (r *Router) handleInclude(ctx context.Context, msg *tgbotapi.Message) {
	if !r.requirePrivilege(ctx, msg) {
		return
	}
	target, ok := r.requireTarget(ctx, msg)
	if !ok {
		return
	}
	if err := r.game.Include(ctx, msg.Chat.ID, target.ID); err != nil {
		r.log.Error("include failed", zap.Error(err), zap.Int64("chat", msg.Chat.ID))
		r.reply(msg, internalErrorText)
		return
	}
	r.reply(msg, includedText)
}

func (r *Router) handleListExcluded(ctx context.Context, msg *tgbotapi.Message) {
	ids, err := r.repo.Excluded(ctx, msg.Chat.ID)
	if err != nil {
		r.reply(msg, internalErrorText)
		return
	}
	if len(ids) == 0 {
		r.reply(msg, noExcludedText)
		return
	}
	r.reply(msg, "Excluded: "+r.mentionList(ctx, msg.Chat.ID, ids))
}

// categoryAndRest splits an argument string into an optional leading phrase
// category and the remainder. Without a recognized category the whole string
// belongs to the victim category.
func categoryAndRest(args string) (domain.Category, string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return domain.CategoryVictim, ""
	}
	if cat, ok := domain.ParseCategory(fields[0]); ok {
		return cat, strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(args), fields[0]))
	}
	return domain.CategoryVictim, strings.TrimSpace(args)
}

func (r *Router) handleAddPhrase(ctx context.Context, msg *tgbotapi.Message) {
	if !r.requirePrivilege(ctx, msg) {
		return
	}
	cat, text := categoryAndRest(msg.CommandArguments())
	if text == "" {
		r.reply(msg, addPhraseUsage)
		return
	}
	if err := r.repo.AddCustomPhrase(ctx, msg.Chat.ID, cat, text); err != nil {
		r.log.Error("add phrase failed", zap.Error(err), zap.Int64("chat", msg.Chat.ID))
		r.reply(msg, internalErrorText)
		return
	}
	r.reply(msg, phraseAddedText)
}

func (r *Router) handleDelPhrase(ctx context.Context, msg *tgbotapi.Message) {
	if !r.requirePrivilege(ctx, msg) {
		return
	}
	cat, rest := categoryAndRest(msg.CommandArguments())
	idx, err := domain.ParsePhraseIndex(rest)
	if err != nil {
		r.replyUsage(msg, err)
		return
	}
	ok, err := r.repo.DeleteCustomPhrase(ctx, msg.Chat.ID, cat, idx)
	if err != nil {
		r.log.Error("del phrase failed", zap.Error(err), zap.Int64("chat", msg.Chat.ID))
		r.reply(msg, internalErrorText)
		return
	}
	if !ok {
		r.reply(msg, phraseMissingText)
		return
	}
	r.reply(msg, phraseDeletedText)
}

func (r *Router) handleListPhrases(ctx context.Context, msg *tgbotapi.Message) {
	var b strings.Builder
	for _, cat := range domain.Categories() {
		phrases, err := r.repo.CustomPhrases(ctx, msg.Chat.ID, cat)
		if err != nil {
			r.reply(msg, internalErrorText)
			return
		}
		if len(phrases) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Custom phrases (%s):", cat)
		for i, p := range phrases {
			fmt.Fprintf(&b, "\n%d. %s", i, p)
		}
	}
	if b.Len() == 0 {
		r.reply(msg, noPhrasesText)
		return
	}
	r.reply(msg, b.String())
}

func (r *Router) handlePhrasesSource(ctx context.Context, msg *tgbotapi.Message) {
	if !r.requirePrivilege(ctx, msg) {
		return
	}
	fields := strings.Fields(msg.CommandArguments())
	if len(fields) == 0 {
		var b strings.Builder
		b.WriteString("Phrase sources:")
		for _, cat := range domain.Categories() {
			src, err := r.repo.PhraseSource(ctx, msg.Chat.ID, cat)
			if err != nil {
				r.reply(msg, internalErrorText)
				return
			}
			fmt.Fprintf(&b, "\n%s: %s", cat, src)
		}
		r.reply(msg, b.String())
		return
	}
	if len(fields) != 2 {
		r.reply(msg, phrasesSourceUsage)
		return
	}
	cat, ok := domain.ParseCategory(fields[0])
	if !ok {
		r.reply(msg, phrasesSourceUsage)
		return
	}
	src, ok := domain.ParsePhraseSource(fields[1])
	if !ok {
		r.reply(msg, phrasesSourceUsage)
		return
	}
	if err := r.repo.SetPhraseSource(ctx, msg.Chat.ID, cat, src); err != nil {
		r.log.Error("set phrase source failed", zap.Error(err), zap.Int64("chat", msg.Chat.ID))
		r.reply(msg, internalErrorText)
		return
	}
	r.reply(msg, fmt.Sprintf("Phrase source for %s is now %s.", cat, src))
}

func (r *Router) handleReminderOn(ctx context.Context, msg *tgbotapi.Message) {
	if !r.requirePrivilege(ctx, msg) {
		return
	}
	if r.updateChat(ctx, msg, func(c *domain.ChatSettings) error {
		c.Reminder.Enabled = true
		c.Reminder.SuspendedUntil = ""
		return nil
	}) {
		r.reply(msg, reminderOnText)
	}
}

func (r *Router) handleReminderOff(ctx context.Context, msg *tgbotapi.Message) {
	if !r.requirePrivilege(ctx, msg) {
		return
	}
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		if r.updateChat(ctx, msg, func(c *domain.ChatSettings) error {
			c.Reminder.Enabled = false
			return nil
		}) {
			r.reply(msg, reminderOffText)
		}
		return
	}
	days, err := domain.ParseSuspendDays(args)
	if err != nil {
		r.replyUsage(msg, err)
		return
	}
	until := domain.DayOf(r.clock.Now().Add(time.Duration(days) * 24 * time.Hour))
	if r.updateChat(ctx, msg, func(c *domain.ChatSettings) error {
		c.Reminder.SuspendedUntil = until
		return nil
	}) {
		r.reply(msg, fmt.Sprintf("Reminders suspended until %s.", until))
	}
}

func (r *Router) handleReminderTime(ctx context.Context, msg *tgbotapi.Message) {
	if !r.requirePrivilege(ctx, msg) {
		return
	}
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		r.reply(msg, reminderTimeUsage)
		return
	}
	mins, err := domain.ParseClockTime(args)
	if err != nil {
		r.replyUsage(msg, err)
		return
	}
	if r.updateChat(ctx, msg, func(c *domain.ChatSettings) error {
		c.Reminder.MinuteOfDay = mins
		return nil
	}) {
		r.reply(msg, fmt.Sprintf("Reminder time set to %s.", domain.FormatMinutes(mins)))
	}
}

func (r *Router) handleReminderWeekends(ctx context.Context, msg *tgbotapi.Message, skip bool) {
	if !r.requirePrivilege(ctx, msg) {
		return
	}
	if r.updateChat(ctx, msg, func(c *domain.ChatSettings) error {
		c.Reminder.SkipWeekends = skip
		return nil
	}) {
		if skip {
			r.reply(msg, reminderWeekendsOff)
		} else {
			r.reply(msg, reminderWeekendsOn)
		}
	}
}

// replyUsage surfaces a MalformedInputError's hint; anything else gets the
// generic error text.
func (r *Router) replyUsage(msg *tgbotapi.Message, err error) {
	var malformed *domain.MalformedInputError
	if errors.As(err, &malformed) {
		r.reply(msg, malformed.Usage)
		return
	}
	r.reply(msg, internalErrorText)
}

func (r *Router) mentionList(ctx context.Context, chatID int64, ids []int64) string {
	mentions := make([]string, 0, len(ids))
	for _, id := range ids {
		mentions = append(mentions, r.mentionFor(ctx, chatID, id))
	}
	return strings.Join(mentions, ", ")
}

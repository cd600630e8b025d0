package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/del-passero/victim-of-the-day-bot/internal/domain"
	"github.com/del-passero/victim-of-the-day-bot/internal/game"
	"github.com/del-passero/victim-of-the-day-bot/internal/store"
)

// Sender is the minimal interface the scheduler needs to deliver a message.
// telegram.Sender implements it.
type Sender interface {
	SendMessage(chatID int64, text string) error
}

// ReminderText is the clock-triggered nudge. Exposed so tests and handlers
// can reference the exact text.
const ReminderText = "⚠️ Don't forget to pick the victim of the day! Use /victim."

// Scheduler periodically sweeps all known chats and fires idle-triggered
// autoruns and clock-triggered reminders.
type Scheduler struct {
	repo     store.Repo
	game     *game.Service
	clock    domain.Clock
	sender   Sender
	log      *zap.Logger
	interval time.Duration
}

func New(repo store.Repo, g *game.Service, clock domain.Clock, sender Sender, log *zap.Logger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{repo: repo, game: g, clock: clock, sender: sender, log: log, interval: interval}
}

// Run starts the loop until ctx is canceled. An in-progress sweep is
// interrupted cleanly between per-chat iterations.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep performs one cycle over every chat with a settings record. A failure
// in one chat never aborts the rest of the sweep.
func (s *Scheduler) Sweep(ctx context.Context) {
	ids, err := s.repo.ListChatIDs(ctx)
	if err != nil {
		s.log.Error("list chats failed", zap.Error(err))
		return
	}
	now := s.clock.Now()
	for _, chatID := range ids {
		if ctx.Err() != nil {
			return
		}
		if err := s.processChat(ctx, chatID, now); err != nil {
			s.log.Error("chat sweep failed", zap.Error(err), zap.Int64("chat", chatID))
		}
	}
}

// processChat fires at most one scheduled action per chat per sweep:
// autorun takes precedence over the reminder (a fresh draw makes the nudge
// redundant).
func (s *Scheduler) processChat(ctx context.Context, chatID int64, now time.Time) error {
	c, err := s.repo.GetChat(ctx, chatID)
	if err != nil {
		return err
	}

	if s.autorunDue(c, now) {
		return s.fireAutorun(ctx, chatID)
	}
	if domain.ReminderDue(c, now) && domain.DecideRun(c, domain.DayOf(now)).Allowed {
		return s.fireReminder(ctx, chatID, now)
	}
	return nil
}

// autorunDue uses the rolling-24h measurement: the chat is idle once a full
// autorun_days × 24h has elapsed since the last run instant, regardless of
// calendar day boundaries. Chats that never ran are not autorun targets.
func (s *Scheduler) autorunDue(c *domain.ChatSettings, now time.Time) bool {
	if c.LastRunAt == nil {
		return false
	}
	days := c.AutorunDays
	if days < 1 {
		days = domain.DefaultAutorunDays
	}
	return now.Sub(*c.LastRunAt) >= time.Duration(days)*24*time.Hour
}

func (s *Scheduler) fireAutorun(ctx context.Context, chatID int64) error {
	res, err := s.game.AutoRun(ctx, chatID)
	if errors.Is(err, domain.ErrInsufficientCandidates) {
		return nil // chat shrank below the minimum; try again next sweep
	}
	if err != nil {
		return err
	}
	s.log.Info("autorun fired", zap.Int64("chat", chatID), zap.Int64("victim", res.Victim.ID))
	return s.sender.SendMessage(chatID, res.Text)
}

func (s *Scheduler) fireReminder(ctx context.Context, chatID int64, now time.Time) error {
	if err := s.sender.SendMessage(chatID, ReminderText); err != nil {
		return err
	}
	today := domain.DayOf(now)
	return s.repo.UpdateChat(ctx, chatID, func(c *domain.ChatSettings) error {
		c.Reminder.LastSentDate = today
		return nil
	})
}

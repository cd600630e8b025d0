package game

import (
	"context"

	"go.uber.org/zap"

	"github.com/del-passero/victim-of-the-day-bot/internal/domain"
	"github.com/del-passero/victim-of-the-day-bot/internal/store"
)

// Service runs the pick pipeline: limit gate → candidate resolver →
// selection engine → stat recording. It owns no transport; callers get back
// a fully formatted announcement and deliver it themselves.
type Service struct {
	repo   store.Repo
	clock  domain.Clock
	picker *domain.Picker
	log    *zap.Logger
}

func New(repo store.Repo, clock domain.Clock, picker *domain.Picker, log *zap.Logger) *Service {
	return &Service{repo: repo, clock: clock, picker: picker, log: log}
}

// PickResult is one completed draw.
type PickResult struct {
	Victim   domain.Member
	Category domain.Category
	Text     string // announcement, ready to send
}

// Pick runs one user-invoked draw. privileged is the owner/admin identity
// set used for biased selection. Returns domain.ErrInsufficientCandidates,
// *domain.LimitExhaustedError, or a storage error.
func (s *Service) Pick(ctx context.Context, chatID, invokerID int64, privileged map[int64]bool) (*PickResult, error) {
	pool, err := s.candidates(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if len(pool) < domain.MinCandidates {
		return nil, domain.ErrInsufficientCandidates
	}

	now := s.clock.Now()
	today := domain.DayOf(now)

	// Acquire the run slot and commit it in one transaction, before the
	// draw. A command racing the scheduler can then never both pass the
	// gate on the last slot.
	var snapshot domain.ChatSettings
	err = s.repo.UpdateChat(ctx, chatID, func(c *domain.ChatSettings) error {
		d := domain.DecideRun(c, today)
		if !d.Allowed {
			return &domain.LimitExhaustedError{Limit: d.Limit}
		}
		c.ApplyRun(today, now)
		snapshot = *c
		return nil
	})
	if err != nil {
		return nil, err
	}

	bias := domain.EffectiveBias(&snapshot, pool, privileged)
	victimID, cat := s.picker.Pick(pool, privileged, bias)

	res, err := s.announce(ctx, chatID, victimID, cat)
	if err != nil {
		return nil, err
	}
	if invokerID == victimID && cat == domain.CategoryVictim {
		res.Text = domain.SelfTargetPrefix + "\n\n" + res.Text
	}
	return res, nil
}

// AutoRun runs a scheduler-triggered draw. The limit gate is bypassed: the
// run is committed as approved, starting a fresh count for today. Selection
// is uniform (no privileged subset).
func (s *Service) AutoRun(ctx context.Context, chatID int64) (*PickResult, error) {
	pool, err := s.candidates(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if len(pool) < domain.MinCandidates {
		return nil, domain.ErrInsufficientCandidates
	}

	now := s.clock.Now()
	today := domain.DayOf(now)
	if err := s.repo.UpdateChat(ctx, chatID, func(c *domain.ChatSettings) error {
		c.ApplyRun(today, now)
		return nil
	}); err != nil {
		return nil, err
	}

	victimID, cat := s.picker.Pick(pool, nil, 0)
	res, err := s.announce(ctx, chatID, victimID, cat)
	if err != nil {
		return nil, err
	}
	res.Text = domain.AutorunPrefix + "\n\n" + res.Text
	return res, nil
}

// candidates resolves the eligible pool. Persistence read failures are
// logged and degrade to an empty pool rather than aborting the draw path.
func (s *Service) candidates(ctx context.Context, chatID int64) ([]int64, error) {
	members, err := s.repo.Members(ctx, chatID)
	if err != nil {
		s.log.Error("read members failed", zap.Error(err), zap.Int64("chat", chatID))
		members = nil
	}
	excluded, err := s.repo.Excluded(ctx, chatID)
	if err != nil {
		s.log.Error("read exclusions failed", zap.Error(err), zap.Int64("chat", chatID))
		excluded = nil
	}
	excl := make(map[int64]bool, len(excluded))
	for _, id := range excluded {
		excl[id] = true
	}
	return domain.ResolveCandidates(members, excl), nil
}

// announce records the hit and formats the announcement for a drawn victim.
func (s *Service) announce(ctx context.Context, chatID, victimID int64, cat domain.Category) (*PickResult, error) {
	victim := domain.Member{ID: victimID}
	if m, err := s.repo.Member(ctx, chatID, victimID); err == nil {
		victim = *m
	}

	phrases, err := s.Phrases(ctx, chatID, cat)
	if err != nil {
		return nil, err
	}
	text := domain.FormatPhrase(s.picker.PickPhrase(phrases), victim.Mention())

	if err := s.repo.IncrementHit(ctx, chatID, victimID); err != nil {
		s.log.Error("increment stat failed", zap.Error(err),
			zap.Int64("chat", chatID), zap.Int64("user", victimID))
	}

	return &PickResult{Victim: victim, Category: cat, Text: text}, nil
}

// Phrases returns the effective template pool for a category, honoring the
// chat's configured source. A custom-only source with no custom phrases
// falls back to the builtins so an announcement can always be produced.
func (s *Service) Phrases(ctx context.Context, chatID int64, cat domain.Category) ([]string, error) {
	src, err := s.repo.PhraseSource(ctx, chatID, cat)
	if err != nil {
		s.log.Error("read phrase source failed", zap.Error(err), zap.Int64("chat", chatID))
		src = domain.SourceAll
	}
	custom, err := s.repo.CustomPhrases(ctx, chatID, cat)
	if err != nil {
		s.log.Error("read custom phrases failed", zap.Error(err), zap.Int64("chat", chatID))
		custom = nil
	}

	var pool []string
	switch src {
	case domain.SourceBuiltin:
		pool = domain.BuiltinPhrases(cat)
	case domain.SourceCustom:
		pool = custom
	default:
		pool = append(append([]string{}, domain.BuiltinPhrases(cat)...), custom...)
	}
	if len(pool) == 0 {
		pool = domain.BuiltinPhrases(cat)
	}
	return pool, nil
}

// Exclude validates the pool invariant and adds the user to the exclusion
// set. The candidate being excluded is subtracted before counting; if fewer
// than MinCandidates would remain the exclusion is rejected and nothing
// changes.
func (s *Service) Exclude(ctx context.Context, chatID, userID int64) error {
	pool, err := s.candidates(ctx, chatID)
	if err != nil {
		return err
	}
	remaining := 0
	for _, id := range pool {
		if id != userID {
			remaining++
		}
	}
	if remaining < domain.MinCandidates {
		return domain.ErrInsufficientCandidates
	}
	return s.repo.AddExcluded(ctx, chatID, userID)
}

// Include returns a user to the draw pool.
func (s *Service) Include(ctx context.Context, chatID, userID int64) error {
	return s.repo.RemoveExcluded(ctx, chatID, userID)
}

// Statistics returns the chat's hit table, most-hit first.
func (s *Service) Statistics(ctx context.Context, chatID int64) ([]domain.StatEntry, error) {
	return s.repo.Hits(ctx, chatID)
}

// DenialPhrase picks a response template for the only-owner / limit-spent
// categories, honoring the chat's custom phrases for them.
func (s *Service) DenialPhrase(ctx context.Context, chatID int64, cat domain.Category) string {
	phrases, err := s.Phrases(ctx, chatID, cat)
	if err != nil || len(phrases) == 0 {
		phrases = domain.BuiltinPhrases(cat)
	}
	return s.picker.PickPhrase(phrases)
}

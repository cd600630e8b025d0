package game

import (
	"context"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/del-passero/victim-of-the-day-bot/internal/domain"
	"github.com/del-passero/victim-of-the-day-bot/internal/store"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

func testService(t *testing.T) (*Service, store.Repo, *fakeClock) {
	t.Helper()
	repo, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "game.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, loc)}

	svc := New(repo, clock, domain.NewPicker(rand.NewSource(1)), zap.NewNop())
	return svc, repo, clock
}

func seedMembers(t *testing.T, repo store.Repo, chatID int64, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, repo.TouchMember(context.Background(), chatID, domain.Member{
			ID: id, FirstName: "u", LastSeen: time.Now(),
		}))
	}
}

func TestPick_FullScenario(t *testing.T) {
	svc, repo, _ := testService(t)
	ctx := context.Background()
	seedMembers(t, repo, 1, 100, 200, 300)

	// limit 1, no prior run today: the first pick succeeds
	res, err := svc.Pick(ctx, 1, 100, nil)
	require.NoError(t, err)
	require.Contains(t, []int64{100, 200, 300}, res.Victim.ID)
	assert.Equal(t, domain.CategoryVictim, res.Category)
	assert.NotEmpty(t, res.Text)

	// the winner's stat went from 0 to 1
	hits, err := svc.Statistics(ctx, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, res.Victim.ID, hits[0].UserID)
	assert.Equal(t, 1, hits[0].Hits)

	// a second pick the same day is denied with limit=1
	_, err = svc.Pick(ctx, 1, 100, nil)
	var limitErr *domain.LimitExhaustedError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, 1, limitErr.Limit)
}

func TestPick_AllowedAgainAfterRollover(t *testing.T) {
	svc, _, clock := testService(t)
	ctx := context.Background()
	seedMembers(t, svc.repo, 1, 100, 200)

	_, err := svc.Pick(ctx, 1, 100, nil)
	require.NoError(t, err)
	_, err = svc.Pick(ctx, 1, 100, nil)
	var limitErr *domain.LimitExhaustedError
	require.ErrorAs(t, err, &limitErr)

	clock.now = clock.now.Add(24 * time.Hour)
	_, err = svc.Pick(ctx, 1, 100, nil)
	assert.NoError(t, err, "quota must reset at day rollover")
}

func TestPick_InsufficientCandidates(t *testing.T) {
	svc, repo, _ := testService(t)
	ctx := context.Background()
	seedMembers(t, repo, 1, 100)

	_, err := svc.Pick(ctx, 1, 100, nil)
	require.ErrorIs(t, err, domain.ErrInsufficientCandidates)

	// the failed attempt must not consume a limit slot
	c, err := repo.GetChat(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, c.RunsToday)
}

func TestPick_ZeroBiasOwnerNeverWins(t *testing.T) {
	svc, repo, clock := testService(t)
	ctx := context.Background()
	seedMembers(t, repo, 1, 1, 2, 3)

	// BiasAuto with the owner absent from the pool resolves to bias 0.
	privileged := map[int64]bool{99: true}
	require.NoError(t, repo.UpdateChat(ctx, 1, func(c *domain.ChatSettings) error {
		c.DailyLimit = domain.MaxDailyLimit
		return nil
	}))

	for i := 0; i < 100; i++ {
		res, err := svc.Pick(ctx, 1, 1, privileged)
		require.NoError(t, err)
		require.NotEqual(t, int64(99), res.Victim.ID)
		require.Equal(t, domain.CategoryVictim, res.Category)
		clock.now = clock.now.Add(time.Minute)
	}
}

func TestPick_SelfTargetPrefix(t *testing.T) {
	svc, repo, _ := testService(t)
	ctx := context.Background()
	seedMembers(t, repo, 1, 100, 200)
	require.NoError(t, repo.UpdateChat(ctx, 1, func(c *domain.ChatSettings) error {
		c.DailyLimit = domain.MaxDailyLimit
		return nil
	}))

	sawSelf := false
	for i := 0; i < 50 && !sawSelf; i++ {
		res, err := svc.Pick(ctx, 1, 100, nil)
		require.NoError(t, err)
		if res.Victim.ID == 100 {
			sawSelf = true
			assert.True(t, strings.HasPrefix(res.Text, domain.SelfTargetPrefix))
		} else {
			assert.False(t, strings.HasPrefix(res.Text, domain.SelfTargetPrefix))
		}
	}
	assert.True(t, sawSelf, "a 50-draw run over two members should hit the invoker")
}

func TestPick_CustomPhraseSource(t *testing.T) {
	svc, repo, _ := testService(t)
	ctx := context.Background()
	seedMembers(t, repo, 1, 100, 200)

	custom := "custom doom for {mention}"
	require.NoError(t, repo.AddCustomPhrase(ctx, 1, domain.CategoryVictim, custom))
	require.NoError(t, repo.SetPhraseSource(ctx, 1, domain.CategoryVictim, domain.SourceCustom))

	res, err := svc.Pick(ctx, 1, 999, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.FormatPhrase(custom, res.Victim.Mention()), res.Text)
}

func TestAutoRun(t *testing.T) {
	svc, repo, clock := testService(t)
	ctx := context.Background()
	seedMembers(t, repo, 1, 100, 200, 300)

	res, err := svc.AutoRun(ctx, 1)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Text, domain.AutorunPrefix))

	// the autorun committed as an approved run: today's counter starts at 1
	c, err := repo.GetChat(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.DayOf(clock.Now()), c.LastRunDate)
	assert.Equal(t, 1, c.RunsToday)
	require.NotNil(t, c.LastRunAt)

	hits, err := svc.Statistics(ctx, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
}

func TestAutoRun_InsufficientCandidates(t *testing.T) {
	svc, repo, _ := testService(t)
	seedMembers(t, repo, 1, 100)

	_, err := svc.AutoRun(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientCandidates)
}

func TestExclude_PoolInvariant(t *testing.T) {
	svc, repo, _ := testService(t)
	ctx := context.Background()
	seedMembers(t, repo, 1, 100, 200)

	// pool is exactly at the minimum: any exclusion is rejected
	err := svc.Exclude(ctx, 1, 100)
	require.ErrorIs(t, err, domain.ErrInsufficientCandidates)
	excluded, err := repo.Excluded(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, excluded, "a rejected exclusion must leave the set unchanged")

	// with a third member there is room to exclude one
	seedMembers(t, repo, 1, 300)
	require.NoError(t, svc.Exclude(ctx, 1, 300))
	excluded, err = repo.Excluded(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{300}, excluded)

	// and the next exclusion hits the floor again
	err = svc.Exclude(ctx, 1, 200)
	assert.ErrorIs(t, err, domain.ErrInsufficientCandidates)

	require.NoError(t, svc.Include(ctx, 1, 300))
	excluded, err = repo.Excluded(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, excluded)
}

func TestExcludedMembersNeverDrawn(t *testing.T) {
	svc, repo, clock := testService(t)
	ctx := context.Background()
	seedMembers(t, repo, 1, 100, 200, 300)
	require.NoError(t, repo.AddExcluded(ctx, 1, 300))
	require.NoError(t, repo.UpdateChat(ctx, 1, func(c *domain.ChatSettings) error {
		c.DailyLimit = domain.MaxDailyLimit
		return nil
	}))

	for i := 0; i < 50; i++ {
		res, err := svc.Pick(ctx, 1, 100, nil)
		require.NoError(t, err)
		require.NotEqual(t, int64(300), res.Victim.ID)
		clock.now = clock.now.Add(time.Second)
	}
}

func TestDenialPhrase(t *testing.T) {
	svc, repo, _ := testService(t)
	ctx := context.Background()

	p := svc.DenialPhrase(ctx, 1, domain.CategoryOnlyOwner)
	assert.Contains(t, domain.BuiltinPhrases(domain.CategoryOnlyOwner), p)

	custom := "ask the boss first"
	require.NoError(t, repo.AddCustomPhrase(ctx, 1, domain.CategoryOnlyOwner, custom))
	require.NoError(t, repo.SetPhraseSource(ctx, 1, domain.CategoryOnlyOwner, domain.SourceCustom))
	assert.Equal(t, custom, svc.DenialPhrase(ctx, 1, domain.CategoryOnlyOwner))
}

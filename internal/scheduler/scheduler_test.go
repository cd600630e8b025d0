package scheduler

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/del-passero/victim-of-the-day-bot/internal/domain"
	"github.com/del-passero/victim-of-the-day-bot/internal/game"
	"github.com/del-passero/victim-of-the-day-bot/internal/store"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

type fakeSender struct {
	sent    map[int64][]string
	failFor map[int64]bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{sent: map[int64][]string{}, failFor: map[int64]bool{}}
}

func (f *fakeSender) SendMessage(chatID int64, text string) error {
	if f.failFor[chatID] {
		return errors.New("send failed")
	}
	f.sent[chatID] = append(f.sent[chatID], text)
	return nil
}

func testScheduler(t *testing.T) (*Scheduler, store.Repo, *fakeClock, *fakeSender) {
	t.Helper()
	repo, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "sched.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, loc)} // Monday noon

	svc := game.New(repo, clock, domain.NewPicker(rand.NewSource(1)), zap.NewNop())
	sender := newFakeSender()
	return New(repo, svc, clock, sender, zap.NewNop(), time.Minute), repo, clock, sender
}

func seedMembers(t *testing.T, repo store.Repo, chatID int64, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, repo.TouchMember(context.Background(), chatID, domain.Member{
			ID: id, FirstName: "u", LastSeen: time.Now(),
		}))
	}
}

func recordRunAt(t *testing.T, repo store.Repo, chatID int64, at time.Time) {
	t.Helper()
	require.NoError(t, repo.UpdateChat(context.Background(), chatID, func(c *domain.ChatSettings) error {
		c.ApplyRun(domain.DayOf(at), at)
		return nil
	}))
}

func TestSweep_AutorunFiresAfterIdlePeriod(t *testing.T) {
	sched, repo, clock, sender := testScheduler(t)
	ctx := context.Background()
	seedMembers(t, repo, 1, 100, 200, 300)

	// last run a hair under the default 3-day idle window: nothing fires
	recordRunAt(t, repo, 1, clock.now.Add(-3*24*time.Hour+time.Minute))
	sched.Sweep(ctx)
	assert.Empty(t, sender.sent[1])

	// past the window: the autorun fires and commits a run for today
	clock.now = clock.now.Add(2 * time.Minute)
	sched.Sweep(ctx)
	require.Len(t, sender.sent[1], 1)
	assert.True(t, strings.HasPrefix(sender.sent[1][0], domain.AutorunPrefix))

	c, err := repo.GetChat(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.DayOf(clock.now), c.LastRunDate)
	assert.Equal(t, 1, c.RunsToday)

	// the fresh run resets the idle measurement
	sched.Sweep(ctx)
	assert.Len(t, sender.sent[1], 1)
}

func TestSweep_AutorunHonorsConfiguredDays(t *testing.T) {
	sched, repo, clock, sender := testScheduler(t)
	ctx := context.Background()
	seedMembers(t, repo, 1, 100, 200)

	recordRunAt(t, repo, 1, clock.now.Add(-30*time.Hour))
	require.NoError(t, repo.UpdateChat(ctx, 1, func(c *domain.ChatSettings) error {
		c.AutorunDays = 1
		return nil
	}))

	sched.Sweep(ctx)
	require.Len(t, sender.sent[1], 1)
	assert.True(t, strings.HasPrefix(sender.sent[1][0], domain.AutorunPrefix))
}

func TestSweep_AutorunSkipsNeverRunChats(t *testing.T) {
	sched, repo, clock, sender := testScheduler(t)
	ctx := context.Background()
	seedMembers(t, repo, 1, 100, 200)

	// a settings row exists but no run was ever recorded
	require.NoError(t, repo.UpdateChat(ctx, 1, func(c *domain.ChatSettings) error {
		c.AutorunDays = 1
		return nil
	}))

	clock.now = clock.now.Add(30 * 24 * time.Hour)
	sched.Sweep(ctx)
	assert.Empty(t, sender.sent[1])
}

func TestSweep_AutorunSkipsShrunkenChat(t *testing.T) {
	sched, repo, clock, sender := testScheduler(t)
	seedMembers(t, repo, 1, 100)
	recordRunAt(t, repo, 1, clock.now.Add(-10*24*time.Hour))

	// one member is below the draw minimum; the sweep must not error out
	sched.Sweep(context.Background())
	assert.Empty(t, sender.sent[1])
}

func TestSweep_ReminderOncePerDay(t *testing.T) {
	sched, repo, clock, sender := testScheduler(t)
	ctx := context.Background()
	seedMembers(t, repo, 1, 100, 200)

	require.NoError(t, repo.UpdateChat(ctx, 1, func(c *domain.ChatSettings) error {
		c.Reminder.Enabled = true
		c.Reminder.MinuteOfDay = 600 // 10:00, already past at noon
		return nil
	}))

	sched.Sweep(ctx)
	require.Equal(t, []string{ReminderText}, sender.sent[1])

	// a repeat sweep the same day is deduplicated
	clock.now = clock.now.Add(time.Hour)
	sched.Sweep(ctx)
	assert.Len(t, sender.sent[1], 1)

	// next day it fires again
	clock.now = clock.now.Add(24 * time.Hour)
	sched.Sweep(ctx)
	assert.Len(t, sender.sent[1], 2)
}

func TestSweep_ReminderSuppressedWhenQuotaSpent(t *testing.T) {
	sched, repo, clock, sender := testScheduler(t)
	ctx := context.Background()
	seedMembers(t, repo, 1, 100, 200)

	// today's run already happened; nudging the chat would be pointless
	recordRunAt(t, repo, 1, clock.now.Add(-time.Hour))
	require.NoError(t, repo.UpdateChat(ctx, 1, func(c *domain.ChatSettings) error {
		c.Reminder.Enabled = true
		c.Reminder.MinuteOfDay = 600
		return nil
	}))

	sched.Sweep(ctx)
	assert.Empty(t, sender.sent[1])
}

func TestSweep_ReminderBeforeConfiguredTime(t *testing.T) {
	sched, repo, _, sender := testScheduler(t)
	ctx := context.Background()
	seedMembers(t, repo, 1, 100, 200)

	require.NoError(t, repo.UpdateChat(ctx, 1, func(c *domain.ChatSettings) error {
		c.Reminder.Enabled = true
		c.Reminder.MinuteOfDay = 1080 // 18:00, still ahead at noon
		return nil
	}))

	sched.Sweep(ctx)
	assert.Empty(t, sender.sent[1])
}

func TestSweep_ChatFailureDoesNotAbortSweep(t *testing.T) {
	sched, repo, _, sender := testScheduler(t)
	ctx := context.Background()
	seedMembers(t, repo, 1, 100, 200)
	seedMembers(t, repo, 2, 100, 200)

	for _, chatID := range []int64{1, 2} {
		require.NoError(t, repo.UpdateChat(ctx, chatID, func(c *domain.ChatSettings) error {
			c.Reminder.Enabled = true
			c.Reminder.MinuteOfDay = 600
			return nil
		}))
	}
	sender.failFor[1] = true

	sched.Sweep(ctx)
	assert.Empty(t, sender.sent[1])
	assert.Equal(t, []string{ReminderText}, sender.sent[2])

	// the failed chat was not marked sent and retries next sweep
	sender.failFor[1] = false
	sched.Sweep(ctx)
	assert.Equal(t, []string{ReminderText}, sender.sent[1])
	assert.Len(t, sender.sent[2], 1)
}

func TestRun_ReturnsOnCancel(t *testing.T) {
	sched, _, _, _ := testScheduler(t)
	ctx, cancel := context.WithCancel(context.Background())

	// app shutdown joins on Run returning before it closes the store
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestSweep_AutorunTakesPrecedenceOverReminder(t *testing.T) {
	sched, repo, clock, sender := testScheduler(t)
	ctx := context.Background()
	seedMembers(t, repo, 1, 100, 200)

	recordRunAt(t, repo, 1, clock.now.Add(-10*24*time.Hour))
	require.NoError(t, repo.UpdateChat(ctx, 1, func(c *domain.ChatSettings) error {
		c.Reminder.Enabled = true
		c.Reminder.MinuteOfDay = 0
		return nil
	}))

	sched.Sweep(ctx)
	require.Len(t, sender.sent[1], 1)
	assert.True(t, strings.HasPrefix(sender.sent[1][0], domain.AutorunPrefix))
}

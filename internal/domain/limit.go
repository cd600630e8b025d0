package domain

import "time"

// LimitDecision is the outcome of consulting the daily-run gate.
type LimitDecision struct {
	Allowed   bool
	Limit     int
	RunsToday int // after rollover normalization, before the new run
}

// DecideRun applies the daily-limit rule for one chat on the given day.
// A stored run count from a previous day reads as zero (day rollover).
// The decision is pure; callers must pair it with ChatSettings.ApplyRun
// inside the same per-chat transaction so that two concurrent invocations
// cannot both take the last slot.
func DecideRun(c *ChatSettings, today string) LimitDecision {
	limit := c.DailyLimit
	if limit < 1 {
		limit = DefaultDailyLimit
	}
	runs := c.RunsOn(today)
	return LimitDecision{
		Allowed:   runs < limit,
		Limit:     limit,
		RunsToday: runs,
	}
}

// ReminderDue reports whether the clock-triggered reminder should fire for
// this chat at the given instant. The daily-quota check is the caller's
// concern (it needs the same settings snapshot anyway).
func ReminderDue(c *ChatSettings, now time.Time) bool {
	r := c.Reminder
	if !r.Enabled {
		return false
	}
	today := DayOf(now)
	if r.SuspendedUntil != "" && today < r.SuspendedUntil {
		return false
	}
	if r.SkipWeekends && IsWeekend(now) {
		return false
	}
	if MinuteOfDay(now) < r.MinuteOfDay {
		return false
	}
	return r.LastSentDate != today
}

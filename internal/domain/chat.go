package domain

import "time"

// Tunables enforced at the write boundary. The stored record can technically
// hold anything; mutation paths outside tests never store out-of-range values.
const (
	MinCandidates = 2

	DefaultDailyLimit = 1
	MaxDailyLimit     = 100

	DefaultAutorunDays = 3
	MaxAutorunDays     = 30

	DefaultOwnerBias = 0.1

	DefaultReminderMinute = 12 * 60 // 12:00
)

// BiasMode selects how the owner-selection probability is resolved.
type BiasMode string

const (
	// BiasAuto gives the owner the same odds as everyone else in the pool.
	BiasAuto BiasMode = "auto"
	// BiasExplicit uses the configured probability from OwnerBias.
	BiasExplicit BiasMode = "explicit"
)

// ReminderSettings is the clock-triggered nudge configuration for one chat.
type ReminderSettings struct {
	Enabled        bool
	MinuteOfDay    int    // 0..1439, chat time zone
	SkipWeekends   bool
	SuspendedUntil string // day identity; reminders stay off while today < this
	LastSentDate   string // dedup: at most one reminder per chat per day
}

// ChatSettings is the per-chat game record. Rows are created lazily on first
// write; a chat that was never configured reads as DefaultChatSettings.
type ChatSettings struct {
	ChatID      int64
	DailyLimit  int
	LastRunDate string     // day identity of the last pick, "" if never run
	LastRunAt   *time.Time // instant of the last pick, for idle measurement
	RunsToday   int        // meaningful only together with LastRunDate
	AutorunDays int
	BiasMode    BiasMode
	OwnerBias   float64
	Reminder    ReminderSettings
	CreatedAt   time.Time
}

// DefaultChatSettings returns the record a brand-new chat starts with.
func DefaultChatSettings(chatID int64, now time.Time) *ChatSettings {
	return &ChatSettings{
		ChatID:      chatID,
		DailyLimit:  DefaultDailyLimit,
		AutorunDays: DefaultAutorunDays,
		BiasMode:    BiasAuto,
		OwnerBias:   DefaultOwnerBias,
		Reminder: ReminderSettings{
			MinuteOfDay: DefaultReminderMinute,
		},
		CreatedAt: now,
	}
}

// RunsOn returns the run count for the given day, applying day-rollover
// semantics: a stored count from a different day reads as zero.
func (c *ChatSettings) RunsOn(today string) int {
	if c.LastRunDate != today {
		return 0
	}
	return c.RunsToday
}

// ApplyRun records one consumed run slot on the given day.
func (c *ChatSettings) ApplyRun(today string, at time.Time) {
	c.RunsToday = c.RunsOn(today) + 1
	c.LastRunDate = today
	t := at
	c.LastRunAt = &t
}

// ExplicitBias reports the stored probability normalized to the open interval
// (0,1). Malformed stored values fall back to DefaultOwnerBias at read time.
func (c *ChatSettings) ExplicitBias() float64 {
	if c.OwnerBias <= 0 || c.OwnerBias >= 1 {
		return DefaultOwnerBias
	}
	return c.OwnerBias
}

// StatEntry is one row of the per-chat hit table.
type StatEntry struct {
	UserID int64
	Hits   int
}

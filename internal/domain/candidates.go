package domain

import (
	"fmt"
	"time"
)

// Member is one known chat member, as observed from activity or the platform.
type Member struct {
	ID        int64
	FirstName string
	Username  string
	IsBot     bool
	LastSeen  time.Time
}

// Mention returns the display text used in announcements: @username when
// known, otherwise the first name, otherwise a raw identifier.
func (m Member) Mention() string {
	if m.Username != "" {
		return "@" + m.Username
	}
	if m.FirstName != "" {
		return m.FirstName
	}
	return fmt.Sprintf("User %d", m.ID)
}

// ResolveCandidates computes the eligible pool: known members minus bot
// accounts minus the excluded set. Pure read; an empty result is valid and
// surfaces as insufficient candidates in the caller.
func ResolveCandidates(members []Member, excluded map[int64]bool) []int64 {
	pool := make([]int64, 0, len(members))
	for _, m := range members {
		if m.IsBot || excluded[m.ID] {
			continue
		}
		pool = append(pool, m.ID)
	}
	return pool
}

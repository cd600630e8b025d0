package domain

import (
	"strconv"
	"strings"
)

// Command-argument parsers. Each returns a *MalformedInputError carrying a
// usage hint; expected-invalid input never travels as a panic or a bare
// strconv error.

func ParseLimit(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > MaxDailyLimit {
		return 0, &MalformedInputError{Usage: "example: /set_limit 2 (integer from 1 to 100)"}
	}
	return n, nil
}

func ParseAutorunDays(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > MaxAutorunDays {
		return 0, &MalformedInputError{Usage: "example: /set_autorun 3 (integer from 1 to 30)"}
	}
	return n, nil
}

// ParseOwnerChance accepts "auto" or an explicit probability strictly inside
// (0,1). The 0 and 1 boundaries are rejected, not clamped: a zero chance is
// what auto mode with an excluded owner already gives, and a certain hit is
// not a game.
func ParseOwnerChance(s string) (BiasMode, float64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "auto" {
		return BiasAuto, 0, nil
	}
	p, err := strconv.ParseFloat(s, 64)
	if err != nil || p <= 0 || p >= 1 {
		return BiasAuto, 0, &MalformedInputError{
			Usage: "example: /chance_owner 0.25 (between 0 and 1, exclusive) or /chance_owner auto",
		}
	}
	return BiasExplicit, p, nil
}

// ParseClockTime parses "HH:MM" into minutes since midnight.
func ParseClockTime(s string) (int, error) {
	usage := &MalformedInputError{Usage: "example: /reminder_time 12:30"}
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, usage
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, usage
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, usage
	}
	return h*60 + m, nil
}

// ParseSuspendDays parses the optional /reminder_off argument.
func ParseSuspendDays(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 365 {
		return 0, &MalformedInputError{Usage: "example: /reminder_off 7 (integer from 1 to 365)"}
	}
	return n, nil
}

// ParsePhraseIndex parses a zero-based phrase index as shown by /list_phrases.
func ParsePhraseIndex(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, &MalformedInputError{Usage: "example: /del_phrase victim 0 (index from /list_phrases)"}
	}
	return n, nil
}

// FormatMinutes renders minutes since midnight as HH:MM.
func FormatMinutes(mins int) string {
	if mins < 0 {
		mins = 0
	}
	return twoDigits(mins/60) + ":" + twoDigits(mins%60)
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

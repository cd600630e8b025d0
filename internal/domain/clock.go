package domain

import "time"

// DayLayout is the day-identity format used for limit accounting and
// reminder suspension. Lexicographic order matches chronological order.
const DayLayout = "2006-01-02"

// Clock resolves "now" in the bot's fixed time zone. Injectable so the
// scheduler and limit accounting are testable without sleeping.
type Clock interface {
	Now() time.Time
}

// TZClock is the production clock pinned to a single IANA location.
type TZClock struct {
	loc *time.Location
}

func NewTZClock(tz string) (*TZClock, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, err
	}
	return &TZClock{loc: loc}, nil
}

func (c *TZClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// DayOf returns the day identity of t in t's own location.
func DayOf(t time.Time) string {
	return t.Format(DayLayout)
}

// MinuteOfDay returns minutes since local midnight (0..1439).
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

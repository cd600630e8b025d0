package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLimit(t *testing.T) {
	for _, ok := range []struct {
		in   string
		want int
	}{
		{"1", 1}, {"100", 100}, {" 42 ", 42},
	} {
		n, err := ParseLimit(ok.in)
		require.NoError(t, err, ok.in)
		assert.Equal(t, ok.want, n)
	}
	for _, bad := range []string{"", "0", "101", "-1", "abc", "2.5"} {
		_, err := ParseLimit(bad)
		var malformed *MalformedInputError
		require.ErrorAs(t, err, &malformed, "input %q", bad)
	}
}

func TestParseAutorunDays(t *testing.T) {
	n, err := ParseAutorunDays("30")
	require.NoError(t, err)
	assert.Equal(t, 30, n)

	for _, bad := range []string{"0", "31", "x"} {
		_, err := ParseAutorunDays(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseOwnerChance(t *testing.T) {
	mode, p, err := ParseOwnerChance("0.25")
	require.NoError(t, err)
	assert.Equal(t, BiasExplicit, mode)
	assert.InDelta(t, 0.25, p, 1e-9)

	mode, _, err = ParseOwnerChance("AUTO")
	require.NoError(t, err)
	assert.Equal(t, BiasAuto, mode)

	// Boundaries are excluded, not clamped.
	for _, bad := range []string{"0", "1", "1.0", "0.0", "-0.1", "1.5", "половина"} {
		_, _, err := ParseOwnerChance(bad)
		var malformed *MalformedInputError
		require.ErrorAs(t, err, &malformed, "input %q", bad)
	}
}

func TestParseClockTime(t *testing.T) {
	mins, err := ParseClockTime("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9*60+30, mins)

	mins, err = ParseClockTime("00:00")
	require.NoError(t, err)
	assert.Zero(t, mins)

	for _, bad := range []string{"", "12", "24:00", "12:60", "12-30", "aa:bb"} {
		_, err := ParseClockTime(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseSuspendDays(t *testing.T) {
	n, err := ParseSuspendDays("7")
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	for _, bad := range []string{"0", "366", ""} {
		_, err := ParseSuspendDays(bad)
		assert.Error(t, err, bad)
	}
}

func TestParsePhraseIndex(t *testing.T) {
	n, err := ParsePhraseIndex("0")
	require.NoError(t, err)
	assert.Zero(t, n)

	for _, bad := range []string{"-1", "first", ""} {
		_, err := ParsePhraseIndex(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "00:00", FormatMinutes(0))
	assert.Equal(t, "09:05", FormatMinutes(9*60+5))
	assert.Equal(t, "23:59", FormatMinutes(23*60+59))
}

package datemath

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	date, err := ParseDate(value)
	require.NoError(t, err)
	return date
}

func TestParseDate_IgnoresTimeAndOffset(t *testing.T) {
	// A valuation stored as end-of-day UTC must not shift to the next
	// calendar day when rendered in a positive-offset locale
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Plain Date", "2025-01-31", "2025-01-31"},
		{"End Of Day UTC", "2025-01-31T23:59:59Z", "2025-01-31"},
		{"Positive Offset", "2025-01-31T17:00:00+07:00", "2025-01-31"},
		{"Negative Offset", "2025-01-31T01:00:00-05:00", "2025-01-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Format(got))
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	_, err := ParseDate("31/01/2025")
	assert.Error(t, err)

	_, err = ParseDate("2025-1-1")
	assert.Error(t, err)

	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestDateOnly_NormalizesToUTCMidnight(t *testing.T) {
	hanoi, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	require.NoError(t, err)

	// 1am local on Feb 1 stays Feb 1, even though it is still Jan 31 in UTC
	local := time.Date(2025, 2, 1, 1, 0, 0, 0, hanoi)
	assert.Equal(t, "2025-02-01", Format(DateOnly(local)))

	utc := time.Date(2025, 2, 1, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), DateOnly(utc))
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{"Same Day", "2025-01-01", "2025-01-01", 0},
		{"One Day", "2025-01-01", "2025-01-02", 1},
		{"Reversed Order Is Absolute", "2025-02-01", "2025-01-01", 31},
		{"Leap Year February", "2024-02-01", "2024-03-01", 29},
		{"Non Leap February", "2025-02-01", "2025-03-01", 28},
		{"Across Year Boundary", "2024-12-30", "2025-01-02", 3},
		{"Full Leap Year", "2024-01-01", "2025-01-01", 366},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysBetween(mustDate(t, tt.a), mustDate(t, tt.b)))
		})
	}
}

func TestDaysBetween_DSTTransitionSafe(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// 2025-03-30 is the spring-forward date in Berlin: the raw interval is
	// 23 hours, which naive millisecond division would truncate to 0 days
	before := time.Date(2025, 3, 29, 12, 0, 0, 0, berlin)
	after := time.Date(2025, 3, 30, 12, 0, 0, 0, berlin)
	assert.Equal(t, 1, DaysBetween(before, after))
}

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"Same Day", "2025-01-15", "2025-01-15", 0},
		{"Exactly One Month", "2025-01-15", "2025-02-15", 1},
		{"One Month And Fifteen Days", "2025-01-15", "2025-03-02", 1.5},
		{"Half Month", "2025-01-01", "2025-01-16", 0.5},
		{"One Year", "2025-01-01", "2026-01-01", 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MonthsBetween(mustDate(t, tt.a), mustDate(t, tt.b)), 1e-9)
		})
	}
}

func TestMonthsBetween_MonthEndAnchors(t *testing.T) {
	// Jan 31 + 1 month lands on Mar 3 via AddDate normalization; the whole
	// month count must not overshoot
	got := MonthsBetween(mustDate(t, "2025-01-31"), mustDate(t, "2025-02-28"))
	assert.Greater(t, got, 0.9)
	assert.Less(t, got, 1.0)
}

package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	ts := time.Date(2026, 9, 1, 23, 45, 12, 999, loc)

	day := StartOfDay(ts)

	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, loc), day)
	assert.Equal(t, loc, day.Location())
}

func TestDayKey(t *testing.T) {
	ts := time.Date(2026, 1, 5, 8, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-01-05", DayKey(ts))
}

func TestSameDay(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	morning := time.Date(2026, 9, 1, 1, 0, 0, 0, loc)
	evening := time.Date(2026, 9, 1, 23, 0, 0, 0, loc)
	nextDay := time.Date(2026, 9, 2, 0, 0, 0, 0, loc)

	assert.True(t, SameDay(morning, evening))
	assert.False(t, SameDay(morning, nextDay))

	// DATE 列扫描出来是 UTC 零点，按本地日比较时要换算到同一时区
	utcMidnight := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, SameDay(utcMidnight.In(loc), time.Date(2026, 9, 1, 12, 0, 0, 0, loc)))
}

func TestWeekStart(t *testing.T) {
	// 2026-09-01 is a Tuesday
	tuesday := time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), WeekStart(tuesday))

	// Monday maps to itself
	monday := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), WeekStart(monday))

	// Sunday belongs to the week that started six days earlier
	sunday := time.Date(2026, 9, 6, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), WeekStart(sunday))
}

func TestWeekKey(t *testing.T) {
	sunday := time.Date(2026, 9, 6, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "2026-08-31", WeekKey(sunday))
}

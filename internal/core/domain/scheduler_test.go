package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedDaily_NextFire(t *testing.T) {
	trigger := FixedDaily{Hour: 9, Minute: 0}

	t.Run("before fire time fires same day", func(t *testing.T) {
		after := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
		next := trigger.NextFire(after)
		assert.Equal(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), next)
	})

	t.Run("after fire time fires next day", func(t *testing.T) {
		after := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
		next := trigger.NextFire(after)
		assert.Equal(t, time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC), next)
	})

	t.Run("crosses month boundary", func(t *testing.T) {
		after := time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC)
		next := trigger.NextFire(after)
		assert.Equal(t, time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC), next)
	})
}

func TestWeeklyAt_NextFire(t *testing.T) {
	trigger := WeeklyAt{Weekday: time.Sunday, Hour: 1, Minute: 0}

	t.Run("midweek fires on coming sunday", func(t *testing.T) {
		// 2025-03-12 is a Wednesday.
		after := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
		next := trigger.NextFire(after)
		assert.Equal(t, time.Date(2025, 3, 16, 1, 0, 0, 0, time.UTC), next)
		assert.Equal(t, time.Sunday, next.Weekday())
	})

	t.Run("same day after fire time rolls a full week", func(t *testing.T) {
		// 2025-03-16 is a Sunday.
		after := time.Date(2025, 3, 16, 2, 0, 0, 0, time.UTC)
		next := trigger.NextFire(after)
		assert.Equal(t, time.Date(2025, 3, 23, 1, 0, 0, 0, time.UTC), next)
	})

	t.Run("same day before fire time fires today", func(t *testing.T) {
		after := time.Date(2025, 3, 16, 0, 30, 0, 0, time.UTC)
		next := trigger.NextFire(after)
		assert.Equal(t, time.Date(2025, 3, 16, 1, 0, 0, 0, time.UTC), next)
	})
}

func TestInterval_NextFire(t *testing.T) {
	trigger := Interval{Every: 6 * time.Hour}
	after := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, after.Add(6*time.Hour), trigger.NextFire(after))
}

func TestTrigger_Describe(t *testing.T) {
	assert.Equal(t, "daily at 09:05", FixedDaily{Hour: 9, Minute: 5}.Describe())
	assert.Equal(t, "weekly on Sunday at 01:00", WeeklyAt{Weekday: time.Sunday, Hour: 1}.Describe())
	assert.Equal(t, "every 6h0m0s", Interval{Every: 6 * time.Hour}.Describe())
}

func TestCurrentPeriod(t *testing.T) {
	tests := []struct {
		month   time.Month
		quarter string
	}{
		{time.January, "Q1"},
		{time.March, "Q1"},
		{time.April, "Q2"},
		{time.June, "Q2"},
		{time.July, "Q3"},
		{time.October, "Q4"},
		{time.December, "Q4"},
	}

	for _, tt := range tests {
		p := CurrentPeriod(time.Date(2025, tt.month, 15, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, "2025", p.Year)
		assert.Equal(t, tt.quarter, p.Quarter)
	}
}

func TestPeriod_Previous(t *testing.T) {
	t.Run("mid-year quarter", func(t *testing.T) {
		prev := Period{Year: "2025", Quarter: "Q3"}.Previous()
		assert.Equal(t, Period{Year: "2025", Quarter: "Q2"}, prev)
	})

	t.Run("first quarter rolls back a year", func(t *testing.T) {
		prev := Period{Year: "2025", Quarter: "Q1"}.Previous()
		assert.Equal(t, Period{Year: "2024", Quarter: "Q4"}, prev)
	})
}

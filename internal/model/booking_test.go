package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"requested to confirmed", StatusRequested, StatusConfirmed, true},
		{"requested straight to attended", StatusRequested, StatusAttended, true},
		{"requested to cancelled", StatusRequested, StatusCancelled, true},
		{"confirmed to attended", StatusConfirmed, StatusAttended, true},
		{"confirmed to cancelled", StatusConfirmed, StatusCancelled, true},
		{"confirmed back to requested", StatusConfirmed, StatusRequested, false},
		{"attended is terminal", StatusAttended, StatusCancelled, false},
		{"cancelled is terminal", StatusCancelled, StatusRequested, false},
		{"cancelled cannot be attended", StatusCancelled, StatusAttended, false},
		{"no self transition", StatusConfirmed, StatusConfirmed, false},
		{"unknown from", "PENDING", StatusConfirmed, false},
		{"unknown to", StatusRequested, "DONE", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(StatusRequested))
	assert.False(t, IsTerminal(StatusConfirmed))
	assert.True(t, IsTerminal(StatusAttended))
	assert.True(t, IsTerminal(StatusCancelled))
}

func TestPriceForPeriod(t *testing.T) {
	assert.Equal(t, uint32(2500), PriceForPeriod(2500, PeriodSingle))
	assert.Equal(t, uint32(10000), PriceForPeriod(2500, PeriodFourWeeks))
	// unknown periods price as a single session
	assert.Equal(t, uint32(2500), PriceForPeriod(2500, "monthly"))
	assert.Equal(t, uint32(0), PriceForPeriod(0, PeriodFourWeeks))
}

func TestClassDayList(t *testing.T) {
	tests := []struct {
		name string
		days string
		want []string
	}{
		{"normal csv", "Mon,Wed,Fri", []string{"Mon", "Wed", "Fri"}},
		{"spaces around labels", " Mon , Wed ", []string{"Mon", "Wed"}},
		{"empty column", "", nil},
		{"whitespace only", "   ", nil},
		{"trailing comma", "Mon,", []string{"Mon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Class{Days: tt.days}
			assert.Equal(t, tt.want, c.DayList())
		})
	}
}

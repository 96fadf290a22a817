package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDays(t *testing.T) {
	tests := []struct {
		name    string
		labels  []string
		want    []string
		wantErr bool
	}{
		{
			name:   "canonical labels",
			labels: []string{"Mon", "Wed", "Fri"},
			want:   []string{"Mon", "Wed", "Fri"},
		},
		{
			name:   "case insensitive and full names",
			labels: []string{"monday", "WED", "friday"},
			want:   []string{"Mon", "Wed", "Fri"},
		},
		{
			name:   "duplicates collapse",
			labels: []string{"Tue", "tue", "Tuesday"},
			want:   []string{"Tue"},
		},
		{
			name:   "input order does not matter",
			labels: []string{"Sun", "Mon", "Sat"},
			want:   []string{"Mon", "Sat", "Sun"},
		},
		{
			name:   "empty input",
			labels: nil,
			want:   []string{},
		},
		{
			name:    "unknown label",
			labels:  []string{"Mon", "Funday"},
			wantErr: true,
		},
		{
			name:    "too short label",
			labels:  []string{"M"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := ParseDays(tt.labels)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, set.Labels())
		})
	}
}

func TestDaySetContains(t *testing.T) {
	set, err := ParseDays([]string{"Mon", "Fri"})
	require.NoError(t, err)

	// 2026-09-07 is a Monday.
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	assert.True(t, set.Contains(monday))
	assert.True(t, set.Contains(monday.Add(18*time.Hour)), "time component must not matter")
	assert.False(t, set.Contains(monday.AddDate(0, 0, 1)), "Tuesday is off schedule")
	assert.True(t, set.Contains(monday.AddDate(0, 0, 4)), "Friday is on schedule")
}

func TestValidTimeOfDay(t *testing.T) {
	assert.True(t, ValidTimeOfDay("00:00"))
	assert.True(t, ValidTimeOfDay("18:30"))
	assert.False(t, ValidTimeOfDay("24:00"))
	assert.False(t, ValidTimeOfDay("9:5"))
	assert.False(t, ValidTimeOfDay("18:30:00"))
	assert.False(t, ValidTimeOfDay(""))
}

func TestResolveDates(t *testing.T) {
	// 2026-09-07 is a Monday; a 14-day window from it covers exactly two
	// of each weekday.
	windowStart := time.Date(2026, 9, 7, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		labels []string
		length int
		want   []string
	}{
		{
			name:   "mon wed fri over two weeks",
			labels: []string{"Mon", "Wed", "Fri"},
			length: 14,
			want:   []string{"2026-09-07", "2026-09-09", "2026-09-11", "2026-09-14", "2026-09-16", "2026-09-18"},
		},
		{
			name:   "window start itself is included",
			labels: []string{"Mon"},
			length: 1,
			want:   []string{"2026-09-07"},
		},
		{
			name:   "single day just outside window",
			labels: []string{"Sun"},
			length: 6,
			want:   []string{},
		},
		{
			name:   "every day",
			labels: []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
			length: 3,
			want:   []string{"2026-09-07", "2026-09-08", "2026-09-09"},
		},
		{
			name:   "zero length window",
			labels: []string{"Mon"},
			length: 0,
			want:   []string{},
		},
		{
			name:   "empty day set",
			labels: nil,
			length: 14,
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := ParseDays(tt.labels)
			require.NoError(t, err)

			got := ResolveDates(set, windowStart, tt.length)
			formatted := make([]string, 0, len(got))
			for _, d := range got {
				// every resolved date must be midnight UTC
				assert.Equal(t, d, Midnight(d))
				formatted = append(formatted, d.Format("2006-01-02"))
			}
			assert.Equal(t, tt.want, formatted)
		})
	}
}

func TestMidnight(t *testing.T) {
	in := time.Date(2026, 9, 7, 23, 59, 59, 123, time.UTC)
	out := Midnight(in)
	assert.Equal(t, time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), out)
	assert.Equal(t, out, Midnight(out), "idempotent")
}

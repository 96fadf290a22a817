package verify

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCodeFormat(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)

	code, err := NewCode(now)
	require.NoError(t, err)

	pattern := regexp.MustCompile(`^260901-1030-[A-Z2-9]{4}-[A-Z2-9]{4}$`)
	assert.Regexp(t, pattern, code)
}

func TestNewCodeUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	local := time.Date(2026, 9, 1, 3, 15, 0, 0, loc) // 2026-08-31 22:15 UTC

	code, err := NewCode(local)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, "260831-2215-"), "got %s", code)
}

func TestNewCodeAlphabet(t *testing.T) {
	// The random suffix must never contain ambiguous characters.
	forbidden := "01OIL"
	now := time.Now()
	for i := 0; i < 200; i++ {
		code, err := NewCode(now)
		require.NoError(t, err)
		suffix := code[len("060102-1504-"):]
		for _, r := range forbidden {
			assert.NotContains(t, suffix, string(r), "code %s", code)
		}
	}
}

func TestNewCodeUniqueness(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		code, err := NewCode(now)
		require.NoError(t, err)
		_, dup := seen[code]
		require.False(t, dup, "duplicate code %s after %d draws", code, i)
		seen[code] = struct{}{}
	}
}

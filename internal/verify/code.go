// Package verify issues the human-presentable confirmation codes attached
// to bookings.  A code proves to the trainer at the in-person session that
// a booking was made; it is a convenience token, not a security credential,
// and must never gate anything beyond marking attendance.
package verify

import (
	"crypto/rand"
	"fmt"
	"time"
)

// codeAlphabet deliberately omits 0/O, 1/I and L so codes survive being
// read out loud or copied by hand.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const suffixLen = 8

// NewCode returns a booking verification code composed of a coarse UTC
// timestamp and a random suffix, segmented for legibility, e.g.
// "260901-1030-A7KQ-3ZXM".  The timestamp component keeps codes sortable
// and the 8 random characters make a collision across bookings negligible.
// Codes are generated exactly once per booking, at creation.
func NewCode(now time.Time) (string, error) {
	buf := make([]byte, suffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("verify: read random: %w", err)
	}
	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	stamp := now.UTC().Format("060102-1504")
	return fmt.Sprintf("%s-%s-%s", stamp, buf[:4], buf[4:]), nil
}

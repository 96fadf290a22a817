package repository

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The repositories write literal column names into their SQL; these tests
// hold migrations/schema.sql to the same names so a rename on either side
// fails here instead of at runtime with error 1054.

func loadSchema(t *testing.T) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("..", "..", "migrations", "schema.sql"))
	require.NoError(t, err)
	return string(raw)
}

func tableDef(t *testing.T, schema, name string) string {
	t.Helper()
	re := regexp.MustCompile(`(?s)CREATE TABLE IF NOT EXISTS ` + name + `\s*\((.*?)\) ENGINE=InnoDB;`)
	m := re.FindStringSubmatch(schema)
	require.NotNil(t, m, "table %s not defined in schema.sql", name)
	return m[1]
}

func TestSchemaRefreshTokenColumns(t *testing.T) {
	def := tableDef(t, loadSchema(t), "refresh_tokens")

	for _, col := range []string{"user_id", "token_hash", "expires_at", "revoked_at"} {
		assert.Contains(t, def, col)
	}
	// Revocation is a timestamp, not a boolean flag.
	assert.NotRegexp(t, `(?m)^\s*revoked\s`, def)
	assert.Regexp(t, `revoked_at\s+TIMESTAMP\s+NULL`, def)
}

func TestSchemaBookingColumns(t *testing.T) {
	def := tableDef(t, loadSchema(t), "bookings")

	for _, col := range []string{
		"class_id", "student_id", "trainer_id", "session_date", "session_time",
		"status", "period", "price_cents", "verification_code", "status_changed_at",
	} {
		assert.Contains(t, def, col)
	}
	assert.Contains(t, def, "GENERATED ALWAYS")
	assert.Contains(t, def, "uq_booking_live")
}

func TestSchemaClassDeletionIsRestricted(t *testing.T) {
	def := tableDef(t, loadSchema(t), "bookings")

	// Booking rows pin their class: no cascade, the repository refuses the
	// delete with ErrConflict while any booking references the class.
	var fk string
	for _, line := range strings.Split(def, "\n") {
		if strings.Contains(line, "fk_bookings_class") {
			fk = line
		}
	}
	require.NotEmpty(t, fk)
	assert.NotContains(t, fk, "ON DELETE")
}

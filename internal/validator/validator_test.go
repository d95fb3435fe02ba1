package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesEmail(t *testing.T) {
	valid := []string{
		"alice@example.com",
		"bob.smith+tag@sub.example.co.uk",
		"x@e.io",
	}
	for _, v := range valid {
		assert.True(t, Matches(v, EmailRX), "%q should be a valid email", v)
	}

	invalid := []string{
		"",
		"alice",
		"alice@",
		"@example.com",
		"alice example@example.com",
	}
	for _, v := range invalid {
		assert.False(t, Matches(v, EmailRX), "%q should be rejected", v)
	}
}

func TestMatchesAlphanumeric(t *testing.T) {
	assert.True(t, Matches("alice1", AlphanumericRX))
	assert.True(t, Matches("ABC123", AlphanumericRX))

	for _, v := range []string{"", "alice_1", "ali ce", "alicé", "a-b"} {
		assert.False(t, Matches(v, AlphanumericRX), "%q should be rejected", v)
	}
}

func TestMinRunes(t *testing.T) {
	assert.True(t, MinRunes("abcde", 5))
	assert.False(t, MinRunes("abcd", 5))
	// Runes, not bytes.
	assert.True(t, MinRunes("héllo", 5))
	assert.False(t, MinRunes("héll", 5))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		value string
		want  time.Time
	}{
		{"1990-05-01", time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"1990-05-01T12:30:00", time.Date(1990, 5, 1, 12, 30, 0, 0, time.UTC)},
		{"1990-05-01T12:30:00Z", time.Date(1990, 5, 1, 12, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.value)
		require.NoError(t, err, "parsing %q", tt.value)
		assert.True(t, got.Equal(tt.want), "parsing %q: got %v", tt.value, got)
	}

	for _, bad := range []string{"", "not a date", "1990-13-40", "01/05/1990"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, "%q should not parse", bad)
	}
}

func TestValidDate(t *testing.T) {
	assert.True(t, ValidDate("2001-01-01"))
	assert.False(t, ValidDate("yesterday"))
}

func TestUnique(t *testing.T) {
	assert.True(t, Unique([]string{"a", "b", "c"}))
	assert.True(t, Unique(nil))
	assert.False(t, Unique([]string{"a", "b", "a"}))
}

package util

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalToUTC(t *testing.T) {
	t.Parallel()

	winter := time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)
	summer := time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 11, LocalToUTC(winter).Hour())
	assert.Equal(t, 10, LocalToUTC(summer).Hour())
	assert.Equal(t, time.UTC, LocalToUTC(summer).Location())
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    string
		expected time.Time
		wantErr  bool
	}{
		{name: "rfc3339 with offset", value: "2025-07-15T12:00:00+02:00", expected: time.Date(2025, time.July, 15, 10, 0, 0, 0, time.UTC)},
		{name: "utc", value: "2025-01-15T12:00:00Z", expected: time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)},
		{name: "naive madrid", value: "2025-01-15T12:00:00", expected: time.Date(2025, time.January, 15, 11, 0, 0, 0, time.UTC)},
		{name: "garbage", value: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseTimestamp(tt.value)
			if tt.wantErr {
				require.Error(t, err)

				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "got %s", got)
		})
	}
}

func TestShelterMediaKey(t *testing.T) {
	t.Parallel()

	key := ShelterMediaKey("abc", ".JPG")
	assert.True(t, strings.HasPrefix(key, "shelters/abc/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	id, ok := ShelterIDFromMediaKey(key)
	require.True(t, ok)
	assert.Equal(t, "abc", id)

	_, ok = ShelterIDFromMediaKey(AvatarKey("user-1", "png"))
	assert.False(t, ok)
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{name: "under one minute", duration: 45 * time.Second, expected: "45s"},
		{name: "minutes and seconds", duration: 2*time.Minute + 30*time.Second, expected: "2m30s"},
		{name: "hours and minutes", duration: time.Hour + 30*time.Minute, expected: "1h30m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, FormatDuration(tt.duration))
		})
	}
}

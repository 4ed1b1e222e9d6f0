package util

import (
	"fmt"
	"path"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Clock returns the current instant. Services take one so tests can pin time.
type Clock func() time.Time

const (
	shelterMediaPrefix = "shelters"
	avatarMediaPrefix  = "avatars"
	localZone          = "Europe/Madrid"
)

var madrid = loadMadrid()

func loadMadrid() *time.Location {
	loc, err := time.LoadLocation(localZone)
	if err != nil {
		return time.UTC
	}

	return loc
}

// Now returns the current time in UTC truncated to microseconds, the precision the document store keeps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// LocalToUTC interprets a wall-clock time as Europe/Madrid and converts it to UTC.
func LocalToUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), madrid).UTC()
}

// ToLocal converts an instant to Europe/Madrid for display.
func ToLocal(t time.Time) time.Time {
	return t.In(madrid)
}

// ParseTimestamp accepts RFC3339 timestamps or naive "2006-01-02T15:04:05" values in Madrid time.
func ParseTimestamp(value string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts.UTC(), nil
	}

	ts, err := time.Parse("2006-01-02T15:04:05", value)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid timestamp %q", value)
	}

	return LocalToUTC(ts), nil
}

// ShelterMediaKey builds the object key for a new shelter media file.
func ShelterMediaKey(shelterID, ext string) string {
	return mediaKey(shelterMediaPrefix, shelterID, ext)
}

// AvatarKey builds the object key for a user avatar.
func AvatarKey(userID, ext string) string {
	return mediaKey(avatarMediaPrefix, userID, ext)
}

func mediaKey(prefix, owner, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		return path.Join(prefix, owner, uuid.NewString())
	}

	return path.Join(prefix, owner, fmt.Sprintf("%s.%s", uuid.NewString(), ext))
}

// ShelterIDFromMediaKey returns the shelter id encoded in a shelter media key.
func ShelterIDFromMediaKey(key string) (string, bool) {
	parts := strings.Split(key, "/")
	if len(parts) != 3 || parts[0] != shelterMediaPrefix || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}

// FormatDuration formats duration into human readable format (e.g., "1h30m", "5m10s", "45s").
func FormatDuration(duration time.Duration) string {
	duration = duration.Round(time.Second)

	if duration < time.Minute {
		return fmt.Sprintf("%ds", int(duration.Seconds()))
	}

	if duration < time.Hour {
		return fmt.Sprintf("%dm%ds", int(duration.Minutes()), int(duration.Seconds())%60)
	}

	return fmt.Sprintf("%dh%dm", int(duration.Hours()), int(duration.Minutes())%60)
}

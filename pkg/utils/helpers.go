package utils

import (
	"fmt"
	"time"
)

// ParseDuration safely parses a duration string like "5m", returning the
// fallback on empty or malformed input.
func ParseDuration(d string, fallback time.Duration) time.Duration {
	if d == "" {
		return fallback
	}
	duration, err := time.ParseDuration(d)
	if err != nil {
		return fallback
	}
	return duration
}

// TimestampedName builds a filename carrying the current local time,
// e.g. "Sheets_Downloads_20240131_154500.zip".
func TimestampedName(prefix, ext string) string {
	return fmt.Sprintf("%s_%s%s", prefix, time.Now().Format("20060102_150405"), ext)
}

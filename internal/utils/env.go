// Package utils holds environment readers and connection helpers shared by the binaries.
package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvString returns the trimmed value of key, or def when unset/blank.
func EnvString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// EnvInt parses key as an integer; parse failures fall back to def.
func EnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// EnvDuration accepts Go duration strings ("5m") or a bare number of seconds.
// Non-positive or unparsable values fall back to def.
func EnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}

// EnvBool treats "true", "1" and "yes" as true.
func EnvBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "":
		return def
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

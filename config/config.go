package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// New snapshots the process environment. Values are read through the Get*
// helpers, which fall back to a default when a key is unset, blank or unparsable.
func New() map[string]string {
	environ := os.Environ()
	config := make(map[string]string, len(environ))
	for _, entry := range environ {
		if key, value, _ := strings.Cut(entry, "="); key != "" {
			config[key] = value
		}
	}
	return config
}

func GetString(config map[string]string, key string, defaultValue string) string {
	if v := strings.TrimSpace(config[key]); v != "" {
		return config[key]
	}
	return defaultValue
}

// parsed applies parse to the trimmed value of key.
func parsed[T any](config map[string]string, key string, defaultValue T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(config[key])
	if raw == "" {
		return defaultValue
	}
	v, err := parse(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

func GetInt(config map[string]string, key string, defaultValue int) int {
	return parsed(config, key, defaultValue, strconv.Atoi)
}

// GetBool accepts the values understood by strconv.ParseBool.
func GetBool(config map[string]string, key string, defaultValue bool) bool {
	return parsed(config, key, defaultValue, strconv.ParseBool)
}

// GetDuration reads a whole number of seconds, e.g. AI_TIMEOUT_SECONDS=60.
func GetDuration(config map[string]string, key string, defaultValue time.Duration) time.Duration {
	return parsed(config, key, defaultValue, func(s string) (time.Duration, error) {
		seconds, err := strconv.ParseUint(s, 10, 32)
		return time.Duration(seconds) * time.Second, err
	})
}

// GetList splits a comma-separated value such as ACCEPTED_ORIGINS.
func GetList(config map[string]string, key string) []string {
	var values []string
	for _, part := range strings.Split(config[key], ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}

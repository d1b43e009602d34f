package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvString returns the value of an environment variable and whether it
// was set to a non-empty value.
func EnvString(key string) (string, bool) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses an integer environment variable.
func EnvInt(key string) (int, bool, error) {
	raw, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, true, nil
}

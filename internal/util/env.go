// Package util holds small helpers shared by the commands and services.
package util

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/subosito/gotenv"
)

var dotEnvOnce sync.Once

// LoadDotEnv loads variables from path (".env" when empty) without overriding
// variables already set in the environment. A missing file is not an error.
func LoadDotEnv(path string) {
	dotEnvOnce.Do(func() {
		if path == "" {
			path = ".env"
		}

		if _, err := os.Stat(path); err != nil {
			return
		}

		if err := gotenv.Load(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to load .env file")
		}
	})
}

func GetEnv(key string, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}

	return defaultVal
}

func GetEnvAsInt(key string, defaultVal int) int {
	strVal := GetEnv(key, "")

	if val, err := strconv.Atoi(strVal); err == nil {
		return val
	}

	return defaultVal
}

func GetEnvAsUint64(key string, defaultVal uint64) uint64 {
	strVal := GetEnv(key, "")

	if val, err := strconv.ParseUint(strVal, 10, 64); err == nil {
		return val
	}

	return defaultVal
}

func GetEnvAsBool(key string, defaultVal bool) bool {
	strVal := GetEnv(key, "")

	if val, err := strconv.ParseBool(strVal); err == nil {
		return val
	}

	return defaultVal
}

// GetEnvAsStringArr splits a separated list, "," when sep is empty.
func GetEnvAsStringArr(key string, defaultVal []string, separator ...string) []string {
	strVal := GetEnv(key, "")

	if len(strVal) == 0 {
		return defaultVal
	}

	sep := ","
	if len(separator) >= 1 {
		sep = separator[0]
	}

	parts := strings.Split(strVal, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

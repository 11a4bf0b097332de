package util

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// GetEnv returns the env variable with the given key, or defaultVal when
// unset.
func GetEnv(key string, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// GetEnvAsInt returns the env variable parsed as int, or defaultVal when
// unset or unparseable.
func GetEnvAsInt(key string, defaultVal int) int {
	strVal, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}

	val, err := strconv.Atoi(strVal)
	if err != nil {
		log.Warn().Str("key", key).Str("value", strVal).Msg("Env variable is not an int, using default")
		return defaultVal
	}
	return val
}

// GetEnvAsInt64 returns the env variable parsed as int64, or defaultVal
// when unset or unparseable.
func GetEnvAsInt64(key string, defaultVal int64) int64 {
	strVal, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}

	val, err := strconv.ParseInt(strVal, 10, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", strVal).Msg("Env variable is not an int64, using default")
		return defaultVal
	}
	return val
}

// GetEnvAsBool returns the env variable parsed as bool (strconv.ParseBool
// syntax), or defaultVal when unset or unparseable.
func GetEnvAsBool(key string, defaultVal bool) bool {
	strVal, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}

	val, err := strconv.ParseBool(strVal)
	if err != nil {
		log.Warn().Str("key", key).Str("value", strVal).Msg("Env variable is not a bool, using default")
		return defaultVal
	}
	return val
}

// GetEnvAsDuration returns the env variable parsed with time.ParseDuration,
// or defaultVal when unset or unparseable.
func GetEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	strVal, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}

	val, err := time.ParseDuration(strVal)
	if err != nil {
		log.Warn().Str("key", key).Str("value", strVal).Msg("Env variable is not a duration, using default")
		return defaultVal
	}
	return val
}

package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// LookupEnv* return the value of env variable key, or def when it is unset or malformed.

func LookupEnvString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func LookupEnvInt(key string, def int) int {
	return lookupEnv(key, def, strconv.Atoi)
}

func LookupEnvBool(key string, def bool) bool {
	return lookupEnv(key, def, strconv.ParseBool)
}

func LookupEnvDuration(key string, def time.Duration) time.Duration {
	return lookupEnv(key, def, time.ParseDuration)
}

func lookupEnv[T any](key string, def T, parse func(string) (T, error)) T {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}

	parsed, err := parse(v)
	if err != nil {
		slog.Warn("can't parse env variable, using default", slog.String("key", key), slog.Any("error", err))
		return def
	}

	return parsed
}

package utils

import "os"

func GetEnv(key string) string {
	return os.Getenv(key)
}

func GetEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

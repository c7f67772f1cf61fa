package config

import (
	"os"
	"strconv"
	"strings"
)

// GetAllSettings returns a map of the dynamic settings currently loaded in
// memory, mainly for the app status endpoint.
func GetAllSettings() map[string]any {
	if Global == nil {
		return map[string]any{}
	}
	return map[string]any{
		"app_debug":                  Global.App.Debug,
		"app_version":                Global.App.Version,
		"dispatch_interval":          Global.Dispatch.Interval.String(),
		"dispatch_batch_size":        Global.Dispatch.BatchSize,
		"dispatch_send_delay":        Global.Dispatch.SendDelay.String(),
		"quota_default_daily_limit":  Global.Quota.DefaultDailyLimit,
		"session_reconnect_attempts": Global.Session.ReconnectMaxAttempts,
		"whatsapp_default_country":   Global.Whatsapp.DefaultCountryCode,
		"whatsapp_max_download_size": Global.Whatsapp.MaxDownloadSize,
	}
}

// Helpers
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		vLower := strings.ToLower(v)
		return vLower == "1" || vLower == "true" || vLower == "yes" || vLower == "on"
	}
	return fallback
}

package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.mau.fi/whatsmeow/proto/waCompanionReg"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App      AppConfig
	Paths    PathsConfig
	Database DatabaseConfig
	Whatsapp WhatsappConfig
	Dispatch DispatchConfig
	Quota    QuotaConfig
	Session  SessionConfig
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	OS                 string
	Platform           waCompanionReg.DeviceProps_PlatformType
	BasicAuth          []string
	BasePath           string
	TrustedProxies     []string
	BaseUrl            string
	CorsAllowedOrigins []string
}

type PathsConfig struct {
	Storages string
	Statics  string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string // File path for SQLite, DB Name for Postgres
}

type WhatsappConfig struct {
	LogLevel           string
	TypeUser           string
	TypeGroup          string
	DefaultCountryCode string
	MaxDownloadSize    int64
}

type DispatchConfig struct {
	Interval     time.Duration
	BatchSize    int
	SendDelay    time.Duration
	SendTimeout  time.Duration
	StallTimeout time.Duration
}

type QuotaConfig struct {
	DefaultDailyLimit int
}

type SessionConfig struct {
	ReconnectBaseDelay   time.Duration
	ReconnectMaxDelay    time.Duration
	ReconnectMaxAttempts int
}

// Global provides access to the loaded configuration globally
var Global *Config

// LoadConfig loads configuration from Environment Variables or defaults.
func LoadConfig() (*Config, error) {
	baseDir := getEnv("APP_BASE_DIR", "storages")

	debug := getEnvBool("APP_DEBUG", false)

	var basicAuth []string
	if v := getEnv("APP_BASIC_AUTH", ""); v != "" {
		basicAuth = strings.Split(v, ",")
	}

	corsOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if v := getEnv("APP_CORS_ALLOWED_ORIGINS", ""); v != "" {
		corsOrigins = strings.Split(v, ",")
	}

	appCfg := AppConfig{
		Version:            "v1.2.0",
		Port:               getEnv("APP_PORT", "3000"),
		Debug:              debug,
		Environment:        getEnv("APP_ENV", "development"),
		OS:                 getEnv("APP_OS", "AzielCf"),
		Platform:           waCompanionReg.DeviceProps_CHROME,
		BasicAuth:          basicAuth,
		BasePath:           getEnv("APP_BASE_PATH", ""),
		BaseUrl:            getEnv("APP_BASE_URL", "http://localhost:3000"),
		CorsAllowedOrigins: corsOrigins,
	}
	if v := getEnv("APP_TRUSTED_PROXIES", ""); v != "" {
		appCfg.TrustedProxies = strings.Split(v, ",")
	}

	pathsCfg := PathsConfig{
		Storages: baseDir,
		Statics:  getEnv("PATH_STATICS", "statics"),
	}

	dbCfg := DatabaseConfig{
		Driver:   getEnv("DB_DRIVER", "sqlite"),
		Name:     getEnv("DB_NAME", filepath.Join(pathsCfg.Storages, "app.db")),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
	}

	waCfg := WhatsappConfig{
		LogLevel:           getEnv("WHATSAPP_LOG_LEVEL", "ERROR"),
		TypeUser:           "@s.whatsapp.net",
		TypeGroup:          "@g.us",
		DefaultCountryCode: getEnv("WHATSAPP_DEFAULT_COUNTRY_CODE", "52"),
		MaxDownloadSize:    getEnvInt64("WHATSAPP_MAX_DOWNLOAD_SIZE", 50000000),
	}

	dispatchCfg := DispatchConfig{
		Interval:     time.Duration(getEnvInt("DISPATCH_INTERVAL_SECONDS", 30)) * time.Second,
		BatchSize:    getEnvInt("DISPATCH_BATCH_SIZE", 10),
		SendDelay:    time.Duration(getEnvInt("DISPATCH_SEND_DELAY_MS", 1500)) * time.Millisecond,
		SendTimeout:  time.Duration(getEnvInt("DISPATCH_SEND_TIMEOUT_SECONDS", 60)) * time.Second,
		StallTimeout: time.Duration(getEnvInt("DISPATCH_STALL_TIMEOUT_MINUTES", 60)) * time.Minute,
	}
	if dispatchCfg.BatchSize < 1 {
		return nil, fmt.Errorf("DISPATCH_BATCH_SIZE must be at least 1")
	}

	quotaCfg := QuotaConfig{
		DefaultDailyLimit: getEnvInt("QUOTA_DEFAULT_DAILY_LIMIT", 300),
	}

	sessionCfg := SessionConfig{
		ReconnectBaseDelay:   time.Duration(getEnvInt("SESSION_RECONNECT_BASE_DELAY_SECONDS", 2)) * time.Second,
		ReconnectMaxDelay:    time.Duration(getEnvInt("SESSION_RECONNECT_MAX_DELAY_SECONDS", 60)) * time.Second,
		ReconnectMaxAttempts: getEnvInt("SESSION_RECONNECT_MAX_ATTEMPTS", 5),
	}

	cfg := &Config{
		App:      appCfg,
		Paths:    pathsCfg,
		Database: dbCfg,
		Whatsapp: waCfg,
		Dispatch: dispatchCfg,
		Quota:    quotaCfg,
		Session:  sessionCfg,
	}

	Global = cfg
	return cfg, nil
}

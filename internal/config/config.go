package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultExpireSeconds is the signature lifetime when none is configured (7 days).
const DefaultExpireSeconds = 7 * 24 * 60 * 60

// Environment keys for the credential section. They appear verbatim in
// misconfiguration diagnostics.
const (
	EnvSDKAppID      = "RTC_SDK_APP_ID"
	EnvSecretKey     = "RTC_SECRET_KEY"
	EnvExpireSeconds = "RTC_EXPIRE_SECONDS"
	EnvAuxAppID      = "RTC_MIX_APP_ID"
	EnvAuxBizID      = "RTC_MIX_BIZ_ID"
	EnvTokenFormat   = "RTC_TOKEN_FORMAT"
)

// Token formats understood by the issuer.
const (
	TokenFormatTLS = "tls"
	TokenFormatJWT = "jwt"
)

// Config aggregates runtime configuration for the issuer.
type Config struct {
	App        AppConfig
	Credential CredentialConfig
	Logger     LoggerConfig
	Redis      RedisConfig
	Monitor    MonitorConfig
}

// AppConfig controls process level behavior.
type AppConfig struct {
	Name    string
	Env     string
	Version string
}

// CredentialConfig holds the signing credentials and the auxiliary ids used by
// the mixed-stream feature.
type CredentialConfig struct {
	SDKAppID      int64
	SecretKey     string
	ExpireSeconds int
	AuxAppID      int64
	AuxBizID      int64
	TokenFormat   string
	// Source names where the values were read from, for diagnostics.
	Source string
}

// Log encodings.
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
	// Format is LogFormatJSON or LogFormatConsole.
	Format string
	// Output is a zap sink: "stderr", "stdout" or a file path.
	Output string
}

// RedisConfig holds Redis connection values for the telemetry monitor.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MonitorConfig toggles the optional telemetry collaborators.
type MonitorConfig struct {
	Redis         bool
	KeyPrefix     string
	MaxLogEntries int
	TimeoutMillis int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	sdkAppID, err := getEnvAsInt64(EnvSDKAppID, 0)
	if err != nil {
		return nil, err
	}
	auxAppID, err := getEnvAsInt64(EnvAuxAppID, 0)
	if err != nil {
		return nil, err
	}
	auxBizID, err := getEnvAsInt64(EnvAuxBizID, 0)
	if err != nil {
		return nil, err
	}
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "rtc-usersig"),
			Env:     getEnv("APP_ENV", "development"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		Credential: CredentialConfig{
			SDKAppID:      sdkAppID,
			SecretKey:     os.Getenv(EnvSecretKey),
			ExpireSeconds: getEnvAsInt(EnvExpireSeconds, DefaultExpireSeconds),
			AuxAppID:      auxAppID,
			AuxBizID:      auxBizID,
			TokenFormat:   strings.ToLower(getEnv(EnvTokenFormat, TokenFormatTLS)),
			Source:        "environment or .env file",
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: strings.ToLower(getEnv("LOG_FORMAT", LogFormatJSON)),
			Output: getEnv("LOG_OUTPUT", "stderr"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Monitor: MonitorConfig{
			Redis:         getEnvAsBool("MONITOR_REDIS_ENABLED", false),
			KeyPrefix:     getEnv("MONITOR_REDIS_PREFIX", "rtc:monitor"),
			MaxLogEntries: getEnvAsInt("MONITOR_REDIS_MAX_LOG", 1000),
			TimeoutMillis: getEnvAsInt("MONITOR_REDIS_TIMEOUT_MS", 200),
		},
	}

	return cfg, nil
}

// IsProduction reports whether the process runs in a production environment.
func (a AppConfig) IsProduction() bool {
	env := strings.ToLower(a.Env)
	return env == "production" || env == "prod"
}

// TTL returns the signature lifetime. Non-positive values are returned as is so
// that Problems can report them.
func (c CredentialConfig) TTL() time.Duration {
	return time.Duration(c.ExpireSeconds) * time.Second
}

// Problems lists the environment keys whose values make issued signatures
// worthless. An empty result means the credential is usable.
func (c CredentialConfig) Problems() []string {
	var fields []string
	if c.SDKAppID == 0 {
		fields = append(fields, EnvSDKAppID)
	}
	if c.SecretKey == "" {
		fields = append(fields, EnvSecretKey)
	}
	if c.ExpireSeconds <= 0 {
		fields = append(fields, EnvExpireSeconds)
	}
	return fields
}

// Timeout returns the per-call deadline for the redis monitor.
func (m MonitorConfig) Timeout() time.Duration {
	if m.TimeoutMillis <= 0 {
		return 200 * time.Millisecond
	}
	return time.Duration(m.TimeoutMillis) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsInt64(key string, fallback int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

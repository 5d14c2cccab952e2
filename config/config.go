package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Scheduling SchedulingConfig
}

type AppConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// SchedulingConfig holds clinic-wide scheduling rules
type SchedulingConfig struct {
	Timezone               string
	ClinicOpen             string // HH:MM
	ClinicClose            string // HH:MM
	FallbackStart          string // HH:MM, Monday to Friday
	FallbackEnd            string // HH:MM
	GranularityMinutes     int
	DefaultDurationMinutes int
	BookingLockTTL         time.Duration
	BookingLockRetries     int
	BookingLockRetryDelay  time.Duration
}

// LoadConfig reads path (usually ".env") and the process environment.
// Environment variables win; a missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	config := &Config{
		App: AppConfig{
			Port:     v.GetString("APP_PORT"),
			Env:      v.GetString("APP_ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		DB: DBConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       v.GetString("JWT_SECRET"),
			AccessExpiry: v.GetDuration("JWT_ACCESS_EXPIRY"),
		},
		Scheduling: SchedulingConfig{
			Timezone:               v.GetString("SCHEDULING_TIMEZONE"),
			ClinicOpen:             v.GetString("SCHEDULING_CLINIC_OPEN"),
			ClinicClose:            v.GetString("SCHEDULING_CLINIC_CLOSE"),
			FallbackStart:          v.GetString("SCHEDULING_FALLBACK_START"),
			FallbackEnd:            v.GetString("SCHEDULING_FALLBACK_END"),
			GranularityMinutes:     v.GetInt("SCHEDULING_GRANULARITY_MINUTES"),
			DefaultDurationMinutes: v.GetInt("SCHEDULING_DEFAULT_DURATION_MINUTES"),
			BookingLockTTL:         v.GetDuration("SCHEDULING_BOOKING_LOCK_TTL"),
			BookingLockRetries:     v.GetInt("SCHEDULING_BOOKING_LOCK_RETRIES"),
			BookingLockRetryDelay:  v.GetDuration("SCHEDULING_BOOKING_LOCK_RETRY_DELAY"),
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_ACCESS_EXPIRY", "15m")

	v.SetDefault("SCHEDULING_TIMEZONE", "America/Sao_Paulo")
	v.SetDefault("SCHEDULING_CLINIC_OPEN", "07:00")
	v.SetDefault("SCHEDULING_CLINIC_CLOSE", "19:00")
	v.SetDefault("SCHEDULING_FALLBACK_START", "08:00")
	v.SetDefault("SCHEDULING_FALLBACK_END", "17:00")
	v.SetDefault("SCHEDULING_GRANULARITY_MINUTES", 30)
	v.SetDefault("SCHEDULING_DEFAULT_DURATION_MINUTES", 30)
	v.SetDefault("SCHEDULING_BOOKING_LOCK_TTL", "10s")
	v.SetDefault("SCHEDULING_BOOKING_LOCK_RETRIES", 5)
	v.SetDefault("SCHEDULING_BOOKING_LOCK_RETRY_DELAY", "100ms")
}

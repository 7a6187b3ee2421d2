package config

import (
	"time"

	"github.com/maxviazov/bongo-stats-service/internal/logger"
)

type Config struct {
	App      AppConfig           `mapstructure:"app"`
	Logger   logger.LoggerConfig `mapstructure:"logger" validate:"-"`
	Postgres PostgresConfig      `mapstructure:"postgres"`
	Tracker  TrackerConfig       `mapstructure:"tracker"`
}

type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Version         string        `mapstructure:"version"`
	Env             string        `mapstructure:"env"`
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// PostgresConfig holds connection and pool settings. Durations are seconds.
type PostgresConfig struct {
	Host              string `mapstructure:"host" validate:"required"`
	Port              int    `mapstructure:"port" validate:"min=1,max=65535"`
	User              string `mapstructure:"user" validate:"required"`
	Password          string `mapstructure:"password" validate:"required"`
	DBName            string `mapstructure:"db" validate:"required"`
	SSLMode           string `mapstructure:"sslmode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	MaxConns          int32  `mapstructure:"max_conns" validate:"min=1"`
	MinConns          int32  `mapstructure:"min_conns" validate:"min=0,ltefield=MaxConns"`
	MaxConnLifetime   int    `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   int    `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod int    `mapstructure:"health_check_period"`
	AutoMigrate       bool   `mapstructure:"auto_migrate"`
}

// TrackerConfig tunes the live stat-tracking session.
type TrackerConfig struct {
	DebounceWindow time.Duration `mapstructure:"debounce_window" validate:"gt=0"`
	NoticeTTL      time.Duration `mapstructure:"notice_ttl" validate:"gt=0"`
	PushTimeout    time.Duration `mapstructure:"push_timeout" validate:"gt=0"`
	DefaultRoster  []string      `mapstructure:"default_roster" validate:"dive,required"`
	// DefaultKickoff is the HH:MM applied when a match is created with a bare date.
	DefaultKickoff string `mapstructure:"default_kickoff" validate:"datetime=15:04"`
}

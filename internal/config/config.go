package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full server configuration tree.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Room     RoomConfig     `mapstructure:"room"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

// ServerConfig covers the HTTP/WebSocket listener.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig covers the optional Postgres pool. An empty URL runs the
// server with in-memory persistence only.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConns        int32         `mapstructure:"max_conns"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// LoggingConfig selects the zap preset.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RoomConfig tunes room lifecycle and the per-connection action budget.
type RoomConfig struct {
	MaxRooms        int           `mapstructure:"max_rooms"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	OfflineTimeout  time.Duration `mapstructure:"offline_timeout"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`

	ActionRateLimit  int           `mapstructure:"action_rate_limit"`
	ActionRateWindow time.Duration `mapstructure:"action_rate_window"`

	// TrapResponseTimeout forces a PASS when the defender sits on the trap
	// prompt too long. Zero disables the timeout.
	TrapResponseTimeout time.Duration `mapstructure:"trap_response_timeout"`

	// Bot moves are delayed by a random duration in [BotDelayMin, BotDelayMax]
	// so solo duels read at a human pace.
	BotDelayMin time.Duration `mapstructure:"bot_delay_min"`
	BotDelayMax time.Duration `mapstructure:"bot_delay_max"`
}

// AuthConfig tunes the credential registry.
type AuthConfig struct {
	BcryptCost int           `mapstructure:"bcrypt_cost"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.connect_timeout", 5*time.Second)
	v.SetDefault("database.max_conn_lifetime", time.Hour)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("room.max_rooms", 1024)
	v.SetDefault("room.idle_timeout", 60*time.Minute)
	v.SetDefault("room.offline_timeout", 10*time.Minute)
	v.SetDefault("room.cleanup_interval", time.Minute)
	v.SetDefault("room.action_rate_limit", 20)
	v.SetDefault("room.action_rate_window", 2*time.Second)
	v.SetDefault("room.trap_response_timeout", 0)
	v.SetDefault("room.bot_delay_min", 300*time.Millisecond)
	v.SetDefault("room.bot_delay_max", 800*time.Millisecond)

	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.token_ttl", 24*time.Hour)
}

// Load reads the configuration from the given file, layering environment
// variables (prefix ARCANA, dots become underscores) over file values over
// defaults. A missing file is not an error; the defaults stand alone.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ARCANA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		err := v.ReadInConfig()
		if err != nil && !os.IsNotExist(err) {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Room.ActionRateLimit <= 0 {
		return fmt.Errorf("room.action_rate_limit must be positive")
	}
	if c.Room.ActionRateWindow <= 0 {
		return fmt.Errorf("room.action_rate_window must be positive")
	}
	if c.Room.BotDelayMax < c.Room.BotDelayMin {
		return fmt.Errorf("room.bot_delay_max must not be below room.bot_delay_min")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost %d is outside the bcrypt range", c.Auth.BcryptCost)
	}
	return nil
}

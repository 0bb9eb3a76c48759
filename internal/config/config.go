// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	"github.com/captaleads/funnelcast/pkg/constants"
)

// Configuration holds all configuration for funnelcast.
type Configuration struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

// ServerConfig holds the HTTP listener options.
type ServerConfig struct {
	Address string
}

// DatabaseConfig holds the PostgreSQL connection options. Either URL or the
// discrete fields may be set; URL wins when both are present.
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig holds the optional Redis connection options.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RateLimitConfig holds the capture submission throttle options.
type RateLimitConfig struct {
	Enabled           bool
	RPS               float64
	Burst             int
	TrustForwardedFor bool
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	OutputFile string // optional file output
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. A missing file at the default path is not an error;
// defaults and environment variables apply instead. Every key can be
// overridden through the environment with dots replaced by underscores,
// e.g. DATABASE_URL for database.url.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yml")
		if err := v.ReadInConfig(); err != nil {
			if configPath != constants.DefaultConfigFile || !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("error reading config file, %s", err)
			}
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	configuration.normalize()

	return &configuration, nil
}

// setDefaults registers every known key so environment overrides are picked
// up even when no config file is present.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", constants.DefaultServerAddress)

	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", constants.DefaultDatabasePort)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "")
	v.SetDefault("database.sslmode", constants.DefaultDatabaseSSLMode)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.rps", constants.DefaultRateLimitRPS)
	v.SetDefault("ratelimit.burst", constants.DefaultRateLimitBurst)
	v.SetDefault("ratelimit.trustforwardedfor", false)

	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputfile", "")
}

func (conf *Configuration) normalize() {
	if conf.Server.Address == "" {
		conf.Server.Address = constants.DefaultServerAddress
	}
	if conf.Database.Port <= 0 {
		conf.Database.Port = constants.DefaultDatabasePort
	}
	if conf.Database.SSLMode == "" {
		conf.Database.SSLMode = constants.DefaultDatabaseSSLMode
	}
	if conf.RateLimit.RPS <= 0 {
		conf.RateLimit.RPS = constants.DefaultRateLimitRPS
	}
	if conf.RateLimit.Burst <= 0 {
		conf.RateLimit.Burst = constants.DefaultRateLimitBurst
	}
}

// Configured reports whether enough database options are present to attempt
// a connection.
func (db DatabaseConfig) Configured() bool {
	return db.URL != "" || db.Host != ""
}

// DSN returns the connection string for sqlx.Connect. The URL form is
// returned verbatim when set.
func (db DatabaseConfig) DSN() string {
	if db.URL != "" {
		return db.URL
	}

	parts := []string{
		fmt.Sprintf("host=%s", db.Host),
		fmt.Sprintf("port=%d", db.Port),
		fmt.Sprintf("dbname=%s", db.Name),
		fmt.Sprintf("sslmode=%s", db.SSLMode),
	}
	if db.User != "" {
		parts = append(parts, fmt.Sprintf("user=%s", db.User))
	}
	if db.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", db.Password))
	}
	return strings.Join(parts, " ")
}

// Configured reports whether a Redis address is present.
func (r RedisConfig) Configured() bool {
	return r.Addr != ""
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings
func (conf *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if !conf.Database.Configured() {
		warnings = append(warnings, "no database configured; leads will be stored in memory and lost on restart")
	}
	if conf.Database.URL != "" && conf.Database.Host != "" {
		warnings = append(warnings, "both database.url and database.host are set; database.url takes precedence")
	}
	if !conf.Redis.Configured() {
		warnings = append(warnings, "no redis configured; lead caching and rate-limit stats are disabled")
	}
	if !conf.RateLimit.Enabled {
		warnings = append(warnings, "rate limiting is disabled; capture submissions are unthrottled")
	}

	return warnings
}

// Package constants provides shared constants for the funnelcast application.
package constants

import "time"

// Funnel capacity constants
const (
	// SchedulerCapacity is the number of attendances one scheduler handles per month
	SchedulerCapacity = 180

	// CloserCapacity is the number of sales one closer handles per month
	CloserCapacity = 120
)

// Numeric constants
const (
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageDivisor converts percentage inputs (e.g. 25) into rates (0.25)
	PercentageDivisor = 100.0
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"
)

// Database defaults
const (
	// DefaultDatabasePort is the default PostgreSQL port
	DefaultDatabasePort = 5432

	// DefaultDatabaseSSLMode is the default sslmode for PostgreSQL connections
	DefaultDatabaseSSLMode = "disable"
)

// Rate limit defaults
const (
	// DefaultRateLimitRPS is the default sustained request rate per client
	DefaultRateLimitRPS = 5.0

	// DefaultRateLimitBurst is the default burst allowance per client
	DefaultRateLimitBurst = 10
)

// Cache constants
const (
	// LeadCacheTTL is how long lead lookups stay cached in Redis
	LeadCacheTTL = 7 * 24 * time.Hour
)

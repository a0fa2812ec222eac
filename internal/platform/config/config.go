package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultOwnerID backs requests that omit an owner while the system runs
// single-tenant. The migrations seed this user.
const DefaultOwnerID = "00000000-0000-0000-0000-000000000001"

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Billing jobs run against civil dates in this time zone.
	BillingTimezone  string
	SchedulerEnabled bool
	DefaultOwnerID   string
}

// LoadConfig loads configuration from environment variables and a .env file
// if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "pocketfolio")
	viper.SetDefault("BILLING_TIMEZONE", "Asia/Taipei")
	viper.SetDefault("SCHEDULER_ENABLED", true)
	viper.SetDefault("DEFAULT_OWNER_ID", DefaultOwnerID)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION (%q). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration)
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.BillingTimezone = viper.GetString("BILLING_TIMEZONE")
	if _, err := time.LoadLocation(cfg.BillingTimezone); err != nil {
		log.Printf("Warning: Invalid BILLING_TIMEZONE (%q). Defaulting to Asia/Taipei.\n", cfg.BillingTimezone)
		cfg.BillingTimezone = "Asia/Taipei"
	}
	cfg.SchedulerEnabled = viper.GetBool("SCHEDULER_ENABLED")
	cfg.DefaultOwnerID = viper.GetString("DEFAULT_OWNER_ID")

	return cfg, nil
}

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Slot backends.
const (
	BackendRedis    = "redis"
	BackendDatabase = "database"
	BackendMemory   = "memory"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                    string
	Port                   string
	LogLevel               string
	DatabaseURL            string
	SQLitePath             string // used by the database backend when DATABASE_URL is empty
	RedisURL               string
	SlotBackend            string
	SlotPrefix             string
	SeedFile               string // YAML fixture; the embedded one when empty
	StrictNotFound         bool
	AllowOccupantOverwrite bool
	FrontendURLEndsWith    string
	DevPassword            string
	HealthAdminKey         string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SLOT_BACKEND", BackendMemory)
	v.SetDefault("SLOT_PREFIX", "hostel:")
	v.SetDefault("SQLITE_PATH", "hostel.db")
	v.SetDefault("STRICT_NOT_FOUND", true)
	v.SetDefault("ALLOW_OCCUPANT_OVERWRITE", true)
}

// BindFlags registers command-line overrides for the most used keys on fs and binds them
// into viper. Flags win over env and .env.
func BindFlags(fs *pflag.FlagSet) error {
	fs.String("port", "", "HTTP listen port (PORT)")
	fs.String("log-level", "", "zerolog level (LOG_LEVEL)")
	fs.String("slot-backend", "", "snapshot slot backend: redis, database or memory (SLOT_BACKEND)")
	fs.String("seed-file", "", "YAML seed fixture (SEED_FILE)")
	for flag, key := range map[string]string{
		"port":         "PORT",
		"log-level":    "LOG_LEVEL",
		"slot-backend": "SLOT_BACKEND",
		"seed-file":    "SEED_FILE",
	} {
		if err := viper.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults(viper.GetViper())

	cfg := &Config{
		Env:                    viper.GetString("APP_ENV"),
		Port:                   viper.GetString("PORT"),
		LogLevel:               viper.GetString("LOG_LEVEL"),
		DatabaseURL:            viper.GetString("DATABASE_URL"),
		SQLitePath:             viper.GetString("SQLITE_PATH"),
		RedisURL:               viper.GetString("REDIS_URL"),
		SlotBackend:            strings.ToLower(strings.TrimSpace(viper.GetString("SLOT_BACKEND"))),
		SlotPrefix:             viper.GetString("SLOT_PREFIX"),
		SeedFile:               viper.GetString("SEED_FILE"),
		StrictNotFound:         viper.GetBool("STRICT_NOT_FOUND"),
		AllowOccupantOverwrite: viper.GetBool("ALLOW_OCCUPANT_OVERWRITE"),
		FrontendURLEndsWith:    viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:            viper.GetString("DEV_PASSWORD"),
		HealthAdminKey:         viper.GetString("HEALTH_ADMIN_KEY"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the chosen backend has what it needs.
func (c *Config) Validate() error {
	switch c.SlotBackend {
	case BackendMemory, BackendDatabase:
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("SLOT_BACKEND=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown SLOT_BACKEND %q", c.SlotBackend)
	}
	return nil
}

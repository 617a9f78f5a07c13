package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	pkgconfig "github.com/Skotchmaster/bigbrew_pos/pkg/config"
	"github.com/Skotchmaster/bigbrew_pos/pkg/db"
	"github.com/joho/godotenv"
	"github.com/lib/pq"
)

type Config struct {
	DBDriver    string
	DatabaseURL string
	AutoMigrate bool

	CartFile string
	Port     int
	LogLevel string
	Location *time.Location

	JWTSecret   []byte
	ActorPolicy string

	SchemaStrict    bool
	SchemaOverrides string

	KafkaBrokers []string
	SalesTopic   string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string
}

// LoadEnv reads .env files into the environment. A missing file is reported
// but the process keeps going on real environment variables.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	return godotenv.Load(files...)
}

func Load() (Config, error) {
	cfg := Config{
		DBDriver:        strings.ToLower(pkgconfig.EnvDefault("DB_DRIVER", db.DriverSQLite)),
		AutoMigrate:     pkgconfig.EnvBoolDefault("AUTO_MIGRATE", false),
		CartFile:        pkgconfig.EnvDefault("CART_FILE", "shared_cart.json"),
		Port:            pkgconfig.EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:        pkgconfig.EnvDefault("LOG_LEVEL", "info"),
		JWTSecret:       []byte(pkgconfig.EnvDefault("JWT_SECRET", "")),
		ActorPolicy:     strings.ToLower(pkgconfig.EnvDefault("ACTOR_POLICY", "fabricate")),
		SchemaStrict:    pkgconfig.EnvBoolDefault("SCHEMA_STRICT", false),
		SchemaOverrides: pkgconfig.EnvDefault("SCHEMA_OVERRIDES", ""),
		KafkaBrokers:    pkgconfig.CSV(pkgconfig.EnvDefault("KAFKA_BROKERS", "")),
		SalesTopic:      pkgconfig.EnvDefault("SALES_TOPIC", "sale_events"),
		ESURL:           pkgconfig.EnvDefault("ES_URL", ""),
		ESUser:          pkgconfig.EnvDefault("ES_USER", ""),
		ESPassword:      pkgconfig.EnvDefault("ES_PASSWORD", ""),
		ESIndex:         pkgconfig.EnvDefault("ES_INDEX", "sales"),
	}

	if err := pkgconfig.OneOf(cfg.DBDriver, "DB_DRIVER", db.DriverSQLite, db.DriverPostgres); err != nil {
		return cfg, err
	}
	if err := pkgconfig.OneOf(cfg.ActorPolicy, "ACTOR_POLICY", "fabricate", "discover", "required"); err != nil {
		return cfg, err
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("env SERVER_PORT=%d out of range", cfg.Port)
	}

	dsn, err := databaseURL(cfg.DBDriver)
	if err != nil {
		return cfg, err
	}
	cfg.DatabaseURL = dsn

	loc, err := time.LoadLocation(pkgconfig.EnvDefault("POS_TIMEZONE", "Local"))
	if err != nil {
		return cfg, fmt.Errorf("env POS_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	return cfg, nil
}

// databaseURL normalises postgres URLs to the key=value form; sqlite takes a
// file path and defaults to bigbrew.db next to the binary.
func databaseURL(driver string) (string, error) {
	raw := pkgconfig.EnvDefault("DATABASE_URL", "")
	if driver == db.DriverSQLite {
		if raw == "" {
			raw = "bigbrew.db"
		}
		return raw, nil
	}

	if err := pkgconfig.NonEmpty(raw, "DATABASE_URL"); err != nil {
		return "", err
	}
	if strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://") {
		dsn, err := pq.ParseURL(raw)
		if err != nil {
			return "", fmt.Errorf("env DATABASE_URL: %w", err)
		}
		return dsn, nil
	}
	return raw, nil
}

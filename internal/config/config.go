package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Port    string
	DBDSN   string
	LogFile string
	Views   string

	// Migration (SQLite -> PostgreSQL)
	SourceDSN          string
	TargetURL          string
	TargetMigrations   string
	MigrateBatchSize   int
	MigrateConcurrency int
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "partpal.db"
	} // sqlite file in project root
	logFile := os.Getenv("LOG_FILE")
	views := os.Getenv("VIEWS_DIR")
	if views == "" {
		views = "./web/templates"
	}

	src := os.Getenv("SOURCE_DB_DSN")
	if src == "" {
		src = dsn
	}
	migrations := os.Getenv("TARGET_MIGRATIONS_PATH")
	if migrations == "" {
		migrations = "./migrations/postgres"
	}

	cfg := Config{
		Port:               port,
		DBDSN:              dsn,
		LogFile:            logFile,
		Views:              views,
		SourceDSN:          src,
		TargetURL:          os.Getenv("TARGET_DATABASE_URL"),
		TargetMigrations:   migrations,
		MigrateBatchSize:   intEnv("MIGRATE_BATCH_SIZE", 100),
		MigrateConcurrency: intEnv("MIGRATE_CONCURRENCY", 1),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s VIEWS_DIR=%s SOURCE_DB_DSN=%s TARGET_MIGRATIONS_PATH=%s MIGRATE_BATCH_SIZE=%d",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.Views, cfg.SourceDSN, cfg.TargetMigrations, cfg.MigrateBatchSize)
	return cfg
}

// intEnv falls back to def when the variable is unset or not a positive integer.
func intEnv(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		log.Printf("[warn] %s=%q is not a positive integer, using %d", key, raw, def)
		return def
	}
	return n
}

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/gdugdh24/bookswap-backend/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// NewPostgresDB creates a new PostgreSQL database connection using sqlx and
// applies migrations when cfg.Migrate is set.
func NewPostgresDB(cfg *config.DatabaseConfig, log *logrus.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(100)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.Migrate {
		if err := Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("database migrations applied")
	}

	log.WithFields(logrus.Fields{"host": cfg.Host, "db": cfg.DBName}).Info("connected to postgres")
	return db, nil
}

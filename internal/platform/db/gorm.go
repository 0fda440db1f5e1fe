package db

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenGorm layers gorm over an existing pgx pool so both share connections.
func OpenGorm(pool *pgxpool.Pool, env string) (*gorm.DB, error) {
	sqlDB := stdlib.OpenDBFromPool(pool)

	var logger gormlogger.Interface
	switch env {
	case "production":
		logger = gormlogger.Default.LogMode(gormlogger.Silent)
	case "staging":
		logger = gormlogger.Default.LogMode(gormlogger.Warn)
	default:
		logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:      logger,
		PrepareStmt: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("platform/db: open gorm: %w", err)
	}
	return gdb, nil
}

// Migrate creates or updates the tables of models.
func Migrate(gdb *gorm.DB, models ...any) error {
	if err := gdb.AutoMigrate(models...); err != nil {
		return fmt.Errorf("platform/db: migrate: %w", err)
	}
	return nil
}

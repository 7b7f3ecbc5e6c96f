package storage

import (
	"fmt"
	"log/slog"

	"github.com/nuptial-ops/wedding-manager/pkg/config"
	"github.com/nuptial-ops/wedding-manager/pkg/model"
	slogGorm "github.com/orandin/slog-gorm"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDatabase connects to PostgreSQL and migrates the schema.
func NewDatabase(c config.Postgresql, logger *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(c.DSN()), gormConfig(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %q: %v", c.DatabaseName, err)
	}

	return setup(db)
}

// NewSQLite opens a SQLite database at path, ":memory:" is fine for tests.
func NewSQLite(path string, logger *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %q: %v", path, err)
	}

	return setup(db)
}

func gormConfig(logger *slog.Logger) *gorm.Config {
	return &gorm.Config{
		Logger: slogGorm.New(
			slogGorm.WithHandler(logger.Handler()),
			slogGorm.WithTraceAll(),
			slogGorm.SetLogLevel(slogGorm.DefaultLogType, slog.LevelDebug),
		),
		TranslateError: true,
	}
}

func setup(db *gorm.DB) (*gorm.DB, error) {
	if err := db.Use(otelgorm.NewPlugin()); err != nil {
		return nil, fmt.Errorf("failed to install tracing plugin: %v", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Wedding{},
		&model.Event{},

		&model.Guest{},
		&model.GuestEventAttendance{},

		&model.Vendor{},
		&model.LookupOption{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %v", err)
	}
	return nil
}

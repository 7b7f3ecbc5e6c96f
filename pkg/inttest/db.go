package inttest

import (
	"log/slog"
	"strings"
	"testing"

	_ "github.com/lib/pq" // postgres driver
	"github.com/nuptial-ops/wedding-manager/pkg/config"
	"github.com/nuptial-ops/wedding-manager/pkg/storage"
	"github.com/orlangure/gnomock"
	"github.com/orlangure/gnomock/preset/postgres"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SetupDB creates a PostgreSQL container. Gorm is connected to the DB and runs the migrations.
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()

	container, err := gnomock.Start(
		postgres.Preset(
			postgres.WithUser("wedding", "wedding"),
			postgres.WithDatabase("test_weddings"),
		),
	)
	require.NoError(t, err, "failed to start DB")
	t.Cleanup(func() { require.NoError(t, gnomock.Stop(container), "failed to stop DB") })

	db, err := storage.NewDatabase(config.Postgresql{
		Host:         container.Host,
		Port:         container.DefaultPort(),
		Username:     "wedding",
		Password:     "wedding",
		DatabaseName: "test_weddings",
	}, slog.New(slog.DiscardHandler))
	require.NoError(t, err, "failed to setup DB")
	return db
}

// SetupSQLite creates an in-memory SQLite database with the migrations applied. Use it when a test
// needs a real store but not PostgreSQL specifics.
func SetupSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := storage.NewSQLite("file:"+strings.ReplaceAll(t.Name(), "/", "_")+"?mode=memory&cache=shared", slog.New(slog.DiscardHandler))
	require.NoError(t, err, "failed to setup SQLite")
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close(), "failed to close SQLite")
	})
	return db
}

package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestValidateDirShippedMigrations(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestEmbeddedMigrationsCoverSchema(t *testing.T) {
	entries, err := Embedded.ReadDir(embeddedDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	var all strings.Builder
	for _, e := range entries {
		b, err := Embedded.ReadFile(embeddedDir + "/" + e.Name())
		require.NoError(t, err)
		all.Write(b)
	}
	sql := all.String()

	for _, table := range []string{
		"users", "user_addresses", "user_payment_methods",
		"categories", "subcategories", "ingredients", "dietary_restrictions",
		"products", "product_ingredients", "product_dietary_restrictions",
		"promotions", "promotion_products", "images",
		"orders", "order_items", "user_favorites",
	} {
		assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS "+table+" ", table)
	}
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	t.Run("bad name", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "create_users.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
		assert.Error(t, ValidateDir(dir))
	})

	t.Run("missing down", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "20250101000000_x.sql"), []byte("-- +goose Up\n"), 0o644))
		assert.Error(t, ValidateDir(dir))
	})

	t.Run("unbalanced statements", func(t *testing.T) {
		dir := t.TempDir()
		body := "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "20250101000000_x.sql"), []byte(body), 0o644))
		assert.Error(t, ValidateDir(dir))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Error(t, ValidateDir(t.TempDir()))
	})
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	path, err := createSQLMigrationAt(dir, "  Add Order Notes! ", at)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20250304050607_add_order_notes.sql"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "-- +goose Up")
	assert.Contains(t, string(b), "-- rollback add_order_notes")
	require.NoError(t, ValidateDir(dir))

	_, err = createSQLMigrationAt(dir, "add order notes", at)
	assert.Error(t, err, "same version twice")

	_, err = createSQLMigrationAt(dir, "!!!", at)
	assert.Error(t, err)
}

func TestAutoMigrateSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	require.NoError(t, AutoMigrate(conn))
	for _, table := range []string{"users", "products", "orders", "order_items", "promotion_products", "user_favorites"} {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}
}

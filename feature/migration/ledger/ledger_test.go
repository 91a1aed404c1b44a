package ledger

import (
	"context"
	"regexp"
	"testing"
	"time"

	"accounting-sync/feature/migration/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.MigrationRow{}))
	return db
}

func TestShouldApply(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	l := New()

	ok, err := l.ShouldApply(ctx, db, "usuarios", "a@b.c", "sum1", "b1")
	require.NoError(t, err)
	assert.True(t, ok, "new row applies")

	ok, err = l.ShouldApply(ctx, db, "usuarios", "a@b.c", "sum1", "b2")
	require.NoError(t, err)
	assert.False(t, ok, "unchanged row is skipped")

	entry, err := Entry(ctx, db, "usuarios", "a@b.c")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "b1", entry.BatchID, "skip must not touch the entry")

	ok, err = l.ShouldApply(ctx, db, "usuarios", "a@b.c", "sum2", "b3")
	require.NoError(t, err)
	assert.True(t, ok, "changed row applies")

	sums, err := Checksums(ctx, db, "usuarios")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a@b.c": "sum2"}, sums)

	entry, err = Entry(ctx, db, "usuarios", "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, "b3", entry.BatchID)
}

func TestShouldApply_EntitiesAreSeparate(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	l := New()

	_, err := l.ShouldApply(ctx, db, "cuentas", "1101", "x", "b1")
	require.NoError(t, err)
	ok, err := l.ShouldApply(ctx, db, "productos", "1101", "x", "b1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestShouldApply_RollbackUndoesEntry(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	l := New()

	tx := db.Begin()
	ok, err := l.ShouldApply(ctx, tx, "terceros", "1-9", "x", "b1")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, tx.Rollback().Error)

	entry, err := Entry(ctx, db, "terceros", "1-9")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestShouldApply_MySQLUpsert(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	l := &Ledger{now: func() time.Time { return fixed }}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `checksum` FROM `migration_rows` WHERE entity = ? AND row_key = ? LIMIT ?")).
		WithArgs("productos", "SKU-1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"checksum"}).AddRow("old"))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `migration_rows`")).
		WithArgs("productos", "SKU-1", "new", "b1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	ok, err := l.ShouldApply(context.Background(), db, "productos", "SKU-1", "new", "b1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

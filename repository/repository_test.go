package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_journal_mode=WAL&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	return db
}

func newTestRepos(t *testing.T) (*AccountGormRepository, *MessageGormRepository) {
	t.Helper()
	db := newTestDB(t)
	accounts := NewAccountGormRepository(db)
	messages := NewMessageGormRepository(db)
	require.NoError(t, accounts.Init(context.Background()))
	require.NoError(t, messages.Init(context.Background()))
	return accounts, messages
}

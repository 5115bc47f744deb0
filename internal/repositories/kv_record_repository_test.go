package repositories

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"veostudio/internal/database"
)

func newTestRepo(t *testing.T) KVRecordRepository {
	t.Helper()
	db, err := database.Init(database.Config{
		Path:     filepath.Join(t.TempDir(), "kv.db"),
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewKVRecordRepository(db)
}

func TestKVRecordRepository_GetMissingReturnsNil(t *testing.T) {
	repo := newTestRepo(t)

	rec, err := repo.Get(context.Background(), "absent")
	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestKVRecordRepository_PutOverwrites(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "history", "[1]"))
	require.NoError(t, repo.Put(ctx, "history", "[1,2]"))

	rec, err := repo.Get(ctx, "history")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "[1,2]", rec.Value)
}

func TestKVRecordRepository_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "history", "[]"))
	require.NoError(t, repo.Delete(ctx, "history"))

	rec, err := repo.Get(ctx, "history")
	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestKVRecordRepository_RequiresKey(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Put(context.Background(), " ", "x")
	assert.EqualError(t, err, "key is required")
}

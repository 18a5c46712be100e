package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/mediafolio/catalog-backend/pkg/config"
	"github.com/mediafolio/catalog-backend/pkg/db"
	"github.com/mediafolio/catalog-backend/pkg/db/models"
	dbtypes "github.com/mediafolio/catalog-backend/pkg/db/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupItemsTestDB(t *testing.T) *db.Client {
	t.Helper()

	// A single connection keeps every statement on the same in-memory database.
	client, err := db.New(context.Background(), config.DBConfig{DSN: ":memory:", MaxOpenConns: 1}, true, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	ddl := `
CREATE TABLE IF NOT EXISTS items (
  public_id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL,
  category_name TEXT NOT NULL DEFAULT '',
  tags TEXT NOT NULL DEFAULT '[]',
  url TEXT NOT NULL,
  optimized_url TEXT NOT NULL DEFAULT '',
  format TEXT NOT NULL DEFAULT '',
  is_feature_image INTEGER NOT NULL DEFAULT 0,
  view_number INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME NOT NULL
);`
	require.NoError(t, client.DB().Exec(ddl).Error)
	return client
}

func seedItem(t *testing.T, db *gorm.DB, publicID, categoryID, categoryName string, createdAt time.Time) models.Item {
	t.Helper()
	item := models.Item{
		PublicID:     publicID,
		CategoryID:   categoryID,
		CategoryName: categoryName,
		Tags:         dbtypes.StringList{"seed"},
		URL:          "https://cdn.example/upload/" + publicID + ".jpg",
		CreatedAt:    createdAt,
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func TestRepositoryByCategoryOrdersNewestFirst(t *testing.T) {
	client := setupItemsTestDB(t)
	repo := NewRepository(client)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedItem(t, client.DB(), "old", "cat-1", "Sunsets", base)
	seedItem(t, client.DB(), "new", "cat-1", "Sunsets", base.Add(time.Hour))
	seedItem(t, client.DB(), "other", "cat-2", "Forests", base)

	items, err := repo.ByCategory(ctx, "cat-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "new", items[0].PublicID)
	assert.Equal(t, "old", items[1].PublicID)
}

func TestRepositoryIncrementView(t *testing.T) {
	client := setupItemsTestDB(t)
	repo := NewRepository(client)
	ctx := context.Background()

	seedItem(t, client.DB(), "img-1", "cat-1", "Sunsets", time.Now().UTC())

	require.NoError(t, repo.IncrementView(ctx, "img-1"))
	require.NoError(t, repo.IncrementView(ctx, "img-1"))

	item, err := repo.FindByPublicID(ctx, "img-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), item.ViewNumber)

	err = repo.IncrementView(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryUpdateFieldsMissingRow(t *testing.T) {
	client := setupItemsTestDB(t)
	repo := NewRepository(client)

	err := repo.UpdateFields(context.Background(), "missing", map[string]any{"format": "png"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryRenameCategoryTouchesEveryMember(t *testing.T) {
	client := setupItemsTestDB(t)
	repo := NewRepository(client)
	ctx := context.Background()

	now := time.Now().UTC()
	seedItem(t, client.DB(), "a", "cat-1", "Sunsets", now)
	seedItem(t, client.DB(), "b", "cat-1", "Sunsets", now.Add(time.Minute))
	seedItem(t, client.DB(), "c", "cat-2", "Forests", now)

	updated, err := repo.RenameCategory(ctx, "cat-1", "Golden Hour")
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	members, err := repo.ByCategory(ctx, "cat-1")
	require.NoError(t, err)
	for _, m := range members {
		assert.Equal(t, "Golden Hour", m.CategoryName)
	}

	untouched, err := repo.FindByPublicID(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "Forests", untouched.CategoryName)
}

func TestRepositoryRemoveByCategory(t *testing.T) {
	client := setupItemsTestDB(t)
	repo := NewRepository(client)
	ctx := context.Background()

	now := time.Now().UTC()
	seedItem(t, client.DB(), "a", "cat-1", "Sunsets", now)
	seedItem(t, client.DB(), "b", "cat-1", "Sunsets", now)
	seedItem(t, client.DB(), "c", "cat-2", "Forests", now)

	removed, err := repo.RemoveByCategory(ctx, "cat-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	remaining, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "c", remaining[0].PublicID)
}

func TestRepositoryMoveFeatureFlag(t *testing.T) {
	client := setupItemsTestDB(t)
	repo := NewRepository(client)
	ctx := context.Background()

	now := time.Now().UTC()
	old := seedItem(t, client.DB(), "a", "cat-1", "Sunsets", now)
	seedItem(t, client.DB(), "b", "cat-1", "Sunsets", now.Add(time.Minute))
	other := seedItem(t, client.DB(), "c", "cat-2", "Forests", now)
	require.NoError(t, client.DB().Model(&old).Update("is_feature_image", true).Error)
	require.NoError(t, client.DB().Model(&other).Update("is_feature_image", true).Error)

	err := repo.MoveFeatureFlag(ctx, "cat-1", "b", map[string]any{"is_feature_image": true})
	require.NoError(t, err)

	gained, err := repo.FindByPublicID(ctx, "b")
	require.NoError(t, err)
	assert.True(t, gained.IsFeatureImage)

	lost, err := repo.FindByPublicID(ctx, "a")
	require.NoError(t, err)
	assert.False(t, lost.IsFeatureImage)

	untouched, err := repo.FindByPublicID(ctx, "c")
	require.NoError(t, err)
	assert.True(t, untouched.IsFeatureImage, "other categories keep their flag")
}

func TestRepositoryMoveFeatureFlagMissingTargetRollsBack(t *testing.T) {
	client := setupItemsTestDB(t)
	repo := NewRepository(client)
	ctx := context.Background()

	item := seedItem(t, client.DB(), "a", "cat-1", "Sunsets", time.Now().UTC())
	require.NoError(t, client.DB().Model(&item).Update("is_feature_image", true).Error)

	err := repo.MoveFeatureFlag(ctx, "cat-1", "missing", map[string]any{"is_feature_image": true})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	kept, err := repo.FindByPublicID(ctx, "a")
	require.NoError(t, err)
	assert.True(t, kept.IsFeatureImage, "failed move must not clear the current flag")
}

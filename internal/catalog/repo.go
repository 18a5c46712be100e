package catalog

import (
	"context"

	"github.com/mediafolio/catalog-backend/pkg/db"
	"github.com/mediafolio/catalog-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes item persistence operations.
type Repository struct {
	client *db.Client
	db     *gorm.DB
}

// NewRepository constructs an item repository bound to the provided client.
func NewRepository(client *db.Client) *Repository {
	return &Repository{client: client, db: client.DB()}
}

// All returns every item, newest first.
func (r *Repository) All(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ByCategory returns a category's member items, newest first.
func (r *Repository) ByCategory(ctx context.Context, categoryID string) ([]models.Item, error) {
	var items []models.Item
	err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FindByPublicID retrieves a single item.
func (r *Repository) FindByPublicID(ctx context.Context, publicID string) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, "public_id = ?", publicID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FirstByCategoryName returns any item whose current display name matches,
// used to reuse an existing category id on insert.
func (r *Repository) FirstByCategoryName(ctx context.Context, name string) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, "category_name = ?", name).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Insert persists a batch of items in one transaction.
func (r *Repository) Insert(ctx context.Context, items []models.Item) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// UpdateFields applies a partial update to one item. Returns
// gorm.ErrRecordNotFound when no row matches.
func (r *Repository) UpdateFields(ctx context.Context, publicID string, fields map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("public_id = ?", publicID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MoveFeatureFlag hands a category's feature flag to one member: the flag is
// cleared on every other member and the target row gets fields applied, all
// inside one transaction. A missing target rolls the clear back and returns
// gorm.ErrRecordNotFound, so the category never ends up flagless.
func (r *Repository) MoveFeatureFlag(ctx context.Context, categoryID, publicID string, fields map[string]any) error {
	return r.client.WithTx(ctx, func(tx *gorm.DB) error {
		err := tx.Model(&models.Item{}).
			Where("category_id = ? AND public_id <> ?", categoryID, publicID).
			Update("is_feature_image", false).Error
		if err != nil {
			return err
		}
		result := tx.Model(&models.Item{}).
			Where("public_id = ?", publicID).
			Updates(fields)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// IncrementView bumps an item's view counter atomically.
func (r *Repository) IncrementView(ctx context.Context, publicID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("public_id = ?", publicID).
		Update("view_number", gorm.Expr("view_number + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Remove deletes one item. Returns gorm.ErrRecordNotFound when no row matches.
func (r *Repository) Remove(ctx context.Context, publicID string) error {
	result := r.db.WithContext(ctx).Where("public_id = ?", publicID).Delete(&models.Item{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RemoveByCategory deletes every member of a category and reports how many
// rows went away.
func (r *Repository) RemoveByCategory(ctx context.Context, categoryID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("category_id = ?", categoryID).Delete(&models.Item{})
	return result.RowsAffected, result.Error
}

// RenameCategory rewrites the display name on every member row and reports
// how many were touched.
func (r *Repository) RenameCategory(ctx context.Context, categoryID string, newName string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("category_id = ?", categoryID).
		Update("category_name", newName)
	return result.RowsAffected, result.Error
}

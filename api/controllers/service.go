package controllers

import (
	"context"

	"github.com/mediafolio/catalog-backend/internal/catalog"
	"github.com/mediafolio/catalog-backend/pkg/db/models"
	"github.com/mediafolio/catalog-backend/pkg/pagination"
)

// CatalogService is the service surface the controllers depend on;
// internal/catalog.Service satisfies it.
type CatalogService interface {
	SearchImages(ctx context.Context, query string, page, perPage int) (pagination.PageEnvelope[catalog.SearchDoc], error)
	ImagesByCategory(ctx context.Context, categoryID string, page, perPage int) (pagination.PageEnvelope[models.Item], error)
	ListCategories(ctx context.Context, page, perPage int) (pagination.PageEnvelope[catalog.CategoryView], error)
	CategoryImages(ctx context.Context, categoryID string, page, perPage int) (pagination.PageEnvelope[models.Item], error)
	TopViewed(ctx context.Context, page, perPage int) (pagination.PageEnvelope[models.Item], error)
	Newest(ctx context.Context, page, perPage int) (pagination.PageEnvelope[models.Item], error)
	GetImage(ctx context.Context, publicID string) (*models.Item, error)
	GetSuggestions(ctx context.Context) (catalog.Suggestions, error)
	Export(ctx context.Context) ([]models.Item, error)
	CreateImages(ctx context.Context, uploads []catalog.UploadedAsset, categoryName string, tags []string) ([]models.Item, error)
	UpdateImage(ctx context.Context, publicID string, input catalog.UpdateImageInput) (*models.Item, error)
	DeleteImage(ctx context.Context, publicID string) error
	RenameCategory(ctx context.Context, categoryID string, newName string) (int64, error)
	DeleteCategory(ctx context.Context, categoryID string) (int64, error)
}

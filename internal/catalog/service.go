package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mediafolio/catalog-backend/pkg/cache"
	"github.com/mediafolio/catalog-backend/pkg/config"
	"github.com/mediafolio/catalog-backend/pkg/db/models"
	dbtypes "github.com/mediafolio/catalog-backend/pkg/db/types"
	pkgerrors "github.com/mediafolio/catalog-backend/pkg/errors"
	"github.com/mediafolio/catalog-backend/pkg/logger"
	"github.com/mediafolio/catalog-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Operation names keyed into cache fingerprints.
const (
	opSearchImages     = "search_images"
	opImagesByCategory = "images_by_category"
	opListCategories   = "list_categories"
	opCategoryImages   = "category_images"
	opTopViewed        = "top_viewed"
	opNewest           = "newest"
	opSuggestions      = "suggestions"
)

type itemRepository interface {
	All(ctx context.Context) ([]models.Item, error)
	ByCategory(ctx context.Context, categoryID string) ([]models.Item, error)
	FindByPublicID(ctx context.Context, publicID string) (*models.Item, error)
	FirstByCategoryName(ctx context.Context, name string) (*models.Item, error)
	Insert(ctx context.Context, items []models.Item) error
	UpdateFields(ctx context.Context, publicID string, fields map[string]any) error
	MoveFeatureFlag(ctx context.Context, categoryID, publicID string, fields map[string]any) error
	IncrementView(ctx context.Context, publicID string) error
	Remove(ctx context.Context, publicID string) error
	RemoveByCategory(ctx context.Context, categoryID string) (int64, error)
	RenameCategory(ctx context.Context, categoryID string, newName string) (int64, error)
}

// Service implements the catalog read and write surface. Reads go through the
// cache controller; every write bumps the store generation so prior cached
// pages become unreachable.
type Service struct {
	repo  itemRepository
	cache *cache.Controller
	cfg   config.CatalogConfig
	logg  *logger.Logger
	now   func() time.Time
	newID func() string
}

// NewService wires the catalog service.
func NewService(repo itemRepository, cacheController *cache.Controller, cfg config.CatalogConfig, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.FeatureWindow < 1 {
		cfg.FeatureWindow = DefaultFeatureWindow
	}
	if cfg.DefaultPerPage < 1 {
		cfg.DefaultPerPage = pagination.DefaultPerPage
	}
	return &Service{
		repo:  repo,
		cache: cacheController,
		cfg:   cfg,
		logg:  logg,
		now:   time.Now,
		newID: uuid.NewString,
	}, nil
}

type pageParams struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

func (s *Service) normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = pagination.DefaultPage
	}
	if perPage < 1 {
		perPage = s.cfg.DefaultPerPage
	}
	if s.cfg.MaxPerPage > 0 && perPage > s.cfg.MaxPerPage {
		perPage = s.cfg.MaxPerPage
	}
	return page, perPage
}

// SearchImages fuzzy-matches the query against category names and tags and
// returns one page of matching projections, best first.
func (s *Service) SearchImages(ctx context.Context, query string, page, perPage int) (pagination.PageEnvelope[SearchDoc], error) {
	if strings.TrimSpace(query) == "" {
		return pagination.PageEnvelope[SearchDoc]{}, pkgerrors.New(pkgerrors.CodeValidation, "search query is required")
	}
	page, perPage = s.normalizePage(page, perPage)

	params := struct {
		Query string `json:"query"`
		pageParams
	}{Query: query, pageParams: pageParams{Page: page, PerPage: perPage}}

	return cache.Cached(ctx, s.cache, opSearchImages, params, func(ctx context.Context) (pagination.PageEnvelope[SearchDoc], error) {
		items, err := s.repo.All(ctx)
		if err != nil {
			return pagination.PageEnvelope[SearchDoc]{}, storeErr(err)
		}
		matched := SearchDocs(ProjectSearchDocs(items), query)
		return pagination.Paginate(matched, page, perPage), nil
	})
}

// ImagesByCategory returns one page of a category's items, newest first.
func (s *Service) ImagesByCategory(ctx context.Context, categoryID string, page, perPage int) (pagination.PageEnvelope[models.Item], error) {
	if categoryID == "" {
		return pagination.PageEnvelope[models.Item]{}, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	page, perPage = s.normalizePage(page, perPage)

	params := struct {
		CategoryID string `json:"category_id"`
		pageParams
	}{CategoryID: categoryID, pageParams: pageParams{Page: page, PerPage: perPage}}

	return cache.Cached(ctx, s.cache, opImagesByCategory, params, func(ctx context.Context) (pagination.PageEnvelope[models.Item], error) {
		items, err := s.repo.ByCategory(ctx, categoryID)
		if err != nil {
			return pagination.PageEnvelope[models.Item]{}, storeErr(err)
		}
		return pagination.Paginate(items, page, perPage), nil
	})
}

// ListCategories returns one page of derived category views, sorted by name.
func (s *Service) ListCategories(ctx context.Context, page, perPage int) (pagination.PageEnvelope[CategoryView], error) {
	page, perPage = s.normalizePage(page, perPage)

	params := struct {
		FeatureWindow int `json:"feature_window"`
		pageParams
	}{FeatureWindow: s.cfg.FeatureWindow, pageParams: pageParams{Page: page, PerPage: perPage}}

	return cache.Cached(ctx, s.cache, opListCategories, params, func(ctx context.Context) (pagination.PageEnvelope[CategoryView], error) {
		items, err := s.repo.All(ctx)
		if err != nil {
			return pagination.PageEnvelope[CategoryView]{}, storeErr(err)
		}
		views := BuildCategories(items, s.cfg.FeatureWindow)
		return pagination.Paginate(views, page, perPage), nil
	})
}

// CategoryImages returns one page of a category's member items, newest first.
// Unlike ImagesByCategory it 404s when the category has no members, matching
// the category detail screen.
func (s *Service) CategoryImages(ctx context.Context, categoryID string, page, perPage int) (pagination.PageEnvelope[models.Item], error) {
	if categoryID == "" {
		return pagination.PageEnvelope[models.Item]{}, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	page, perPage = s.normalizePage(page, perPage)

	params := struct {
		CategoryID string `json:"category_id"`
		pageParams
	}{CategoryID: categoryID, pageParams: pageParams{Page: page, PerPage: perPage}}

	return cache.Cached(ctx, s.cache, opCategoryImages, params, func(ctx context.Context) (pagination.PageEnvelope[models.Item], error) {
		items, err := s.repo.ByCategory(ctx, categoryID)
		if err != nil {
			return pagination.PageEnvelope[models.Item]{}, storeErr(err)
		}
		if len(items) == 0 {
			return pagination.PageEnvelope[models.Item]{}, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pagination.Paginate(items, page, perPage), nil
	})
}

// TopViewed returns one page of items ordered by view count, highest first.
func (s *Service) TopViewed(ctx context.Context, page, perPage int) (pagination.PageEnvelope[models.Item], error) {
	page, perPage = s.normalizePage(page, perPage)
	params := pageParams{Page: page, PerPage: perPage}

	return cache.Cached(ctx, s.cache, opTopViewed, params, func(ctx context.Context) (pagination.PageEnvelope[models.Item], error) {
		items, err := s.repo.All(ctx)
		if err != nil {
			return pagination.PageEnvelope[models.Item]{}, storeErr(err)
		}
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].ViewNumber > items[j].ViewNumber
		})
		return pagination.Paginate(items, page, perPage), nil
	})
}

// Newest returns one page of items ordered by creation time, newest first.
func (s *Service) Newest(ctx context.Context, page, perPage int) (pagination.PageEnvelope[models.Item], error) {
	page, perPage = s.normalizePage(page, perPage)
	params := pageParams{Page: page, PerPage: perPage}

	return cache.Cached(ctx, s.cache, opNewest, params, func(ctx context.Context) (pagination.PageEnvelope[models.Item], error) {
		items, err := s.repo.All(ctx)
		if err != nil {
			return pagination.PageEnvelope[models.Item]{}, storeErr(err)
		}
		return pagination.Paginate(items, page, perPage), nil
	})
}

// GetImage fetches one item and records the view. The view increment is a
// write, so it bumps the store generation; the detail read itself is never
// cached.
func (s *Service) GetImage(ctx context.Context, publicID string) (*models.Item, error) {
	if publicID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "public id is required")
	}

	item, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
		}
		return nil, storeErr(err)
	}

	if err := s.repo.IncrementView(ctx, publicID); err != nil {
		// The read stands even when the counter write fails.
		s.logg.Warn(s.logg.WithField(ctx, "public_id", publicID), "view counter increment failed")
	} else {
		item.ViewNumber++
		s.cache.Invalidate(ctx)
	}

	return item, nil
}

// Suggestions holds the autocomplete material: every known category and the
// deduplicated union of all tags.
type Suggestions struct {
	Categories []CategoryRef `json:"categories"`
	Tags       []string      `json:"tags"`
}

// CategoryRef is a category identity pair.
type CategoryRef struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"category_name"`
}

// GetSuggestions returns the autocomplete material, unique by category id and
// with tags deduplicated, both in first-seen order.
func (s *Service) GetSuggestions(ctx context.Context) (Suggestions, error) {
	return cache.Cached(ctx, s.cache, opSuggestions, nil, func(ctx context.Context) (Suggestions, error) {
		items, err := s.repo.All(ctx)
		if err != nil {
			return Suggestions{}, storeErr(err)
		}

		out := Suggestions{Categories: []CategoryRef{}, Tags: []string{}}
		seenCategories := make(map[string]struct{})
		seenTags := make(map[string]struct{})
		for _, item := range items {
			if _, ok := seenCategories[item.CategoryID]; !ok {
				seenCategories[item.CategoryID] = struct{}{}
				out.Categories = append(out.Categories, CategoryRef{
					CategoryID: item.CategoryID,
					Name:       item.CategoryName,
				})
			}
			for _, tag := range item.Tags {
				if _, ok := seenTags[tag]; ok {
					continue
				}
				seenTags[tag] = struct{}{}
				out.Tags = append(out.Tags, tag)
			}
		}
		return out, nil
	})
}

// Export dumps every item row. Not cached: the dump must reflect the store
// exactly at read time.
func (s *Service) Export(ctx context.Context) ([]models.Item, error) {
	items, err := s.repo.All(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return items, nil
}

// UploadedAsset describes one completed remote upload to register.
type UploadedAsset struct {
	PublicID string `json:"public_id" validate:"required"`
	URL      string `json:"url" validate:"required,url"`
	Format   string `json:"format"`
}

// CreateImages registers a batch of uploaded assets under one category. A
// category whose current display name matches reuses its id; otherwise a new
// id is minted. Tags are trimmed, view counters start at zero.
func (s *Service) CreateImages(ctx context.Context, uploads []UploadedAsset, categoryName string, tags []string) ([]models.Item, error) {
	categoryName = strings.TrimSpace(categoryName)
	if categoryName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	if len(uploads) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one upload is required")
	}

	cleanTags := make([]string, 0, len(tags))
	for _, tag := range tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			cleanTags = append(cleanTags, trimmed)
		}
	}

	categoryID, err := s.resolveCategoryID(ctx, categoryName)
	if err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(uploads))
	createdAt := s.now().UTC()
	for _, upload := range uploads {
		if upload.PublicID == "" || upload.URL == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "upload public_id and url are required")
		}
		items = append(items, models.Item{
			PublicID:     upload.PublicID,
			CategoryID:   categoryID,
			CategoryName: categoryName,
			Tags:         dbtypes.StringList(cleanTags),
			URL:          upload.URL,
			OptimizedURL: OptimizeURL(upload.URL, s.cfg.OptimizedParams),
			Format:       upload.Format,
			CreatedAt:    createdAt,
		})
	}

	if err := s.repo.Insert(ctx, items); err != nil {
		return nil, storeErr(err)
	}
	s.cache.Invalidate(ctx)
	return items, nil
}

func (s *Service) resolveCategoryID(ctx context.Context, categoryName string) (string, error) {
	existing, err := s.repo.FirstByCategoryName(ctx, categoryName)
	switch {
	case err == nil:
		return existing.CategoryID, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.newID(), nil
	default:
		return "", storeErr(err)
	}
}

// UpdateImageInput carries the mutable item fields; nil means leave as is.
type UpdateImageInput struct {
	Tags       *[]string
	SetFeature *bool
}

// UpdateImage re-tags an item and/or moves the category's feature flag onto
// it. The flag move clears every other member and sets the target in one
// transaction, so a failed update cannot strand the category without a
// feature image.
func (s *Service) UpdateImage(ctx context.Context, publicID string, input UpdateImageInput) (*models.Item, error) {
	if publicID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "public id is required")
	}
	if input.Tags == nil && input.SetFeature == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}

	item, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
		}
		return nil, storeErr(err)
	}

	fields := map[string]any{}
	if input.Tags != nil {
		cleaned := make([]string, 0, len(*input.Tags))
		for _, tag := range *input.Tags {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		item.Tags = dbtypes.StringList(cleaned)
		fields["tags"] = dbtypes.StringList(cleaned)
	}
	if input.SetFeature != nil {
		item.IsFeatureImage = *input.SetFeature
		fields["is_feature_image"] = *input.SetFeature
	}

	if input.SetFeature != nil && *input.SetFeature {
		err = s.repo.MoveFeatureFlag(ctx, item.CategoryID, publicID, fields)
	} else {
		err = s.repo.UpdateFields(ctx, publicID, fields)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
		}
		return nil, storeErr(err)
	}
	s.cache.Invalidate(ctx)
	return item, nil
}

// DeleteImage removes one item. Remote object cleanup is the caller's concern.
func (s *Service) DeleteImage(ctx context.Context, publicID string) error {
	if publicID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "public id is required")
	}
	if err := s.repo.Remove(ctx, publicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
		}
		return storeErr(err)
	}
	s.cache.Invalidate(ctx)
	return nil
}

// RenameCategory rewrites the display name on every member row.
func (s *Service) RenameCategory(ctx context.Context, categoryID string, newName string) (int64, error) {
	newName = strings.TrimSpace(newName)
	if categoryID == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	if newName == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "new category name is required")
	}

	updated, err := s.repo.RenameCategory(ctx, categoryID, newName)
	if err != nil {
		return 0, storeErr(err)
	}
	if updated == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	s.cache.Invalidate(ctx)
	return updated, nil
}

// DeleteCategory removes every member row of the category.
func (s *Service) DeleteCategory(ctx context.Context, categoryID string) (int64, error) {
	if categoryID == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}

	removed, err := s.repo.RemoveByCategory(ctx, categoryID)
	if err != nil {
		return 0, storeErr(err)
	}
	if removed == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	s.cache.Invalidate(ctx)
	return removed, nil
}

// OptimizeURL derives the delivery URL by splicing transformation params into
// an asset CDN upload path. URLs without an upload segment pass through
// unchanged.
func OptimizeURL(rawURL string, params string) string {
	if params == "" {
		return rawURL
	}
	const marker = "/upload/"
	idx := strings.Index(rawURL, marker)
	if idx < 0 {
		return rawURL
	}
	return rawURL[:idx+len(marker)] + params + "/" + rawURL[idx+len(marker):]
}

// storeErr wraps a driver failure as a dependency error.
func storeErr(err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "item store query failed")
}

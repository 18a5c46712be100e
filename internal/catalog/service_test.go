package catalog

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/mediafolio/catalog-backend/pkg/cache"
	"github.com/mediafolio/catalog-backend/pkg/config"
	"github.com/mediafolio/catalog-backend/pkg/db/models"
	dbtypes "github.com/mediafolio/catalog-backend/pkg/db/types"
	pkgerrors "github.com/mediafolio/catalog-backend/pkg/errors"
	"github.com/mediafolio/catalog-backend/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubRepo struct {
	items []models.Item

	inserted     []models.Item
	updated      map[string]map[string]any
	removed      []string
	featureMoves []string
	renamed      map[string]string
	viewBumps    []string

	allErr  error
	moveErr error
}

func newStubRepo(items ...models.Item) *stubRepo {
	return &stubRepo{
		items:   items,
		updated: map[string]map[string]any{},
		renamed: map[string]string{},
	}
}

func (s *stubRepo) All(context.Context) ([]models.Item, error) {
	if s.allErr != nil {
		return nil, s.allErr
	}
	out := make([]models.Item, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *stubRepo) ByCategory(_ context.Context, categoryID string) ([]models.Item, error) {
	var out []models.Item
	for _, item := range s.items {
		if item.CategoryID == categoryID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubRepo) FindByPublicID(_ context.Context, publicID string) (*models.Item, error) {
	for i := range s.items {
		if s.items[i].PublicID == publicID {
			found := s.items[i]
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FirstByCategoryName(_ context.Context, name string) (*models.Item, error) {
	for i := range s.items {
		if s.items[i].CategoryName == name {
			found := s.items[i]
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) Insert(_ context.Context, items []models.Item) error {
	s.inserted = append(s.inserted, items...)
	s.items = append(s.items, items...)
	return nil
}

func (s *stubRepo) UpdateFields(_ context.Context, publicID string, fields map[string]any) error {
	for i := range s.items {
		if s.items[i].PublicID == publicID {
			s.updated[publicID] = fields
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubRepo) MoveFeatureFlag(_ context.Context, categoryID, publicID string, fields map[string]any) error {
	if s.moveErr != nil {
		return s.moveErr
	}
	target := -1
	for i := range s.items {
		if s.items[i].PublicID == publicID {
			target = i
		}
	}
	if target < 0 {
		return gorm.ErrRecordNotFound
	}
	for i := range s.items {
		if s.items[i].CategoryID == categoryID {
			s.items[i].IsFeatureImage = i == target
		}
	}
	s.featureMoves = append(s.featureMoves, categoryID+"/"+publicID)
	s.updated[publicID] = fields
	return nil
}

func (s *stubRepo) IncrementView(_ context.Context, publicID string) error {
	for i := range s.items {
		if s.items[i].PublicID == publicID {
			s.items[i].ViewNumber++
			s.viewBumps = append(s.viewBumps, publicID)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubRepo) Remove(_ context.Context, publicID string) error {
	for i := range s.items {
		if s.items[i].PublicID == publicID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.removed = append(s.removed, publicID)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubRepo) RemoveByCategory(_ context.Context, categoryID string) (int64, error) {
	var kept []models.Item
	var removed int64
	for _, item := range s.items {
		if item.CategoryID == categoryID {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	s.items = kept
	return removed, nil
}

func (s *stubRepo) RenameCategory(_ context.Context, categoryID, newName string) (int64, error) {
	var renamed int64
	for i := range s.items {
		if s.items[i].CategoryID == categoryID {
			s.items[i].CategoryName = newName
			renamed++
		}
	}
	if renamed > 0 {
		s.renamed[categoryID] = newName
	}
	return renamed, nil
}

// generationBackend is an in-memory cache backend used to observe generation
// bumps from the write path.
type generationBackend struct {
	data      map[string]string
	incrCalls int
}

func newGenerationBackend() *generationBackend {
	return &generationBackend{data: map[string]string{}}
}

func (b *generationBackend) Get(_ context.Context, key string) (string, error) {
	v, ok := b.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (b *generationBackend) Set(_ context.Context, key string, value any, _ time.Duration) error {
	b.data[key] = value.(string)
	return nil
}

func (b *generationBackend) Incr(_ context.Context, key string) (int64, error) {
	b.incrCalls++
	b.data[key] = "1"
	return 1, nil
}

func (b *generationBackend) CacheKey(fp string) string         { return "mf:cache:" + fp }
func (b *generationBackend) GenerationKey(scope string) string { return "mf:generation:" + scope }

func testCatalogConfig() config.CatalogConfig {
	return config.CatalogConfig{
		FeatureWindow:   10,
		DefaultPerPage:  5,
		MaxPerPage:      100,
		OptimizedParams: "q_auto,f_auto",
	}
}

func newTestService(t *testing.T, repo itemRepository) *Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(repo, nil, testCatalogConfig(), logg)
	require.NoError(t, err)
	return svc
}

func newCachedTestService(t *testing.T, repo itemRepository) (*Service, *generationBackend) {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	backend := newGenerationBackend()
	controller, err := cache.NewController(cache.ControllerParams{
		Backend: backend,
		Config:  config.CacheConfig{Secret: "test-secret", TTL: time.Minute},
		Logger:  logg,
	})
	require.NoError(t, err)
	svc, err := NewService(repo, controller, testCatalogConfig(), logg)
	require.NoError(t, err)
	return svc, backend
}

func fixtureItems() []models.Item {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return []models.Item{
		{
			PublicID: "img-sunset", CategoryID: "cat-1", CategoryName: "Sunsets",
			Tags: dbtypes.StringList{"golden"}, URL: "https://cdn.example/upload/img-sunset.jpg",
			ViewNumber: 10, CreatedAt: base.Add(2 * time.Hour),
		},
		{
			PublicID: "img-forest", CategoryID: "cat-2", CategoryName: "Forests",
			Tags: dbtypes.StringList{"trees"}, URL: "https://cdn.example/upload/img-forest.jpg",
			ViewNumber: 30, CreatedAt: base.Add(time.Hour),
		},
		{
			PublicID: "img-beach", CategoryID: "cat-3", CategoryName: "Beaches",
			Tags: dbtypes.StringList{"sand"}, URL: "https://cdn.example/upload/img-beach.jpg",
			ViewNumber: 20, CreatedAt: base,
		},
	}
}

func TestSearchImagesRejectsEmptyQuery(t *testing.T) {
	svc := newTestService(t, newStubRepo(fixtureItems()...))

	_, err := svc.SearchImages(context.Background(), "   ", 1, 5)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestSearchImagesReturnsRankedPage(t *testing.T) {
	svc := newTestService(t, newStubRepo(fixtureItems()...))

	envelope, err := svc.SearchImages(context.Background(), "forest", 1, 5)
	require.NoError(t, err)
	require.NotEmpty(t, envelope.Data)
	assert.Equal(t, "img-forest", envelope.Data[0].PublicID)
}

func TestTopViewedOrdersByViewCount(t *testing.T) {
	svc := newTestService(t, newStubRepo(fixtureItems()...))

	envelope, err := svc.TopViewed(context.Background(), 1, 5)
	require.NoError(t, err)
	require.Len(t, envelope.Data, 3)
	assert.Equal(t, "img-forest", envelope.Data[0].PublicID)
	assert.Equal(t, "img-beach", envelope.Data[1].PublicID)
	assert.Equal(t, "img-sunset", envelope.Data[2].PublicID)
}

func TestNewestKeepsRepositoryOrder(t *testing.T) {
	svc := newTestService(t, newStubRepo(fixtureItems()...))

	envelope, err := svc.Newest(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, envelope.Data, 2)
	assert.Equal(t, "img-sunset", envelope.Data[0].PublicID)
	assert.Equal(t, 3, envelope.Total)
	assert.Equal(t, 2, envelope.TotalPages)
}

func TestCategoryImagesNotFound(t *testing.T) {
	svc := newTestService(t, newStubRepo(fixtureItems()...))

	_, err := svc.CategoryImages(context.Background(), "missing", 1, 5)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestGetImageIncrementsViewAndBumpsGeneration(t *testing.T) {
	repo := newStubRepo(fixtureItems()...)
	svc, backend := newCachedTestService(t, repo)

	item, err := svc.GetImage(context.Background(), "img-beach")
	require.NoError(t, err)
	assert.Equal(t, int64(21), item.ViewNumber)
	assert.Equal(t, []string{"img-beach"}, repo.viewBumps)
	assert.Equal(t, 1, backend.incrCalls, "detail read is a write: generation must bump")
}

func TestGetImageNotFound(t *testing.T) {
	svc := newTestService(t, newStubRepo())

	_, err := svc.GetImage(context.Background(), "missing")
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestGetSuggestionsUniqueAndDeduplicated(t *testing.T) {
	items := fixtureItems()
	items = append(items, models.Item{
		PublicID: "img-sunset-2", CategoryID: "cat-1", CategoryName: "Sunsets",
		Tags: dbtypes.StringList{"golden", "dusk"}, URL: "https://cdn.example/upload/img-sunset-2.jpg",
	})
	svc := newTestService(t, newStubRepo(items...))

	suggestions, err := svc.GetSuggestions(context.Background())
	require.NoError(t, err)

	require.Len(t, suggestions.Categories, 3, "unique by category id")
	assert.Equal(t, []string{"golden", "trees", "sand", "dusk"}, suggestions.Tags)
}

func TestCreateImagesReusesCategoryID(t *testing.T) {
	repo := newStubRepo(fixtureItems()...)
	svc, backend := newCachedTestService(t, repo)

	created, err := svc.CreateImages(context.Background(), []UploadedAsset{
		{PublicID: "img-new", URL: "https://cdn.example/upload/img-new.jpg", Format: "jpg"},
	}, "Sunsets", []string{" golden ", ""})
	require.NoError(t, err)
	require.Len(t, created, 1)

	assert.Equal(t, "cat-1", created[0].CategoryID, "existing display name reuses its id")
	assert.Equal(t, dbtypes.StringList{"golden"}, created[0].Tags, "tags trimmed, blanks dropped")
	assert.Equal(t, "https://cdn.example/upload/q_auto,f_auto/img-new.jpg", created[0].OptimizedURL)
	assert.Zero(t, created[0].ViewNumber)
	assert.Equal(t, 1, backend.incrCalls)
}

func TestCreateImagesMintsNewCategoryID(t *testing.T) {
	repo := newStubRepo(fixtureItems()...)
	svc := newTestService(t, repo)
	svc.newID = func() string { return "minted-id" }

	created, err := svc.CreateImages(context.Background(), []UploadedAsset{
		{PublicID: "img-new", URL: "https://cdn.example/upload/img-new.jpg"},
	}, "Mountains", nil)
	require.NoError(t, err)
	assert.Equal(t, "minted-id", created[0].CategoryID)
}

func TestUpdateImageSetFeatureMovesFlag(t *testing.T) {
	items := fixtureItems()
	items = append(items, models.Item{
		PublicID: "img-sunset-2", CategoryID: "cat-1", CategoryName: "Sunsets",
		URL: "https://cdn.example/upload/img-sunset-2.jpg", IsFeatureImage: true,
	})
	repo := newStubRepo(items...)
	svc, backend := newCachedTestService(t, repo)

	setFeature := true
	updated, err := svc.UpdateImage(context.Background(), "img-sunset", UpdateImageInput{SetFeature: &setFeature})
	require.NoError(t, err)

	assert.True(t, updated.IsFeatureImage)
	assert.Equal(t, []string{"cat-1/img-sunset"}, repo.featureMoves, "flag handed over in one move")
	sibling, err := repo.FindByPublicID(context.Background(), "img-sunset-2")
	require.NoError(t, err)
	assert.False(t, sibling.IsFeatureImage)
	assert.Equal(t, 1, backend.incrCalls)
}

func TestUpdateImageSetFeatureFailureKeepsCurrentFlag(t *testing.T) {
	items := fixtureItems()
	items = append(items, models.Item{
		PublicID: "img-sunset-2", CategoryID: "cat-1", CategoryName: "Sunsets",
		URL: "https://cdn.example/upload/img-sunset-2.jpg", IsFeatureImage: true,
	})
	repo := newStubRepo(items...)
	repo.moveErr = errors.New("write refused")
	svc, backend := newCachedTestService(t, repo)

	setFeature := true
	_, err := svc.UpdateImage(context.Background(), "img-sunset", UpdateImageInput{SetFeature: &setFeature})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeDependency, appErr.Code())

	current, err := repo.FindByPublicID(context.Background(), "img-sunset-2")
	require.NoError(t, err)
	assert.True(t, current.IsFeatureImage, "failed move leaves the previous flag in place")
	assert.Zero(t, backend.incrCalls, "no generation bump on a failed write")
}

func TestUpdateImageNothingToUpdate(t *testing.T) {
	svc := newTestService(t, newStubRepo(fixtureItems()...))

	_, err := svc.UpdateImage(context.Background(), "img-sunset", UpdateImageInput{})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestDeleteImageBumpsGeneration(t *testing.T) {
	repo := newStubRepo(fixtureItems()...)
	svc, backend := newCachedTestService(t, repo)

	require.NoError(t, svc.DeleteImage(context.Background(), "img-beach"))
	assert.Equal(t, []string{"img-beach"}, repo.removed)
	assert.Equal(t, 1, backend.incrCalls)
}

func TestRenameCategoryNotFound(t *testing.T) {
	svc := newTestService(t, newStubRepo(fixtureItems()...))

	_, err := svc.RenameCategory(context.Background(), "missing", "New Name")
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestDeleteCategoryRemovesWholeGroup(t *testing.T) {
	items := fixtureItems()
	items = append(items, models.Item{
		PublicID: "img-sunset-2", CategoryID: "cat-1", CategoryName: "Sunsets",
		URL: "https://cdn.example/upload/img-sunset-2.jpg",
	})
	repo := newStubRepo(items...)
	svc, backend := newCachedTestService(t, repo)

	removed, err := svc.DeleteCategory(context.Background(), "cat-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
	assert.Equal(t, 1, backend.incrCalls)

	remaining, err := repo.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}

func TestReadsSurfaceDependencyErrors(t *testing.T) {
	repo := newStubRepo()
	repo.allErr = errors.New("connection reset")
	svc := newTestService(t, repo)

	_, err := svc.Newest(context.Background(), 1, 5)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeDependency, appErr.Code())
}

func TestOptimizeURL(t *testing.T) {
	assert.Equal(t,
		"https://cdn.example/upload/q_auto,f_auto/img.jpg",
		OptimizeURL("https://cdn.example/upload/img.jpg", "q_auto,f_auto"),
	)
	assert.Equal(t,
		"https://cdn.example/raw/img.jpg",
		OptimizeURL("https://cdn.example/raw/img.jpg", "q_auto,f_auto"),
		"no upload segment passes through",
	)
	assert.Equal(t,
		"https://cdn.example/upload/img.jpg",
		OptimizeURL("https://cdn.example/upload/img.jpg", ""),
	)
}

package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mediafolio/catalog-backend/api/controllers"
	"github.com/mediafolio/catalog-backend/internal/catalog"
	"github.com/mediafolio/catalog-backend/pkg/config"
	"github.com/mediafolio/catalog-backend/pkg/db/models"
	"github.com/mediafolio/catalog-backend/pkg/logger"
	"github.com/mediafolio/catalog-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubService struct{}

func (stubService) SearchImages(_ context.Context, _ string, page, perPage int) (pagination.PageEnvelope[catalog.SearchDoc], error) {
	return pagination.Paginate([]catalog.SearchDoc{}, page, perPage), nil
}

func (stubService) ImagesByCategory(_ context.Context, _ string, page, perPage int) (pagination.PageEnvelope[models.Item], error) {
	return pagination.Paginate([]models.Item{}, page, perPage), nil
}

func (stubService) ListCategories(_ context.Context, page, perPage int) (pagination.PageEnvelope[catalog.CategoryView], error) {
	return pagination.Paginate([]catalog.CategoryView{}, page, perPage), nil
}

func (stubService) CategoryImages(_ context.Context, _ string, page, perPage int) (pagination.PageEnvelope[models.Item], error) {
	return pagination.Paginate([]models.Item{}, page, perPage), nil
}

func (stubService) TopViewed(_ context.Context, page, perPage int) (pagination.PageEnvelope[models.Item], error) {
	return pagination.Paginate([]models.Item{}, page, perPage), nil
}

func (stubService) Newest(_ context.Context, page, perPage int) (pagination.PageEnvelope[models.Item], error) {
	return pagination.Paginate([]models.Item{}, page, perPage), nil
}

func (stubService) GetImage(context.Context, string) (*models.Item, error) {
	return &models.Item{PublicID: "img-1"}, nil
}

func (stubService) GetSuggestions(context.Context) (catalog.Suggestions, error) {
	return catalog.Suggestions{}, nil
}

func (stubService) Export(context.Context) ([]models.Item, error) {
	return nil, nil
}

func (stubService) CreateImages(context.Context, []catalog.UploadedAsset, string, []string) ([]models.Item, error) {
	return nil, nil
}

func (stubService) UpdateImage(context.Context, string, catalog.UpdateImageInput) (*models.Item, error) {
	return &models.Item{}, nil
}

func (stubService) DeleteImage(context.Context, string) error { return nil }

func (stubService) RenameCategory(context.Context, string, string) (int64, error) { return 1, nil }

func (stubService) DeleteCategory(context.Context, string) (int64, error) { return 1, nil }

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.Catalog = config.CatalogConfig{DefaultPerPage: 5, MaxPerPage: 100, FeatureWindow: 10}

	logg := logger.New(logger.Options{ServiceName: "router-test"})
	deps := map[string]controllers.Pinger{"db": stubPinger{}}

	return NewRouter(cfg, logg, deps, stubService{}, http.NotFoundHandler())
}

func TestRouterMountsCatalogRoutes(t *testing.T) {
	router := testRouter(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/health/live"},
		{http.MethodGet, "/health/ready"},
		{http.MethodGet, "/api/v1/images"},
		{http.MethodGet, "/api/v1/images/top"},
		{http.MethodGet, "/api/v1/images/img-1"},
		{http.MethodGet, "/api/v1/categories"},
		{http.MethodGet, "/api/v1/categories/cat-1/images"},
		{http.MethodGet, "/api/v1/search?q=sunset"},
		{http.MethodGet, "/api/v1/suggestions"},
		{http.MethodGet, "/api/v1/export"},
	}

	for _, tt := range routes {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		if w.Code == http.StatusNotFound || w.Code == http.StatusMethodNotAllowed {
			t.Errorf("%s %s not mounted: %d", tt.method, tt.path, w.Code)
		}
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatal("X-Request-Id header missing")
	}
}

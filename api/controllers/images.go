package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mediafolio/catalog-backend/api/responses"
	"github.com/mediafolio/catalog-backend/api/validators"
	"github.com/mediafolio/catalog-backend/internal/catalog"
	"github.com/mediafolio/catalog-backend/pkg/config"
	"github.com/mediafolio/catalog-backend/pkg/logger"
)

func parsePaging(r *http.Request, cfg config.CatalogConfig) (int, int, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
	if err != nil {
		return 0, 0, err
	}
	perPage, err := validators.ParseQueryInt(r, "per_page", cfg.DefaultPerPage, 1, cfg.MaxPerPage)
	if err != nil {
		return 0, 0, err
	}
	return page, perPage, nil
}

// ListImages serves the image feed: with a category_id filter it pages
// through that category, without one it pages through the newest items.
func ListImages(svc CatalogService, cfg config.CatalogConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, perPage, err := parsePaging(r, cfg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if categoryID := strings.TrimSpace(r.URL.Query().Get("category_id")); categoryID != "" {
			envelope, err := svc.ImagesByCategory(r.Context(), categoryID, page, perPage)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, envelope)
			return
		}

		envelope, err := svc.Newest(r.Context(), page, perPage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, envelope)
	}
}

// TopViewedImages serves the most-viewed feed.
func TopViewedImages(svc CatalogService, cfg config.CatalogConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, perPage, err := parsePaging(r, cfg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		envelope, err := svc.TopViewed(r.Context(), page, perPage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, envelope)
	}
}

// GetImage serves one item and records the view.
func GetImage(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := svc.GetImage(r.Context(), chi.URLParam(r, "publicID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

type createImagesRequest struct {
	CategoryName string                  `json:"category_name" validate:"required"`
	Tags         []string                `json:"tags"`
	Uploads      []catalog.UploadedAsset `json:"uploads" validate:"required,min=1,dive"`
}

// CreateImages registers completed uploads under a category.
func CreateImages(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createImagesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateImages(r.Context(), payload.Uploads, payload.CategoryName, payload.Tags)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

type updateImageRequest struct {
	Tags       *[]string `json:"tags"`
	SetFeature *bool     `json:"set_feature"`
}

// UpdateImage re-tags an item or moves the category feature flag onto it.
func UpdateImage(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateImageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateImage(r.Context(), chi.URLParam(r, "publicID"), catalog.UpdateImageInput{
			Tags:       payload.Tags,
			SetFeature: payload.SetFeature,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// DeleteImage removes one item.
func DeleteImage(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		publicID := chi.URLParam(r, "publicID")
		if err := svc.DeleteImage(r.Context(), publicID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"public_id": publicID, "status": "deleted"})
	}
}

package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mediafolio/catalog-backend/api/responses"
	"github.com/mediafolio/catalog-backend/api/validators"
	"github.com/mediafolio/catalog-backend/pkg/config"
	"github.com/mediafolio/catalog-backend/pkg/logger"
)

// ListCategories serves the derived category views.
func ListCategories(svc CatalogService, cfg config.CatalogConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, perPage, err := parsePaging(r, cfg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		envelope, err := svc.ListCategories(r.Context(), page, perPage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, envelope)
	}
}

// CategoryImages serves one category's member items.
func CategoryImages(svc CatalogService, cfg config.CatalogConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, perPage, err := parsePaging(r, cfg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		envelope, err := svc.CategoryImages(r.Context(), chi.URLParam(r, "categoryID"), page, perPage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, envelope)
	}
}

type renameCategoryRequest struct {
	Name string `json:"category_name" validate:"required"`
}

// RenameCategory rewrites a category's display name on all member rows.
func RenameCategory(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload renameCategoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		categoryID := chi.URLParam(r, "categoryID")
		updated, err := svc.RenameCategory(r.Context(), categoryID, payload.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"category_id":   categoryID,
			"category_name": payload.Name,
			"updated":       updated,
		})
	}
}

// DeleteCategory removes a category and all of its member items.
func DeleteCategory(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID := chi.URLParam(r, "categoryID")
		removed, err := svc.DeleteCategory(r.Context(), categoryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"category_id": categoryID,
			"removed":     removed,
		})
	}
}

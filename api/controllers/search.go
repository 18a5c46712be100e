package controllers

import (
	"net/http"

	"github.com/mediafolio/catalog-backend/api/responses"
	"github.com/mediafolio/catalog-backend/api/validators"
	"github.com/mediafolio/catalog-backend/pkg/config"
	"github.com/mediafolio/catalog-backend/pkg/logger"
)

// SearchImages serves the fuzzy search endpoint. The query parameter is
// required; blank queries are rejected before reaching the service.
func SearchImages(svc CatalogService, cfg config.CatalogConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := validators.RequiredQuery(r, "q")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, perPage, err := parsePaging(r, cfg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		envelope, err := svc.SearchImages(r.Context(), query, page, perPage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, envelope)
	}
}

// Suggestions serves the autocomplete material.
func Suggestions(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		suggestions, err := svc.GetSuggestions(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, suggestions)
	}
}

// Export dumps the full item table.
func Export(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.Export(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"count": len(items),
			"items": items,
		})
	}
}

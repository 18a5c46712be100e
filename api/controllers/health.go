package controllers

import (
	"context"
	"net/http"

	"github.com/mediafolio/catalog-backend/api/responses"
	"github.com/mediafolio/catalog-backend/pkg/config"
	pkgerrors "github.com/mediafolio/catalog-backend/pkg/errors"
	"github.com/mediafolio/catalog-backend/pkg/logger"
)

const envHeader = "X-MediaFolio-Env"

// Pinger is anything with a health probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness by probing every wired dependency. A nil
// pinger is skipped: the cache and storage backends are optional wiring.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		checks := map[string]string{}
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				checks[name] = "unavailable"
				ctx := logg.WithField(r.Context(), "dependency", name)
				responses.WriteError(ctx, logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dependency not ready").WithDetails(checks))
				return
			}
			checks[name] = "ok"
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

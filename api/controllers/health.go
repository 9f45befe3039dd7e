package controllers

import (
	"context"
	"net/http"

	"go.uber.org/multierr"

	"github.com/rvaldezm/orderstream/api/responses"
	"github.com/rvaldezm/orderstream/pkg/config"
	pkgerrors "github.com/rvaldezm/orderstream/pkg/errors"
	"github.com/rvaldezm/orderstream/pkg/logger"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NamedPinger pairs a dependency name with its health probe.
type NamedPinger struct {
	Name   string
	Pinger Pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-OrderStream-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes every registered dependency and fails if any is down.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps ...NamedPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-OrderStream-Env", cfg.App.Env)

		var errs error
		checks := map[string]string{}
		for _, dep := range deps {
			if dep.Pinger == nil {
				continue
			}
			if err := dep.Pinger.Ping(r.Context()); err != nil {
				checks[dep.Name] = "down"
				errs = multierr.Append(errs, err)
				continue
			}
			checks[dep.Name] = "up"
		}

		if errs != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "readiness check failed").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

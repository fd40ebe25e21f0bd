package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/jewel109/mobiledoor-api/api/responses"
	"github.com/jewel109/mobiledoor-api/pkg/config"
	pkgerrors "github.com/jewel109/mobiledoor-api/pkg/errors"
	"github.com/jewel109/mobiledoor-api/pkg/logger"
)

const envHeader = "X-MobileDoor-Env"

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency and reports 503 with the failing names
// when any of them is down.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		var failing []string
		for _, name := range names {
			if err := deps[name].Ping(ctx); err != nil {
				failing = append(failing, name)
			}
		}
		if len(failing) > 0 {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").
					WithDetails(map[string]any{"failing": failing}))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}

package middleware

import (
	"net/http"

	"github.com/jewel109/mobiledoor-api/api/responses"
	"github.com/jewel109/mobiledoor-api/internal/authz"
	"github.com/jewel109/mobiledoor-api/pkg/logger"
)

// RequireCapability rejects callers whose role does not grant capability.
// Services check again; this keeps admin routes closed at the edge.
func RequireCapability(capability authz.Capability, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, _ := ActorFromContext(r.Context())
			if err := authz.Require(actor, capability); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

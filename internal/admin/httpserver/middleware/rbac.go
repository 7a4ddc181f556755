package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"finitefield.org/tours-admin/internal/admin/rbac"
	"finitefield.org/tours-admin/internal/platform/httpx"
	"finitefield.org/tours-admin/internal/platform/requestctx"
)

// ForbiddenMessage is the error returned to callers lacking a capability.
const ForbiddenMessage = "Admin access required"

// RequireCapability rejects the request with 403 before the handler runs when
// the caller is anonymous or lacks the capability.
func RequireCapability(capability rbac.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || !rbac.HasCapability(user.Roles, capability) {
				uid := ""
				if ok {
					uid = user.UID
				}
				requestctx.Logger(r.Context()).Info("capability denied",
					zap.String("capability", string(capability)),
					zap.String("uid", uid),
				)
				forbidden(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func forbidden(w http.ResponseWriter, r *http.Request) {
	httpx.WriteError(r.Context(), w, httpx.NewError("forbidden", ForbiddenMessage, http.StatusForbidden))
}

package auth

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	apperrors "github.com/gsdclabs/gsdc-backend/pkg/app/errors"
	apphttp "github.com/gsdclabs/gsdc-backend/pkg/app/http"
)

// RoleChecker answers whether an address holds a given role.
type RoleChecker interface {
	HasRole(ctx context.Context, address, role string) (bool, error)
}

// RequireRole returns a middleware that authenticates requests with
// X-Signature/X-Message headers and requires the recovered address to
// hold the given role. The authenticated address is injected into the
// request context.
func RequireRole(checker RoleChecker, role string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			signature := r.Header.Get("X-Signature")
			message := r.Header.Get("X-Message")

			if signature == "" || message == "" {
				apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(nil, "signature and message required"))
				return
			}

			recovered, err := VerifyEIP191Signature(message, signature)
			if err != nil {
				apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(err, "invalid signature"))
				return
			}

			address := LowerAddress(recovered.Hex())

			ok, err := checker.HasRole(r.Context(), address, role)
			if err != nil {
				logger.Error("Role lookup failed",
					zap.String("address", address),
					zap.Error(err))
				apphttp.DefaultErrorHandler(w, apperrors.GeneralError(err))
				return
			}
			if !ok {
				apphttp.DefaultErrorHandler(w, apperrors.ForbiddenError(nil, "address does not hold the required role"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAdminAddress(r.Context(), address)))
		})
	}
}

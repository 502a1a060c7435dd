package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/collabinvest/cil-storefront/api/responses"
	pkgAuth "github.com/collabinvest/cil-storefront/pkg/auth"
	"github.com/collabinvest/cil-storefront/pkg/config"
	pkgerrors "github.com/collabinvest/cil-storefront/pkg/errors"
	"github.com/collabinvest/cil-storefront/pkg/logger"
	"github.com/collabinvest/cil-storefront/pkg/session"
)

// Auth validates an admin bearer token and requires its session to be live.
func Auth(cfg config.JWTConfig, checker session.Checker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			ctx, err := authenticate(r.Context(), cfg, checker, logg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth marks the request as admin when a valid token is presented
// and otherwise lets it through anonymously. A bad token is not an error
// here; the caller simply gets the public view.
func OptionalAuth(cfg config.JWTConfig, checker session.Checker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx, err := authenticate(r.Context(), cfg, checker, logg, token)
			if err != nil {
				if logg != nil {
					logg.Debug(r.Context(), "auth.optional.ignored")
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(ctx context.Context, cfg config.JWTConfig, checker session.Checker, logg *logger.Logger, token string) (context.Context, error) {
	claims, err := pkgAuth.ParseAdminToken(cfg, token)
	if err != nil {
		return ctx, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return ctx, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}

	if checker != nil {
		ok, err := checker.HasSession(ctx, claims.ID)
		if err != nil {
			return ctx, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
		}
		if !ok {
			return ctx, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired")
		}
	}

	ctx = WithAdmin(ctx, claims.Username, claims.ID)
	if logg != nil {
		ctx = logg.WithAdmin(ctx, claims.Username)
	}
	return ctx, nil
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}

package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/collabinvest/cil-storefront/api/responses"
	pkgerrors "github.com/collabinvest/cil-storefront/pkg/errors"
	"github.com/collabinvest/cil-storefront/pkg/logger"
)

const adminPathPrefix = "/api/admin"

// Recoverer turns a handler panic into a 500 in the envelope the caller
// expects: the admin error object under /api/admin, the storefront
// {success:false} shape everywhere else.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				ctx := r.Context()
				err := pkgerrors.Wrap(pkgerrors.CodeInternal, fmt.Errorf("panic: %v", rec), "panic")
				if logg != nil {
					ctx = logg.WithFields(ctx, map[string]any{"panic": rec, "path": r.URL.Path})
				}
				if strings.HasPrefix(r.URL.Path, adminPathPrefix) {
					responses.WriteError(ctx, logg, w, err)
					return
				}
				responses.WriteStorefrontError(ctx, logg, w, err)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

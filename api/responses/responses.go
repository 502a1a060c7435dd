package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/collabinvest/cil-storefront/pkg/errors"
	"github.com/collabinvest/cil-storefront/pkg/logger"
)

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// StorefrontError is the body customer-facing endpoints answer with on failure.
type StorefrontError struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, SuccessEnvelope{Data: data})
}

// WriteStorefront writes payload as-is; callers embed success:true themselves.
func WriteStorefront(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, payload)
}

func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed, meta := classify(err)
	logFailure(ctx, logg, err, typed, meta)

	payload := ErrorEnvelope{
		Error: APIError{
			Code:    string(typed.Code()),
			Message: pkgerrors.PublicMessage(typed),
		},
	}
	if meta.DetailsAllowed {
		payload.Error.Details = typed.Details()
	}
	writeJSON(w, meta.HTTPStatus, payload)
}

func WriteStorefrontError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed, meta := classify(err)
	logFailure(ctx, logg, err, typed, meta)

	writeJSON(w, meta.HTTPStatus, StorefrontError{
		Success: false,
		Message: pkgerrors.PublicMessage(typed),
	})
}

func classify(err error) (*pkgerrors.Error, pkgerrors.Metadata) {
	if err == nil {
		err = errors.New("unknown error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	return typed, pkgerrors.MetadataFor(typed.Code())
}

// logFailure reports faults at error level with the full dump; client
// mistakes only get an info line.
func logFailure(ctx context.Context, logg *logger.Logger, err error, typed *pkgerrors.Error, meta pkgerrors.Metadata) {
	if logg == nil {
		return
	}
	if !meta.Fault {
		ctx = logg.WithFields(ctx, map[string]any{
			"error_code": typed.Code(),
			"status":     meta.HTTPStatus,
		})
		logg.Info(ctx, "request.rejected")
		return
	}
	if err == nil {
		err = typed
	}
	ctx = logg.WithFields(ctx, pkgerrors.Dump(err).Fields())
	logg.Error(ctx, "request.error", err)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}

package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/collabinvest/cil-storefront/pkg/enums"
	pkgerrors "github.com/collabinvest/cil-storefront/pkg/errors"
	"github.com/collabinvest/cil-storefront/pkg/pagination"
)

// QueryLimit reads ?limit=, defaulting to def and bounded to [1, max].
func QueryLimit(r *http.Request, def, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "limit must be between 1 and "+strconv.Itoa(max)).
			WithDetails(map[string]any{"field": "limit", "value": raw})
	}
	return n, nil
}

// QueryPage reads ?limit= and ?cursor= for the admin list endpoints.
func QueryPage(r *http.Request) (pagination.Params, error) {
	limit, err := QueryLimit(r, pagination.DefaultLimit, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

// QueryOrderStatus reads an optional ?status= filter.
func QueryOrderStatus(r *http.Request) (*enums.OrderStatus, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("status"))
	if raw == "" {
		return nil, nil
	}
	status, err := enums.ParseOrderStatus(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter").
			WithDetails(map[string]any{"field": "status", "value": raw})
	}
	return &status, nil
}

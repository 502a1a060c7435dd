package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collabinvest/cil-storefront/pkg/enums"
	pkgerrors "github.com/collabinvest/cil-storefront/pkg/errors"
	"github.com/collabinvest/cil-storefront/pkg/pagination"
)

type loginBody struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"a","password":"b","extra":1}`))
	var body loginBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeLenientJSONBodyAllowsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"a","password":"b","extra":1}`))
	var body loginBody
	require.NoError(t, DecodeLenientJSONBody(req, &body))
	assert.Equal(t, "a", body.Username)
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"a"}`))
	var body loginBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["password"])
}

func TestQueryLimit(t *testing.T) {
	cases := []struct {
		query   string
		want    int
		wantErr bool
	}{
		{"/", 25, false},
		{"/?limit=10", 10, false},
		{"/?limit=x", 0, true},
		{"/?limit=0", 0, true},
		{"/?limit=500", 0, true},
	}
	for _, tc := range cases {
		got, err := QueryLimit(httptest.NewRequest(http.MethodGet, tc.query, nil), 25, 100)
		if tc.wantErr {
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), tc.query)
			continue
		}
		require.NoError(t, err, tc.query)
		assert.Equal(t, tc.want, got, tc.query)
	}
}

func TestQueryPageAndStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?cursor=abc&status=Shipped", nil)

	page, err := QueryPage(req)
	require.NoError(t, err)
	assert.Equal(t, "abc", page.Cursor)
	assert.Equal(t, pagination.DefaultLimit, page.Limit)

	status, err := QueryOrderStatus(req)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, enums.OrderStatusShipped, *status)

	none, err := QueryOrderStatus(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = QueryOrderStatus(httptest.NewRequest(http.MethodGet, "/?status=lost", nil))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

type statusBody struct {
	Status string `json:"status" validate:"required,orderstatus"`
}

func TestOrderStatusTag(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"Shipped"}`))
	var ok statusBody
	require.NoError(t, DecodeJSONBody(req, &ok))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"lost"}`))
	var bad statusBody
	typed := pkgerrors.As(DecodeJSONBody(req, &bad))
	require.NotNil(t, typed)
	details := typed.Details().(map[string]string)
	assert.Contains(t, details["status"], "pending, processing, shipped, delivered, cancelled")
}

package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/collabinvest/cil-storefront/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResendMailerSend(t *testing.T) {
	var got resendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email_123"}`))
	}))
	defer srv.Close()

	m, err := NewResendMailer(config.MailConfig{APIKey: "re_test", Endpoint: srv.URL})
	require.NoError(t, err)

	id, err := m.Send(context.Background(), Email{From: "shop@x.ng", To: "ada@example.com", Subject: "Hi", Text: "body"})
	require.NoError(t, err)
	assert.Equal(t, "email_123", id)
	assert.Equal(t, []string{"ada@example.com"}, got.To)
	assert.Equal(t, "body", got.Text)
}

func TestResendMailerErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid from"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	m, err := NewResendMailer(config.MailConfig{APIKey: "re_test", Endpoint: srv.URL})
	require.NoError(t, err)

	_, err = m.Send(context.Background(), Email{To: "a@b.c"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "422"))
}

func TestNewMailerSelectsTransport(t *testing.T) {
	m, err := NewMailer(config.MailConfig{Transport: "log"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogMailer{}, m)

	id, err := m.Send(context.Background(), Email{To: "a@b.c"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "log-"))

	_, err = NewMailer(config.MailConfig{Transport: "resend"}, nil)
	require.Error(t, err)

	_, err = NewMailer(config.MailConfig{Transport: "pigeon"}, nil)
	require.Error(t, err)
}

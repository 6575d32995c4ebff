package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestVerificationURL(t *testing.T) {
	assert.Equal(t, "http://app.test/verify-email?token=a%2Bb", VerificationURL("http://app.test/", "a+b"))
}

func TestResendSender(t *testing.T) {
	var got resendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer re_key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id":"1"}`))
	}))
	defer srv.Close()

	s := NewResendSender("re_key", "noreply@test", "Stellar", "http://app.test")
	s.endpoint = srv.URL
	require.NoError(t, s.SendVerification(context.Background(), "a@test", "<alice>", "tok"))

	assert.Equal(t, "Stellar <noreply@test>", got.From)
	assert.Equal(t, []string{"a@test"}, got.To)
	assert.Contains(t, got.HTML, "http://app.test/verify-email?token=tok")
	assert.Contains(t, got.HTML, "&lt;alice&gt;")
}

func TestResendSender_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid from"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	s := NewResendSender("re_key", "noreply@test", "", "http://app.test")
	s.endpoint = srv.URL
	err := s.SendVerification(context.Background(), "a@test", "alice", "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestLogSender(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := LogSender{Logger: zap.New(core), FrontendURL: "http://app.test"}
	require.NoError(t, s.SendVerification(context.Background(), "a@test", "alice", "tok"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "http://app.test/verify-email?token=tok", logs.All()[0].ContextMap()["link"])
}

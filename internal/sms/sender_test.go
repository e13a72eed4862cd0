package sms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hpms-api/internal/config"
)

func TestRestSender_PostsForm(t *testing.T) {
	var (
		gotPath string
		gotUser string
		gotForm map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, _, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"To":   r.PostForm.Get("To"),
			"From": r.PostForm.Get("From"),
			"Body": r.PostForm.Get("Body"),
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	sender := NewSender(config.SMSConfig{BaseURL: srv.URL, AccountSID: "AC123", AuthToken: "secret", From: "+15550000"})
	require.NoError(t, sender.SendSMS(context.Background(), "+15551234", "hello"))

	assert.Equal(t, "/Accounts/AC123/Messages.json", gotPath)
	assert.Equal(t, "AC123", gotUser)
	assert.Equal(t, map[string]string{"To": "+15551234", "From": "+15550000", "Body": "hello"}, gotForm)
}

func TestRestSender_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid number"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	sender := NewSender(config.SMSConfig{BaseURL: srv.URL, AccountSID: "AC123", AuthToken: "secret"})
	err := sender.SendSMS(context.Background(), "bad", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestNewSender_Unconfigured(t *testing.T) {
	_, ok := NewSender(config.SMSConfig{}).(LogSender)
	assert.True(t, ok)
}

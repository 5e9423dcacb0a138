package Verify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string) *Client {
	return &Client{
		ProjectID:  "project",
		AuthToken:  "token",
		FromNumber: "+15550000000",
		BaseURL:    baseURL,
		HTTP:       &http.Client{Timeout: 2 * time.Second},
	}
}

func TestSendCode(t *testing.T) {
	var captured map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mfa/sms", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "project", user)
		assert.Equal(t, "token", pass)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]string{"id": "mfa-abc123"})
	}))
	defer server.Close()

	client := testClient(server.URL)
	sessionID, err := client.SendCode("+15551234567")
	require.NoError(t, err)
	assert.Equal(t, "mfa-abc123", sessionID)

	assert.Equal(t, "+15551234567", captured["to"])
	assert.Equal(t, "+15550000000", captured["from"])
	assert.Equal(t, float64(6), captured["token_length"])
	assert.Equal(t, float64(3), captured["max_attempts"])
	assert.Equal(t, false, captured["allow_alphas"])
	assert.Equal(t, float64(3600), captured["valid_for"])
}

func TestSendCodeMissingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	_, err := testClient(server.URL).SendCode("+15551234567")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestSendCodeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := testClient(server.URL).SendCode("+15551234567")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestVerifyCodeSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mfa/mfa-abc123/verify", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "123456", payload["token"])

		json.NewEncoder(w).Encode(VerifyResult{Success: true, Message: "verified"})
	}))
	defer server.Close()

	result, err := testClient(server.URL).VerifyCode("mfa-abc123", "123456")
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestVerifyCodeBadRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	result, err := testClient(server.URL).VerifyCode("mfa-abc123", "000000")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Invalid verification code or parameters", result.Message)
}

func TestVerifyCodeUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	result, err := testClient(server.URL).VerifyCode("mfa-dead", "123456")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Unauthorized: invalid credentials or verification session", result.Message)
}

func TestVerifyCodeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := testClient(server.URL).VerifyCode("mfa-abc123", "123456")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestVerifyCodeTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := testClient(server.URL).VerifyCode("mfa-abc123", "123456")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestSendSMS(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "+15551234567", payload["to"])
		assert.Equal(t, "hello", payload["body"])

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := testClient(server.URL).SendSMS("+15551234567", "hello")
	assert.NoError(t, err)
}

func TestNewClientFromEnvSpaceParsing(t *testing.T) {
	t.Setenv("SIGNALWIRE_SPACE", "https://example.signalwire.com")
	t.Setenv("SIGNALWIRE_PROJECT_ID", "pid")
	t.Setenv("SIGNALWIRE_TOKEN", "tok")
	t.Setenv("FROM_NUMBER", "+15550000000")

	client := NewClientFromEnv()
	assert.Equal(t, "https://example.signalwire.com/api/relay/rest", client.BaseURL)
	assert.Equal(t, "pid", client.ProjectID)
}

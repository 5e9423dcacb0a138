package Verify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

// ErrProviderUnavailable covers everything the verification provider does
// that is not an ordinary bad-code or bad-session response: timeouts,
// transport failures, 5xx.
var ErrProviderUnavailable = errors.New("verification provider unavailable")

// Client talks to the provider's REST verification API. It performs no
// session or account logic; that all lives in the Sessions store.
type Client struct {
	ProjectID  string
	AuthToken  string
	FromNumber string
	BaseURL    string
	HTTP       *http.Client
}

func NewClientFromEnv() *Client {
	space := os.Getenv("SIGNALWIRE_SPACE")
	if idx := strings.Index(space, "://"); idx != -1 {
		space = space[idx+3:]
	}
	space = strings.Split(space, ".")[0]

	return &Client{
		ProjectID:  os.Getenv("SIGNALWIRE_PROJECT_ID"),
		AuthToken:  os.Getenv("SIGNALWIRE_TOKEN"),
		FromNumber: os.Getenv("FROM_NUMBER"),
		BaseURL:    fmt.Sprintf("https://%s.signalwire.com/api/relay/rest", space),
		HTTP:       &http.Client{Timeout: 10 * time.Second},
	}
}

type VerifyResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SendCode asks the provider to deliver a 6-digit one-time code and
// returns the provider-assigned session id.
func (client *Client) SendCode(toNumber string) (string, error) {
	payload := map[string]interface{}{
		"to":           toNumber,
		"from":         client.FromNumber,
		"message":      "Here is your code: ",
		"token_length": 6,
		"max_attempts": 3,
		"allow_alphas": false,
		"valid_for":    3600,
	}

	body, status, err := client.post(client.BaseURL+"/mfa/sms", payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("%w: status %d", ErrProviderUnavailable, status)
	}

	var response struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if response.ID == "" {
		return "", fmt.Errorf("%w: verification session id missing in response", ErrProviderUnavailable)
	}

	log.Printf("Verification code sent to %s, session %s", toNumber, response.ID)
	return response.ID, nil
}

// VerifyCode checks a submitted code against a verification session. Bad
// codes and dead sessions come back as unsuccessful results with a
// caller-facing message, never as errors.
func (client *Client) VerifyCode(sessionID, code string) (VerifyResult, error) {
	payload := map[string]interface{}{"token": code}

	body, status, err := client.post(fmt.Sprintf("%s/mfa/%s/verify", client.BaseURL, sessionID), payload)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	switch {
	case status == http.StatusUnauthorized:
		return VerifyResult{Success: false, Message: "Unauthorized: invalid credentials or verification session"}, nil
	case status == http.StatusBadRequest:
		return VerifyResult{Success: false, Message: "Invalid verification code or parameters"}, nil
	case status < 200 || status >= 300:
		return VerifyResult{}, fmt.Errorf("%w: status %d", ErrProviderUnavailable, status)
	}

	var result VerifyResult
	if err := json.Unmarshal(body, &result); err != nil {
		return VerifyResult{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return result, nil
}

// SendSMS delivers a plain outbound message. Used by the notification
// side-channel; callers decide whether a failure matters.
func (client *Client) SendSMS(to, message string) error {
	payload := map[string]interface{}{
		"to":   to,
		"from": client.FromNumber,
		"body": message,
	}

	_, status, err := client.post(client.BaseURL+"/messages", payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("%w: status %d", ErrProviderUnavailable, status)
	}
	return nil
}

func (client *Client) post(url string, payload interface{}) ([]byte, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(data))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Add("Content-Type", "application/json")
	req.SetBasicAuth(client.ProjectID, client.AuthToken)

	res, err := client.HTTP.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, res.StatusCode, err
	}
	return body, res.StatusCode, nil
}

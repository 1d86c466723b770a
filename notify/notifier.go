// Package notify places caregiver voice calls through the Twilio REST API.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// callTimeout bounds a single call-placement request.
const callTimeout = 10 * time.Second

// Caller places a voice call carrying a fully rendered TwiML message.
// Implementations must be safe for concurrent use.
type Caller interface {
	// Call returns the provider's call reference on success.
	Call(ctx context.Context, twiml string) (string, error)
}

// Credentials is the static caller/destination identity, sourced from the
// environment at startup. The core never manages these beyond passing them.
type Credentials struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	ToNumber   string
}

// TwilioCaller places calls via the Twilio Calls endpoint.
type TwilioCaller struct {
	creds   Credentials
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewTwilioCaller creates a caller with a bounded request timeout.
func NewTwilioCaller(creds Credentials, logger *zap.Logger) *TwilioCaller {
	return &TwilioCaller{
		creds:   creds,
		baseURL: "https://api.twilio.com",
		client: &http.Client{
			Timeout: callTimeout,
		},
		logger: logger,
	}
}

// NewTwilioCallerAt is NewTwilioCaller pointed at an alternate endpoint.
// Used by tests.
func NewTwilioCallerAt(creds Credentials, baseURL string, logger *zap.Logger) *TwilioCaller {
	c := NewTwilioCaller(creds, logger)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type callResponse struct {
	SID     string `json:"sid"`
	Message string `json:"message"`
}

// Call places the voice call and returns the call SID.
func (c *TwilioCaller) Call(ctx context.Context, twiml string) (string, error) {
	form := url.Values{}
	form.Set("To", c.creds.ToNumber)
	form.Set("From", c.creds.FromNumber)
	form.Set("Twiml", twiml)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls.json", c.baseURL, c.creds.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build call request: %w", err)
	}
	req.SetBasicAuth(c.creds.AccountSID, c.creds.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("place call: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var parsed callResponse
	_ = json.Unmarshal(body, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := parsed.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", fmt.Errorf("call rejected: %s (status %d)", msg, resp.StatusCode)
	}
	if parsed.SID == "" {
		return "", fmt.Errorf("call response missing sid")
	}

	c.logger.Info("call initiated", zap.String("sid", parsed.SID))
	return parsed.SID, nil
}

// LogCaller is a no-transport caller for runs without credentials: it logs
// the message and returns a synthetic reference.
type LogCaller struct {
	logger *zap.Logger
}

// NewLogCaller creates a logging-only caller.
func NewLogCaller(logger *zap.Logger) *LogCaller {
	return &LogCaller{logger: logger}
}

// Call logs the rendered message instead of placing a call.
func (c *LogCaller) Call(_ context.Context, twiml string) (string, error) {
	sid := "local-" + uuid.NewString()
	c.logger.Info("voice call suppressed (no-call mode)",
		zap.String("sid", sid),
		zap.String("twiml", twiml),
	)
	return sid, nil
}

// Package twilio holds the few provider APIs the hotline calls directly:
// caller-name lookup, client access tokens and webhook signatures.
package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultLookupBaseURL is the Lookup v2 API root.
const DefaultLookupBaseURL = "https://lookups.twilio.com/v2"

// CallerNamer resolves a phone number to a display name.
type CallerNamer interface {
	CallerName(ctx context.Context, phoneNumber string) (string, error)
}

// LookupClient calls the Lookup API with account credentials. Each lookup is
// billed, so callers cache the result on the interview record.
type LookupClient struct {
	AccountSid string
	AuthToken  string
	BaseURL    string
	HTTP       *http.Client
}

var _ CallerNamer = (*LookupClient)(nil)

type lookupResponse struct {
	PhoneNumber string `json:"phone_number"`
	CallerName  *struct {
		CallerName string `json:"caller_name"`
		CallerType string `json:"caller_type"`
	} `json:"caller_name"`
}

// CallerName returns the CNAM registered for phoneNumber, or "" when the
// carrier has none.
func (c *LookupClient) CallerName(ctx context.Context, phoneNumber string) (string, error) {
	if c.AccountSid == "" || c.AuthToken == "" {
		return "", fmt.Errorf("missing twilio credentials")
	}
	if phoneNumber == "" {
		return "", fmt.Errorf("missing phone number")
	}
	client := c.HTTP
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	base := c.BaseURL
	if base == "" {
		base = DefaultLookupBaseURL
	}

	u := strings.TrimSuffix(base, "/") + "/PhoneNumbers/" + url.PathEscape(phoneNumber) + "?Fields=caller_name"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.AccountSid, c.AuthToken)

	res, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return "", fmt.Errorf("lookup %s: %s: %s", phoneNumber, res.Status, strings.TrimSpace(string(msg)))
	}

	var body lookupResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding lookup response: %w", err)
	}
	if body.CallerName == nil {
		return "", nil
	}
	return strings.TrimSpace(body.CallerName.CallerName), nil
}

// Package clerk is a minimal client for the identity provider's user API,
// used to sync profile data into local user records.
package clerk

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hexagonhq/hexagon/internal/service"
)

type Client struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type userResponse struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	EmailAddresses []struct {
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
	PublicMetadata json.RawMessage `json:"public_metadata"`
}

// Fetch returns the provider's profile for a subject. Without a secret key
// (development mode) it returns a placeholder profile instead of calling out,
// so local testing works without provider credentials.
func (c *Client) Fetch(ctx context.Context, subjectID string) (*service.Profile, error) {
	if c.secretKey == "" {
		slog.Warn("no provider secret key configured, using placeholder profile", "subject", subjectID)
		return &service.Profile{
			Email:    subjectID + "@dev.local",
			FullName: subjectID,
		}, nil
	}

	url := fmt.Sprintf("%s/users/%s", c.baseURL, subjectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user from provider: %w", err)
	}
	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			slog.Error("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected provider response status %d for user %s", resp.StatusCode, subjectID)
	}

	var user userResponse
	err = json.NewDecoder(resp.Body).Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to decode provider user: %w", err)
	}

	email := ""
	if len(user.EmailAddresses) > 0 {
		email = user.EmailAddresses[0].EmailAddress
	}

	fullName := user.FirstName
	if user.LastName != "" {
		if fullName != "" {
			fullName += " "
		}
		fullName += user.LastName
	}

	return &service.Profile{
		Email:    email,
		FullName: fullName,
		Metadata: user.PublicMetadata,
	}, nil
}

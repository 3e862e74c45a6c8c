package github

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aunovis/secure-sum/pkg/integrations"
)

// Client provides access to the GitHub API.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub API client authenticated with token.
// Responses are not cached; both endpoints describe the current state.
func NewClient(token string) *Client {
	headers := map[string]string{
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": "2022-11-28",
		"User-Agent":           integrations.UserAgent,
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &Client{
		Client:  integrations.NewClient(nil, "github:", 0, headers),
		baseURL: "https://api.github.com",
	}
}

// User is the account a token belongs to.
type User struct {
	Login string `json:"login"`
	Name  string `json:"name"`
}

// ValidateToken checks the token by fetching the authenticated user.
// A rejected token yields [integrations.ErrUnauthorized].
func (c *Client) ValidateToken(ctx context.Context) (*User, error) {
	var u User
	if err := c.Get(ctx, c.baseURL+"/user", &u); err != nil {
		if errors.Is(err, integrations.ErrUnauthorized) {
			return nil, fmt.Errorf("%w: GitHub rejected the token", err)
		}
		return nil, err
	}
	return &u, nil
}

// Quota is one rate limit bucket.
type Quota struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Used      int   `json:"used"`
	Reset     int64 `json:"reset"`
}

// ResetAt returns when the quota refills.
func (q Quota) ResetAt() time.Time {
	return time.Unix(q.Reset, 0)
}

// RateLimits are the quotas of the authenticated token.
type RateLimits struct {
	Core    Quota `json:"core"`
	Search  Quota `json:"search"`
	GraphQL Quota `json:"graphql"`
}

// RateLimit fetches the current quotas. The call itself does not count
// against them.
func (c *Client) RateLimit(ctx context.Context) (*RateLimits, error) {
	var data struct {
		Resources RateLimits `json:"resources"`
	}
	if err := c.Get(ctx, c.baseURL+"/rate_limit", &data); err != nil {
		return nil, err
	}
	return &data.Resources, nil
}

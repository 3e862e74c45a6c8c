package crates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aunovis/secure-sum/pkg/cache"
	sserrors "github.com/aunovis/secure-sum/pkg/errors"
	"github.com/aunovis/secure-sum/pkg/integrations"
)

// ErrNoRepository is returned when a crate does not declare a repository.
var ErrNoRepository = errors.New("crate declares no repository")

// CrateInfo holds the crates.io metadata secure-sum needs.
type CrateInfo struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	Repository string `json:"repository,omitempty"` // normalized, may be empty
	HomePage   string `json:"homepage,omitempty"`
}

// Client provides access to the crates.io API.
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a crates.io client. Responses are cached in backend for
// cacheTTL, and requests are spaced one second apart.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	headers := map[string]string{"User-Agent": integrations.UserAgent}
	return &Client{
		Client:  integrations.NewClient(backend, "crates:", cacheTTL, headers).WithRateLimit(time.Second),
		baseURL: "https://crates.io/api/v1",
	}
}

// FetchCrate retrieves metadata for a Rust crate.
//
// Returns [integrations.ErrNotFound] if the crate doesn't exist and
// [integrations.ErrNetwork] for HTTP failures.
func (c *Client) FetchCrate(ctx context.Context, crate string, refresh bool) (*CrateInfo, error) {
	var info CrateInfo
	err := c.Cached(ctx, crate, refresh, &info, func() error {
		return c.fetch(ctx, crate, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// RepoURL returns the source repository of crate. Unknown crates and crates
// without a repository yield NOT_FOUND, throttled lookups RATE_LIMITED.
func (c *Client) RepoURL(ctx context.Context, crate string) (string, error) {
	info, err := c.FetchCrate(ctx, crate, false)
	if err != nil {
		return "", lookupError(crate, err)
	}
	if info.Repository == "" {
		return "", sserrors.Wrap(sserrors.ErrCodeNotFound, ErrNoRepository, "crate %s", crate)
	}
	return info.Repository, nil
}

func lookupError(crate string, err error) error {
	switch {
	case errors.Is(err, integrations.ErrNotFound):
		return sserrors.Wrap(sserrors.ErrCodeNotFound, err, "crates.io lookup of %s", crate)
	case errors.Is(err, integrations.ErrRateLimited):
		return sserrors.Wrap(sserrors.ErrCodeRateLimited, err, "crates.io lookup of %s", crate)
	case errors.Is(err, integrations.ErrNetwork):
		return sserrors.Wrap(sserrors.ErrCodeNetwork, err, "crates.io lookup of %s", crate)
	}
	return err
}

func (c *Client) fetch(ctx context.Context, crate string, info *CrateInfo) error {
	var data crateResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/crates/%s", c.baseURL, crate), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: crate %s", err, crate)
		}
		return err
	}

	*info = CrateInfo{
		Name:       data.Crate.Name,
		Version:    data.Crate.MaxVersion,
		Repository: integrations.NormalizeRepoURL(data.Crate.Repository),
		HomePage:   data.Crate.HomePage,
	}
	return nil
}

type crateResponse struct {
	Crate struct {
		Name       string `json:"name"`
		MaxVersion string `json:"max_version"`
		Repository string `json:"repository"`
		HomePage   string `json:"homepage"`
	} `json:"crate"`
}

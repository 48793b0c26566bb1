package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/arrivals/internal/core/ports/driven"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Config identifies the repository and branch holding the documents.
type Config struct {
	Owner  string
	Repo   string
	Branch string

	// BaseURL overrides the API endpoint, for GitHub Enterprise.
	BaseURL string

	// Rate is the proactive request rate per second.
	// Zero selects ProactiveRate; a negative value disables throttling.
	Rate float64
}

// Client wraps the go-github client with the contents API calls used by
// the document store.
type Client struct {
	mu sync.Mutex
	gh *gh.Client

	cfg           Config
	tokenProvider driven.TokenProvider
	rateLimiter   *RateLimiter
}

// NewClient creates a new GitHub API client with a token provider.
func NewClient(cfg Config, tokenProvider driven.TokenProvider) *Client {
	perSecond := cfg.Rate
	if perSecond == 0 {
		perSecond = ProactiveRate
	}
	return &Client{
		cfg:           cfg,
		tokenProvider: tokenProvider,
		rateLimiter:   NewRateLimiter(perSecond),
	}
}

// ensureClient returns the go-github client, building it on first use.
// The token is only requested on first use. A failed attempt is retried
// by the next call.
func (c *Client) ensureClient(ctx context.Context) (*gh.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gh != nil {
		return c.gh, nil
	}

	token, err := c.tokenProvider.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout
	client := gh.NewClient(tc)

	if c.cfg.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(c.cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		client.BaseURL = base
	}

	c.gh = client
	return client, nil
}

// GetFile fetches a file from the configured branch and returns its
// content and blob SHA.
func (c *Client) GetFile(ctx context.Context, path string) ([]byte, string, error) {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return nil, "", err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("rate limit wait: %w", err)
	}

	opts := &gh.RepositoryContentGetOptions{Ref: c.cfg.Branch}
	content, _, resp, err := client.Repositories.GetContents(ctx, c.cfg.Owner, c.cfg.Repo, path, opts)
	if err != nil {
		return nil, "", c.wrapError(err, resp, "get contents")
	}

	c.updateRateLimitFromResponse(resp)

	if content == nil {
		return nil, "", ErrNotAFile
	}

	// Files over 1MB come back without inline content.
	if content.GetEncoding() == "none" {
		data, err := c.download(ctx, client, path)
		if err != nil {
			return nil, "", err
		}
		return data, content.GetSHA(), nil
	}

	decoded, err := content.GetContent()
	if err != nil {
		return nil, "", fmt.Errorf("decode content: %w", err)
	}
	return []byte(decoded), content.GetSHA(), nil
}

// PutFile creates or replaces a file on the configured branch.
// sha must be the current blob SHA when replacing, or empty when creating.
// The new blob SHA is returned.
func (c *Client) PutFile(ctx context.Context, path string, data []byte, sha, message string) (string, error) {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return "", err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	opts := &gh.RepositoryContentFileOptions{
		Message: gh.Ptr(message),
		Content: data,
	}
	if c.cfg.Branch != "" {
		opts.Branch = gh.Ptr(c.cfg.Branch)
	}

	var (
		result *gh.RepositoryContentResponse
		resp   *gh.Response
	)
	if sha == "" {
		result, resp, err = client.Repositories.CreateFile(ctx, c.cfg.Owner, c.cfg.Repo, path, opts)
	} else {
		opts.SHA = gh.Ptr(sha)
		result, resp, err = client.Repositories.UpdateFile(ctx, c.cfg.Owner, c.cfg.Repo, path, opts)
	}
	if err != nil {
		return "", c.wrapError(err, resp, "put contents")
	}

	c.updateRateLimitFromResponse(resp)

	if result == nil || result.Content == nil {
		return "", nil
	}
	return result.Content.GetSHA(), nil
}

// download fetches a file larger than the inline content limit.
func (c *Client) download(ctx context.Context, client *gh.Client, path string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	opts := &gh.RepositoryContentGetOptions{Ref: c.cfg.Branch}
	rc, resp, err := client.Repositories.DownloadContents(ctx, c.cfg.Owner, c.cfg.Repo, path, opts)
	if err != nil {
		return nil, c.wrapError(err, resp, "download contents")
	}
	defer rc.Close()

	c.updateRateLimitFromResponse(resp)

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read contents: %w", err)
	}
	return data, nil
}

// updateRateLimitFromResponse updates the rate limiter from GitHub response headers.
func (c *Client) updateRateLimitFromResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.rateLimiter.UpdateFromResponse(resp.Response)
}

// wrapError converts go-github errors to our error types.
func (c *Client) wrapError(err error, resp *gh.Response, operation string) error {
	if err == nil {
		return nil
	}

	c.updateRateLimitFromResponse(resp)

	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{
			ResetAt:   rateLimitErr.Rate.Reset.Time,
			Remaining: rateLimitErr.Rate.Remaining,
			Limit:     rateLimitErr.Rate.Limit,
		}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		if resp != nil && resp.Response != nil {
			if limitErr := c.rateLimiter.CheckRateLimit(resp.Response); limitErr != nil {
				return limitErr
			}
		}
		apiErr := &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
		}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return apiErr
	}

	return fmt.Errorf("%s: %w", operation, err)
}

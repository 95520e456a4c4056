package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	apperrors "github.com/nwatteau/linktrap/internal/errors"
)

// shortenResponse mirrors the shortening API's JSON body.
type shortenResponse struct {
	ShortenedURL string `json:"shortenedUrl"`
}

// ShortenerClient calls the external URL-shortening API. The service accepts a
// long URL in the "query" parameter and answers with {"shortenedUrl": "..."}.
type ShortenerClient struct {
	client   *resty.Client
	endpoint string
}

// NewShortenerClient creates a client for the configured shortening endpoint.
func NewShortenerClient(endpoint string, timeout time.Duration) *ShortenerClient {
	return &ShortenerClient{
		client:   resty.New().SetTimeout(timeout),
		endpoint: endpoint,
	}
}

// Shorten exchanges longURL for a shortened equivalent. Callers treat any error
// as best-effort: the long link stays in place.
func (c *ShortenerClient) Shorten(ctx context.Context, longURL string) (string, error) {
	var out shortenResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("query", longURL).
		SetResult(&out).
		Get(c.endpoint)
	if err != nil {
		return "", &apperrors.ShortenError{URL: longURL, Reason: err.Error()}
	}
	if resp.IsError() {
		return "", &apperrors.ShortenError{URL: longURL, Reason: fmt.Sprintf("service returned status %d", resp.StatusCode())}
	}
	if out.ShortenedURL == "" {
		return "", &apperrors.ShortenError{URL: longURL, Reason: "malformed response, no shortenedUrl field"}
	}
	return out.ShortenedURL, nil
}

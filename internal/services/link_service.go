// Package services contains the business logic layer for the link tracking application
package services

import (
	"context"
	"log"
	"sync"

	"github.com/nwatteau/linktrap/internal/codec"
	"github.com/nwatteau/linktrap/internal/models"
)

// LinkService mints tracking link pairs for an operator and a destination URL.
// It acts as an intermediary between the bot dispatcher / CLI and the codec,
// and owns the optional shortening integration.
type LinkService struct {
	baseURL   string
	shorten   bool
	shortener *ShortenerClient
}

// NewLinkService creates and returns a new instance of LinkService.
// shortener may be nil when the integration is disabled.
func NewLinkService(baseURL string, shorten bool, shortener *ShortenerClient) *LinkService {
	if shortener == nil {
		shorten = false
	}
	return &LinkService{
		baseURL:   baseURL,
		shorten:   shorten,
		shortener: shortener,
	}
}

// ShortenEnabled reports whether the shortening integration is active.
func (s *LinkService) ShortenEnabled() bool {
	return s.shorten
}

// BaseURL returns the externally advertised base URL links are minted against.
func (s *LinkService) BaseURL() string {
	return s.baseURL
}

// ComposeLinks builds both decoy-page variants for the given operator and
// destination URL. The path segment is deterministic; when shortening is
// enabled the two external calls run concurrently and a failed call keeps the
// long-form link for that slot.
func (s *LinkService) ComposeLinks(ctx context.Context, operatorID int64, rawURL string) (*models.LinkPair, error) {
	path := codec.EncodeID(operatorID) + "/" + codec.EncodeURL(rawURL)

	pair := &models.LinkPair{
		Cloudflare: s.baseURL + "/c/" + path,
		Webview:    s.baseURL + "/w/" + path,
	}

	if !s.shorten {
		return pair, nil
	}

	// One independent call per slot, both awaited before returning.
	slots := []*string{&pair.Cloudflare, &pair.Webview}
	var wg sync.WaitGroup
	for _, slot := range slots {
		wg.Add(1)
		go func(slot *string) {
			defer wg.Done()
			short, err := s.shortener.Shorten(ctx, *slot)
			if err != nil {
				// Best-effort: keep the long-form link for this slot.
				log.Printf("WARNING: shortening failed, keeping long link: %v", err)
				return
			}
			*slot = short
		}(slot)
	}
	wg.Wait()

	return pair, nil
}

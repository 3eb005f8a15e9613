package invitelink

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/nemocrk/my-wedding-app/environments"
	"github.com/nemocrk/my-wedding-app/pkg/logger"
)

// linkCache is the slice of the cache client this resolver needs.
// It stays an interface so the resolver works with caching disabled.
type linkCache interface {
	GetCachedLink(ctx context.Context, recipientID int64) (string, error)
	CacheLink(ctx context.Context, recipientID int64, url string) error
}

// Resolver mints personalized invitation links via the invitation
// backend, with a read-through cache in front of it.
type Resolver struct {
	httpClient *resty.Client
	cache      linkCache
}

type linkResponse struct {
	URL string `json:"url"`
}

func NewResolver(cfg environments.LinkConfig, cache linkCache) *Resolver {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(300*time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		SetHeader("Accept", "application/json")

	return &Resolver{
		httpClient: client,
		cache:      cache,
	}
}

// Generate returns the personalized invitation URL for one guest.
func (r *Resolver) Generate(ctx context.Context, recipientID int64) (string, error) {
	if r.cache != nil {
		cached, err := r.cache.GetCachedLink(ctx, recipientID)
		if err != nil {
			logger.Warnf("Link cache read failed for recipient %d: %v", recipientID, err)
		} else if cached != "" {
			logger.Debugf("Invitation link for recipient %d served from cache", recipientID)
			return cached, nil
		}
	}

	var linkResp linkResponse

	resp, err := r.httpClient.R().
		SetContext(ctx).
		SetResult(&linkResp).
		Get(fmt.Sprintf("/api/invitations/%d/link", recipientID))

	if err != nil {
		return "", fmt.Errorf("failed to request invitation link: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode(), resp.String())
	}

	if linkResp.URL == "" {
		return "", fmt.Errorf("invitation backend returned an empty link")
	}

	if r.cache != nil {
		if err := r.cache.CacheLink(ctx, recipientID, linkResp.URL); err != nil {
			logger.Warnf("Failed to cache invitation link for recipient %d: %v", recipientID, err)
		}
	}

	return linkResp.URL, nil
}

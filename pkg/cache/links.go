package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/nemocrk/my-wedding-app/environments"
	"github.com/nemocrk/my-wedding-app/pkg/logger"
	"github.com/valkey-io/valkey-go"
)

// Client caches personalized invitation links. Minting a link is a
// remote call per guest, so resolved URLs are kept for a while to make
// repeated dispatches to the same guest cheap.
type Client struct {
	client valkey.Client
	ttl    time.Duration
}

const linkKeyPrefix = "invitation_link:"

func NewClient(cfg environments.RedisConfig, ttl time.Duration) (*Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)},
		Password:    cfg.Password,
		SelectDB:    cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Valkey client: %w", err)
	}

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Infof("Connected to Redis (via Valkey client)")

	return &Client{client: client, ttl: ttl}, nil
}

func (c *Client) CacheLink(ctx context.Context, recipientID int64, url string) error {
	key := fmt.Sprintf("%s%d", linkKeyPrefix, recipientID)

	err := c.client.Do(ctx, c.client.B().Set().Key(key).Value(url).Ex(c.ttl).Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to cache invitation link: %w", err)
	}

	logger.Debugf("Cached invitation link for recipient %d", recipientID)

	return nil
}

// GetCachedLink returns "" on a cache miss.
func (c *Client) GetCachedLink(ctx context.Context, recipientID int64) (string, error) {
	key := fmt.Sprintf("%s%d", linkKeyPrefix, recipientID)

	result := c.client.Do(ctx, c.client.B().Get().Key(key).Build())
	if result.Error() != nil {
		if valkey.IsValkeyNil(result.Error()) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get cached link: %w", result.Error())
	}

	url, err := result.ToString()
	if err != nil {
		return "", fmt.Errorf("failed to read cached link: %w", err)
	}

	return url, nil
}

// InvalidateLink drops a cached link, used when the invitation backend
// regenerates codes.
func (c *Client) InvalidateLink(ctx context.Context, recipientID int64) error {
	key := fmt.Sprintf("%s%d", linkKeyPrefix, recipientID)

	if err := c.client.Do(ctx, c.client.B().Del().Key(key).Build()).Error(); err != nil {
		return fmt.Errorf("failed to invalidate cached link: %w", err)
	}

	return nil
}

func (c *Client) Close() error {
	c.client.Close()
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}

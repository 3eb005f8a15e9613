package service

import (
	"context"
	"strings"

	"github.com/nemocrk/my-wedding-app/internal/domain"
	"github.com/nemocrk/my-wedding-app/pkg/logger"
)

// LinkResolver mints the personalized invitation link for one guest.
// It is remote and fallible; the composer absorbs its failures.
type LinkResolver interface {
	Generate(ctx context.Context, recipientID int64) (string, error)
}

// Composer builds the final per-recipient message body at send time.
type Composer struct {
	links LinkResolver
}

func NewComposer(links LinkResolver) *Composer {
	return &Composer{links: links}
}

// Compose substitutes the enumerated placeholders for one recipient.
// It never fails: a link that cannot be resolved is replaced with the
// error sentinel and logged, so the rest of the message still goes out.
func (c *Composer) Compose(ctx context.Context, bodyTemplate string, r domain.Recipient) string {
	body := substituteIdentity(bodyTemplate, r)

	if !ContainsLink(body) {
		return body
	}

	url, err := c.links.Generate(ctx, r.ID)
	if err != nil {
		logger.Errorf("Failed to resolve invitation link for recipient %d (%s): %v", r.ID, r.Name, err)
		return replaceLink(body, SentinelLinkError)
	}

	return replaceLink(body, url)
}

func replaceLink(body, replacement string) string {
	body = strings.ReplaceAll(body, PlaceholderLink, replacement)
	body = strings.ReplaceAll(body, SentinelLinkPending, replacement)
	return body
}

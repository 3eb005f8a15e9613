package service

import (
	"strings"

	"github.com/nemocrk/my-wedding-app/internal/domain"
)

// Enumerated placeholder set. Substitution only ever touches these
// tokens, so recipient-controlled fields cannot smuggle in a second
// round of replacement.
const (
	PlaceholderName = "{name}"
	PlaceholderCode = "{code}"
	PlaceholderLink = "{link}"

	// SentinelLinkPending stands in for {link} at preview time; the
	// real link is only minted at send time.
	SentinelLinkPending = "[LINK_PENDING]"

	// SentinelLinkError marks a link that could not be resolved at
	// send time so a reviewer can spot it in the queue.
	SentinelLinkError = "[LINK_ERROR]"
)

// TemplateResolver is the read side of template handling: which
// templates the dispatch flow may use, and what a template looks like
// against a concrete selection of guests.
type TemplateResolver struct{}

func NewTemplateResolver() *TemplateResolver {
	return &TemplateResolver{}
}

// ListEligible keeps only active manual templates, preserving input
// order.
func (t *TemplateResolver) ListEligible(templates []domain.MessageTemplate) []domain.MessageTemplate {
	eligible := make([]domain.MessageTemplate, 0, len(templates))
	for _, tmpl := range templates {
		if tmpl.Condition == domain.ConditionManual && tmpl.IsActive {
			eligible = append(eligible, tmpl)
		}
	}
	return eligible
}

// Preview renders a template against the selected recipients without
// any network access. With exactly one recipient the name and code are
// substituted and {link} becomes the pending sentinel; with more than
// one, per-recipient substitution cannot be shown as a single string,
// so the raw template comes back unchanged.
func (t *TemplateResolver) Preview(tmpl domain.MessageTemplate, recipients []domain.Recipient) string {
	if len(recipients) != 1 {
		return tmpl.Content
	}

	r := recipients[0]
	body := substituteIdentity(tmpl.Content, r)
	return strings.ReplaceAll(body, PlaceholderLink, SentinelLinkPending)
}

// ContainsLink reports whether a body still needs link resolution,
// either as the raw token or as the preview sentinel.
func ContainsLink(body string) bool {
	return strings.Contains(body, PlaceholderLink) || strings.Contains(body, SentinelLinkPending)
}

func substituteIdentity(body string, r domain.Recipient) string {
	body = strings.ReplaceAll(body, PlaceholderName, r.Name)
	body = strings.ReplaceAll(body, PlaceholderCode, r.Code)
	return body
}

package service

import (
	"testing"

	"github.com/nemocrk/my-wedding-app/internal/domain"
)

func TestListEligible_FiltersAndKeepsOrder(t *testing.T) {
	resolver := NewTemplateResolver()

	templates := []domain.MessageTemplate{
		{ID: 1, Name: "first", Condition: domain.ConditionManual, IsActive: true},
		{ID: 2, Name: "inactive", Condition: domain.ConditionManual, IsActive: false},
		{ID: 3, Name: "automatic", Condition: domain.ConditionStatusChange, IsActive: true},
		{ID: 4, Name: "second", Condition: domain.ConditionManual, IsActive: true},
	}

	eligible := resolver.ListEligible(templates)

	if len(eligible) != 2 {
		t.Fatalf("expected 2 eligible templates, got %d", len(eligible))
	}
	if eligible[0].ID != 1 || eligible[1].ID != 4 {
		t.Fatalf("expected input order preserved (ids 1, 4), got %d, %d", eligible[0].ID, eligible[1].ID)
	}
}

func TestListEligible_EmptyInput(t *testing.T) {
	resolver := NewTemplateResolver()

	if got := resolver.ListEligible(nil); len(got) != 0 {
		t.Fatalf("expected no eligible templates, got %d", len(got))
	}
}

func TestPreview_SingleRecipientSubstitutes(t *testing.T) {
	resolver := NewTemplateResolver()

	tmpl := domain.MessageTemplate{
		Content: "Hi {name}, code {code}, link: {link}",
	}
	recipients := []domain.Recipient{
		{ID: 1, Name: "Mario Rossi", Code: "MARIO123", PhoneNumber: "+393331112233", Origin: domain.OriginGroom},
	}

	got := resolver.Preview(tmpl, recipients)
	want := "Hi Mario Rossi, code MARIO123, link: [LINK_PENDING]"

	if got != want {
		t.Fatalf("expected preview %q, got %q", want, got)
	}
}

func TestPreview_MultipleRecipientsReturnsRawTemplate(t *testing.T) {
	resolver := NewTemplateResolver()

	tmpl := domain.MessageTemplate{
		Content: "Hi {name}, link: {link}",
	}
	recipients := []domain.Recipient{
		{ID: 1, Name: "Mario Rossi", Code: "MARIO123"},
		{ID: 2, Name: "Giulia Bianchi", Code: "GIULIA456"},
	}

	if got := resolver.Preview(tmpl, recipients); got != tmpl.Content {
		t.Fatalf("expected raw template %q, got %q", tmpl.Content, got)
	}
}

func TestContainsLink(t *testing.T) {
	cases := []struct {
		body string
		want bool
	}{
		{"Hi {name}", false},
		{"Your invitation: {link}", true},
		{"Your invitation: [LINK_PENDING]", true},
		{"Broken invitation: [LINK_ERROR]", false},
	}

	for _, tc := range cases {
		if got := ContainsLink(tc.body); got != tc.want {
			t.Errorf("ContainsLink(%q) = %v, want %v", tc.body, got, tc.want)
		}
	}
}

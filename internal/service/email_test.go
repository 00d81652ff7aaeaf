package service

import (
	"strings"
	"testing"
)

func TestRenderEmailWithAction(t *testing.T) {
	html, err := RenderEmail("Organization Invite",
		"<p>You have been invited.</p>",
		"https://portal.example.com/register?invite=tok",
		"Respond to Invite")
	if err != nil {
		t.Fatalf("RenderEmail: %v", err)
	}

	if !strings.Contains(html, "Organization Invite") {
		t.Error("heading missing from rendered email")
	}
	if !strings.Contains(html, "<p>You have been invited.</p>") {
		t.Error("body fragment should pass through unescaped")
	}
	if !strings.Contains(html, `href="https://portal.example.com/register?invite=tok"`) {
		t.Error("action link missing from rendered email")
	}
	if !strings.Contains(html, "Respond to Invite") {
		t.Error("action label missing from rendered email")
	}
}

func TestRenderEmailWithoutAction(t *testing.T) {
	html, err := RenderEmail("Payment Received", "<p>Thanks.</p>", "", "")
	if err != nil {
		t.Fatalf("RenderEmail: %v", err)
	}

	if strings.Contains(html, "class=\"btn\"") {
		t.Error("no button should render without an action URL")
	}
}

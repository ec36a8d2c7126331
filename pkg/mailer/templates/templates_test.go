package templates

import (
	"strings"
	"testing"
)

func TestRenderResetPassword(t *testing.T) {
	subject, text, html, err := Render(ResetPassword, map[string]any{
		"Username":  "alice",
		"ResetURL":  "http://localhost/reset-password/abc",
		"ExpiresIn": "1h0m0s",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if subject == "" {
		t.Error("empty subject")
	}
	if !strings.Contains(html, "http://localhost/reset-password/abc") {
		t.Errorf("html missing link: %s", html)
	}
	if !strings.Contains(text, "http://localhost/reset-password/abc") {
		t.Errorf("text missing link: %s", text)
	}
}

func TestRenderWelcome(t *testing.T) {
	_, _, html, err := Render(Welcome, map[string]any{"Username": "bob"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "bob") {
		t.Errorf("html missing username: %s", html)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	if _, _, _, err := Render("nope", nil); err == nil {
		t.Error("expected error for unknown template")
	}
}

package services

import (
	"context"
	"strings"
	"testing"

	"case_flow_app_go/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResendMailer_TestMode(t *testing.T) {
	cfg := &config.Config{
		EmailTestMode: true,
		EmailFrom:     "noreply@example.com",
		EmailFromName: "Case Flow",
	}
	mailer := NewResendMailer(cfg)

	email := &Email{
		To:       []string{"client@example.com"},
		Subject:  "Update",
		TextBody: "Hello",
		HTMLBody: "Hello",
	}
	id, err := mailer.Send(context.Background(), email)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "test-"))
	assert.Equal(t, "Case Flow <noreply@example.com>", email.From)
}

func TestResendMailer_KeepsExplicitFrom(t *testing.T) {
	mailer := NewResendMailer(&config.Config{EmailTestMode: true, EmailFrom: "noreply@example.com"})

	email := &Email{From: "lawyer@example.com", To: []string{"a@example.com"}, Subject: "s", TextBody: "b"}
	_, err := mailer.Send(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, "lawyer@example.com", email.From)
}

func TestResendMailer_MissingAPIKey(t *testing.T) {
	mailer := NewResendMailer(&config.Config{EmailTestMode: false, EmailFrom: "noreply@example.com"})

	_, err := mailer.Send(context.Background(), &Email{To: []string{"a@example.com"}, Subject: "s", TextBody: "b"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "RESEND_API_KEY")
}

func TestRenderEmailHTML(t *testing.T) {
	t.Run("Line breaks become br", func(t *testing.T) {
		assert.Equal(t, "Dear client,<br><br>See you soon.", RenderEmailHTML("Dear client,\r\n\nSee you soon."))
	})

	t.Run("Scripts are stripped", func(t *testing.T) {
		html := RenderEmailHTML("Hi<script>alert(1)</script>\nBye")
		assert.NotContains(t, html, "<script>")
		assert.Contains(t, html, "Hi")
		assert.Contains(t, html, "<br>Bye")
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abcdef", 3))
	assert.Equal(t, "ab", truncate("ab", 3))
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func issuePaths(issues []ValidationIssue) []string {
	var paths []string
	for _, i := range issues {
		paths = append(paths, i.Path)
	}
	return paths
}

func TestValidate_ValidDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Empty(t, Validate(&cfg))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"port too low", func(c *Config) { c.Gateway.Port = -1 }, "gateway.port"},
		{"port too high", func(c *Config) { c.Gateway.Port = 70000 }, "gateway.port"},
		{"bad bind", func(c *Config) { c.Gateway.Bind = "tailnet" }, "gateway.bind"},
		{"custom bind without host", func(c *Config) { c.Gateway.Bind = "custom" }, "gateway.customBindHost"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"unsupported language", func(c *Config) { c.Kiosk.DefaultLanguage = "xx" }, "kiosk.defaultLanguage"},
		{"negative threshold", func(c *Config) { c.Kiosk.EngagementThreshold = -1 }, "kiosk.engagementThreshold"},
		{"relative webhook url", func(c *Config) { c.Webhook.URL = "/ingest" }, "webhook.url"},
		{"ftp webhook url", func(c *Config) { c.Webhook.URL = "ftp://x.example.com" }, "webhook.url"},
		{"negative webhook retries", func(c *Config) { c.Webhook.Retries = -2 }, "webhook.retries"},
		{"bad transport", func(c *Config) { c.Notify.Transport = "pigeon" }, "notify.transport"},
		{"resend without key", func(c *Config) { c.Notify.Transport = "resend" }, "notify.resend.apiKey"},
		{"bad reply provider", func(c *Config) { c.Reply.Provider = "openai" }, "reply.provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			assert.Contains(t, issuePaths(Validate(&cfg)), tt.path)
		})
	}
}

func TestValidate_AcceptedValues(t *testing.T) {
	for _, lang := range SupportedLanguages {
		cfg := Defaults()
		cfg.Kiosk.DefaultLanguage = lang
		assert.Empty(t, Validate(&cfg), "language %q should be valid", lang)
	}
	for _, transport := range []string{"smtp", "none", ""} {
		cfg := Defaults()
		cfg.Notify.Transport = transport
		assert.Empty(t, Validate(&cfg), "transport %q should be valid", transport)
	}

	cfg := Defaults()
	cfg.Webhook.URL = ""
	assert.Empty(t, Validate(&cfg), "webhook is optional")
}

func TestValidationIssueString(t *testing.T) {
	issue := ValidationIssue{Path: "webhook.url", Message: "bad"}
	assert.Equal(t, "webhook.url: bad", issue.String())
}

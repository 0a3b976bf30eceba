package config

import (
	"fmt"
	"net/url"
	"slices"
)

// SupportedLanguages lists the visitor language codes the kiosk can speak.
var SupportedLanguages = []string{"de", "en", "nl", "it", "fr", "es", "pl", "pt", "tr", "ar"}

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue
	add := func(path, format string, args ...any) {
		issues = append(issues, ValidationIssue{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	// Gateway
	if cfg.Gateway.Port < 0 || cfg.Gateway.Port > 65535 {
		add("gateway.port", "port must be 0-65535, got %d", cfg.Gateway.Port)
	}
	validBinds := []string{"loopback", "lan", "custom"}
	if cfg.Gateway.Bind != "" && !slices.Contains(validBinds, cfg.Gateway.Bind) {
		add("gateway.bind", "must be one of %v, got %q", validBinds, cfg.Gateway.Bind)
	}
	if cfg.Gateway.Bind == "custom" && cfg.Gateway.CustomBindHost == "" {
		add("gateway.customBindHost", "required when bind is custom")
	}

	// Logging
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		add("logging.level", "must be one of %v, got %q", validLogLevels, cfg.Logging.Level)
	}

	// Kiosk
	k := cfg.Kiosk
	if k.DefaultLanguage != "" && !slices.Contains(SupportedLanguages, k.DefaultLanguage) {
		add("kiosk.defaultLanguage", "must be one of %v, got %q", SupportedLanguages, k.DefaultLanguage)
	}
	if k.EngagementThreshold < 0 {
		add("kiosk.engagementThreshold", "must not be negative")
	}
	if k.WarmThreshold < 0 {
		add("kiosk.warmThreshold", "must not be negative")
	}
	if k.ScoreScale < 0 {
		add("kiosk.scoreScale", "must not be negative")
	}
	if k.ShutdownTimeout < 0 {
		add("kiosk.shutdownTimeout", "must not be negative")
	}

	// Webhook
	if cfg.Webhook.URL != "" {
		if u, err := url.Parse(cfg.Webhook.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			add("webhook.url", "must be an absolute http(s) URL, got %q", cfg.Webhook.URL)
		}
	}
	if cfg.Webhook.Retries < 0 {
		add("webhook.retries", "must not be negative")
	}
	if cfg.Webhook.Timeout < 0 {
		add("webhook.timeout", "must not be negative")
	}

	// Notify
	validTransports := []string{"smtp", "resend", "none"}
	if cfg.Notify.Transport != "" && !slices.Contains(validTransports, cfg.Notify.Transport) {
		add("notify.transport", "must be one of %v, got %q", validTransports, cfg.Notify.Transport)
	}
	if cfg.Notify.Transport == "smtp" && (cfg.Notify.SMTP.Port < 0 || cfg.Notify.SMTP.Port > 65535) {
		add("notify.smtp.port", "port must be 0-65535, got %d", cfg.Notify.SMTP.Port)
	}
	if cfg.Notify.Transport == "resend" && cfg.Notify.Resend.APIKey == "" {
		add("notify.resend.apiKey", "required when transport is resend")
	}
	if cfg.Notify.Retries < 0 {
		add("notify.retries", "must not be negative")
	}

	// Reply
	validProviders := []string{"gemini", "none"}
	if cfg.Reply.Provider != "" && !slices.Contains(validProviders, cfg.Reply.Provider) {
		add("reply.provider", "must be one of %v, got %q", validProviders, cfg.Reply.Provider)
	}
	if cfg.Reply.Attempts < 0 {
		add("reply.attempts", "must not be negative")
	}

	return issues
}

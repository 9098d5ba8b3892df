package app

import (
	"strings"

	"github.com/virtualstage/backlot/internal/ai"
)

// Enabled reports whether a completion provider is configured.
func (c AIConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// ClientConfig converts AIConfig into the completion client representation.
func (c AIConfig) ClientConfig() ai.Config {
	return ai.Config{
		APIKey:  strings.TrimSpace(c.APIKey),
		BaseURL: strings.TrimSpace(c.BaseURL),
		Model:   strings.TrimSpace(c.Model),
		Timeout: c.Timeout,
	}
}

package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateProviders(); err != nil {
		return err
	}
	if err := c.validateOrganize(); err != nil {
		return err
	}
	if err := ensurePositiveMap(map[string]int{
		"llm.max_tokens":          c.LLM.MaxTokens,
		"llm.timeout_seconds":     c.LLM.TimeoutSeconds,
		"llm.retry_attempts":      c.LLM.RetryAttempts,
		"caption.timeout_seconds": c.Caption.TimeoutSeconds,
		"bridge.timeout_seconds":  c.Bridge.TimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.Watch.SettleSeconds < 0 {
		return errors.New("watch.settle_seconds must be >= 0")
	}
	if c.Bridge.Enabled && strings.TrimSpace(c.Bridge.Binary) == "" {
		return errors.New("bridge.binary must be set when bridge.enabled is true")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateProviders() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("llm.provider %q must be %q or %q", c.LLM.Provider, ProviderOpenAI, ProviderOllama)
	}
	switch c.Caption.Provider {
	case ProviderHuggingFace, ProviderGemini:
	default:
		return fmt.Errorf("caption.provider %q must be %q or %q", c.Caption.Provider, ProviderHuggingFace, ProviderGemini)
	}
	return nil
}

func (c *Config) validateOrganize() error {
	if c.Organize.PromptChars <= 0 {
		return errors.New("organize.prompt_chars must be positive")
	}
	if c.Organize.LabelMaxChars <= 0 {
		return errors.New("organize.label_max_chars must be positive")
	}
	switch c.Organize.Collision {
	case CollisionRename, CollisionReject:
	default:
		return fmt.Errorf("organize.collision %q must be %q or %q", c.Organize.Collision, CollisionRename, CollisionReject)
	}
	if len(c.Organize.CSVEncodings) == 0 {
		return errors.New("organize.csv_encodings must include at least one encoding")
	}
	for _, name := range c.Organize.CSVEncodings {
		if !slices.Contains(SupportedCSVEncodings, name) {
			return fmt.Errorf("organize.csv_encodings: unsupported encoding %q (supported: %s)", name, strings.Join(SupportedCSVEncodings, ", "))
		}
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}

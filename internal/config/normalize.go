package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeCaption()
	c.normalizeOrganize()
	c.normalizeBridge()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderOpenAI
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Provider == ProviderOllama {
		if c.LLM.BaseURL == "" || c.LLM.BaseURL == defaultLLMBaseURL {
			c.LLM.BaseURL = defaultOllamaBaseURL
		}
		if c.LLM.Model == "" || c.LLM.Model == defaultLLMModel {
			c.LLM.Model = defaultOllamaModel
		}
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = firstEnv("GROQ_API_KEY", "OPENAI_API_KEY")
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = defaultLLMMaxTokens
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.LLM.RetryAttempts <= 0 {
		c.LLM.RetryAttempts = defaultLLMRetryAttempts
	}
}

func (c *Config) normalizeCaption() {
	c.Caption.Provider = strings.ToLower(strings.TrimSpace(c.Caption.Provider))
	if c.Caption.Provider == "" {
		c.Caption.Provider = ProviderHuggingFace
	}
	c.Caption.BaseURL = strings.TrimSpace(c.Caption.BaseURL)
	c.Caption.Model = strings.TrimSpace(c.Caption.Model)
	c.Caption.APIToken = strings.TrimSpace(c.Caption.APIToken)
	switch c.Caption.Provider {
	case ProviderGemini:
		if c.Caption.Model == "" || c.Caption.Model == defaultCaptionModel {
			c.Caption.Model = defaultGeminiModel
		}
		if c.Caption.APIToken == "" {
			c.Caption.APIToken = firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")
		}
	default:
		if c.Caption.BaseURL == "" {
			c.Caption.BaseURL = defaultCaptionBaseURL
		}
		if c.Caption.Model == "" {
			c.Caption.Model = defaultCaptionModel
		}
		if c.Caption.APIToken == "" {
			c.Caption.APIToken = firstEnv("HUGGINGFACE_API_TOKEN", "HF_TOKEN")
		}
	}
	if c.Caption.TimeoutSeconds <= 0 {
		c.Caption.TimeoutSeconds = defaultCaptionTimeout
	}
}

func (c *Config) normalizeOrganize() {
	if c.Organize.PromptChars <= 0 {
		c.Organize.PromptChars = defaultPromptChars
	}
	if c.Organize.LabelMaxChars <= 0 {
		c.Organize.LabelMaxChars = defaultLabelMaxChars
	}
	c.Organize.Collision = strings.ToLower(strings.TrimSpace(c.Organize.Collision))
	if c.Organize.Collision == "" {
		c.Organize.Collision = CollisionRename
	}
	encodings := make([]string, 0, len(c.Organize.CSVEncodings))
	seen := make(map[string]struct{}, len(c.Organize.CSVEncodings))
	for _, name := range c.Organize.CSVEncodings {
		normalized := canonicalEncoding(name)
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		encodings = append(encodings, normalized)
	}
	if len(encodings) == 0 {
		encodings = append(encodings, SupportedCSVEncodings...)
	}
	c.Organize.CSVEncodings = encodings
}

func canonicalEncoding(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	switch normalized {
	case "utf8":
		return "utf-8"
	case "latin1", "latin-1", "iso8859-1", "iso_8859-1":
		return "iso-8859-1"
	case "cp1252", "windows1252":
		return "windows-1252"
	}
	return normalized
}

func (c *Config) normalizeBridge() {
	c.Bridge.Binary = strings.TrimSpace(c.Bridge.Binary)
	if c.Bridge.Binary == "" {
		c.Bridge.Binary = defaultBridgeBinary
	}
	if c.Bridge.TimeoutSeconds <= 0 {
		c.Bridge.TimeoutSeconds = defaultBridgeTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

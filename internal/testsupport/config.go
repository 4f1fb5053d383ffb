package testsupport

import (
	"path/filepath"
	"testing"

	"fastfox/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Credentials are set to placeholders and the office bridge is disabled.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.LLM.APIKey = "test"
	cfgVal.Caption.APIToken = "test"
	cfgVal.Bridge.Enabled = false
	cfgVal.Watch.SettleSeconds = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCollision sets the router collision policy.
func WithCollision(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organize.Collision = policy
	}
}

// WithRecordHistory toggles history recording for organize runs.
func WithRecordHistory(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organize.RecordHistory = enabled
	}
}

// WithLLMEndpoint points the completion provider at a test server.
func WithLLMEndpoint(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.BaseURL = url
	}
}

// WithCaptionEndpoint points the captioning provider at a test server.
func WithCaptionEndpoint(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Caption.BaseURL = url
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

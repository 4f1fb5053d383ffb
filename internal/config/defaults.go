package config

const (
	defaultConfigPath           = "~/.config/fastfox/config.toml"
	defaultStateDir             = "~/.local/share/fastfox"
	defaultLogDir               = "~/.local/share/fastfox/logs"
	defaultLLMBaseURL           = "https://api.groq.com/openai/v1/chat/completions"
	defaultLLMModel             = "llama3-8b-8192"
	defaultOllamaBaseURL        = "http://localhost:11434"
	defaultOllamaModel          = "llama3"
	defaultLLMMaxTokens         = 50
	defaultLLMTimeoutSeconds    = 30
	defaultLLMRetryAttempts     = 1
	defaultCaptionBaseURL       = "https://api-inference.huggingface.co/models/"
	defaultCaptionModel         = "Salesforce/blip-image-captioning-large"
	defaultGeminiModel          = "gemini-2.0-flash"
	defaultCaptionTimeout       = 60
	defaultPromptChars          = 1000
	defaultLabelMaxChars        = 50
	defaultBridgeBinary         = "soffice"
	defaultBridgeTimeoutSeconds = 120
	defaultWatchSettleSeconds   = 2
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Provider names accepted by [llm] and [caption].
const (
	ProviderOpenAI      = "openai"
	ProviderOllama      = "ollama"
	ProviderHuggingFace = "huggingface"
	ProviderGemini      = "gemini"
)

// Collision policies accepted by organize.collision.
const (
	CollisionRename = "rename"
	CollisionReject = "reject"
)

// SupportedCSVEncodings lists the charset names organize.csv_encodings may use.
var SupportedCSVEncodings = []string{"utf-8", "iso-8859-1", "windows-1252"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		LLM: LLM{
			Provider:       ProviderOpenAI,
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			MaxTokens:      defaultLLMMaxTokens,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			RetryAttempts:  defaultLLMRetryAttempts,
		},
		Caption: Caption{
			Provider:       ProviderHuggingFace,
			BaseURL:        defaultCaptionBaseURL,
			Model:          defaultCaptionModel,
			TimeoutSeconds: defaultCaptionTimeout,
		},
		Organize: Organize{
			PromptChars:   defaultPromptChars,
			LabelMaxChars: defaultLabelMaxChars,
			Collision:     CollisionRename,
			CSVEncodings:  append([]string(nil), SupportedCSVEncodings...),
			RecordHistory: true,
		},
		Bridge: Bridge{
			Enabled:        true,
			Binary:         defaultBridgeBinary,
			TimeoutSeconds: defaultBridgeTimeoutSeconds,
		},
		Watch: Watch{
			SettleSeconds: defaultWatchSettleSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

package label

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fastfox/internal/extract"
	"fastfox/internal/filetype"
	"fastfox/internal/logging"
	"fastfox/internal/services"
)

const (
	defaultPromptChars = 1000
	defaultMaxTokens   = 50
	defaultMaxChars    = 50
)

// Completer describes a text-completion collaborator.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// Options configure a Synthesizer. Zero limits take package defaults.
type Options struct {
	Completer   Completer
	Tagger      Tagger
	PromptChars int
	MaxTokens   int
	MaxChars    int
	Logger      *slog.Logger
}

// Synthesizer turns extracted content into a topic label.
type Synthesizer struct {
	completer   Completer
	tagger      Tagger
	promptChars int
	maxTokens   int
	maxChars    int
	logger      *slog.Logger
}

// New constructs a Synthesizer. A nil Tagger uses ProseTagger.
func New(opts Options) *Synthesizer {
	s := &Synthesizer{
		completer:   opts.Completer,
		tagger:      opts.Tagger,
		promptChars: opts.PromptChars,
		maxTokens:   opts.MaxTokens,
		maxChars:    opts.MaxChars,
		logger:      logging.NewComponentLogger(opts.Logger, "label"),
	}
	if s.tagger == nil {
		s.tagger = ProseTagger{}
	}
	if s.promptChars <= 0 {
		s.promptChars = defaultPromptChars
	}
	if s.maxTokens <= 0 {
		s.maxTokens = defaultMaxTokens
	}
	if s.maxChars <= 0 {
		s.maxChars = defaultMaxChars
	}
	return s
}

// Synthesize returns the label for content extracted from a file of the given
// category. Fixed labels are only sanitized. Image captions are reduced
// without a completion call. Failures carry services.ErrSynthesis.
func (s *Synthesizer) Synthesize(ctx context.Context, category filetype.Category, content extract.Content) (string, error) {
	logger := logging.WithContext(ctx, s.logger)
	if content.Fixed() {
		label := Sanitize(content.FixedLabel, s.maxChars)
		logger.Debug("fixed label used", logging.String("label", label))
		return label, nil
	}

	phrase := content.Text
	if category != filetype.Image {
		reply, err := s.complete(ctx, category, content.Text)
		if err != nil {
			return "", err
		}
		phrase = reply
	}

	label, err := s.Simplify(phrase)
	if err != nil {
		return "", err
	}
	logger.Debug("label synthesized",
		logging.String("category", category.String()),
		logging.String("phrase", shortPhrase(phrase)),
		logging.String("label", label),
	)
	return label, nil
}

func (s *Synthesizer) complete(ctx context.Context, category filetype.Category, text string) (string, error) {
	system, user, ok := buildPrompt(category, text, s.promptChars)
	if !ok {
		return "", services.Wrap(services.ErrSynthesis, "label", "prompt", fmt.Sprintf("no prompt for category %s", category), nil)
	}
	if s.completer == nil {
		return "", services.Wrap(services.ErrConfiguration, "label", "complete", "no completion provider configured", nil)
	}
	reply, err := s.completer.Complete(ctx, system, user, s.maxTokens)
	if err != nil {
		return "", services.Wrap(services.ErrSynthesis, "label", "complete", "topic request failed", err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", services.Wrap(services.ErrSynthesis, "label", "complete", "empty topic response", nil)
	}
	return reply, nil
}

// Simplify reduces a free-form phrase to a single sanitized word.
func (s *Synthesizer) Simplify(phrase string) (string, error) {
	tokens, err := s.tagger.Tag(phrase)
	if err != nil {
		return "", services.Wrap(services.ErrSynthesis, "label", "tag", "part-of-speech tagging failed", err)
	}
	word := cleanWord(chooseWord(tokens))
	if word == "" {
		return Placeholder, nil
	}
	return Sanitize(word, s.maxChars), nil
}

// shortPhrase keeps debug attributes short.
func shortPhrase(s string) string {
	const limit = 80
	if runeLen(s) <= limit {
		return s
	}
	return truncateRunes(s, limit) + "..."
}

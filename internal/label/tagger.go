package label

import (
	"github.com/jdkato/prose/v2"
)

// Token is one tagged word using Penn Treebank tags.
type Token struct {
	Text string
	Tag  string
}

// Tagger splits text into part-of-speech tagged tokens.
type Tagger interface {
	Tag(text string) ([]Token, error)
}

// ProseTagger tags with the prose averaged-perceptron model.
type ProseTagger struct{}

// Tag implements Tagger.
func (ProseTagger) Tag(text string) ([]Token, error) {
	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil, err
	}
	raw := doc.Tokens()
	tokens := make([]Token, 0, len(raw))
	for _, tok := range raw {
		tokens = append(tokens, Token{Text: tok.Text, Tag: tok.Tag})
	}
	return tokens, nil
}

func isNounTag(tag string) bool {
	switch tag {
	case "NN", "NNS", "NNP", "NNPS":
		return true
	}
	return false
}

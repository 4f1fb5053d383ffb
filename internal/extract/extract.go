package extract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"fastfox/internal/filetype"
	"fastfox/internal/logging"
	"fastfox/internal/services"
)

// Placeholder labels returned instead of text.
const (
	UntitledLabel    = "Untitled"
	UntitledCSVLabel = "Untitled_CSV"
)

// Content is what an extractor produced for one file. When FixedLabel is set
// the label synthesizer must be bypassed and FixedLabel used as the topic.
type Content struct {
	Text       string
	FixedLabel string
}

// Fixed reports whether the content already carries its label.
func (c Content) Fixed() bool {
	return c.FixedLabel != ""
}

// Captioner describes an image-captioning collaborator.
type Captioner interface {
	Caption(ctx context.Context, image []byte) (string, error)
}

// Converter turns legacy office files into their XML successors. read is
// invoked with the converted path while the conversion is still held open.
type Converter interface {
	ConvertWith(ctx context.Context, src, format string, read func(path string) error) error
}

// Options configure an Extractor.
type Options struct {
	// CSVEncodings is the ordered charset fallback chain for CSV headers.
	CSVEncodings []string
	Captioner    Captioner
	// Converter handles .doc and .xls; nil rejects legacy formats.
	Converter Converter
	Logger    *slog.Logger
}

// Extractor dispatches to the reader for each file category.
type Extractor struct {
	encodings []namedEncoding
	captioner Captioner
	converter Converter
	logger    *slog.Logger
}

// New builds an Extractor. Unknown encoding names are reported as errors.
func New(opts Options) (*Extractor, error) {
	encodings, err := resolveEncodings(opts.CSVEncodings)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "extract", "init", "resolve csv encodings", err)
	}
	return &Extractor{
		encodings: encodings,
		captioner: opts.Captioner,
		converter: opts.Converter,
		logger:    logging.NewComponentLogger(opts.Logger, "extract"),
	}, nil
}

// Extract reads path according to category. Failures carry services.ErrExtraction,
// except caption failures which are remote calls and carry services.ErrSynthesis.
func (e *Extractor) Extract(ctx context.Context, path string, category filetype.Category) (Content, error) {
	var (
		content Content
		err     error
	)
	switch category {
	case filetype.PDF:
		content, err = e.extractPDF(path)
	case filetype.Excel:
		content, err = e.extractSpreadsheet(ctx, path)
	case filetype.CSV:
		content, err = e.extractCSV(path)
	case filetype.Document:
		content, err = e.extractDocument(ctx, path)
	case filetype.Image:
		return e.extractImage(ctx, path)
	default:
		err = fmt.Errorf("no extractor for category %s", category)
	}
	if err != nil {
		return Content{}, services.Wrap(services.ErrExtraction, "extract", category.String(), filepath.Base(path), err)
	}
	logging.WithContext(ctx, e.logger).Debug("content extracted",
		logging.String("category", category.String()),
		logging.Int("chars", len([]rune(content.Text))),
		logging.Bool("fixed_label", content.Fixed()),
	)
	return content, nil
}

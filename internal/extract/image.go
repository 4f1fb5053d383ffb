package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"fastfox/internal/services"
)

// extractImage asks the captioning collaborator to describe the image. The
// caption becomes the content text.
func (e *Extractor) extractImage(ctx context.Context, path string) (Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Content{}, services.Wrap(services.ErrExtraction, "extract", "image", filepath.Base(path), err)
	}
	if e.captioner == nil {
		return Content{}, services.Wrap(services.ErrConfiguration, "extract", "image", "no captioning provider configured", nil)
	}
	caption, err := e.captioner.Caption(ctx, data)
	if err != nil {
		return Content{}, services.Wrap(services.ErrSynthesis, "extract", "caption", filepath.Base(path), err)
	}
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return Content{}, services.Wrap(services.ErrSynthesis, "extract", "caption", filepath.Base(path), errors.New("empty caption"))
	}
	return Content{Text: caption}, nil
}

package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

func (e *Extractor) extractPDF(path string) (content Content, err error) {
	f, err := os.Open(path)
	if err != nil {
		return Content{}, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return Content{}, err
	}

	// The pdf reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			content = Content{}
			err = fmt.Errorf("corrupt pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return Content{}, fmt.Errorf("open pdf: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return Content{}, fmt.Errorf("page %d: %w", i, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}
	return Content{Text: strings.Join(pages, "\n")}, nil
}

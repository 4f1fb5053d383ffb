package extract

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"fastfox/internal/filetype"
)

func (e *Extractor) extractDocument(ctx context.Context, path string) (Content, error) {
	if !filetype.Legacy(path) {
		return readDocx(path)
	}
	if e.converter == nil {
		return Content{}, errors.New("legacy .doc requires the office bridge")
	}
	var content Content
	err := e.converter.ConvertWith(ctx, path, "docx", func(converted string) error {
		var err error
		content, err = readDocx(converted)
		return err
	})
	return content, err
}

func readDocx(path string) (Content, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return Content{}, fmt.Errorf("open document: %w", err)
	}
	defer r.Close()

	paragraphs, err := paragraphText(r.Editable().GetContent())
	if err != nil {
		return Content{}, fmt.Errorf("parse document body: %w", err)
	}
	return Content{Text: strings.Join(paragraphs, "\n")}, nil
}

// paragraphText collects the text runs of each w:p element in a
// WordprocessingML body.
func paragraphText(body string) ([]string, error) {
	decoder := xml.NewDecoder(strings.NewReader(body))
	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
	)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "p":
				current.Reset()
			case "t":
				inText = true
			case "tab":
				current.WriteByte('\t')
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				if text := strings.TrimSpace(current.String()); text != "" {
					paragraphs = append(paragraphs, text)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(el)
			}
		}
	}
	return paragraphs, nil
}

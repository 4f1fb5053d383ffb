package extract

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"

	"fastfox/internal/logging"
)

// maxCSVHeaderBytes bounds how much of a CSV file is decoded to find its header.
const maxCSVHeaderBytes = 1 << 20

type namedEncoding struct {
	name string
	enc  encoding.Encoding
}

var knownEncodings = map[string]encoding.Encoding{
	"utf-8":        xunicode.UTF8BOM,
	"iso-8859-1":   charmap.ISO8859_1,
	"windows-1252": charmap.Windows1252,
}

var defaultEncodings = []string{"utf-8", "iso-8859-1", "windows-1252"}

func resolveEncodings(names []string) ([]namedEncoding, error) {
	if len(names) == 0 {
		names = defaultEncodings
	}
	out := make([]namedEncoding, 0, len(names))
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		enc, ok := knownEncodings[key]
		if !ok {
			return nil, fmt.Errorf("unsupported encoding %q", name)
		}
		out = append(out, namedEncoding{name: key, enc: enc})
	}
	return out, nil
}

func (e *Extractor) extractCSV(path string) (Content, error) {
	f, err := os.Open(path)
	if err != nil {
		return Content{}, err
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, maxCSVHeaderBytes))
	if err != nil {
		return Content{}, err
	}
	for _, ne := range e.encodings {
		headers, ok := decodeHeader(raw, ne.enc)
		if !ok {
			continue
		}
		content := headerContent(headers, UntitledCSVLabel)
		if !content.Fixed() {
			e.logger.Debug("csv header decoded", logging.String("encoding", ne.name))
		}
		return content, nil
	}
	return Content{FixedLabel: UntitledCSVLabel}, nil
}

// decodeHeader decodes raw with enc and parses its first record. A decoding is
// rejected when the header holds replacement or control characters.
func decodeHeader(raw []byte, enc encoding.Encoding) ([]string, bool) {
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, false
	}
	r := csv.NewReader(bytes.NewReader(decoded))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	record, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, true
		}
		return nil, false
	}
	for _, field := range record {
		if !cleanHeaderField(field) {
			return nil, false
		}
	}
	return record, true
}

func cleanHeaderField(field string) bool {
	for _, r := range field {
		switch {
		case r == unicode.ReplacementChar:
			return false
		case r == '\t' || r == '\n' || r == '\r':
		case r < 0x20, r >= 0x7f && r <= 0x9f:
			return false
		}
	}
	return true
}

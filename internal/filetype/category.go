package filetype

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Category is the file-type bucket a file is classified into.
type Category int

const (
	Other Category = iota
	Image
	PDF
	Excel
	CSV
	Document
)

// All lists every category in directory-creation order.
var All = []Category{Image, PDF, Excel, CSV, Document, Other}

var extensions = map[string]Category{
	".png":  Image,
	".jpg":  Image,
	".jpeg": Image,
	".gif":  Image,
	".pdf":  PDF,
	".xls":  Excel,
	".xlsx": Excel,
	".csv":  CSV,
	".doc":  Document,
	".docx": Document,
}

// FromExtension resolves a category from an extension such as ".PDF".
// Unmapped extensions fall to Other.
func FromExtension(ext string) Category {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if c, ok := extensions[ext]; ok {
		return c
	}
	return Other
}

// ForPath resolves the category of a file path from its extension.
func ForPath(path string) Category {
	return FromExtension(filepath.Ext(path))
}

// Dir returns the top-level directory name for the category.
func (c Category) Dir() string {
	switch c {
	case Image:
		return "images"
	case PDF:
		return "pdfs"
	case Excel:
		return "excels"
	case CSV:
		return "csvs"
	case Document:
		return "docs"
	default:
		return "other_files"
	}
}

// Labeled reports whether files of this category are nested under a topic label.
func (c Category) Labeled() bool {
	return c != Other
}

func (c Category) String() string {
	switch c {
	case Image:
		return "image"
	case PDF:
		return "pdf"
	case Excel:
		return "excel"
	case CSV:
		return "csv"
	case Document:
		return "document"
	case Other:
		return "other"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Legacy reports whether the extension needs the office bridge to be read.
func Legacy(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".doc", ".xls":
		return true
	}
	return false
}

package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"

	"fastfox/internal/filetype"
	"fastfox/internal/logging"
)

const columnSeparator = ", "

func (e *Extractor) extractSpreadsheet(ctx context.Context, path string) (Content, error) {
	if !filetype.Legacy(path) {
		return e.readWorkbookHeader(ctx, path)
	}
	if e.converter == nil {
		return Content{}, errors.New("legacy .xls requires the office bridge")
	}
	var content Content
	err := e.converter.ConvertWith(ctx, path, "xlsx", func(converted string) error {
		var err error
		content, err = e.readWorkbookHeader(ctx, converted)
		return err
	})
	return content, err
}

func (e *Extractor) readWorkbookHeader(ctx context.Context, path string) (Content, error) {
	headers, err := excelizeHeader(path)
	if err != nil {
		fallback, fallbackErr := tealegHeader(path)
		if fallbackErr != nil {
			return Content{}, errors.Join(err, fallbackErr)
		}
		logging.WithContext(ctx, e.logger).Debug("excelize rejected workbook; used fallback reader",
			logging.Error(err),
		)
		headers = fallback
	}
	return headerContent(headers, UntitledLabel), nil
}

func excelizeHeader(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, rows.Error()
	}
	return rows.Columns()
}

func tealegHeader(path string) ([]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	if len(f.Sheets) == 0 || len(f.Sheets[0].Rows) == 0 {
		return nil, nil
	}
	row := f.Sheets[0].Rows[0]
	if row == nil {
		return nil, nil
	}
	headers := make([]string, 0, len(row.Cells))
	for _, cell := range row.Cells {
		if cell == nil {
			continue
		}
		headers = append(headers, cell.String())
	}
	return headers, nil
}

// headerContent joins the non-blank header cells, or returns placeholder when
// there are none.
func headerContent(headers []string, placeholder string) Content {
	cleaned := make([]string, 0, len(headers))
	for _, h := range headers {
		if h = strings.TrimSpace(h); h != "" {
			cleaned = append(cleaned, h)
		}
	}
	if len(cleaned) == 0 {
		return Content{FixedLabel: placeholder}
	}
	return Content{Text: strings.Join(cleaned, columnSeparator)}
}

package parsers

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"student-records/common"
)

// ParseXLSX reads the first worksheet. The first row holds the headers;
// every later non-blank row becomes a record.
func ParseXLSX(data []byte) ([]Record, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open spreadsheet: %v", common.ErrContent, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: spreadsheet has no worksheets", common.ErrContent)
	}

	// Formatted values, so dates and numbers arrive as they display
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read sheet %q: %v", common.ErrContent, sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: sheet must contain a header row and at least one data row", common.ErrContent)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := NewRecord()
		for i, header := range headers {
			value := ""
			if i < len(row) {
				value = strings.TrimSpace(row[i])
			}
			record.Set(header, value)
		}
		if record.IsEmpty() {
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

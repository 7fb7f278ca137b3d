package parsers

import (
	"errors"
	"fmt"
	"strings"

	"student-records/common"
)

// Input formats understood by Read
const (
	FormatCSV    = "csv"
	FormatJSON   = "json"
	FormatNDJSON = "ndjson"
	FormatXLSX   = "xlsx"
)

// Read turns an uploaded file into records. ext is the declared file
// extension with or without the dot. Unknown extensions are tried as JSON,
// then as delimited text. It returns the format that succeeded.
func Read(data []byte, ext string) ([]Record, string, error) {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))

	var (
		records []Record
		format  string
		err     error
	)

	switch ext {
	case "json":
		format = FormatJSON
		records, err = ParseJSON([]byte(DecodeText(data)))
	case "ndjson", "jsonl":
		format = FormatNDJSON
		records, err = ParseNDJSON([]byte(DecodeText(data)))
	case "csv", "tsv", "txt":
		format = FormatCSV
		records, err = ParseCSV(DecodeText(data))
	case "xlsx", "xlsm", "xls":
		format = FormatXLSX
		records, err = ParseXLSX(data)
	default:
		text := DecodeText(data)
		format = FormatJSON
		records, err = ParseJSON([]byte(text))
		if err != nil {
			format = FormatCSV
			records, err = ParseCSV(text)
		}
	}

	if err != nil {
		return nil, format, wrapContent(err)
	}
	if len(records) == 0 {
		return nil, format, fmt.Errorf("%w: file contains no data rows", common.ErrContent)
	}
	return records, format, nil
}

// wrapContent makes sure every read failure is reported as a content error
func wrapContent(err error) error {
	if errors.Is(err, common.ErrContent) {
		return err
	}
	return fmt.Errorf("%w: %v", common.ErrContent, err)
}

package imports

import (
	"student-records/fieldmap"
	"student-records/parsers"
)

// DefaultPreviewRows is how many data rows a preview shows
const DefaultPreviewRows = 5

// ColumnGuess is how one raw header would be classified on import
type ColumnGuess struct {
	Header string         `json:"header"`
	Key    string         `json:"key"`
	Field  fieldmap.Field `json:"field,omitempty"`
}

// PreviewResult describes a file without importing it
type PreviewResult struct {
	Format    string              `json:"format"`
	TotalRows int                 `json:"total_rows"`
	Columns   []ColumnGuess       `json:"columns"`
	Rows      []map[string]string `json:"rows"`
}

// Preview parses data and reports the headers of the first record, their
// normalized keys and guessed fields, and up to limit rows. Nothing is stored.
func Preview(data []byte, ext string, limit int) (*PreviewResult, error) {
	records, format, err := parsers.Read(data, ext)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultPreviewRows
	}

	result := &PreviewResult{Format: format, TotalRows: len(records)}

	for _, header := range records[0].Headers {
		key := fieldmap.NormalizeHeader(header)
		field, _ := fieldmap.ClassifyHeader(key)
		result.Columns = append(result.Columns, ColumnGuess{Header: header, Key: key, Field: field})
	}

	for i, rec := range records {
		if i >= limit {
			break
		}
		row := make(map[string]string, len(rec.Headers))
		for _, header := range rec.Headers {
			row[header] = rec.Get(header)
		}
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

package parsers

import (
	"fmt"
	"strings"

	"student-records/common"
)

// ParseCSV parses delimited text into records keyed by the header line.
// Blank lines are ignored; rows whose cells are all blank are dropped.
func ParseCSV(text string) ([]Record, error) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return nil, fmt.Errorf("%w: file must contain a header row and at least one data row", common.ErrContent)
	}

	delim := sniffDelimiter(lines[0])
	headers := ParseCSVLine(lines[0], delim)

	records := make([]Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := ParseCSVLine(line, delim)

		record := NewRecord()
		for i, header := range headers {
			if i < len(values) {
				record.Set(header, values[i])
			} else {
				record.Set(header, "") // Missing column value
			}
		}
		if record.IsEmpty() {
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

// ParseCSVLine splits one line into trimmed fields. A doubled quote inside a
// quoted field yields one literal quote; delimiters inside quotes are kept.
func ParseCSVLine(line string, delim rune) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	runes := []rune(line)
	for i := 0; i < len(runes); {
		ch := runes[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i += 2
				continue
			}
			inQuotes = !inQuotes
		case ch == delim && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
		i++
	}

	return append(fields, strings.TrimSpace(current.String()))
}

// sniffDelimiter picks ';' or tab when the header has no commas
func sniffDelimiter(header string) rune {
	if strings.ContainsRune(header, ',') {
		return ','
	}
	switch {
	case strings.ContainsRune(header, '\t'):
		return '\t'
	case strings.ContainsRune(header, ';'):
		return ';'
	}
	return ','
}

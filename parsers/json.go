package parsers

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"student-records/common"
)

// ParseJSON reads either an array of flat objects or a single object.
// Key order of each object is preserved as header order.
func ParseJSON(data []byte) ([]Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", common.ErrContent)
	}

	dec := json.NewDecoder(bytes.NewReader(data))

	var records []Record
	switch data[0] {
	case '{':
		record, err := decodeObject(dec)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	case '[':
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		for dec.More() {
			record, err := decodeObject(dec)
			if err != nil {
				return nil, err
			}
			records = append(records, record)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: expected a JSON array or object", common.ErrContent)
	}

	// Trailing garbage means this was not JSON after all
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after JSON value", common.ErrContent)
	}

	return records, nil
}

// ParseNDJSON reads one JSON object per line.
// Malformed lines are logged and skipped.
func ParseNDJSON(data []byte) ([]Record, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))

	// Increase buffer size for large lines (up to 1MB per line)
	const maxCapacity = 1024 * 1024
	scanner.Buffer(make([]byte, maxCapacity), maxCapacity)

	var records []Record
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		record, err := decodeObject(json.NewDecoder(bytes.NewReader(line)))
		if err != nil {
			log.Printf("Skipping malformed NDJSON line %d: %v", lineNum, err)
			continue
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// decodeObject consumes one object from dec, keeping key order
func decodeObject(dec *json.Decoder) (Record, error) {
	tok, err := dec.Token()
	if err != nil {
		return Record{}, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return Record{}, fmt.Errorf("%w: expected a JSON object, got %v", common.ErrContent, tok)
	}

	record := NewRecord()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Record{}, err
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return Record{}, err
		}
		record.Set(key, rawToString(raw))
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return Record{}, err
	}
	return record, nil
}

// rawToString renders a JSON value as display text
func rawToString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(trimmed)
}

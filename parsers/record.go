package parsers

import "strings"

// Record is one input row: raw column header -> cell value.
// Headers keeps the order in which columns appeared in the source.
type Record struct {
	Headers []string
	Values  map[string]string
}

// NewRecord returns an empty record
func NewRecord() Record {
	return Record{Values: make(map[string]string)}
}

// Set stores a cell. A repeated header keeps its first position and takes
// the later value.
func (r *Record) Set(header, value string) {
	if r.Values == nil {
		r.Values = make(map[string]string)
	}
	if _, ok := r.Values[header]; !ok {
		r.Headers = append(r.Headers, header)
	}
	r.Values[header] = value
}

// Get returns the cell for header, or "" if absent
func (r Record) Get(header string) string {
	return r.Values[header]
}

// IsEmpty reports whether every cell is blank
func (r Record) IsEmpty() bool {
	for _, v := range r.Values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

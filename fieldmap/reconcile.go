package fieldmap

import (
	"strings"

	"student-records/common"
	"student-records/parsers"
)

// Fields is a sparse set of classified values for one row
type Fields map[Field]string

// Has reports whether f holds a non-blank value
func (f Fields) Has(field Field) bool {
	return strings.TrimSpace(f[field]) != ""
}

// Mapping is the classification result for one row
type Mapping struct {
	Fields   Fields
	Unmapped map[string]string // raw header -> value for cells no rule matched
}

// MapRecord classifies every non-blank cell of rec. When two columns land in
// the same field the later column wins. If no column was classified as the
// name, the first raw header mentioning a name is used instead.
func MapRecord(rec parsers.Record) Mapping {
	m := Mapping{Fields: make(Fields), Unmapped: make(map[string]string)}

	for _, header := range rec.Headers {
		value := strings.TrimSpace(rec.Get(header))
		if value == "" {
			continue
		}
		if field, ok := Classify(NormalizeHeader(header), value); ok {
			m.Fields[field] = value
		} else {
			m.Unmapped[header] = value
		}
	}

	if !m.Fields.Has(Name) {
		for _, header := range rec.Headers {
			value := strings.TrimSpace(rec.Get(header))
			if value == "" {
				continue
			}
			if strings.Contains(header, "اسم") || strings.Contains(strings.ToLower(header), "name") {
				m.Fields[Name] = value
				delete(m.Unmapped, header)
				break
			}
		}
	}

	return m
}

// Reconcile fixes common column mix-ups in classified fields and returns a
// new sparse set. A purely numeric guardian name is an insurance number
// filed in the wrong column; a purely numeric stage is noise. A missing
// name is left missing.
func Reconcile(in Fields) Fields {
	out := make(Fields, len(in))
	for k, v := range in {
		if strings.TrimSpace(v) != "" {
			out[k] = v
		}
	}

	if guardian, ok := out[GuardianName]; ok && common.IsAllDigits(guardian) {
		if !out.Has(InsuranceNumber) {
			out[InsuranceNumber] = guardian
		}
		delete(out, GuardianName)
	}

	if stage, ok := out[Stage]; ok && common.IsAllDigits(stage) {
		delete(out, Stage)
	}

	return out
}

// MapAndReconcile runs MapRecord then Reconcile
func MapAndReconcile(rec parsers.Record) Mapping {
	m := MapRecord(rec)
	m.Fields = Reconcile(m.Fields)
	return m
}

package imports

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"student-records/common"
	"student-records/fieldmap"
	"student-records/parsers"
	"student-records/students"

	"github.com/google/uuid"
)

// PlaceholderName is stored for rows that carry a national id but no name
const PlaceholderName = "Unknown"

// RecordStore is the part of the student store an import writes to
type RecordStore interface {
	CreateGroup(ctx context.Context, name string, createdAt time.Time) (*students.GroupModel, error)
	BulkCreateStudents(ctx context.Context, records []students.StudentModel) ([]students.StudentModel, []common.RecordValidationResult)
}

// Report is the outcome of one import. Row numbers in Skipped and Failed
// count data rows from 1 in file order.
type Report struct {
	GroupID uint                            `json:"group_id"`
	Format  string                          `json:"format,omitempty"`
	Total   int                             `json:"total"`
	Created []students.StudentModel         `json:"-"`
	Skipped []common.RecordValidationResult `json:"skipped,omitempty"`
	Failed  []common.RecordValidationResult `json:"failed,omitempty"`
}

// CreatedCount is the number of rows persisted
func (r *Report) CreatedCount() int { return len(r.Created) }

// Problems returns the skipped and failed rows ordered by row number
func (r *Report) Problems() []common.RecordValidationResult {
	out := make([]common.RecordValidationResult, 0, len(r.Skipped)+len(r.Failed))
	i, j := 0, 0
	for i < len(r.Skipped) || j < len(r.Failed) {
		if j >= len(r.Failed) || (i < len(r.Skipped) && r.Skipped[i].RowNumber < r.Failed[j].RowNumber) {
			out = append(out, r.Skipped[i])
			i++
		} else {
			out = append(out, r.Failed[j])
			j++
		}
	}
	return out
}

// Ingestor turns raw records into stored students
type Ingestor struct {
	store RecordStore

	// KeepUnmapped stores unclassified cells in StudentModel.Extra
	// under their raw header instead of dropping them.
	KeepUnmapped bool

	now func() time.Time
}

func NewIngestor(store RecordStore, keepUnmapped bool) *Ingestor {
	return &Ingestor{store: store, KeepUnmapped: keepUnmapped, now: time.Now}
}

// ImportBatch reads data as a file with the given extension and ingests it
// into a new group. Content problems are reported before anything is written.
func (in *Ingestor) ImportBatch(ctx context.Context, data []byte, ext, groupName string) (*Report, error) {
	if strings.TrimSpace(groupName) == "" {
		return nil, fmt.Errorf("%w: group name is required", common.ErrContent)
	}

	records, format, err := parsers.Read(data, ext)
	if err != nil {
		return nil, err
	}

	report, err := in.Ingest(ctx, records, groupName)
	if err != nil {
		return nil, err
	}
	report.Format = format
	return report, nil
}

// Ingest creates a group named groupName and stores one student per record.
// A record with neither a name nor a national id is skipped. A missing name
// gets PlaceholderName and a missing national id gets a generated temporary
// one. Store failures are reported per row and never stop the batch.
func (in *Ingestor) Ingest(ctx context.Context, records []parsers.Record, groupName string) (*Report, error) {
	groupName = strings.TrimSpace(groupName)
	if groupName == "" {
		return nil, fmt.Errorf("%w: group name is required", common.ErrContent)
	}

	group, err := in.store.CreateGroup(ctx, groupName, in.now())
	if err != nil {
		return nil, fmt.Errorf("failed to create group %q: %w", groupName, err)
	}

	report := &Report{GroupID: group.ID, Total: len(records)}

	var (
		candidates []students.StudentModel
		rowNumbers []int
	)
	for i, rec := range records {
		rowNum := i + 1
		mapping := fieldmap.MapAndReconcile(rec)

		if !mapping.Fields.Has(fieldmap.Name) && !mapping.Fields.Has(fieldmap.NationalID) {
			log.Printf("Skipping row %d: no name or national id", rowNum)
			result := common.RecordValidationResult{RowNumber: rowNum, Outcome: common.OutcomeSkipped}
			result.AddError("name", "Row has neither a name nor a national id")
			report.Skipped = append(report.Skipped, result)
			continue
		}

		candidates = append(candidates, in.buildStudent(mapping, group.ID))
		rowNumbers = append(rowNumbers, rowNum)
	}

	created, results := in.store.BulkCreateStudents(ctx, candidates)
	report.Created = created

	for _, result := range results {
		if result.RowNumber >= 1 && result.RowNumber <= len(rowNumbers) {
			result.RowNumber = rowNumbers[result.RowNumber-1]
		}
		switch result.Outcome {
		case common.OutcomeSkipped:
			report.Skipped = append(report.Skipped, result)
		case common.OutcomeFailed:
			report.Failed = append(report.Failed, result)
		}
	}

	log.Printf("Imported %d of %d rows into group %q (%d skipped, %d failed)",
		len(report.Created), report.Total, groupName, len(report.Skipped), len(report.Failed))
	return report, nil
}

func (in *Ingestor) buildStudent(mapping fieldmap.Mapping, groupID uint) students.StudentModel {
	var s students.StudentModel
	s.ApplyFields(mapping.Fields)

	if strings.TrimSpace(s.Name) == "" {
		s.Name = PlaceholderName
	}
	if strings.TrimSpace(s.NationalID) == "" {
		s.NationalID = "temp-" + uuid.New().String()
	}

	gid := groupID
	s.GroupID = &gid

	if in.KeepUnmapped && len(mapping.Unmapped) > 0 {
		s.Extra = make(map[string]interface{}, len(mapping.Unmapped))
		for header, value := range mapping.Unmapped {
			s.Extra[header] = value
		}
	}
	return s
}

package imports

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"student-records/common"
	"student-records/parsers"
	"student-records/students"
)

func newTestIngestor(t *testing.T, keepUnmapped bool) (*Ingestor, *students.Store) {
	t.Helper()
	db := common.OpenTestDB(t)
	require.NoError(t, students.AutoMigrate(db))
	store := students.NewStore(db)
	return NewIngestor(store, keepUnmapped), store
}

func TestImportBatch_PlaceholderName(t *testing.T) {
	in, store := newTestIngestor(t, false)
	ctx := context.Background()

	report, err := in.ImportBatch(ctx, []byte("name,national_id\nAhmed,123\n,456"), "csv", "batch-1")
	require.NoError(t, err)

	assert.Equal(t, parsers.FormatCSV, report.Format)
	assert.Equal(t, 2, report.Total)
	require.Equal(t, 2, report.CreatedCount())
	assert.Empty(t, report.Skipped)
	assert.Empty(t, report.Failed)

	ahmed, err := store.GetStudentByNationalID(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, "Ahmed", ahmed.Name)
	require.NotNil(t, ahmed.GroupID)
	assert.Equal(t, report.GroupID, *ahmed.GroupID)

	unknown, err := store.GetStudentByNationalID(ctx, "456")
	require.NoError(t, err)
	assert.Equal(t, PlaceholderName, unknown.Name)
}

func TestImportBatch_SkipsRowsWithoutIdentity(t *testing.T) {
	in, _ := newTestIngestor(t, false)

	data := "name,national_id,stage\nA,1,x\n,,y\n,,z\nB,2,w"
	report, err := in.ImportBatch(context.Background(), []byte(data), "csv", "batch")
	require.NoError(t, err)

	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 2, report.CreatedCount())
	require.Len(t, report.Skipped, 2)
	assert.Equal(t, 2, report.Skipped[0].RowNumber)
	assert.Equal(t, 3, report.Skipped[1].RowNumber)
	assert.Equal(t, common.OutcomeSkipped, report.Skipped[0].Outcome)
	assert.Empty(t, report.Failed)
}

func TestImportBatch_DuplicateNationalIDFailsRowOnly(t *testing.T) {
	in, store := newTestIngestor(t, false)
	ctx := context.Background()

	data := "name,national_id\n,\nA,1\nB,1\nC,2"
	// the first data row is blank and dropped by the reader
	report, err := in.ImportBatch(ctx, []byte(data), "csv", "batch")
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.CreatedCount())
	require.Len(t, report.Failed, 1)
	assert.Equal(t, 2, report.Failed[0].RowNumber)
	assert.Equal(t, common.OutcomeFailed, report.Failed[0].Outcome)

	all, err := store.ListStudents(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestImportBatch_ContentErrorsWriteNothing(t *testing.T) {
	in, store := newTestIngestor(t, false)
	ctx := context.Background()

	tests := []struct {
		name      string
		data      string
		ext       string
		groupName string
	}{
		{"header only", "name,national_id\n", "csv", "batch"},
		{"empty json array", "[]", "json", "batch"},
		{"garbage", "not a file", "bin", "batch"},
		{"missing group name", "name\nA", "csv", "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := in.ImportBatch(ctx, []byte(tt.data), tt.ext, tt.groupName)
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrContent))
		})
	}

	groups, err := store.ListGroups(ctx)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestImportBatch_ReconcilesArabicHeaders(t *testing.T) {
	in, store := newTestIngestor(t, false)
	ctx := context.Background()

	data := "الاسم,الرقم القومي,ولي الامر,المرحلة,الفصل\n" +
		"محمد حسن,30101011234567,12345,3,2/1\n"
	_, err := in.ImportBatch(ctx, []byte(data), "csv", "الصف الاول")
	require.NoError(t, err)

	s, err := store.GetStudentByNationalID(ctx, "30101011234567")
	require.NoError(t, err)
	assert.Equal(t, "محمد حسن", s.Name)
	assert.Equal(t, "12345", s.InsuranceNumber)
	assert.Empty(t, s.GuardianName)
	assert.Empty(t, s.Stage)
	assert.Equal(t, "2/1", s.ClassRoom)
}

func TestImportBatch_TemporaryNationalIDs(t *testing.T) {
	in, _ := newTestIngestor(t, false)

	report, err := in.ImportBatch(context.Background(), []byte(`[{"name":"A"},{"name":"B"}]`), "json", "batch")
	require.NoError(t, err)
	require.Len(t, report.Created, 2)

	first, second := report.Created[0].NationalID, report.Created[1].NationalID
	assert.True(t, strings.HasPrefix(first, "temp-"))
	assert.True(t, strings.HasPrefix(second, "temp-"))
	assert.NotEqual(t, first, second)
}

func TestImportBatch_KeepUnmapped(t *testing.T) {
	ctx := context.Background()

	in, store := newTestIngestor(t, true)
	_, err := in.ImportBatch(ctx, []byte("name,national_id,hobby\nA,1,chess"), "csv", "batch")
	require.NoError(t, err)

	s, err := store.GetStudentByNationalID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "chess", s.Extra["hobby"])

	dropping, store2 := newTestIngestor(t, false)
	_, err = dropping.ImportBatch(ctx, []byte("name,national_id,hobby\nA,1,chess"), "csv", "batch")
	require.NoError(t, err)

	s, err = store2.GetStudentByNationalID(ctx, "1")
	require.NoError(t, err)
	assert.Empty(t, s.Extra)
}

func TestImportBatch_XLSX(t *testing.T) {
	in, store := newTestIngestor(t, false)
	ctx := context.Background()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"اسم الطالب", "الرقم القومي", "IMEI"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"سارة", "29912121234567", "356938035643809"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	report, err := in.ImportBatch(ctx, buf.Bytes(), ".xlsx", "batch")
	require.NoError(t, err)
	assert.Equal(t, parsers.FormatXLSX, report.Format)
	assert.Equal(t, 1, report.CreatedCount())

	s, err := store.GetStudentByNationalID(ctx, "29912121234567")
	require.NoError(t, err)
	assert.Equal(t, "سارة", s.Name)
	assert.Equal(t, "356938035643809", s.IMEI)
}

type failingGroupStore struct {
	bulkCalls int
}

func (f *failingGroupStore) CreateGroup(ctx context.Context, name string, createdAt time.Time) (*students.GroupModel, error) {
	return nil, errors.New("database is locked")
}

func (f *failingGroupStore) BulkCreateStudents(ctx context.Context, records []students.StudentModel) ([]students.StudentModel, []common.RecordValidationResult) {
	f.bulkCalls++
	return nil, nil
}

func TestIngest_GroupFailureStopsBeforeRows(t *testing.T) {
	store := &failingGroupStore{}
	in := NewIngestor(store, false)

	rec := parsers.NewRecord()
	rec.Set("name", "A")

	_, err := in.Ingest(context.Background(), []parsers.Record{rec}, "batch")
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrContent))
	assert.Zero(t, store.bulkCalls)
}

func TestReport_Problems(t *testing.T) {
	r := &Report{
		Skipped: []common.RecordValidationResult{{RowNumber: 1}, {RowNumber: 4}},
		Failed:  []common.RecordValidationResult{{RowNumber: 2}, {RowNumber: 5}},
	}

	var rows []int
	for _, p := range r.Problems() {
		rows = append(rows, p.RowNumber)
	}
	assert.Equal(t, []int{1, 2, 4, 5}, rows)
}

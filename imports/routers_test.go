package imports

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"student-records/common"
	"student-records/students"
)

type testServer struct {
	router     *gin.Engine
	store      *students.Store
	uploadsDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := common.OpenTestDB(t)
	require.NoError(t, students.AutoMigrate(db))
	require.NoError(t, common.AutoMigrateJobs(db))

	store := students.NewStore(db)
	uploadsDir := t.TempDir()

	r := gin.New()
	NewHandler(db, NewIngestor(store, false), uploadsDir, 5).RegisterRoutes(r.Group("/api"))
	return &testServer{router: r, store: store, uploadsDir: uploadsDir}
}

func (s *testServer) upload(t *testing.T, path, fileName, content string, fields map[string]string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) getJob(t *testing.T, jobID string) GetImportResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/imports/"+jobID, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var job GetImportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	return job
}

func TestImportStudents_Multipart(t *testing.T) {
	s := newTestServer(t)

	csv := "name,national_id\nAhmed,123\n,456\n,\nB,123"
	w := s.upload(t, "/api/students/import", "students.csv", csv, map[string]string{"group_name": "Grade One"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp ImportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.NotEmpty(t, resp.JobID)
	assert.Equal(t, common.JobStatusCompleted, resp.Status)

	job := s.getJob(t, resp.JobID)
	assert.Equal(t, "Grade One", job.GroupName)
	assert.Equal(t, "csv", job.Format)
	assert.Equal(t, 3, job.TotalRecords)
	assert.Equal(t, 2, job.SuccessCount)
	assert.Equal(t, 1, job.FailCount)
	require.Len(t, job.Errors, 1)
	assert.Equal(t, 3, job.Errors[0].RowNumber)
	assert.NotNil(t, job.CompletedAt)

	archived, err := filepath.Glob(filepath.Join(s.uploadsDir, "grade-one_*.csv"))
	require.NoError(t, err)
	assert.Len(t, archived, 1)
}

func TestImportStudents_IdempotencyKey(t *testing.T) {
	s := newTestServer(t)
	headers := map[string]string{"Idempotency-Key": "upload-1"}
	fields := map[string]string{"group_name": "batch"}

	w := s.upload(t, "/api/students/import", "a.csv", "name,national_id\nA,1", fields, headers)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var first ImportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))

	w = s.upload(t, "/api/students/import", "a.csv", "name,national_id\nA,1", fields, headers)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var second ImportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))

	assert.Equal(t, first.JobID, second.JobID)
	assert.Equal(t, 1, second.Count)

	groups, err := s.store.ListGroups(context.Background())
	require.NoError(t, err)
	assert.Len(t, groups, 1)
}

func TestImportStudents_BadRequests(t *testing.T) {
	s := newTestServer(t)

	w := s.upload(t, "/api/students/import", "a.csv", "name,national_id\n", map[string]string{"group_name": "batch"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var failed struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &failed))
	job := s.getJob(t, failed.JobID)
	assert.Equal(t, common.JobStatusFailed, job.Status)
	require.Len(t, job.Errors, 1)
	assert.Equal(t, common.OutcomeFailed, job.Errors[0].Outcome)
	require.Len(t, job.Errors[0].Errors, 1)
	assert.Equal(t, "file", job.Errors[0].Errors[0].Field)

	w = s.upload(t, "/api/students/import", "a.csv", "name\nA", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.upload(t, "/api/students/import", "", "", map[string]string{"group_name": "batch"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	all, err := s.store.ListStudents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	groups, err := s.store.ListGroups(context.Background())
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestImportStudents_JSONBody(t *testing.T) {
	s := newTestServer(t)

	body := `{"groupName":"batch","students":[{"الاسم":"منى","الرقم القومي":"30202021234567"},{"ملاحظات":"x"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/students/import", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp ImportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)

	job := s.getJob(t, resp.JobID)
	assert.Equal(t, "json", job.Format)
	assert.Equal(t, 1, job.SkipCount)
}

func TestPreviewImport(t *testing.T) {
	s := newTestServer(t)

	csv := "الاسم;الرقم القومي;هواية\nA;1;x\nB;2;y"
	w := s.upload(t, "/api/imports/preview", "a.csv", csv, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result PreviewResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 2, result.TotalRows)
	require.Len(t, result.Columns, 3)
	assert.Equal(t, "name", string(result.Columns[0].Field))
	assert.Equal(t, "nationalId", string(result.Columns[1].Field))
	assert.Equal(t, "الرقمالقومي", result.Columns[1].Key)
	assert.Empty(t, result.Columns[2].Field)
	assert.Len(t, result.Rows, 2)

	all, err := s.store.ListStudents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGetImport_NotFound(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/imports/missing", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

package imports

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"student-records/common"
	"student-records/parsers"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// ImportRequest is the JSON form of an import: rows already parsed by the client
type ImportRequest struct {
	Students  json.RawMessage `json:"students" binding:"required"`
	GroupName string          `json:"groupName"`
}

// ImportResponse is returned by a successful import
type ImportResponse struct {
	Count   int    `json:"count"`
	JobID   string `json:"job_id"`
	GroupID uint   `json:"group_id"`
	Status  string `json:"status"`
}

// GetImportResponse represents an import job and its per-row report
type GetImportResponse struct {
	JobID        string                          `json:"job_id"`
	GroupID      uint                            `json:"group_id"`
	GroupName    string                          `json:"group_name"`
	Format       string                          `json:"format"`
	Status       string                          `json:"status"`
	TotalRecords int                             `json:"total_records"`
	SuccessCount int                             `json:"success_count"`
	SkipCount    int                             `json:"skip_count"`
	FailCount    int                             `json:"fail_count"`
	Errors       []common.RecordValidationResult `json:"errors,omitempty"`
	CreatedAt    string                          `json:"created_at"`
	UpdatedAt    string                          `json:"updated_at"`
	CompletedAt  *string                         `json:"completed_at,omitempty"`
}

// Handler serves the import endpoints
type Handler struct {
	db          *gorm.DB
	ingestor    *Ingestor
	uploadsDir  string
	maxUploadMB int64
}

func NewHandler(db *gorm.DB, ingestor *Ingestor, uploadsDir string, maxUploadMB int64) *Handler {
	if maxUploadMB <= 0 {
		maxUploadMB = 20
	}
	return &Handler{db: db, ingestor: ingestor, uploadsDir: uploadsDir, maxUploadMB: maxUploadMB}
}

// RegisterRoutes mounts the import endpoints under rg (usually /api)
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/students/import", h.ImportStudents)
	rg.POST("/imports/preview", h.PreviewImport)
	rg.GET("/imports/:job_id", h.GetImport)
}

// upload is an import payload after it has been read off the request
type upload struct {
	data      []byte
	ext       string
	groupName string
	multipart bool
	filePath  string
}

// readUpload accepts either a multipart file upload or a JSON body
func (h *Handler) readUpload(c *gin.Context) (*upload, int, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadMB<<20)

	if !strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data") {
		var req ImportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, http.StatusBadRequest, err
		}
		return &upload{data: req.Students, ext: parsers.FormatJSON, groupName: req.GroupName}, 0, nil
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		return nil, http.StatusBadRequest, errors.New("file is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("failed to read file: %w", err)
	}

	u := &upload{
		data:      data,
		ext:       filepath.Ext(header.Filename),
		groupName: c.PostForm("group_name"),
		multipart: true,
	}
	if u.groupName == "" {
		u.groupName = c.PostForm("groupName")
	}
	return u, 0, nil
}

// archive stores the uploaded bytes so a job can be traced back to its file
func (h *Handler) archive(u *upload) error {
	if err := os.MkdirAll(h.uploadsDir, 0755); err != nil {
		return err
	}

	name := slug.Make(u.groupName)
	if name == "" {
		name = "import"
	}
	fileName := fmt.Sprintf("%s_%s_%s%s", name, time.Now().Format("20060102_150405"), uuid.New().String()[:8], u.ext)
	u.filePath = filepath.Join(h.uploadsDir, fileName)

	return os.WriteFile(u.filePath, u.data, 0644)
}

// ImportStudents godoc
// @Summary Import students into a new group
// @Description Reads a CSV, JSON, NDJSON or XLSX file (or a JSON body of rows), maps its columns onto student fields and stores one student per row. The run is recorded as an import job. A repeated Idempotency-Key returns the earlier job untouched.
// @Tags imports
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Key that makes a retried upload return the first job"
// @Param file formData file false "File to import"
// @Param group_name formData string false "Name of the group to create"
// @Param body body ImportRequest false "Rows already parsed by the client"
// @Success 201 {object} ImportResponse "Import finished"
// @Success 200 {object} ImportResponse "Existing job returned (idempotency)"
// @Failure 400 {object} map[string]string "Unreadable file or missing group name"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /students/import [post]
func (h *Handler) ImportStudents(c *gin.Context) {
	var idempotencyKey *string
	if key := strings.TrimSpace(c.GetHeader("Idempotency-Key")); key != "" {
		idempotencyKey = &key

		var existing common.ImportJob
		if err := h.db.Where("idempotency_key = ?", key).First(&existing).Error; err == nil {
			c.JSON(http.StatusOK, ImportResponse{
				Count:   existing.SuccessCount,
				JobID:   existing.ID,
				GroupID: existing.GroupID,
				Status:  existing.Status,
			})
			return
		}
	}

	u, status, err := h.readUpload(c)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(u.groupName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group_name is required"})
		return
	}

	if u.multipart {
		if err := h.archive(u); err != nil {
			log.Println("Failed to archive upload:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
			return
		}
	}

	now := time.Now()
	job := common.ImportJob{
		ID:             uuid.New().String(),
		IdempotencyKey: idempotencyKey,
		GroupName:      u.groupName,
		Format:         strings.TrimPrefix(strings.ToLower(u.ext), "."),
		Status:         common.JobStatusProcessing,
		FilePath:       u.filePath,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.db.Create(&job).Error; err != nil {
		log.Println("Failed to create import job:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create import job"})
		return
	}

	report, importErr := h.ingestor.ImportBatch(c.Request.Context(), u.data, u.ext, u.groupName)
	finishJob(&job, report, importErr)
	if err := h.db.Save(&job).Error; err != nil {
		log.Printf("Failed to update import job %s: %v", job.ID, err)
	}

	if importErr != nil {
		if errors.Is(importErr, common.ErrContent) {
			c.JSON(http.StatusBadRequest, gin.H{"error": importErr.Error(), "job_id": job.ID})
			return
		}
		log.Println("Import failed:", importErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Import failed", "job_id": job.ID})
		return
	}

	c.Set("rows_processed", report.Total)
	c.JSON(http.StatusCreated, ImportResponse{
		Count:   report.CreatedCount(),
		JobID:   job.ID,
		GroupID: report.GroupID,
		Status:  job.Status,
	})
}

// finishJob copies the import outcome onto job
func finishJob(job *common.ImportJob, report *Report, importErr error) {
	now := time.Now()
	job.CompletedAt = &now
	job.UpdatedAt = now

	var problems []common.RecordValidationResult
	if importErr != nil {
		job.Status = common.JobStatusFailed
		problem := common.RecordValidationResult{Outcome: common.OutcomeFailed}
		problem.AddError("file", importErr.Error())
		problems = append(problems, problem)
	} else {
		job.Status = common.JobStatusCompleted
		job.GroupID = report.GroupID
		job.Format = report.Format
		job.TotalRecords = report.Total
		job.SuccessCount = report.CreatedCount()
		job.SkipCount = len(report.Skipped)
		job.FailCount = len(report.Failed)
		problems = report.Problems()
	}

	errorsJSON, err := common.ResultsToJSON(problems)
	if err != nil {
		log.Printf("Failed to encode errors for import job %s: %v", job.ID, err)
		return
	}
	job.Errors = errorsJSON
}

// PreviewImport godoc
// @Summary Preview an import
// @Description Parses a file and shows how each header would be mapped, plus the first rows. Nothing is stored.
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to preview"
// @Success 200 {object} PreviewResult
// @Failure 400 {object} map[string]string "Unreadable file"
// @Router /imports/preview [post]
func (h *Handler) PreviewImport(c *gin.Context) {
	u, status, err := h.readUpload(c)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	result, err := Preview(u.data, u.ext, DefaultPreviewRows)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Set("rows_processed", result.TotalRows)
	c.JSON(http.StatusOK, result)
}

// GetImport godoc
// @Summary Get import job status
// @Description Retrieves the counts and the per-row skip and failure report of an import job
// @Tags imports
// @Produce json
// @Param job_id path string true "Import Job ID"
// @Success 200 {object} GetImportResponse "Import job details"
// @Failure 404 {object} map[string]string "Job not found"
// @Router /imports/{job_id} [get]
func (h *Handler) GetImport(c *gin.Context) {
	var job common.ImportJob
	if err := h.db.Where("id = ?", c.Param("job_id")).First(&job).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Import job not found"})
		return
	}

	c.Set("rows_processed", job.TotalRecords)

	response := GetImportResponse{
		JobID:        job.ID,
		GroupID:      job.GroupID,
		GroupName:    job.GroupName,
		Format:       job.Format,
		Status:       job.Status,
		TotalRecords: job.TotalRecords,
		SuccessCount: job.SuccessCount,
		SkipCount:    job.SkipCount,
		FailCount:    job.FailCount,
		CreatedAt:    job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    job.UpdatedAt.Format(time.RFC3339),
	}

	if job.CompletedAt != nil {
		completedStr := job.CompletedAt.Format(time.RFC3339)
		response.CompletedAt = &completedStr
	}

	if job.Errors != "" {
		var errs []common.RecordValidationResult
		if err := json.Unmarshal([]byte(job.Errors), &errs); err == nil {
			response.Errors = errs
		}
	}

	c.JSON(http.StatusOK, response)
}

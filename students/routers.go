package students

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Handler serves the student, group and transfer request endpoints
type Handler struct {
	store *Store
}

// NewHandler creates a handler backed by store
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the endpoints under rg (usually /api)
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	students := rg.Group("/students")
	students.GET("", h.ListStudents)
	students.GET("/search", h.SearchStudents)
	students.GET("/:id", h.GetStudent)
	students.POST("", h.CreateStudent)
	students.PATCH("/:id", h.UpdateStudent)
	students.DELETE("/:id", h.DeleteStudent)
	students.GET("/:id/transfer-requests", h.ListTransferRequests)

	rg.POST("/transfer-requests", h.CreateTransferRequest)

	rg.GET("/groups", h.ListGroups)
	rg.DELETE("/groups/:id", h.DeleteGroup)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

// ListStudents godoc
// @Summary List students
// @Description Returns every student ordered by name
// @Tags students
// @Produce json
// @Success 200 {array} StudentModel
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /students [get]
func (h *Handler) ListStudents(c *gin.Context) {
	students, err := h.store.ListStudents(c.Request.Context())
	if err != nil {
		log.Println("Error fetching students:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching students"})
		return
	}
	c.JSON(http.StatusOK, students)
}

// SearchStudents godoc
// @Summary Search students
// @Description Case-insensitive substring search on the national id (default) or the name. An empty query returns every student.
// @Tags students
// @Produce json
// @Param q query string false "Search text"
// @Param type query string false "nationalId or name"
// @Success 200 {array} StudentModel
// @Failure 400 {object} map[string]string "Unknown search type"
// @Router /students/search [get]
func (h *Handler) SearchStudents(c *gin.Context) {
	searchType := c.DefaultQuery("type", SearchByNationalID)
	if searchType != SearchByNationalID && searchType != SearchByName {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be nationalId or name"})
		return
	}

	students, err := h.store.SearchStudents(c.Request.Context(), c.Query("q"), searchType)
	if err != nil {
		log.Println("Error searching students:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error searching students"})
		return
	}
	c.JSON(http.StatusOK, students)
}

// GetStudent godoc
// @Summary Get a student
// @Tags students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} StudentModel
// @Failure 404 {object} map[string]string "Student not found"
// @Router /students/{id} [get]
func (h *Handler) GetStudent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	student, err := h.store.GetStudent(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	if err != nil {
		log.Println("Error fetching student:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching student"})
		return
	}
	c.JSON(http.StatusOK, student)
}

// CreateStudent godoc
// @Summary Create a student
// @Description Stores a student entered by hand. Name and national id are required; the national id must be unique.
// @Tags students
// @Accept json
// @Produce json
// @Param student body StudentModel true "Student"
// @Success 201 {object} StudentModel
// @Failure 400 {object} map[string]string "Invalid data"
// @Failure 409 {object} map[string]string "National ID already exists"
// @Router /students [post]
func (h *Handler) CreateStudent(c *gin.Context) {
	var student StudentModel
	if err := c.ShouldBindJSON(&student); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	student.ID = 0

	if result := ValidateStudent(&student, 0); !result.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data", "errors": result.Errors})
		return
	}

	if _, err := h.store.GetStudentByNationalID(c.Request.Context(), student.NationalID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "National ID already exists"})
		return
	}

	if err := h.store.CreateStudent(c.Request.Context(), &student); err != nil {
		log.Println("Error creating student:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating student"})
		return
	}
	c.JSON(http.StatusCreated, student)
}

// UpdateStudent godoc
// @Summary Update a student
// @Description Applies a partial update. Unknown fields are rejected; name and national id cannot be cleared.
// @Tags students
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} StudentModel
// @Failure 400 {object} map[string]string "Invalid data"
// @Failure 404 {object} map[string]string "Student not found"
// @Router /students/{id} [patch]
func (h *Handler) UpdateStudent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates, result := NormalizeStudentUpdate(payload)
	if !result.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data", "errors": result.Errors})
		return
	}

	student, err := h.store.UpdateStudent(c.Request.Context(), id, updates)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	if err != nil {
		log.Println("Error updating student:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating student"})
		return
	}
	c.JSON(http.StatusOK, student)
}

// DeleteStudent godoc
// @Summary Delete a student
// @Description Removes a student and its transfer requests
// @Tags students
// @Param id path int true "Student ID"
// @Success 204
// @Failure 404 {object} map[string]string "Student not found"
// @Router /students/{id} [delete]
func (h *Handler) DeleteStudent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	err := h.store.DeleteStudent(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	if err != nil {
		log.Println("Error deleting student:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting student"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ListTransferRequests godoc
// @Summary List a student's transfer requests
// @Tags transfers
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {array} TransferRequestModel
// @Router /students/{id}/transfer-requests [get]
func (h *Handler) ListTransferRequests(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	requests, err := h.store.ListTransferRequests(c.Request.Context(), id)
	if err != nil {
		log.Println("Error fetching transfer requests:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching transfer requests"})
		return
	}
	c.JSON(http.StatusOK, requests)
}

// CreateTransferRequest godoc
// @Summary Create a transfer request
// @Description Records a transfer request for an existing student. Status defaults to pending.
// @Tags transfers
// @Accept json
// @Produce json
// @Param request body TransferRequestModel true "Transfer request"
// @Success 201 {object} TransferRequestModel
// @Failure 400 {object} map[string]string "Invalid data"
// @Failure 404 {object} map[string]string "Student not found"
// @Router /transfer-requests [post]
func (h *Handler) CreateTransferRequest(c *gin.Context) {
	var req TransferRequestModel
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.ID = 0

	if result := ValidateTransferRequest(&req); !result.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data", "errors": result.Errors})
		return
	}

	err := h.store.CreateTransferRequest(c.Request.Context(), &req)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	if err != nil {
		log.Println("Error creating transfer request:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating transfer request"})
		return
	}
	c.JSON(http.StatusCreated, req)
}

// ListGroups godoc
// @Summary List import groups
// @Description Returns all groups, newest first, with their student counts
// @Tags groups
// @Produce json
// @Success 200 {array} GroupModel
// @Router /groups [get]
func (h *Handler) ListGroups(c *gin.Context) {
	groups, err := h.store.ListGroups(c.Request.Context())
	if err != nil {
		log.Println("Error fetching groups:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching groups"})
		return
	}
	c.JSON(http.StatusOK, groups)
}

// DeleteGroup godoc
// @Summary Delete a group
// @Description Removes the transfer requests of the group's students, then the students, then the group, in one transaction
// @Tags groups
// @Param id path int true "Group ID"
// @Success 204
// @Failure 404 {object} map[string]string "Group not found"
// @Failure 500 {object} map[string]string "Group deletion failed"
// @Router /groups/{id} [delete]
func (h *Handler) DeleteGroup(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	err := h.store.DeleteGroup(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting group"})
		return
	}
	c.Status(http.StatusNoContent)
}

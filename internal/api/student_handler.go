package api

import (
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/report"
	"alcyxob/trainer-app/internal/repository"
	"alcyxob/trainer-app/internal/service"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// maxImportSize bounds uploaded student spreadsheets.
	maxImportSize = 5 << 20
	// maxImportBody leaves room for multipart headers around the spreadsheet.
	maxImportBody = maxImportSize + 64<<10
)

type StudentHandler struct {
	studentService service.StudentService
}

func NewStudentHandler(studentService service.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

// --- DTOs ---

type StudentRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birthDate"` // YYYY-MM-DD
	Goal      string `json:"goal"`
	Notes     string `json:"notes"`
}

type StudentResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	Goal      string     `json:"goal,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type ImportResponse struct {
	Created []StudentResponse    `json:"created"`
	Skipped []service.ImportSkip `json:"skipped"`
}

func (r *StudentRequest) toInput() (service.StudentInput, error) {
	birthDate, err := parseDate("birthDate", r.BirthDate)
	if err != nil {
		return service.StudentInput{}, err
	}
	return service.StudentInput{
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		BirthDate: birthDate,
		Goal:      r.Goal,
		Notes:     r.Notes,
	}, nil
}

// --- Handler Methods ---

// ListStudents godoc
// @Summary List the trainer's students
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Page size (max 100)"
// @Param search query string false "Name or email contains"
// @Param includeInactive query bool false "Include deactivated students"
// @Success 200 {object} ListResponse[StudentResponse]
// @Router /students [get]
func (h *StudentHandler) ListStudents(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	page, err := parsePage(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	includeInactive, err := queryBool(c, "includeInactive")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	students, total, err := h.studentService.List(c.Request.Context(), id, repository.StudentFilter{
		Search:          c.Query("search"),
		IncludeInactive: includeInactive,
		Page:            page,
	})
	if err != nil {
		respondError(c, err, "list students")
		return
	}
	c.JSON(http.StatusOK, newListResponse(MapStudentsToResponse(students), total, page))
}

// CreateStudent godoc
// @Summary Add a student
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param student body StudentRequest true "Student details"
// @Success 201 {object} StudentResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Router /students [post]
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	var req StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	in, err := req.toInput()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	student, err := h.studentService.Create(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err, "create student")
		return
	}
	c.JSON(http.StatusCreated, MapStudentToResponse(student))
}

// GetStudent godoc
// @Summary Get a student
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} StudentResponse
// @Failure 404 {object} gin.H "Student not found"
// @Router /students/{id} [get]
func (h *StudentHandler) GetStudent(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	student, err := h.studentService.Get(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondError(c, err, "load student")
		return
	}
	c.JSON(http.StatusOK, MapStudentToResponse(student))
}

// UpdateStudent godoc
// @Summary Update a student
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param student body StudentRequest true "Student details"
// @Success 200 {object} StudentResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Student not found"
// @Router /students/{id} [put]
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	var req StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	in, err := req.toInput()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	student, err := h.studentService.Update(c.Request.Context(), id, c.Param("id"), in)
	if err != nil {
		respondError(c, err, "update student")
		return
	}
	c.JSON(http.StatusOK, MapStudentToResponse(student))
}

// DeleteStudent godoc
// @Summary Deactivate a student
// @Description Soft delete; the student can be restored.
// @Tags Students
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 204
// @Failure 404 {object} gin.H "Student not found"
// @Router /students/{id} [delete]
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	if err := h.studentService.Deactivate(c.Request.Context(), id, c.Param("id")); err != nil {
		respondError(c, err, "delete student")
		return
	}
	c.Status(http.StatusNoContent)
}

// RestoreStudent godoc
// @Summary Reactivate a student
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} StudentResponse
// @Failure 404 {object} gin.H "Student not found"
// @Router /students/{id}/restore [post]
func (h *StudentHandler) RestoreStudent(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	student, err := h.studentService.Restore(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondError(c, err, "restore student")
		return
	}
	c.JSON(http.StatusOK, MapStudentToResponse(student))
}

// ImportStudents godoc
// @Summary Import students from a spreadsheet
// @Description Multipart upload of an .xlsx file whose first sheet has a header row
// @Description (name, email, phone, goal, notes). Duplicate emails are skipped.
// @Tags Students
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Spreadsheet"
// @Success 200 {object} ImportResponse
// @Failure 400 {object} gin.H "Missing or unreadable file"
// @Failure 413 {object} gin.H "Spreadsheet is too large"
// @Router /students/import [post]
func (h *StudentHandler) ImportStudents(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	if c.Request.ContentLength > maxImportBody {
		abortWithError(c, http.StatusRequestEntityTooLarge, "Spreadsheet is too large.")
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBody)
	header, err := c.FormFile("file")
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		abortWithError(c, http.StatusRequestEntityTooLarge, "Spreadsheet is too large.")
		return
	case err != nil:
		abortWithError(c, http.StatusBadRequest, "A spreadsheet must be uploaded in the 'file' field.")
		return
	}
	if header.Size > maxImportSize {
		abortWithError(c, http.StatusRequestEntityTooLarge, "Spreadsheet is too large.")
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, err, "read upload")
		return
	}
	defer file.Close()

	rows, err := report.ReadStudents(file)
	if err != nil {
		msg := "Could not read spreadsheet: " + err.Error()
		if errors.Is(err, report.ErrNoSheet) {
			msg = err.Error()
		}
		abortWithError(c, http.StatusBadRequest, msg)
		return
	}

	result, err := h.studentService.Import(c.Request.Context(), id, rows)
	if err != nil {
		respondError(c, err, "import students")
		return
	}
	c.JSON(http.StatusOK, ImportResponse{
		Created: MapStudentsToResponse(result.Created),
		Skipped: result.Skipped,
	})
}

// MapStudentToResponse converts a domain Student to its DTO.
func MapStudentToResponse(s *domain.Student) StudentResponse {
	return StudentResponse{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		Phone:     s.Phone,
		BirthDate: s.BirthDate,
		Goal:      s.Goal,
		Notes:     s.Notes,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func MapStudentsToResponse(students []domain.Student) []StudentResponse {
	out := make([]StudentResponse, len(students))
	for i := range students {
		out[i] = MapStudentToResponse(&students[i])
	}
	return out
}

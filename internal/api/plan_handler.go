package api

import (
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/repository"
	"alcyxob/trainer-app/internal/service"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	planService service.PlanService
}

func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// --- DTOs ---

type PlanRequest struct {
	StudentID   *string `json:"studentId"`
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Goal        string  `json:"goal"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate"`
}

type DuplicatePlanRequest struct {
	StudentID *string `json:"studentId"`
}

type DayRequest struct {
	Title    string `json:"title" binding:"required"`
	Position *int   `json:"position"`
	Weekday  *int   `json:"weekday"` // 1 (Mon) - 7 (Sun)
	Notes    string `json:"notes"`
}

type BlockRequest struct {
	Title    string `json:"title" binding:"required"`
	Kind     string `json:"kind"`
	Position *int   `json:"position"`
	Notes    string `json:"notes"`
}

type ItemRequest struct {
	Exercise string `json:"exercise" binding:"required"`
	Sets     *int   `json:"sets"`
	Reps     string `json:"reps"`
	Load     string `json:"load"`
	Rest     string `json:"rest"`
	Tempo    string `json:"tempo"`
	Duration string `json:"duration"`
	VideoURL string `json:"videoUrl"`
	Notes    string `json:"notes"`
	Position *int   `json:"position"`
}

type PlanResponse struct {
	ID          string     `json:"id"`
	StudentID   *string    `json:"studentId,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Goal        string     `json:"goal,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	IsActive    bool       `json:"isActive"`
	Shared      bool       `json:"shared"`
	SharedAt    *time.Time `json:"sharedAt,omitempty"`
	Progress    int        `json:"progress"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// PlanDetailResponse is a plan with its whole tree.
type PlanDetailResponse struct {
	PlanResponse
	Days []DayResponse `json:"days"`
}

type DayResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Position    int             `json:"position"`
	Weekday     *int            `json:"weekday,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Completed   bool            `json:"completed"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	Blocks      []BlockResponse `json:"blocks,omitempty"`
}

type BlockResponse struct {
	ID       string         `json:"id"`
	DayID    string         `json:"dayId"`
	Title    string         `json:"title"`
	Kind     string         `json:"kind,omitempty"`
	Position int            `json:"position"`
	Notes    string         `json:"notes,omitempty"`
	Items    []ItemResponse `json:"items,omitempty"`
}

type ItemResponse struct {
	ID       string `json:"id"`
	BlockID  string `json:"blockId"`
	Exercise string `json:"exercise"`
	Sets     *int   `json:"sets,omitempty"`
	Reps     string `json:"reps,omitempty"`
	Load     string `json:"load,omitempty"`
	Rest     string `json:"rest,omitempty"`
	Tempo    string `json:"tempo,omitempty"`
	Duration string `json:"duration,omitempty"`
	VideoURL string `json:"videoUrl,omitempty"`
	Notes    string `json:"notes,omitempty"`
	Position int    `json:"position"`
}

func (r *PlanRequest) toInput() (service.PlanInput, error) {
	start, err := parseDate("startDate", r.StartDate)
	if err != nil {
		return service.PlanInput{}, err
	}
	end, err := parseDate("endDate", r.EndDate)
	if err != nil {
		return service.PlanInput{}, err
	}
	return service.PlanInput{
		StudentID:   r.StudentID,
		Name:        r.Name,
		Description: r.Description,
		Goal:        r.Goal,
		StartDate:   start,
		EndDate:     end,
	}, nil
}

func (r *ItemRequest) toInput() service.ItemInput {
	return service.ItemInput{
		Exercise: r.Exercise,
		Sets:     r.Sets,
		Reps:     r.Reps,
		Load:     r.Load,
		Rest:     r.Rest,
		Tempo:    r.Tempo,
		Duration: r.Duration,
		VideoURL: r.VideoURL,
		Notes:    r.Notes,
		Position: r.Position,
	}
}

// --- Plans ---

// ListPlans godoc
// @Summary List the trainer's plans with their progress
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Page size (max 100)"
// @Param studentId query string false "Only plans of this student"
// @Param search query string false "Name contains"
// @Param includeInactive query bool false "Include deactivated plans"
// @Success 200 {object} ListResponse[PlanResponse]
// @Router /plans [get]
func (h *PlanHandler) ListPlans(c *gin.Context) {
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

	plans, total, err := h.planService.List(c.Request.Context(), id, repository.PlanFilter{
		StudentID:       c.Query("studentId"),
		Search:          c.Query("search"),
		IncludeInactive: includeInactive,
		Page:            page,
	})
	if err != nil {
		respondError(c, err, "list plans")
		return
	}
	out := make([]PlanResponse, len(plans))
	for i := range plans {
		out[i] = MapPlanToResponse(&plans[i].Plan, plans[i].Progress)
	}
	c.JSON(http.StatusOK, newListResponse(out, total, page))
}

// CreatePlan godoc
// @Summary Create a plan
// @Description studentId is optional; a plan without one is a template.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param plan body PlanRequest true "Plan details"
// @Success 201 {object} PlanResponse
// @Failure 400 {object} gin.H "Invalid input or unknown student"
// @Router /plans [post]
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	in, err := req.toInput()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	plan, err := h.planService.Create(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err, "create plan")
		return
	}
	c.JSON(http.StatusCreated, MapPlanToResponse(plan, 0))
}

// GetPlan godoc
// @Summary Get a plan with its days, blocks and exercises
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 200 {object} PlanDetailResponse
// @Failure 404 {object} gin.H "Plan not found"
// @Router /plans/{id} [get]
func (h *PlanHandler) GetPlan(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	tree, err := h.planService.Get(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondError(c, err, "load plan")
		return
	}
	c.JSON(http.StatusOK, MapPlanTreeToResponse(tree))
}

// UpdatePlan godoc
// @Summary Update a plan's header
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param plan body PlanRequest true "Plan details"
// @Success 200 {object} PlanResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Plan not found"
// @Router /plans/{id} [put]
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	in, err := req.toInput()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.planService.Update(c.Request.Context(), id, c.Param("id"), in); err != nil {
		respondError(c, err, "update plan")
		return
	}
	h.respondPlan(c, id, c.Param("id"), http.StatusOK)
}

// DeletePlan godoc
// @Summary Deactivate a plan
// @Description Soft delete; its public link stops working until the plan is restored.
// @Tags Plans
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 204
// @Failure 404 {object} gin.H "Plan not found"
// @Router /plans/{id} [delete]
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	if err := h.planService.Deactivate(c.Request.Context(), id, c.Param("id")); err != nil {
		respondError(c, err, "delete plan")
		return
	}
	c.Status(http.StatusNoContent)
}

// RestorePlan godoc
// @Summary Reactivate a plan
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 200 {object} PlanResponse
// @Router /plans/{id}/restore [post]
func (h *PlanHandler) RestorePlan(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	if _, err := h.planService.Restore(c.Request.Context(), id, c.Param("id")); err != nil {
		respondError(c, err, "restore plan")
		return
	}
	h.respondPlan(c, id, c.Param("id"), http.StatusOK)
}

// DuplicatePlan godoc
// @Summary Copy a plan with its whole tree
// @Description The copy is unshared, has no completed days and optionally targets another student.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param request body DuplicatePlanRequest false "Target student"
// @Success 201 {object} PlanDetailResponse
// @Router /plans/{id}/duplicate [post]
func (h *PlanHandler) DuplicatePlan(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	var req DuplicatePlanRequest
	// The body is optional.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	tree, err := h.planService.Duplicate(c.Request.Context(), id, c.Param("id"), req.StudentID)
	if err != nil {
		respondError(c, err, "duplicate plan")
		return
	}
	c.JSON(http.StatusCreated, MapPlanTreeToResponse(tree))
}

// respondPlan answers with the plan header and its current progress.
func (h *PlanHandler) respondPlan(c *gin.Context, trainerID, planID string, status int) {
	tree, err := h.planService.Get(c.Request.Context(), trainerID, planID)
	if err != nil {
		respondError(c, err, "load plan")
		return
	}
	c.JSON(status, MapPlanToResponse(&tree.Plan, tree.Progress()))
}

// --- Days ---

// AddDay godoc
// @Summary Add a day to a plan
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param day body DayRequest true "Day"
// @Success 201 {object} DayResponse
// @Router /plans/{id}/days [post]
func (h *PlanHandler) AddDay(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	var req DayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	day, err := h.planService.AddDay(c.Request.Context(), id, c.Param("id"), service.DayInput(req))
	if err != nil {
		respondError(c, err, "add day")
		return
	}
	c.JSON(http.StatusCreated, MapDayToResponse(day))
}

// UpdateDay godoc
// @Summary Update a plan day
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param dayId path string true "Day ID"
// @Param day body DayRequest true "Day"
// @Success 200 {object} DayResponse
// @Router /plans/{id}/days/{dayId} [put]
func (h *PlanHandler) UpdateDay(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	var req DayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	day, err := h.planService.UpdateDay(c.Request.Context(), id, c.Param("id"), c.Param("dayId"), service.DayInput(req))
	if err != nil {
		respondError(c, err, "update day")
		return
	}
	c.JSON(http.StatusOK, MapDayToResponse(day))
}

// DeleteDay godoc
// @Summary Delete a plan day with its blocks and exercises
// @Tags Plans
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param dayId path string true "Day ID"
// @Success 204
// @Router /plans/{id}/days/{dayId} [delete]
func (h *PlanHandler) DeleteDay(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	if err := h.planService.DeleteDay(c.Request.Context(), id, c.Param("id"), c.Param("dayId")); err != nil {
		respondError(c, err, "delete day")
		return
	}
	c.Status(http.StatusNoContent)
}

// CompleteDay godoc
// @Summary Mark a day as completed (POST) or not completed (DELETE)
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param dayId path string true "Day ID"
// @Success 200 {object} DayResponse
// @Router /plans/{id}/days/{dayId}/complete [post]
// @Router /plans/{id}/days/{dayId}/complete [delete]
func (h *PlanHandler) CompleteDay(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	completed := c.Request.Method != http.MethodDelete
	day, err := h.planService.SetDayCompleted(c.Request.Context(), id, c.Param("id"), c.Param("dayId"), completed)
	if err != nil {
		respondError(c, err, "update day")
		return
	}
	c.JSON(http.StatusOK, MapDayToResponse(day))
}

// --- Blocks ---

// AddBlock godoc
// @Summary Add a block to a day
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param dayId path string true "Day ID"
// @Param block body BlockRequest true "Block"
// @Success 201 {object} BlockResponse
// @Router /plans/{id}/days/{dayId}/blocks [post]
func (h *PlanHandler) AddBlock(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	var req BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	block, err := h.planService.AddBlock(c.Request.Context(), id, c.Param("id"), c.Param("dayId"), service.BlockInput(req))
	if err != nil {
		respondError(c, err, "add block")
		return
	}
	c.JSON(http.StatusCreated, MapBlockToResponse(block))
}

// UpdateBlock godoc
// @Summary Update a block
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param blockId path string true "Block ID"
// @Param block body BlockRequest true "Block"
// @Success 200 {object} BlockResponse
// @Router /plans/{id}/blocks/{blockId} [put]
func (h *PlanHandler) UpdateBlock(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	var req BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	block, err := h.planService.UpdateBlock(c.Request.Context(), id, c.Param("id"), c.Param("blockId"), service.BlockInput(req))
	if err != nil {
		respondError(c, err, "update block")
		return
	}
	c.JSON(http.StatusOK, MapBlockToResponse(block))
}

// DeleteBlock godoc
// @Summary Delete a block with its exercises
// @Tags Plans
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param blockId path string true "Block ID"
// @Success 204
// @Router /plans/{id}/blocks/{blockId} [delete]
func (h *PlanHandler) DeleteBlock(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	if err := h.planService.DeleteBlock(c.Request.Context(), id, c.Param("id"), c.Param("blockId")); err != nil {
		respondError(c, err, "delete block")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Items ---

// AddItem godoc
// @Summary Add an exercise to a block
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param blockId path string true "Block ID"
// @Param item body ItemRequest true "Exercise"
// @Success 201 {object} ItemResponse
// @Router /plans/{id}/blocks/{blockId}/items [post]
func (h *PlanHandler) AddItem(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	item, err := h.planService.AddItem(c.Request.Context(), id, c.Param("id"), c.Param("blockId"), req.toInput())
	if err != nil {
		respondError(c, err, "add exercise")
		return
	}
	c.JSON(http.StatusCreated, MapItemToResponse(item))
}

// UpdateItem godoc
// @Summary Update an exercise
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param itemId path string true "Item ID"
// @Param item body ItemRequest true "Exercise"
// @Success 200 {object} ItemResponse
// @Router /plans/{id}/items/{itemId} [put]
func (h *PlanHandler) UpdateItem(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	item, err := h.planService.UpdateItem(c.Request.Context(), id, c.Param("id"), c.Param("itemId"), req.toInput())
	if err != nil {
		respondError(c, err, "update exercise")
		return
	}
	c.JSON(http.StatusOK, MapItemToResponse(item))
}

// DeleteItem godoc
// @Summary Delete an exercise
// @Tags Plans
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param itemId path string true "Item ID"
// @Success 204
// @Router /plans/{id}/items/{itemId} [delete]
func (h *PlanHandler) DeleteItem(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	if err := h.planService.DeleteItem(c.Request.Context(), id, c.Param("id"), c.Param("itemId")); err != nil {
		respondError(c, err, "delete exercise")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Mappers ---

// MapPlanToResponse converts a plan header. progress is computed by the caller.
func MapPlanToResponse(p *domain.Plan, progress int) PlanResponse {
	return PlanResponse{
		ID:          p.ID,
		StudentID:   p.StudentID,
		Name:        p.Name,
		Description: p.Description,
		Goal:        p.Goal,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		IsActive:    p.IsActive,
		Shared:      p.IsShared(),
		SharedAt:    p.SharedAt,
		Progress:    progress,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func MapPlanTreeToResponse(tree *domain.PlanTree) PlanDetailResponse {
	resp := PlanDetailResponse{
		PlanResponse: MapPlanToResponse(&tree.Plan, tree.Progress()),
		Days:         make([]DayResponse, 0, len(tree.Days)),
	}
	for _, d := range tree.Days {
		day := MapDayToResponse(&d.Day)
		day.Blocks = make([]BlockResponse, 0, len(d.Blocks))
		for _, b := range d.Blocks {
			block := MapBlockToResponse(&b.Block)
			block.Items = make([]ItemResponse, 0, len(b.Items))
			for i := range b.Items {
				block.Items = append(block.Items, MapItemToResponse(&b.Items[i]))
			}
			day.Blocks = append(day.Blocks, block)
		}
		resp.Days = append(resp.Days, day)
	}
	return resp
}

func MapDayToResponse(d *domain.PlanDay) DayResponse {
	return DayResponse{
		ID:          d.ID,
		Title:       d.Title,
		Position:    d.Position,
		Weekday:     d.Weekday,
		Notes:       d.Notes,
		Completed:   d.IsCompleted(),
		CompletedAt: d.CompletedAt,
	}
}

func MapBlockToResponse(b *domain.PlanBlock) BlockResponse {
	return BlockResponse{
		ID:       b.ID,
		DayID:    b.DayID,
		Title:    b.Title,
		Kind:     b.Kind,
		Position: b.Position,
		Notes:    b.Notes,
	}
}

func MapItemToResponse(it *domain.PlanItem) ItemResponse {
	return ItemResponse{
		ID:       it.ID,
		BlockID:  it.BlockID,
		Exercise: it.Exercise,
		Sets:     it.Sets,
		Reps:     it.Reps,
		Load:     it.Load,
		Rest:     it.Rest,
		Tempo:    it.Tempo,
		Duration: it.Duration,
		VideoURL: it.VideoURL,
		Notes:    it.Notes,
		Position: it.Position,
	}
}

package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nutrilog/nutrilog/internal/apperrors"
	"github.com/nutrilog/nutrilog/internal/interfaces"
	"github.com/nutrilog/nutrilog/internal/services"
)

// Handler exposes the engine operations over HTTP.
type Handler struct {
	goals     interfaces.GoalServiceInterface
	summaries interfaces.SummaryServiceInterface
	foods     interfaces.FoodServiceInterface
	errs      *apperrors.Handler
}

func NewHandler(goals interfaces.GoalServiceInterface, summaries interfaces.SummaryServiceInterface, foods interfaces.FoodServiceInterface, errs *apperrors.Handler) *Handler {
	return &Handler{goals: goals, summaries: summaries, foods: foods, errs: errs}
}

// writeError maps the error taxonomy onto HTTP status codes.
func (h *Handler) writeError(c *gin.Context, err error) {
	h.errs.Handle(c.Request.Context(), err)

	status := http.StatusInternalServerError
	message := "internal server error"

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
		switch appErr.Type {
		case apperrors.ErrorTypeValidation:
			status = http.StatusBadRequest
		case apperrors.ErrorTypeUnauthenticated:
			status = http.StatusUnauthorized
		case apperrors.ErrorTypeNotFound:
			status = http.StatusNotFound
		case apperrors.ErrorTypeConflict:
			status = http.StatusConflict
		default:
			message = "internal server error"
		}
	}
	c.JSON(status, gin.H{"error": message})
}

// parseDate accepts YYYY-MM-DD or RFC3339; empty means now.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Now(), true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func (h *Handler) GetCurrentGoal(c *gin.Context) {
	date, ok := parseDate(c.Query("date"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, use YYYY-MM-DD or RFC3339"})
		return
	}
	goal, err := h.goals.GetCurrentGoal(c.Request.Context(), callerID(c), date, c.Query("timezone"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	// nil marshals to null: "no active goal" is a result, not an error
	c.JSON(http.StatusOK, goal)
}

func (h *Handler) GetGoalHistory(c *gin.Context) {
	limit, ok := parseIntQuery(c, "limit", 0)
	if !ok {
		return
	}
	offset, ok := parseIntQuery(c, "offset", 0)
	if !ok {
		return
	}
	goals, err := h.goals.GetGoalHistory(c.Request.Context(), callerID(c), limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, goals)
}

func parseIntQuery(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}

type createGoalRequest struct {
	Name              string `json:"name"`
	StartAt           *int64 `json:"startAt" binding:"required"`
	EndAt             *int64 `json:"endAt"`
	ProteinGoal       int    `json:"proteinGoal"`
	CarbsGoal         int    `json:"carbsGoal"`
	FatGoal           int    `json:"fatGoal"`
	ClosePreviousGoal bool   `json:"closePreviousGoal"`
}

func (h *Handler) CreateGoal(c *gin.Context) {
	var req createGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	goal, err := h.goals.CreateGoal(c.Request.Context(), callerID(c), services.CreateGoalInput{
		Name:              req.Name,
		StartAt:           *req.StartAt,
		EndAt:             req.EndAt,
		ProteinGoal:       req.ProteinGoal,
		CarbsGoal:         req.CarbsGoal,
		FatGoal:           req.FatGoal,
		ClosePreviousGoal: req.ClosePreviousGoal,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, goal)
}

type updateGoalRequest struct {
	Name        *string `json:"name"`
	StartAt     *int64  `json:"startAt"`
	EndAt       *int64  `json:"endAt"`
	ProteinGoal *int    `json:"proteinGoal"`
	CarbsGoal   *int    `json:"carbsGoal"`
	FatGoal     *int    `json:"fatGoal"`
}

func (h *Handler) UpdateGoal(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req updateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	goal, err := h.goals.UpdateGoal(c.Request.Context(), callerID(c), id, services.UpdateGoalInput{
		Name:        req.Name,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		ProteinGoal: req.ProteinGoal,
		CarbsGoal:   req.CarbsGoal,
		FatGoal:     req.FatGoal,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

func (h *Handler) DeleteGoal(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.goals.DeleteGoal(c.Request.Context(), callerID(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) GetDailySummary(c *gin.Context) {
	date, ok := parseDate(c.Query("date"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, use YYYY-MM-DD or RFC3339"})
		return
	}
	summary, err := h.summaries.DailySummary(c.Request.Context(), callerID(c), date, c.Query("timezone"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) GetWeeklySummary(c *gin.Context) {
	raw := c.Query("weekStartDate")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing weekStartDate query param"})
		return
	}
	weekStart, ok := parseDate(raw)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid weekStartDate format, use YYYY-MM-DD or RFC3339"})
		return
	}
	totals, err := h.summaries.WeeklySummary(c.Request.Context(), callerID(c), weekStart, c.Query("timezone"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

type createFoodRequest struct {
	Name        string  `json:"name"`
	ServingSize int     `json:"servingSize"`
	ServingUnit string  `json:"servingUnit"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
	Barcode     *string `json:"barcode"`
}

func (h *Handler) CreateFood(c *gin.Context) {
	var req createFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	food, err := h.foods.CreateFood(c.Request.Context(), callerID(c), services.CreateFoodInput{
		Name:        req.Name,
		ServingSize: req.ServingSize,
		ServingUnit: req.ServingUnit,
		Protein:     req.Protein,
		Carbs:       req.Carbs,
		Fat:         req.Fat,
		Barcode:     req.Barcode,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, food)
}

func (h *Handler) GetFoodByBarcode(c *gin.Context) {
	food, err := h.foods.GetFoodByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}

type addServingUnitRequest struct {
	Name            string `json:"name"`
	GramsEquivalent int    `json:"gramsEquivalent"`
}

func (h *Handler) AddServingUnit(c *gin.Context) {
	foodID, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req addServingUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	unit, err := h.foods.AddServingUnit(c.Request.Context(), callerID(c), foodID, req.Name, req.GramsEquivalent)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, unit)
}

type logFoodRequest struct {
	FoodID        *uint   `json:"foodId" binding:"required"`
	ServingUnitID *uint   `json:"servingUnitId"`
	Quantity      float64 `json:"quantity"`
}

func (h *Handler) LogFood(c *gin.Context) {
	var req logFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log, err := h.foods.LogFood(c.Request.Context(), callerID(c), *req.FoodID, req.ServingUnitID, req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, log)
}

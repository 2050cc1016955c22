package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"alcyxob/gym-membership/internal/domain"
	"alcyxob/gym-membership/internal/service"
)

type ExerciseHandler struct {
	exerciseService service.ExerciseService
	logger          *slog.Logger
}

func NewExerciseHandler(exerciseService service.ExerciseService, logger *slog.Logger) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService, logger: logger}
}

// ExerciseRequest is the body for creating or replacing a template.
type ExerciseRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category"`              // e.g. "Chest", "Cardio"
	Tags        []string `json:"tags"`                  // e.g. "Fat Loss Plan"
	Sets        int      `json:"sets" binding:"gte=0"`
	Reps        string   `json:"reps"`
	VideoURL    string   `json:"videoUrl" binding:"omitempty,url"`
}

func (r ExerciseRequest) input() service.ExerciseInput {
	return service.ExerciseInput{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Tags:        r.Tags,
		Sets:        r.Sets,
		Reps:        r.Reps,
		VideoURL:    r.VideoURL,
	}
}

type ExerciseResponse struct {
	ID          string    `json:"id"`
	CreatedBy   string    `json:"createdBy"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Tags        []string  `json:"tags"`
	Sets        int       `json:"sets,omitempty"`
	Reps        string    `json:"reps,omitempty"`
	VideoURL    string    `json:"videoUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func MapExerciseToResponse(ex *domain.ExerciseTemplate) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	tags := ex.Tags
	if tags == nil {
		tags = []string{}
	}
	return ExerciseResponse{
		ID:          ex.ID.Hex(),
		CreatedBy:   ex.CreatedBy.Hex(),
		Name:        ex.Name,
		Description: ex.Description,
		Category:    ex.Category,
		Tags:        tags,
		Sets:        ex.Sets,
		Reps:        ex.Reps,
		VideoURL:    ex.VideoURL,
		CreatedAt:   ex.CreatedAt,
		UpdatedAt:   ex.UpdatedAt,
	}
}

func MapExercisesToResponse(exercises []domain.ExerciseTemplate) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i])
	}
	return responses
}

// CreateExercise is restricted to owners by the route.
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), ownerID, req.input())
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// ListExercises handles GET /exercises?tag=&category=&search=. Staff use it
// to look up the routine matching a member's BMI category.
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	exercises, err := h.exerciseService.ListExercises(c.Request.Context(), service.ExerciseQuery{
		Tag:      c.Query("tag"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	exercise, err := h.exerciseService.GetExerciseByID(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), id, req.input())
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	if err := h.exerciseService.DeleteExercise(c.Request.Context(), id); err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

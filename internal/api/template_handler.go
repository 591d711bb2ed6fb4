package api

import (
	"errors"
	"net/http"

	"cyclecoach/internal/domain"
	"cyclecoach/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TemplateHandler holds the template service dependency.
type TemplateHandler struct {
	templateService service.TemplateService
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// --- DTOs ---

// ExerciseSpecRequest is one exercise line of a template payload.
type ExerciseSpecRequest struct {
	Name   string `json:"name" binding:"required"`
	Type   string `json:"type" binding:"required,oneof=strength cardio time"`
	Target string `json:"target"`
}

// CreateTemplateRequest defines the expected JSON for creating a template.
type CreateTemplateRequest struct {
	Name      string                `json:"name" binding:"required"`
	Exercises []ExerciseSpecRequest `json:"exercises" binding:"required,min=1,dive"`
}

// ExerciseSpecResponse mirrors one stored exercise spec, with the
// display labels its type selects.
type ExerciseSpecResponse struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Target string `json:"target,omitempty"`
	Label1 string `json:"label1"`
	Unit1  string `json:"unit1,omitempty"`
	Label2 string `json:"label2"`
	Unit2  string `json:"unit2,omitempty"`
}

// TemplateResponse is the DTO for returning template details.
type TemplateResponse struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Exercises []ExerciseSpecResponse `json:"exercises"`
}

func mapSpecToResponse(spec domain.ExerciseSpec) ExerciseSpecResponse {
	labels := spec.Type.Labels()
	return ExerciseSpecResponse{
		Name:   spec.Name,
		Type:   string(spec.Type),
		Target: spec.Target,
		Label1: labels.Label1,
		Unit1:  labels.Unit1,
		Label2: labels.Label2,
		Unit2:  labels.Unit2,
	}
}

func mapTemplateToResponse(tpl *domain.ExerciseTemplate) TemplateResponse {
	if tpl == nil {
		return TemplateResponse{}
	}
	exercises := make([]ExerciseSpecResponse, len(tpl.Exercises))
	for i, spec := range tpl.Exercises {
		exercises[i] = mapSpecToResponse(spec)
	}
	return TemplateResponse{
		ID:        tpl.ID.Hex(),
		Name:      tpl.Name,
		Exercises: exercises,
	}
}

// --- Handler Methods ---

// CreateTemplate stores a new named exercise template for the coach.
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}

	specs := make([]domain.ExerciseSpec, len(req.Exercises))
	for i, ex := range req.Exercises {
		specs[i] = domain.ExerciseSpec{
			Name:   ex.Name,
			Type:   domain.ExerciseType(ex.Type),
			Target: ex.Target,
		}
	}

	tpl, err := h.templateService.CreateTemplate(c.Request.Context(), coachID, req.Name, specs)
	if err != nil {
		if errors.Is(err, service.ErrTemplateNameBlank) || errors.Is(err, service.ErrInvalidExercise) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create template.")
		}
		return
	}

	c.JSON(http.StatusCreated, mapTemplateToResponse(tpl))
}

// ListTemplates returns the coach's template library.
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}

	templates, err := h.templateService.ListTemplates(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve templates.")
		return
	}

	responses := make([]TemplateResponse, len(templates))
	for i := range templates {
		responses[i] = mapTemplateToResponse(&templates[i])
	}
	c.JSON(http.StatusOK, responses)
}

// DeleteTemplate removes a template owned by the coach. The interactive
// confirmation happens client-side before this call is made.
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}

	templateID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format.")
		return
	}

	if err := h.templateService.DeleteTemplate(c.Request.Context(), coachID, templateID); err != nil {
		if errors.Is(err, service.ErrTemplateNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete template.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

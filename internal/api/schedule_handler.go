package api

import (
	"errors"
	"net/http"
	"time"

	"cyclecoach/internal/domain"
	"cyclecoach/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleHandler holds the schedule and roster service dependencies.
type ScheduleHandler struct {
	scheduleService service.ScheduleService
	rosterService   service.RosterService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(scheduleService service.ScheduleService, rosterService service.RosterService) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
		rosterService:   rosterService,
	}
}

// --- DTOs ---

// EnrollRequest defines the expected JSON for enrolling a participant.
type EnrollRequest struct {
	Email         string     `json:"email" binding:"required,email"`
	TotalSessions int        `json:"totalSessions" binding:"required,min=1"`
	StartDate     *time.Time `json:"startDate"`
}

// CreatePlanRequest defines the expected JSON for the plan setup wizard.
type CreatePlanRequest struct {
	CycleLength int      `json:"cycleLength" binding:"required,min=1,max=14"`
	DayNames    []string `json:"dayNames" binding:"required,min=1,max=14,dive,required"`
}

// CompleteSessionRequest marks one session number complete.
type CompleteSessionRequest struct {
	SessionNumber int `json:"sessionNumber" binding:"required,min=1"`
}

// --- Handler Methods ---

// EnrollParticipant adds a participant to the coach's roster and opens their
// subscription.
func (h *ScheduleHandler) EnrollParticipant(c *gin.Context) {
	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}

	var startDate time.Time
	if req.StartDate != nil {
		startDate = *req.StartDate
	}

	sub, err := h.rosterService.EnrollParticipant(c.Request.Context(), coachID, req.Email, req.TotalSessions, startDate)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrParticipantNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrParticipantNotRole), errors.Is(err, service.ErrInvalidTotalSessions):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrParticipantAlreadyEnrolled):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to enroll participant.")
		}
		return
	}

	c.JSON(http.StatusCreated, sub)
}

// GetRoster lists the coach's participants.
func (h *ScheduleHandler) GetRoster(c *gin.Context) {
	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}

	roster, err := h.rosterService.GetRoster(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve roster.")
		return
	}

	responses := make([]UserResponse, len(roster))
	for i := range roster {
		responses[i] = mapUserToResponse(&roster[i])
	}
	c.JSON(http.StatusOK, responses)
}

// GetSubscriptions lists the coach's subscriptions.
func (h *ScheduleHandler) GetSubscriptions(c *gin.Context) {
	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}

	subs, err := h.rosterService.GetSubscriptions(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve subscriptions.")
		return
	}
	c.JSON(http.StatusOK, subs)
}

// CreatePlan runs the plan setup wizard for a subscription.
func (h *ScheduleHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}

	subscriptionID, err := primitive.ObjectIDFromHex(c.Param("subscriptionId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid subscription ID format.")
		return
	}

	plan, err := h.scheduleService.CreatePlan(c.Request.Context(), coachID, subscriptionID, req.CycleLength, req.DayNames)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubscriptionNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrPlanAlreadyExists):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrPlanAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusBadRequest, err.Error())
		}
		return
	}

	c.JSON(http.StatusCreated, plan)
}

// GetPlan returns the subscription's training plan, if any.
func (h *ScheduleHandler) GetPlan(c *gin.Context) {
	subscriptionID, err := primitive.ObjectIDFromHex(c.Param("subscriptionId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid subscription ID format.")
		return
	}

	plan, err := h.scheduleService.GetPlan(c.Request.Context(), subscriptionID)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve plan.")
		}
		return
	}
	c.JSON(http.StatusOK, plan)
}

// DeletePlan removes a plan. History (session logs) is untouched.
func (h *ScheduleHandler) DeletePlan(c *gin.Context) {
	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}

	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}

	if err := h.scheduleService.DeletePlan(c.Request.Context(), coachID, planID); err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete plan.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSchedule returns the reconciled cycle view with live progress.
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	subscriptionID, err := primitive.ObjectIDFromHex(c.Param("subscriptionId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid subscription ID format.")
		return
	}

	progress, err := h.scheduleService.GetSchedule(c.Request.Context(), subscriptionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubscriptionNotFound), errors.Is(err, service.ErrPlanNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to compute schedule.")
		}
		return
	}
	c.JSON(http.StatusOK, progress)
}

// CompleteSession writes the completion log for one session of a
// subscription.
func (h *ScheduleHandler) CompleteSession(c *gin.Context) {
	var req CompleteSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	subscriptionID, err := primitive.ObjectIDFromHex(c.Param("subscriptionId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid subscription ID format.")
		return
	}

	// Attribution: only coaches are recorded on the log; a participant
	// marking their own session leaves it unattributed.
	coachID := primitive.NilObjectID
	if role, roleErr := getUserRoleFromContext(c); roleErr == nil && role == domain.RoleCoach {
		if id, ok := getUserObjectID(c); ok {
			coachID = id
		} else {
			return
		}
	}

	log, err := h.scheduleService.CompleteSession(c.Request.Context(), subscriptionID, req.SessionNumber, coachID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubscriptionNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrSessionOutOfRange):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrSessionAlreadyLogged):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to complete session.")
		}
		return
	}

	c.JSON(http.StatusCreated, log)
}

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"cyclecoach/internal/domain"
	"cyclecoach/internal/repository"
	"cyclecoach/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupSessionHandler holds the group-session service dependency.
type GroupSessionHandler struct {
	sessionService service.GroupSessionService
}

// NewGroupSessionHandler creates a new GroupSessionHandler.
func NewGroupSessionHandler(sessionService service.GroupSessionService) *GroupSessionHandler {
	return &GroupSessionHandler{sessionService: sessionService}
}

// --- DTOs ---

// ExerciseResultRequest is one present participant's captured values for one
// exercise.
type ExerciseResultRequest struct {
	ParticipantID   string `json:"participantId" binding:"required"`
	ParticipantName string `json:"participantName" binding:"required"`
	Val1            string `json:"val1"`
	Val2            string `json:"val2"`
	Note            string `json:"note"`
}

// ExerciseSummaryRequest is one exercise of the submitted session.
type ExerciseSummaryRequest struct {
	Name    string                  `json:"name" binding:"required"`
	Type    string                  `json:"type" binding:"required,oneof=strength cardio time"`
	Target  string                  `json:"target"`
	Results []ExerciseResultRequest `json:"results"`
}

// SessionParticipantRequest is one present attendee of the submitted session.
type SessionParticipantRequest struct {
	ParticipantID string `json:"participantId" binding:"required"`
	Name          string `json:"name" binding:"required"`
	Note          string `json:"note"`
}

// SubmitGroupSessionRequest is the Finish payload. It only ever contains
// participants who were present at submission time; the lifecycle engine
// filters absentees out before this request is built.
type SubmitGroupSessionRequest struct {
	DayName      string                      `json:"dayName" binding:"required"`
	Exercises    []ExerciseSummaryRequest    `json:"exercisesSummary" binding:"required,min=1,dive"`
	Participants []SessionParticipantRequest `json:"participants"`
}

// --- Handler Methods ---

// SubmitGroupSession persists a finished group session. This is the single
// commit point of the live-session workflow.
func (h *GroupSessionHandler) SubmitGroupSession(c *gin.Context) {
	var req SubmitGroupSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := getUserObjectID(c)
	if !ok {
		return
	}

	record, err := mapSubmitRequest(coachID, &req)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.sessionService.SubmitGroupSession(c.Request.Context(), record)
	if err != nil {
		if errors.Is(err, service.ErrEmptySubmission) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to save group session.")
		}
		return
	}

	c.JSON(http.StatusCreated, saved)
}

func mapSubmitRequest(coachID primitive.ObjectID, req *SubmitGroupSessionRequest) (*domain.GroupSessionRecord, error) {
	summaries := make([]domain.ExerciseSummary, len(req.Exercises))
	for i, ex := range req.Exercises {
		results := make([]domain.ExerciseResult, len(ex.Results))
		for j, r := range ex.Results {
			pid, err := primitive.ObjectIDFromHex(r.ParticipantID)
			if err != nil {
				return nil, errors.New("invalid participant ID in results")
			}
			results[j] = domain.ExerciseResult{
				ParticipantID:   pid,
				ParticipantName: r.ParticipantName,
				Val1:            r.Val1,
				Val2:            r.Val2,
				Note:            r.Note,
			}
		}
		summaries[i] = domain.ExerciseSummary{
			Name:    ex.Name,
			Type:    domain.ExerciseType(ex.Type),
			Target:  ex.Target,
			Results: results,
		}
	}

	participants := make([]domain.SessionParticipant, len(req.Participants))
	for i, p := range req.Participants {
		pid, err := primitive.ObjectIDFromHex(p.ParticipantID)
		if err != nil {
			return nil, errors.New("invalid participant ID in participants")
		}
		participants[i] = domain.SessionParticipant{
			ParticipantID: pid,
			Name:          p.Name,
			Note:          p.Note,
		}
	}

	return &domain.GroupSessionRecord{
		CoachID:          coachID,
		DayName:          req.DayName,
		Date:             time.Now().UTC(),
		ExercisesSummary: summaries,
		Participants:     participants,
	}, nil
}

// GetSessionDetail returns one stored group session record.
func (h *GroupSessionHandler) GetSessionDetail(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
		return
	}

	rec, err := h.sessionService.GetSessionDetail(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrGroupSessionNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve session.")
		}
		return
	}
	c.JSON(http.StatusOK, rec)
}

// HistoryResponse is one page of a participant's session history.
type HistoryResponse struct {
	Records  []domain.GroupSessionRecord `json:"records"`
	Page     int                         `json:"page"`
	PageSize int                         `json:"pageSize"`
	HasMore  bool                        `json:"hasMore"`
}

// GetHistory returns one page (fixed size 20, newest first) of the
// participant's group-session history.
func (h *GroupSessionHandler) GetHistory(c *gin.Context) {
	participantID, err := primitive.ObjectIDFromHex(c.Param("participantId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid participant ID format.")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	history, err := h.sessionService.GetHistory(c.Request.Context(), participantID, page)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve history.")
		return
	}

	c.JSON(http.StatusOK, HistoryResponse{
		Records:  history.Records,
		Page:     history.Page,
		PageSize: repository.HistoryPageSize,
		HasMore:  history.HasMore,
	})
}

// GetHistoryDetail returns the flattened view of one past session for one
// participant.
func (h *GroupSessionHandler) GetHistoryDetail(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
		return
	}
	participantID, err := primitive.ObjectIDFromHex(c.Param("participantId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid participant ID format.")
		return
	}

	history, err := h.sessionService.ReconstructHistory(c.Request.Context(), id, participantID)
	if err != nil {
		if errors.Is(err, service.ErrGroupSessionNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to reconstruct session.")
		}
		return
	}
	c.JSON(http.StatusOK, history)
}

// GetRepeatSeed returns the plan seed derived from a past session, for
// starting a repeat session.
func (h *GroupSessionHandler) GetRepeatSeed(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
		return
	}

	seed, err := h.sessionService.RepeatSeed(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrGroupSessionNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to derive repeat seed.")
		}
		return
	}

	responses := make([]ExerciseSpecResponse, len(seed))
	for i, spec := range seed {
		responses[i] = mapSpecToResponse(spec)
	}
	c.JSON(http.StatusOK, responses)
}

// GetReportURL returns a presigned download URL for the archived report of
// a session.
func (h *GroupSessionHandler) GetReportURL(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
		return
	}

	url, err := h.sessionService.GetReportURL(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrReportNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to generate report URL.")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kkyydd4-lab/certificate/internal/dto"
	"github.com/kkyydd4-lab/certificate/internal/service"
	"github.com/kkyydd4-lab/certificate/internal/session"
	"github.com/rs/zerolog/log"
)

type SessionController struct {
	sessionService service.SessionService
}

func NewSessionController(sessionService service.SessionService) *SessionController {
	return &SessionController{sessionService: sessionService}
}

// StartSession godoc
// @Summary (Student) Start an exam session
// @Description Opens a timed session for the exam. The countdown starts immediately; the session lives in memory until submitted or abandoned.
// @Tags Student - Exam Sessions
// @Accept json
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param start_data body dto.SessionStartDTO true "User starting the attempt"
// @Success 201 {object} dto.SessionStateDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "No authenticated user"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /exams/{exam_id}/sessions [post]
func (c *SessionController) StartSession(ctx *gin.Context) {
	examID, ok := parseID(ctx, "exam_id")
	if !ok {
		return
	}
	var req dto.SessionStartDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	state, err := c.sessionService.StartSession(examID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: err.Error()})
		case errors.Is(err, service.ErrExamNotFound):
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		default:
			log.Error().Err(err).Uint("examID", examID).Msg("StartSession: Service error")
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Failed to start session", Details: []string{err.Error()}})
		}
		return
	}
	ctx.JSON(http.StatusCreated, state)
}

// GetSessionState godoc
// @Summary (Student) Poll session state
// @Tags Student - Exam Sessions
// @Produce json
// @Param token path string true "Session token"
// @Success 200 {object} dto.SessionStateDTO
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{token} [get]
func (c *SessionController) GetSessionState(ctx *gin.Context) {
	state, err := c.sessionService.GetSession(ctx.Param("token"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, state)
}

// SaveAnswer godoc
// @Summary (Student) Record an answer
// @Description Overwrites any previous answer for the question; last write wins. Ignored while a submission is pending.
// @Tags Student - Exam Sessions
// @Accept json
// @Produce json
// @Param token path string true "Session token"
// @Param answer_data body dto.SessionAnswerDTO true "Question and answer value"
// @Success 204 "Answer recorded"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session is not accepting answers"
// @Router /sessions/{token}/answers [put]
func (c *SessionController) SaveAnswer(ctx *gin.Context) {
	var req dto.SessionAnswerDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	if err := c.sessionService.RecordAnswer(ctx.Param("token"), req); err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		case errors.Is(err, session.ErrSubmitting), errors.Is(err, session.ErrCompleted), errors.Is(err, session.ErrNotStarted):
			ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: err.Error()})
		default:
			ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to record answer", Details: []string{err.Error()}})
		}
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ReportIntegrityEvent godoc
// @Summary (Student) Report a browser integrity event
// @Description Clipboard and context-menu events are suppressed and counted; visibility loss is counted and answered with a warning notice. Warnings are advisory only.
// @Tags Student - Exam Sessions
// @Accept json
// @Produce json
// @Param token path string true "Session token"
// @Param event_data body dto.IntegrityEventDTO true "Event kind"
// @Success 200 {object} dto.IntegrityEventResultDTO
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{token}/events [post]
func (c *SessionController) ReportIntegrityEvent(ctx *gin.Context) {
	var req dto.IntegrityEventDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	result, err := c.sessionService.ReportIntegrityEvent(ctx.Param("token"), req)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
			return
		}
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Failed to record event", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// SubmitSession godoc
// @Summary (Student) Submit the exam
// @Description A manual submit needs confirmed=true; declining leaves the session running. A failed submission keeps answers and remaining time so the student can retry.
// @Tags Student - Exam Sessions
// @Accept json
// @Produce json
// @Param token path string true "Session token"
// @Param submit_data body dto.SessionSubmitDTO true "Confirmation flag"
// @Success 200 {object} dto.SubmissionResultDTO "Graded and saved"
// @Success 202 {object} dto.SessionStateDTO "Not confirmed, session unchanged"
// @Failure 401 {object} dto.ErrorResponse "No authenticated user"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "A submission is already in flight"
// @Failure 502 {object} dto.ErrorResponse "Grading or persistence failed; session reverted"
// @Router /sessions/{token}/submit [post]
func (c *SessionController) SubmitSession(ctx *gin.Context) {
	token := ctx.Param("token")
	var req dto.SessionSubmitDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	result, err := c.sessionService.SubmitSession(token, req.Confirmed)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		case errors.Is(err, service.ErrUnauthorized):
			ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: err.Error()})
		case errors.Is(err, session.ErrSubmitting), errors.Is(err, session.ErrCompleted):
			ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: err.Error()})
		case errors.Is(err, service.ErrDataFetch), errors.Is(err, service.ErrPersist):
			ctx.JSON(http.StatusBadGateway, dto.ErrorResponse{Message: "Submission failed, your answers are preserved", Details: []string{err.Error()}})
		default:
			log.Error().Err(err).Str("token", token).Msg("SubmitSession: Service error")
			ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to submit", Details: []string{err.Error()}})
		}
		return
	}

	if result == nil {
		// Declined confirmation; report the unchanged session state.
		state, stateErr := c.sessionService.GetSession(token)
		if stateErr != nil {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: stateErr.Error()})
			return
		}
		ctx.JSON(http.StatusAccepted, state)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

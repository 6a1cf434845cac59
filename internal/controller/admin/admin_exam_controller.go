package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kkyydd4-lab/certificate/internal/dto"
	"github.com/kkyydd4-lab/certificate/internal/service"
	"github.com/rs/zerolog/log"
)

type AdminExamController struct {
	adminExamService service.AdminExamService
}

func NewAdminExamController(adminExamService service.AdminExamService) *AdminExamController {
	return &AdminExamController{adminExamService: adminExamService}
}

func parseID(ctx *gin.Context, param string) (uint, bool) {
	val, err := strconv.ParseUint(ctx.Param(param), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + param + " format"})
		return 0, false
	}
	return uint(val), true
}

// CreateExam godoc
// @Summary (Admin) Create a new exam
// @Description Admin creates an exam shell. Questions are linked from the bank afterwards.
// @Tags Admin - Exams
// @Accept json
// @Produce json
// @Param exam_data body dto.ExamCreateDTO true "Exam metadata"
// @Success 201 {object} dto.ExamSummaryDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/exams [post]
func (c *AdminExamController) CreateExam(ctx *gin.Context) {
	var req dto.ExamCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Admin CreateExam: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	examResp, err := c.adminExamService.CreateExam(req)
	if err != nil {
		log.Error().Err(err).Msg("Admin CreateExam: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to create exam", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusCreated, examResp)
}

// UpdateExam godoc
// @Summary (Admin) Update an exam
// @Description Partial update of exam metadata, including the active flag gating student visibility.
// @Tags Admin - Exams
// @Accept json
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param exam_data body dto.ExamUpdateDTO true "Fields to update"
// @Success 200 {object} dto.ExamSummaryDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /admin/exams/{exam_id} [put]
func (c *AdminExamController) UpdateExam(ctx *gin.Context) {
	examID, ok := parseID(ctx, "exam_id")
	if !ok {
		return
	}
	var req dto.ExamUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	examResp, err := c.adminExamService.UpdateExam(examID, req)
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
			return
		}
		log.Error().Err(err).Uint("examID", examID).Msg("Admin UpdateExam: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to update exam", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, examResp)
}

// DeleteExam godoc
// @Summary (Admin) Delete an exam
// @Tags Admin - Exams
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Success 204 "Exam deleted"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /admin/exams/{exam_id} [delete]
func (c *AdminExamController) DeleteExam(ctx *gin.Context) {
	examID, ok := parseID(ctx, "exam_id")
	if !ok {
		return
	}
	if err := c.adminExamService.DeleteExam(examID); err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
			return
		}
		log.Error().Err(err).Uint("examID", examID).Msg("Admin DeleteExam: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to delete exam", Details: []string{err.Error()}})
		return
	}
	ctx.Status(http.StatusNoContent)
}

// LinkQuestion godoc
// @Summary (Admin) Link a bank question into an exam
// @Description Gives the question a display order and point value within the exam. Linking an already linked question overwrites both.
// @Tags Admin - Exams
// @Accept json
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param link_data body dto.ExamQuestionLinkDTO true "Question, order and points"
// @Success 204 "Question linked"
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Failure 404 {object} dto.ErrorResponse "Exam or question not found"
// @Router /admin/exams/{exam_id}/questions [post]
func (c *AdminExamController) LinkQuestion(ctx *gin.Context) {
	examID, ok := parseID(ctx, "exam_id")
	if !ok {
		return
	}
	var req dto.ExamQuestionLinkDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	if err := c.adminExamService.LinkQuestion(examID, req); err != nil {
		if errors.Is(err, service.ErrExamNotFound) || errors.Is(err, service.ErrQuestionNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
			return
		}
		log.Error().Err(err).Uint("examID", examID).Msg("Admin LinkQuestion: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to link question", Details: []string{err.Error()}})
		return
	}
	ctx.Status(http.StatusNoContent)
}

// UnlinkQuestion godoc
// @Summary (Admin) Remove a question from an exam
// @Tags Admin - Exams
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param question_id path int true "Question ID"
// @Success 204 "Question unlinked"
// @Router /admin/exams/{exam_id}/questions/{question_id} [delete]
func (c *AdminExamController) UnlinkQuestion(ctx *gin.Context) {
	examID, ok := parseID(ctx, "exam_id")
	if !ok {
		return
	}
	questionID, ok := parseID(ctx, "question_id")
	if !ok {
		return
	}
	if err := c.adminExamService.UnlinkQuestion(examID, questionID); err != nil {
		log.Error().Err(err).Uint("examID", examID).Uint("questionID", questionID).Msg("Admin UnlinkQuestion: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to unlink question", Details: []string{err.Error()}})
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GetExamQuestions godoc
// @Summary (Admin) List an exam's linked questions with answer keys
// @Tags Admin - Exams
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Success 200 {array} model.ExamQuestion
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /admin/exams/{exam_id}/questions [get]
func (c *AdminExamController) GetExamQuestions(ctx *gin.Context) {
	examID, ok := parseID(ctx, "exam_id")
	if !ok {
		return
	}
	links, err := c.adminExamService.GetExamQuestions(examID)
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
			return
		}
		log.Error().Err(err).Uint("examID", examID).Msg("Admin GetExamQuestions: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to fetch exam questions", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, links)
}

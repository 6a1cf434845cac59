package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kkyydd4-lab/certificate/internal/dto"
	"github.com/kkyydd4-lab/certificate/internal/repository"
	"github.com/kkyydd4-lab/certificate/internal/service"
	"github.com/rs/zerolog/log"
)

type QuestionController struct {
	adminExamService service.AdminExamService
}

func NewQuestionController(adminExamService service.AdminExamService) *QuestionController {
	return &QuestionController{adminExamService: adminExamService}
}

// CreateQuestion godoc
// @Summary (Admin) Add a question to the bank
// @Description Creates a reusable question, independent of any exam.
// @Tags Admin - Question Bank
// @Accept json
// @Produce json
// @Param question_data body dto.QuestionCreateDTO true "Question data"
// @Success 201 {object} dto.QuestionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Router /admin/questions [post]
func (c *QuestionController) CreateQuestion(ctx *gin.Context) {
	var req dto.QuestionCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Admin CreateQuestion: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	questionResp, err := c.adminExamService.CreateQuestion(req)
	if err != nil {
		log.Error().Err(err).Msg("Admin CreateQuestion: Service error")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Failed to create question", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusCreated, questionResp)
}

// ListQuestions godoc
// @Summary (Admin) List bank questions
// @Description Optional filters on type, category and difficulty. The response carries the filtered total in the X-Total-Count header.
// @Tags Admin - Question Bank
// @Produce json
// @Param type query string false "Question type filter"
// @Param category query string false "Category filter"
// @Param difficulty query string false "Difficulty filter"
// @Success 200 {array} dto.QuestionResponseDTO
// @Router /admin/questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	filter := repository.QuestionFilter{
		Type:       ctx.Query("type"),
		Category:   ctx.Query("category"),
		Difficulty: ctx.Query("difficulty"),
	}

	questions, count, err := c.adminExamService.ListQuestions(filter)
	if err != nil {
		log.Error().Err(err).Msg("Admin ListQuestions: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to list questions", Details: []string{err.Error()}})
		return
	}
	ctx.Header("X-Total-Count", strconv.FormatInt(count, 10))
	ctx.JSON(http.StatusOK, questions)
}

// UpdateQuestion godoc
// @Summary (Admin) Replace a bank question
// @Tags Admin - Question Bank
// @Accept json
// @Produce json
// @Param question_id path int true "Question ID"
// @Param question_data body dto.QuestionCreateDTO true "Question data"
// @Success 200 {object} dto.QuestionResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /admin/questions/{question_id} [put]
func (c *QuestionController) UpdateQuestion(ctx *gin.Context) {
	questionID, ok := parseID(ctx, "question_id")
	if !ok {
		return
	}
	var req dto.QuestionCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	questionResp, err := c.adminExamService.UpdateQuestion(questionID, req)
	if err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
			return
		}
		log.Error().Err(err).Uint("questionID", questionID).Msg("Admin UpdateQuestion: Service error")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Failed to update question", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, questionResp)
}

// DeleteQuestion godoc
// @Summary (Admin) Delete a bank question
// @Tags Admin - Question Bank
// @Produce json
// @Param question_id path int true "Question ID"
// @Success 204 "Question deleted"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /admin/questions/{question_id} [delete]
func (c *QuestionController) DeleteQuestion(ctx *gin.Context) {
	questionID, ok := parseID(ctx, "question_id")
	if !ok {
		return
	}
	if err := c.adminExamService.DeleteQuestion(questionID); err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
			return
		}
		log.Error().Err(err).Uint("questionID", questionID).Msg("Admin DeleteQuestion: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to delete question", Details: []string{err.Error()}})
		return
	}
	ctx.Status(http.StatusNoContent)
}

package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kkyydd4-lab/certificate/internal/dto"
	"github.com/kkyydd4-lab/certificate/internal/service"
	"github.com/rs/zerolog/log"
)

type ExamController struct {
	examService    service.ExamService
	gradingService service.GradingService
}

func NewExamController(examService service.ExamService, gradingService service.GradingService) *ExamController {
	return &ExamController{examService: examService, gradingService: gradingService}
}

func parseID(ctx *gin.Context, param string) (uint, bool) {
	val, err := strconv.ParseUint(ctx.Param(param), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + param + " format"})
		return 0, false
	}
	return uint(val), true
}

// GetActiveExams godoc
// @Summary (Student) List available exams
// @Description Only exams flagged active are visible to students.
// @Tags Student - Exams
// @Produce json
// @Success 200 {array} dto.ExamSummaryDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /exams [get]
func (c *ExamController) GetActiveExams(ctx *gin.Context) {
	exams, err := c.examService.GetActiveExams()
	if err != nil {
		log.Error().Err(err).Msg("GetActiveExams: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve exams", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, exams)
}

// GetExamDetails godoc
// @Summary (Student) Get one exam with its questions
// @Description Questions come in display order without correct answers or explanations.
// @Tags Student - Exams
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Success 200 {object} dto.ExamResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /exams/{exam_id} [get]
func (c *ExamController) GetExamDetails(ctx *gin.Context) {
	examID, ok := parseID(ctx, "exam_id")
	if !ok {
		return
	}
	exam, err := c.examService.GetExamDetails(examID)
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
			return
		}
		log.Error().Err(err).Uint("examID", examID).Msg("GetExamDetails: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve exam", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, exam)
}

// GetMySubmissions godoc
// @Summary (Student) List own submissions
// @Tags Student - Submissions
// @Produce json
// @Param user_id query int true "User ID"
// @Success 200 {array} dto.SubmissionSummaryDTO
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid user ID"
// @Router /submissions [get]
func (c *ExamController) GetMySubmissions(ctx *gin.Context) {
	userIDStr := ctx.Query("user_id")
	userID, err := strconv.ParseUint(userIDStr, 10, 32)
	if err != nil || userID == 0 {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Missing or invalid user_id query parameter"})
		return
	}

	submissions, err := c.gradingService.GetUserSubmissions(uint(userID))
	if err != nil {
		log.Error().Err(err).Uint64("userID", userID).Msg("GetMySubmissions: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve submissions", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, submissions)
}

// GetSubmissionDetails godoc
// @Summary (Student) Get one graded submission
// @Tags Student - Submissions
// @Produce json
// @Param submission_id path int true "Submission ID"
// @Success 200 {object} dto.SubmissionDetailDTO
// @Failure 404 {object} dto.ErrorResponse "Submission not found"
// @Router /submissions/{submission_id} [get]
func (c *ExamController) GetSubmissionDetails(ctx *gin.Context) {
	submissionID, ok := parseID(ctx, "submission_id")
	if !ok {
		return
	}
	submission, err := c.gradingService.GetSubmissionDetails(submissionID)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
			return
		}
		log.Error().Err(err).Uint("submissionID", submissionID).Msg("GetSubmissionDetails: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve submission", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, submission)
}

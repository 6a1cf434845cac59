package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/kkyydd4-lab/certificate/internal/dto"
	"github.com/kkyydd4-lab/certificate/internal/model"
	"github.com/kkyydd4-lab/certificate/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// GradingService grades a finished exam attempt against the authoritative
// answer key and persists the result as an ExamSubmission.
type GradingService interface {
	// Submit grades answerMap for examID and writes the submission record.
	// elapsedSeconds is the configured total minus the remaining time at the
	// moment of submission. The write is a single atomic insert; on any
	// failure nothing is persisted and the attempt may be retried.
	Submit(examID, userID uint, answerMap map[uint]string, elapsedSeconds int) (*dto.SubmissionResultDTO, error)
	GetSubmissionDetails(submissionID uint) (*dto.SubmissionDetailDTO, error)
	GetUserSubmissions(userID uint) ([]dto.SubmissionSummaryDTO, error)
}

type gradingService struct {
	examRepo         repository.ExamRepository
	examQuestionRepo repository.ExamQuestionRepository
	submissionRepo   repository.SubmissionRepository
	now              func() time.Time
}

func NewGradingService(
	examRepo repository.ExamRepository,
	examQuestionRepo repository.ExamQuestionRepository,
	submissionRepo repository.SubmissionRepository,
) GradingService {
	return &gradingService{
		examRepo:         examRepo,
		examQuestionRepo: examQuestionRepo,
		submissionRepo:   submissionRepo,
		now:              time.Now,
	}
}

func (s *gradingService) Submit(examID, userID uint, answerMap map[uint]string, elapsedSeconds int) (*dto.SubmissionResultDTO, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}

	links, err := s.examQuestionRepo.FindByExamID(examID)
	if err != nil {
		log.Error().Err(err).Uint("examID", examID).Msg("Submit: failed to fetch exam questions for grading")
		return nil, fmt.Errorf("%w: %v", ErrDataFetch, err)
	}

	earnedScore := 0
	totalPossibleScore := 0
	graded := make(model.GradedAnswerMap, len(links))

	for _, link := range links {
		question := link.Question
		submitted, answered := answerMap[question.ID]
		totalPossibleScore += link.Points

		isCorrect := false
		switch question.Type {
		case model.QuestionTypeMultipleChoice, model.QuestionTypeTrueFalse:
			// Exact string comparison: no trimming, no case folding.
			if answered && question.CorrectAnswer != nil && submitted == *question.CorrectAnswer {
				isCorrect = true
				earnedScore += link.Points
			}
		case model.QuestionTypeEssay:
			// Essay answers are stored verbatim and wait for manual review;
			// they never contribute to the score.
		}

		awarded := 0
		if isCorrect {
			awarded = link.Points
		}
		graded[question.ID] = model.GradedAnswer{
			Answer:    submitted,
			IsCorrect: isCorrect,
			Points:    awarded,
		}
	}

	passingScore, err := s.examRepo.FindPassingScore(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		log.Error().Err(err).Uint("examID", examID).Msg("Submit: failed to fetch passing score")
		return nil, fmt.Errorf("%w: %v", ErrDataFetch, err)
	}

	// Absolute point threshold; deliberately not normalized against the
	// total possible score.
	passed := earnedScore >= passingScore

	now := s.now()
	submission := model.ExamSubmission{
		ExamID:      examID,
		UserID:      userID,
		Score:       earnedScore,
		Passed:      passed,
		Answers:     graded,
		Status:      model.SubmissionStatusCompleted,
		StartedAt:   now.Add(-time.Duration(elapsedSeconds) * time.Second),
		SubmittedAt: now,
	}

	if err := s.submissionRepo.Create(&submission); err != nil {
		log.Error().Err(err).Uint("examID", examID).Uint("userID", userID).Msg("Submit: failed to persist submission")
		return nil, fmt.Errorf("%w: %v", ErrPersist, err)
	}

	log.Info().
		Uint("submissionID", submission.ID).
		Uint("examID", examID).
		Uint("userID", userID).
		Int("score", earnedScore).
		Int("totalPossible", totalPossibleScore).
		Bool("passed", passed).
		Msg("Submission graded and saved")

	return &dto.SubmissionResultDTO{
		SubmissionID: submission.ID,
		Score:        earnedScore,
		Passed:       passed,
	}, nil
}

func (s *gradingService) GetSubmissionDetails(submissionID uint) (*dto.SubmissionDetailDTO, error) {
	submission, err := s.submissionRepo.FindByIDWithExam(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		log.Error().Err(err).Uint("submissionID", submissionID).Msg("GetSubmissionDetails: repository error")
		return nil, fmt.Errorf("error fetching submission %d: %w", submissionID, err)
	}

	var resp dto.SubmissionDetailDTO
	if err := copier.Copy(&resp, submission); err != nil {
		log.Error().Err(err).Msg("GetSubmissionDetails: failed to copy submission to DTO")
		return nil, fmt.Errorf("error preparing submission response: %w", err)
	}
	resp.ExamTitle = submission.Exam.Title
	return &resp, nil
}

func (s *gradingService) GetUserSubmissions(userID uint) ([]dto.SubmissionSummaryDTO, error) {
	submissions, err := s.submissionRepo.FindAllByUser(userID)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("GetUserSubmissions: repository error")
		return nil, fmt.Errorf("error fetching submissions for user %d: %w", userID, err)
	}

	dtos := make([]dto.SubmissionSummaryDTO, 0, len(submissions))
	for _, submission := range submissions {
		var summary dto.SubmissionSummaryDTO
		if err := copier.Copy(&summary, &submission); err != nil {
			log.Error().Err(err).Uint("submissionID", submission.ID).Msg("GetUserSubmissions: failed to copy submission to summary DTO")
			continue
		}
		summary.ExamTitle = submission.Exam.Title
		dtos = append(dtos, summary)
	}
	return dtos, nil
}

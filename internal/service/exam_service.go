package service

import (
	"errors"
	"fmt"

	"github.com/kkyydd4-lab/certificate/internal/dto"
	"github.com/kkyydd4-lab/certificate/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ExamService is the student-facing read surface: only active exams are
// visible, and questions are served without their answer key.
type ExamService interface {
	GetActiveExams() ([]dto.ExamSummaryDTO, error)
	GetExamDetails(examID uint) (*dto.ExamResponseDTO, error)
}

type examService struct {
	examRepo         repository.ExamRepository
	examQuestionRepo repository.ExamQuestionRepository
}

func NewExamService(examRepo repository.ExamRepository, examQuestionRepo repository.ExamQuestionRepository) ExamService {
	return &examService{examRepo: examRepo, examQuestionRepo: examQuestionRepo}
}

func (s *examService) GetActiveExams() ([]dto.ExamSummaryDTO, error) {
	examsWithCount, err := s.examRepo.FindAllWithQuestionCount(true)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list active exams with question count")
		return nil, fmt.Errorf("error fetching exams: %w", err)
	}

	var dtos []dto.ExamSummaryDTO
	for _, ewc := range examsWithCount {
		dtos = append(dtos, dto.ExamSummaryDTO{
			ID:            ewc.Exam.ID,
			Title:         ewc.Exam.Title,
			Description:   ewc.Exam.Description,
			TimeLimit:     ewc.Exam.TimeLimit,
			PassingScore:  ewc.Exam.PassingScore,
			IsActive:      ewc.Exam.IsActive,
			QuestionCount: ewc.QuestionCount,
			CreatedAt:     ewc.Exam.CreatedAt,
		})
	}
	return dtos, nil
}

func (s *examService) GetExamDetails(examID uint) (*dto.ExamResponseDTO, error) {
	exam, err := s.examRepo.FindByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		log.Error().Err(err).Uint("examID", examID).Msg("Failed to get exam details from repository")
		return nil, fmt.Errorf("error fetching exam %d: %w", examID, err)
	}
	if !exam.IsActive {
		// Inactive exams are indistinguishable from missing ones for students.
		return nil, ErrExamNotFound
	}

	links, err := s.examQuestionRepo.FindByExamID(examID)
	if err != nil {
		log.Error().Err(err).Uint("examID", examID).Msg("Failed to get exam questions from repository")
		return nil, fmt.Errorf("error fetching questions for exam %d: %w", examID, err)
	}

	questions := make([]dto.ExamQuestionDTO, 0, len(links))
	for _, link := range links {
		questions = append(questions, dto.ExamQuestionDTO{
			QuestionID:  link.QuestionID,
			Content:     link.Question.Content,
			Type:        link.Question.Type,
			Options:     link.Question.Options,
			OrderInExam: link.OrderInExam,
			Points:      link.Points,
		})
	}

	return &dto.ExamResponseDTO{
		ID:           exam.ID,
		Title:        exam.Title,
		Description:  exam.Description,
		TimeLimit:    exam.TimeLimit,
		PassingScore: exam.PassingScore,
		Questions:    questions,
		CreatedAt:    exam.CreatedAt,
	}, nil
}

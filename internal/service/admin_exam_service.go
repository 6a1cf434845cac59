package service

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jinzhu/copier"
	"github.com/kkyydd4-lab/certificate/internal/dto"
	"github.com/kkyydd4-lab/certificate/internal/model"
	"github.com/kkyydd4-lab/certificate/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AdminExamService covers exam authoring and the question bank.
type AdminExamService interface {
	CreateExam(req dto.ExamCreateDTO) (*dto.ExamSummaryDTO, error)
	UpdateExam(examID uint, req dto.ExamUpdateDTO) (*dto.ExamSummaryDTO, error)
	DeleteExam(examID uint) error

	CreateQuestion(req dto.QuestionCreateDTO) (*dto.QuestionResponseDTO, error)
	ListQuestions(filter repository.QuestionFilter) ([]dto.QuestionResponseDTO, int64, error)
	UpdateQuestion(questionID uint, req dto.QuestionCreateDTO) (*dto.QuestionResponseDTO, error)
	DeleteQuestion(questionID uint) error

	LinkQuestion(examID uint, req dto.ExamQuestionLinkDTO) error
	UnlinkQuestion(examID, questionID uint) error
	GetExamQuestions(examID uint) ([]model.ExamQuestion, error)
}

type adminExamService struct {
	examRepo         repository.ExamRepository
	questionRepo     repository.QuestionRepository
	examQuestionRepo repository.ExamQuestionRepository
}

func NewAdminExamService(
	examRepo repository.ExamRepository,
	questionRepo repository.QuestionRepository,
	examQuestionRepo repository.ExamQuestionRepository,
) AdminExamService {
	return &adminExamService{
		examRepo:         examRepo,
		questionRepo:     questionRepo,
		examQuestionRepo: examQuestionRepo,
	}
}

func (s *adminExamService) CreateExam(req dto.ExamCreateDTO) (*dto.ExamSummaryDTO, error) {
	exam := model.Exam{
		Title:        req.Title,
		Description:  req.Description,
		TimeLimit:    req.TimeLimit,
		PassingScore: req.PassingScore,
		IsActive:     req.IsActive,
		CreatedBy:    req.CreatedBy,
	}

	if err := s.examRepo.Create(&exam); err != nil {
		log.Error().Err(err).Msg("Failed to create exam in database")
		return nil, fmt.Errorf("database error creating exam: %w", err)
	}

	return s.examSummary(&exam, 0), nil
}

func (s *adminExamService) UpdateExam(examID uint, req dto.ExamUpdateDTO) (*dto.ExamSummaryDTO, error) {
	exam, err := s.examRepo.FindByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("error fetching exam %d: %w", examID, err)
	}

	if req.Title != nil {
		exam.Title = *req.Title
	}
	if req.Description != nil {
		exam.Description = *req.Description
	}
	if req.TimeLimit != nil {
		exam.TimeLimit = req.TimeLimit
	}
	if req.PassingScore != nil {
		exam.PassingScore = *req.PassingScore
	}
	if req.IsActive != nil {
		exam.IsActive = *req.IsActive
	}

	if err := s.examRepo.Update(exam); err != nil {
		log.Error().Err(err).Uint("examID", examID).Msg("Failed to update exam")
		return nil, fmt.Errorf("database error updating exam: %w", err)
	}

	total, err := s.examQuestionRepo.SumPoints(examID)
	if err == nil && total < exam.PassingScore {
		log.Warn().
			Uint("examID", examID).
			Int("passingScore", exam.PassingScore).
			Int("totalPoints", total).
			Msg("Exam passing score exceeds the sum of linked question points; it is currently unreachable")
	}

	return s.examSummary(exam, 0), nil
}

func (s *adminExamService) DeleteExam(examID uint) error {
	if _, err := s.examRepo.FindByID(examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExamNotFound
		}
		return fmt.Errorf("error fetching exam %d: %w", examID, err)
	}
	return s.examRepo.Delete(examID)
}

func validateQuestion(req *dto.QuestionCreateDTO) error {
	switch req.Type {
	case model.QuestionTypeMultipleChoice:
		if len(req.Options) < 2 {
			return fmt.Errorf("multiple_choice questions need at least 2 options, got %d", len(req.Options))
		}
		if req.CorrectAnswer == nil {
			return errors.New("multiple_choice questions require a correct_answer")
		}
		idx, err := strconv.Atoi(*req.CorrectAnswer)
		if err != nil || idx < 1 || idx > len(req.Options) {
			return fmt.Errorf("correct_answer for multiple_choice must be an option index between 1 and %d", len(req.Options))
		}
	case model.QuestionTypeTrueFalse:
		if req.CorrectAnswer == nil || (*req.CorrectAnswer != "true" && *req.CorrectAnswer != "false") {
			return errors.New(`correct_answer for true_false must be "true" or "false"`)
		}
		if len(req.Options) > 0 {
			return errors.New("true_false questions must not carry an option list")
		}
	case model.QuestionTypeEssay:
		if len(req.Options) > 0 {
			return errors.New("essay questions must not carry an option list")
		}
	default:
		return fmt.Errorf("unsupported question type %q", req.Type)
	}
	return nil
}

func (s *adminExamService) CreateQuestion(req dto.QuestionCreateDTO) (*dto.QuestionResponseDTO, error) {
	if err := validateQuestion(&req); err != nil {
		return nil, err
	}

	question := model.Question{
		Content:       req.Content,
		Type:          req.Type,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Explanation:   req.Explanation,
		Category:      req.Category,
		Difficulty:    req.Difficulty,
		CreatedBy:     req.CreatedBy,
	}
	if question.Difficulty == "" {
		question.Difficulty = "medium"
	}

	if err := s.questionRepo.Create(&question); err != nil {
		log.Error().Err(err).Msg("Failed to create question in database")
		return nil, fmt.Errorf("database error creating question: %w", err)
	}

	var resp dto.QuestionResponseDTO
	if err := copier.Copy(&resp, &question); err != nil {
		return nil, fmt.Errorf("error preparing question response: %w", err)
	}
	return &resp, nil
}

func (s *adminExamService) ListQuestions(filter repository.QuestionFilter) ([]dto.QuestionResponseDTO, int64, error) {
	questions, err := s.questionRepo.FindAll(filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list questions from repository")
		return nil, 0, fmt.Errorf("error fetching questions: %w", err)
	}
	count, err := s.questionRepo.Count(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting questions: %w", err)
	}

	dtos := make([]dto.QuestionResponseDTO, 0, len(questions))
	for _, question := range questions {
		var resp dto.QuestionResponseDTO
		if err := copier.Copy(&resp, &question); err != nil {
			log.Error().Err(err).Uint("questionID", question.ID).Msg("Failed to copy question to DTO")
			continue
		}
		dtos = append(dtos, resp)
	}
	return dtos, count, nil
}

func (s *adminExamService) UpdateQuestion(questionID uint, req dto.QuestionCreateDTO) (*dto.QuestionResponseDTO, error) {
	if err := validateQuestion(&req); err != nil {
		return nil, err
	}

	question, err := s.questionRepo.FindByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("error fetching question %d: %w", questionID, err)
	}

	question.Content = req.Content
	question.Type = req.Type
	question.Options = req.Options
	question.CorrectAnswer = req.CorrectAnswer
	question.Explanation = req.Explanation
	question.Category = req.Category
	if req.Difficulty != "" {
		question.Difficulty = req.Difficulty
	}

	if err := s.questionRepo.Update(question); err != nil {
		log.Error().Err(err).Uint("questionID", questionID).Msg("Failed to update question")
		return nil, fmt.Errorf("database error updating question: %w", err)
	}

	var resp dto.QuestionResponseDTO
	if err := copier.Copy(&resp, question); err != nil {
		return nil, fmt.Errorf("error preparing question response: %w", err)
	}
	return &resp, nil
}

func (s *adminExamService) DeleteQuestion(questionID uint) error {
	if _, err := s.questionRepo.FindByID(questionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("error fetching question %d: %w", questionID, err)
	}
	return s.questionRepo.Delete(questionID)
}

func (s *adminExamService) LinkQuestion(examID uint, req dto.ExamQuestionLinkDTO) error {
	exam, err := s.examRepo.FindByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExamNotFound
		}
		return fmt.Errorf("error fetching exam %d: %w", examID, err)
	}
	if _, err := s.questionRepo.FindByID(req.QuestionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("error fetching question %d: %w", req.QuestionID, err)
	}

	link := model.ExamQuestion{
		ExamID:      examID,
		QuestionID:  req.QuestionID,
		OrderInExam: req.OrderInExam,
		Points:      req.Points,
	}
	if err := s.examQuestionRepo.Upsert(&link); err != nil {
		log.Error().Err(err).Uint("examID", examID).Uint("questionID", req.QuestionID).Msg("Failed to link question to exam")
		return fmt.Errorf("database error linking question: %w", err)
	}

	// Reachability is advisory only; authoring an unreachable passing score
	// is allowed but worth flagging.
	total, err := s.examQuestionRepo.SumPoints(examID)
	if err == nil && total < exam.PassingScore {
		log.Warn().
			Uint("examID", examID).
			Int("passingScore", exam.PassingScore).
			Int("totalPoints", total).
			Msg("Exam passing score exceeds the sum of linked question points; it is currently unreachable")
	}
	return nil
}

func (s *adminExamService) UnlinkQuestion(examID, questionID uint) error {
	return s.examQuestionRepo.Delete(examID, questionID)
}

func (s *adminExamService) GetExamQuestions(examID uint) ([]model.ExamQuestion, error) {
	if _, err := s.examRepo.FindByID(examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("error fetching exam %d: %w", examID, err)
	}
	return s.examQuestionRepo.FindByExamID(examID)
}

func (s *adminExamService) examSummary(exam *model.Exam, questionCount int) *dto.ExamSummaryDTO {
	return &dto.ExamSummaryDTO{
		ID:            exam.ID,
		Title:         exam.Title,
		Description:   exam.Description,
		TimeLimit:     exam.TimeLimit,
		PassingScore:  exam.PassingScore,
		IsActive:      exam.IsActive,
		QuestionCount: questionCount,
		CreatedAt:     exam.CreatedAt,
	}
}

package repository

import (
	"github.com/kkyydd4-lab/certificate/internal/model"
	"gorm.io/gorm"
)

type SubmissionRepository interface {
	// Create writes the full submission record in a single insert.
	Create(submission *model.ExamSubmission) error
	FindByID(id uint) (*model.ExamSubmission, error)
	FindByIDWithExam(id uint) (*model.ExamSubmission, error)
	FindAllByUser(userID uint) ([]model.ExamSubmission, error)
	FindAllByExamAndUser(examID, userID uint) ([]model.ExamSubmission, error)
	CountByExam(examID uint) (int64, error)
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(submission *model.ExamSubmission) error {
	return r.db.Create(submission).Error
}

func (r *submissionRepository) FindByID(id uint) (*model.ExamSubmission, error) {
	var submission model.ExamSubmission
	if err := r.db.First(&submission, id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) FindByIDWithExam(id uint) (*model.ExamSubmission, error) {
	var submission model.ExamSubmission
	if err := r.db.Preload("Exam").First(&submission, id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) FindAllByUser(userID uint) ([]model.ExamSubmission, error) {
	var submissions []model.ExamSubmission
	err := r.db.
		Preload("Exam").
		Where("user_id = ?", userID).
		Order("submitted_at DESC").
		Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepository) FindAllByExamAndUser(examID, userID uint) ([]model.ExamSubmission, error) {
	var submissions []model.ExamSubmission
	err := r.db.
		Where("exam_id = ? AND user_id = ?", examID, userID).
		Order("submitted_at DESC").
		Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepository) CountByExam(examID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.ExamSubmission{}).
		Where("exam_id = ?", examID).
		Count(&count).Error
	return count, err
}

package repository

import (
	"github.com/kkyydd4-lab/certificate/internal/model"
	"gorm.io/gorm"
)

// ExamWithQuestionCount pairs an exam with the number of linked questions,
// for listing views.
type ExamWithQuestionCount struct {
	model.Exam
	QuestionCount int
}

type ExamRepository interface {
	Create(exam *model.Exam) error
	FindByID(id uint) (*model.Exam, error)
	FindPassingScore(id uint) (int, error)
	FindAllWithQuestionCount(activeOnly bool) ([]ExamWithQuestionCount, error)
	Update(exam *model.Exam) error
	Delete(id uint) error
}

type examRepository struct {
	db *gorm.DB
}

func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) Create(exam *model.Exam) error {
	return r.db.Create(exam).Error
}

func (r *examRepository) FindByID(id uint) (*model.Exam, error) {
	var exam model.Exam
	if err := r.db.First(&exam, id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *examRepository) FindPassingScore(id uint) (int, error) {
	var exam model.Exam
	if err := r.db.Select("passing_score").First(&exam, id).Error; err != nil {
		return 0, err
	}
	return exam.PassingScore, nil
}

func (r *examRepository) FindAllWithQuestionCount(activeOnly bool) ([]ExamWithQuestionCount, error) {
	var results []ExamWithQuestionCount
	query := r.db.Model(&model.Exam{}).
		Select("exams.*, (SELECT COUNT(*) FROM exam_questions WHERE exam_questions.exam_id = exams.id) as question_count").
		Where("exams.deleted_at IS NULL").
		Order("exams.created_at DESC")
	if activeOnly {
		query = query.Where("exams.is_active = ?", true)
	}
	err := query.Scan(&results).Error
	return results, err
}

func (r *examRepository) Update(exam *model.Exam) error {
	return r.db.Save(exam).Error
}

func (r *examRepository) Delete(id uint) error {
	return r.db.Delete(&model.Exam{}, id).Error
}

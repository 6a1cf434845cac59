package repository

import (
	"github.com/kkyydd4-lab/certificate/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExamQuestionRepository interface {
	// Upsert links a question into an exam; linking an already linked
	// question overwrites its order and points.
	Upsert(link *model.ExamQuestion) error
	// FindByExamID returns the links of an exam ordered by their display
	// sequence, each joined to its question (including the correct answer).
	FindByExamID(examID uint) ([]model.ExamQuestion, error)
	SumPoints(examID uint) (int, error)
	Delete(examID, questionID uint) error
}

type examQuestionRepository struct {
	db *gorm.DB
}

func NewExamQuestionRepository(db *gorm.DB) ExamQuestionRepository {
	return &examQuestionRepository{db: db}
}

func (r *examQuestionRepository) Upsert(link *model.ExamQuestion) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "exam_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"order_in_exam", "points"}),
	}).Create(link).Error
}

func (r *examQuestionRepository) FindByExamID(examID uint) ([]model.ExamQuestion, error) {
	var links []model.ExamQuestion
	err := r.db.
		Preload("Question").
		Where("exam_id = ?", examID).
		Order("order_in_exam ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (r *examQuestionRepository) SumPoints(examID uint) (int, error) {
	var total int64
	err := r.db.Model(&model.ExamQuestion{}).
		Where("exam_id = ?", examID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error
	return int(total), err
}

func (r *examQuestionRepository) Delete(examID, questionID uint) error {
	return r.db.
		Where("exam_id = ? AND question_id = ?", examID, questionID).
		Delete(&model.ExamQuestion{}).Error
}

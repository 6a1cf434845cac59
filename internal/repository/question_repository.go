package repository

import (
	"github.com/kkyydd4-lab/certificate/internal/model"
	"gorm.io/gorm"
)

// QuestionFilter narrows bank listings. Zero values mean "no filter".
type QuestionFilter struct {
	Type       string
	Category   string
	Difficulty string
}

type QuestionRepository interface {
	Create(question *model.Question) error
	FindByID(id uint) (*model.Question, error)
	FindAll(filter QuestionFilter) ([]model.Question, error)
	Count(filter QuestionFilter) (int64, error)
	Update(question *model.Question) error
	Delete(id uint) error
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(question *model.Question) error {
	return r.db.Create(question).Error
}

func (r *questionRepository) FindByID(id uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) applyFilter(query *gorm.DB, filter QuestionFilter) *gorm.DB {
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}
	return query
}

func (r *questionRepository) FindAll(filter QuestionFilter) ([]model.Question, error) {
	var questions []model.Question
	query := r.applyFilter(r.db, filter)
	if err := query.Order("created_at desc").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) Count(filter QuestionFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.Model(&model.Question{}), filter)
	err := query.Count(&count).Error
	return count, err
}

func (r *questionRepository) Update(question *model.Question) error {
	return r.db.Save(question).Error
}

func (r *questionRepository) Delete(id uint) error {
	return r.db.Delete(&model.Question{}, id).Error
}

package dto

import (
	"time"

	"github.com/kkyydd4-lab/certificate/internal/model"
)

// ExamCreateDTO is for admins to create a new exam shell. Questions are
// linked separately from the question bank.
type ExamCreateDTO struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	TimeLimit    *int   `json:"time_limit" binding:"omitempty,gt=0"` // minutes
	PassingScore int    `json:"passing_score" binding:"required,gt=0"`
	IsActive     bool   `json:"is_active"`
	CreatedBy    *uint  `json:"created_by"`
}

// ExamUpdateDTO carries partial updates; nil fields are left untouched.
type ExamUpdateDTO struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	TimeLimit    *int    `json:"time_limit" binding:"omitempty,gt=0"`
	PassingScore *int    `json:"passing_score" binding:"omitempty,gt=0"`
	IsActive     *bool   `json:"is_active"`
}

// QuestionCreateDTO adds a question to the bank.
type QuestionCreateDTO struct {
	Content       string                 `json:"content" binding:"required"`
	Type          string                 `json:"type" binding:"required,oneof=multiple_choice true_false essay"`
	Options       []model.QuestionOption `json:"options" binding:"omitempty,dive"`
	CorrectAnswer *string                `json:"correct_answer"`
	Explanation   *string                `json:"explanation"`
	Category      *string                `json:"category"`
	Difficulty    string                 `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	CreatedBy     *uint                  `json:"created_by"`
}

// QuestionResponseDTO is the admin view of a bank question, including the
// correct answer.
type QuestionResponseDTO struct {
	ID            uint                   `json:"id"`
	Content       string                 `json:"content"`
	Type          string                 `json:"type"`
	Options       []model.QuestionOption `json:"options,omitempty"`
	CorrectAnswer *string                `json:"correct_answer,omitempty"`
	Explanation   *string                `json:"explanation,omitempty"`
	Category      *string                `json:"category,omitempty"`
	Difficulty    string                 `json:"difficulty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// ExamQuestionLinkDTO links a bank question into an exam with order and
// weight. Linking the same question twice updates order and points in place.
type ExamQuestionLinkDTO struct {
	QuestionID  uint `json:"question_id" binding:"required"`
	OrderInExam int  `json:"order" binding:"required,min=1"`
	Points      int  `json:"points" binding:"required,gt=0"`
}

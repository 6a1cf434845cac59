package dto

import (
	"time"

	"github.com/kkyydd4-lab/certificate/internal/model"
)

// ExamSummaryDTO is used for listing exams available to students.
type ExamSummaryDTO struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	TimeLimit     *int      `json:"time_limit,omitempty"`
	PassingScore  int       `json:"passing_score"`
	IsActive      bool      `json:"is_active"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// ExamQuestionDTO is a question as shown to a student inside an exam room:
// correct answer and explanation are stripped.
type ExamQuestionDTO struct {
	QuestionID  uint                   `json:"question_id"`
	Content     string                 `json:"content"`
	Type        string                 `json:"type"`
	Options     []model.QuestionOption `json:"options,omitempty"`
	OrderInExam int                    `json:"order"`
	Points      int                    `json:"points"`
}

// ExamResponseDTO is the full exam view a student sees before and during a
// session.
type ExamResponseDTO struct {
	ID           uint              `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	TimeLimit    *int              `json:"time_limit,omitempty"`
	PassingScore int               `json:"passing_score"`
	Questions    []ExamQuestionDTO `json:"questions,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

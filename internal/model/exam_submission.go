package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

const SubmissionStatusCompleted = "completed"

// GradedAnswer records the outcome of grading one question within a
// submission. Points is the awarded amount: the question's weight when
// correct, zero otherwise.
type GradedAnswer struct {
	Answer    string `json:"answer"`
	IsCorrect bool   `json:"is_correct"`
	Points    int    `json:"points"`
}

// GradedAnswerMap keys graded answers by question ID and is stored as JSONB.
type GradedAnswerMap map[uint]GradedAnswer

func (m GradedAnswerMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *GradedAnswerMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("unsupported type for GradedAnswerMap")
	}
}

// ExamSubmission is written exactly once per completed attempt and is
// immutable afterwards.
type ExamSubmission struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	ExamID      uint            `json:"exam_id" gorm:"not null;index"`
	Exam        Exam            `json:"exam,omitempty" gorm:"foreignKey:ExamID"`
	UserID      uint            `json:"user_id" gorm:"not null;index"`
	Score       int             `json:"score"` // earned points
	Passed      bool            `json:"passed"`
	Answers     GradedAnswerMap `json:"answers" gorm:"type:jsonb"`
	Status      string          `json:"status" gorm:"default:'completed'"`
	StartedAt   time.Time       `json:"started_at"`
	SubmittedAt time.Time       `json:"submitted_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTrueFalse      = "true_false"
	QuestionTypeEssay          = "essay"
)

// QuestionOption is one selectable choice of a multiple_choice question.
type QuestionOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// OptionList is stored as a JSONB column.
type OptionList []QuestionOption

func (o OptionList) Value() (driver.Value, error) {
	if o == nil {
		return nil, nil
	}
	return json.Marshal(o)
}

func (o *OptionList) Scan(value interface{}) error {
	if value == nil {
		*o = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, o)
	case string:
		return json.Unmarshal([]byte(v), o)
	default:
		return errors.New("unsupported type for OptionList")
	}
}

type Question struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	Content string `json:"content" gorm:"type:text;not null"`
	Type    string `json:"type" gorm:"not null"` // "multiple_choice", "true_false", "essay"
	// Options is only set for multiple_choice questions.
	Options OptionList `json:"options,omitempty" gorm:"type:jsonb"`
	// CorrectAnswer holds the 1-based option index as text for multiple_choice,
	// "true"/"false" for true_false, and is nil for essay questions.
	CorrectAnswer *string        `json:"correct_answer,omitempty"`
	Explanation   *string        `json:"explanation,omitempty" gorm:"type:text"`
	Category      *string        `json:"category,omitempty" gorm:"index"`
	Difficulty    string         `json:"difficulty" gorm:"default:'medium'"` // "easy", "medium", "hard"
	CreatedBy     *uint          `json:"created_by,omitempty" gorm:"index"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

package model

import (
	"time"

	"gorm.io/gorm"
)

type Exam struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description,omitempty"`
	// TimeLimit is in minutes. nil means the exam has no limit of its own and
	// the configured default applies when a session starts.
	TimeLimit    *int           `json:"time_limit,omitempty"`
	PassingScore int            `json:"passing_score" gorm:"not null"` // absolute points, not a percentage
	IsActive     bool           `json:"is_active" gorm:"default:false"`
	CreatedBy    *uint          `json:"created_by,omitempty" gorm:"index"`
	Questions    []ExamQuestion `json:"questions,omitempty" gorm:"foreignKey:ExamID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

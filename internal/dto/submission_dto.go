package dto

import (
	"time"

	"github.com/kkyydd4-lab/certificate/internal/model"
)

// SubmissionResultDTO is returned right after grading completes.
type SubmissionResultDTO struct {
	SubmissionID uint `json:"submission_id"`
	Score        int  `json:"score"`
	Passed       bool `json:"passed"`
}

// SubmissionSummaryDTO lists a user's past submissions.
type SubmissionSummaryDTO struct {
	ID          uint      `json:"id"`
	ExamID      uint      `json:"exam_id"`
	ExamTitle   string    `json:"exam_title,omitempty"`
	UserID      uint      `json:"user_id"`
	Score       int       `json:"score"`
	Passed      bool      `json:"passed"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// SubmissionDetailDTO is the full graded record of one attempt.
type SubmissionDetailDTO struct {
	ID          uint                  `json:"id"`
	ExamID      uint                  `json:"exam_id"`
	ExamTitle   string                `json:"exam_title,omitempty"`
	UserID      uint                  `json:"user_id"`
	Score       int                   `json:"score"`
	Passed      bool                  `json:"passed"`
	Answers     model.GradedAnswerMap `json:"answers"`
	Status      string                `json:"status"`
	StartedAt   time.Time             `json:"started_at"`
	SubmittedAt time.Time             `json:"submitted_at"`
}

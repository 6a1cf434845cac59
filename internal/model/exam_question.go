package model

// ExamQuestion links a bank question into an exam with a per-exam display
// order and point value. The same question may appear in many exams with
// different weights.
type ExamQuestion struct {
	ExamID      uint     `json:"exam_id" gorm:"primaryKey;autoIncrement:false"`
	QuestionID  uint     `json:"question_id" gorm:"primaryKey;autoIncrement:false"`
	Question    Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	OrderInExam int      `json:"order" gorm:"column:order_in_exam;not null"`
	Points      int      `json:"points" gorm:"not null"`
}

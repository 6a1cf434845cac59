package dto

// SessionStartDTO opens a new exam session for a user.
type SessionStartDTO struct {
	UserID uint `json:"user_id" binding:"required"`
}

// SessionStateDTO is the polled status of a running session.
type SessionStateDTO struct {
	Token            string `json:"token"`
	ExamID           uint   `json:"exam_id"`
	State            string `json:"state"`
	RemainingSeconds int    `json:"remaining_seconds"`
	Warnings         int    `json:"warnings"`
	AnsweredCount    int    `json:"answered_count"`
}

// SessionAnswerDTO records or overwrites the answer for one question.
type SessionAnswerDTO struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
}

// IntegrityEventDTO reports a browser-side violation event.
type IntegrityEventDTO struct {
	Kind string `json:"kind" binding:"required,oneof=copy_paste visibility_change"`
}

// IntegrityEventResultDTO tells the client whether to suppress the event and
// whether to surface a warning notice.
type IntegrityEventResultDTO struct {
	Warnings   int    `json:"warnings"`
	Suppressed bool   `json:"suppressed"`
	Notice     string `json:"notice,omitempty"`
}

// SessionSubmitDTO triggers submission. Confirmed mirrors the yes/no dialog:
// a manual submit without confirmation is a no-op.
type SessionSubmitDTO struct {
	Confirmed bool `json:"confirmed"`
}

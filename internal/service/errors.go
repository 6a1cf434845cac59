package service

import "errors"

var (
	// ErrUnauthorized means no authenticated user was available at submit time.
	ErrUnauthorized = errors.New("unauthorized: no authenticated user")

	// ErrExamNotFound covers both a missing exam and an exam hidden from
	// students (inactive).
	ErrExamNotFound = errors.New("exam not found")

	ErrQuestionNotFound   = errors.New("question not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrSessionNotFound    = errors.New("session not found")

	// ErrDataFetch means the authoritative question/answer data could not be
	// loaded; the submit attempt fails and the caller may retry.
	ErrDataFetch = errors.New("failed to load exam data for grading")

	// ErrPersist means the graded submission could not be saved. Nothing was
	// persisted; a retry recomputes from the same inputs.
	ErrPersist = errors.New("failed to save submission")
)

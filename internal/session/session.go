// Package session implements the in-memory lifecycle of a single exam
// attempt: the countdown, the answer map, integrity warnings, and the
// hand-off to grading. Nothing here touches storage; a session that is
// abandoned simply disappears with its owner.
package session

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	StateNotStarted = "not_started"
	StateInProgress = "in_progress"
	StateSubmitting = "submitting"
	StateCompleted  = "completed"
)

var (
	ErrNotStarted     = errors.New("session has not started")
	ErrAlreadyStarted = errors.New("session already started")
	ErrSubmitting     = errors.New("submission already in progress")
	ErrCompleted      = errors.New("session already completed")
)

// Result is what grading hands back for a completed attempt.
type Result struct {
	SubmissionID uint
	Score        int
	Passed       bool
}

// Submitter grades and persists a finished attempt. Any error leaves nothing
// persisted and the session open for retry.
type Submitter interface {
	Submit(examID, userID uint, answers map[uint]string, elapsedSeconds int) (*Result, error)
}

// Session is one student's single attempt at one exam. All methods are safe
// for concurrent use; the submitting guard makes duplicate submit triggers
// (timer expiry racing a manual click) collapse into one.
type Session struct {
	mu           sync.Mutex
	token        string
	examID       uint
	userID       uint
	state        string
	totalSeconds int
	remaining    int
	answers      map[uint]string
	monitor      *Monitor
	submitter    Submitter
	result       *Result
}

// New builds a session in the NOT_STARTED state. timeLimitMinutes must be
// finite; callers resolve a missing exam limit to the configured default
// before getting here.
func New(token string, examID, userID uint, timeLimitMinutes int, submitter Submitter, monitor *Monitor) *Session {
	if monitor == nil {
		monitor = NewMonitor(nil, nil)
	}
	return &Session{
		token:        token,
		examID:       examID,
		userID:       userID,
		state:        StateNotStarted,
		totalSeconds: timeLimitMinutes * 60,
		remaining:    timeLimitMinutes * 60,
		answers:      make(map[uint]string),
		monitor:      monitor,
		submitter:    submitter,
	}
}

// Start moves the session into IN_PROGRESS, arms the integrity monitor and
// issues the best-effort full-screen request. There is no way back to
// NOT_STARTED afterwards.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.state != StateNotStarted {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.state = StateInProgress
	s.remaining = s.totalSeconds
	s.mu.Unlock()

	s.monitor.Subscribe()
	s.monitor.RequestFullscreen()

	log.Info().Str("token", s.token).Uint("examID", s.examID).Int("totalSeconds", s.totalSeconds).Msg("Exam session started")
	return nil
}

// RecordAnswer stores the answer for a question, overwriting any previous
// value. The answer's shape is not validated against the question type here;
// grading compares against the authoritative key later.
func (s *Session) RecordAnswer(questionID uint, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateNotStarted:
		return ErrNotStarted
	case StateSubmitting:
		return ErrSubmitting
	case StateCompleted:
		return ErrCompleted
	}
	s.answers[questionID] = answer
	return nil
}

// Tick advances the countdown by one second. When the remaining time reaches
// zero the session submits itself without asking for confirmation. A failed
// auto-submit leaves the session in IN_PROGRESS at zero remaining, so the
// next tick retries.
func (s *Session) Tick() {
	s.mu.Lock()
	if s.state != StateInProgress {
		s.mu.Unlock()
		return
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining > 0 {
		s.mu.Unlock()
		return
	}

	log.Info().Str("token", s.token).Msg("Exam time expired, submitting automatically")
	if _, err := s.finishLocked(); err != nil {
		log.Error().Err(err).Str("token", s.token).Msg("Automatic submission failed, will retry on next tick")
	}
}

// Submit performs a manual submission. It is gated by the confirmation flag:
// an unconfirmed submit is a no-op and the session stays IN_PROGRESS. On
// failure the answer map and remaining time are untouched and the session
// reverts to IN_PROGRESS for a retry.
func (s *Session) Submit(confirmed bool) (*Result, error) {
	s.mu.Lock()
	switch s.state {
	case StateNotStarted:
		s.mu.Unlock()
		return nil, ErrNotStarted
	case StateSubmitting:
		s.mu.Unlock()
		return nil, ErrSubmitting
	case StateCompleted:
		s.mu.Unlock()
		return nil, ErrCompleted
	}
	if !confirmed {
		s.mu.Unlock()
		return nil, nil
	}
	return s.finishLocked()
}

// finishLocked flips the submitting guard, releases the lock for the grading
// call, then finalizes. The caller must hold s.mu; it is released on return.
func (s *Session) finishLocked() (*Result, error) {
	s.state = StateSubmitting
	answers := make(map[uint]string, len(s.answers))
	for id, answer := range s.answers {
		answers[id] = answer
	}
	elapsed := s.totalSeconds - s.remaining
	examID, userID := s.examID, s.userID
	s.mu.Unlock()

	result, err := s.submitter.Submit(examID, userID, answers, elapsed)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateInProgress
		return nil, err
	}
	s.state = StateCompleted
	s.result = result
	s.monitor.Unsubscribe()
	return result, nil
}

func (s *Session) Token() string { return s.token }

func (s *Session) ExamID() uint { return s.examID }

func (s *Session) UserID() uint { return s.userID }

func (s *Session) Monitor() *Monitor { return s.monitor }

func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) RemainingSeconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// ElapsedSeconds is the configured total minus the remaining time, not a
// wall-clock difference.
func (s *Session) ElapsedSeconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalSeconds - s.remaining
}

func (s *Session) AnsweredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

func (s *Session) Warnings() int {
	return s.monitor.Warnings()
}

// Result returns the grading outcome once the session has completed.
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kkyydd4-lab/certificate/config"
	"github.com/kkyydd4-lab/certificate/internal/dto"
	"github.com/kkyydd4-lab/certificate/internal/repository"
	"github.com/kkyydd4-lab/certificate/internal/session"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SessionService owns the registry of live exam sessions. Sessions exist only
// in memory: abandoning one (or restarting the server) discards it without a
// trace, and nothing is persisted until grading writes the submission.
type SessionService interface {
	StartSession(examID, userID uint) (*dto.SessionStateDTO, error)
	GetSession(token string) (*dto.SessionStateDTO, error)
	RecordAnswer(token string, req dto.SessionAnswerDTO) error
	ReportIntegrityEvent(token string, req dto.IntegrityEventDTO) (*dto.IntegrityEventResultDTO, error)
	// SubmitSession returns (nil, nil) when the submission was not confirmed;
	// the session stays in progress.
	SubmitSession(token string, confirmed bool) (*dto.SubmissionResultDTO, error)
	Shutdown()
}

// gradingSubmitter adapts GradingService to the session package's Submitter.
type gradingSubmitter struct {
	grading GradingService
}

func (g gradingSubmitter) Submit(examID, userID uint, answers map[uint]string, elapsedSeconds int) (*session.Result, error) {
	result, err := g.grading.Submit(examID, userID, answers, elapsedSeconds)
	if err != nil {
		return nil, err
	}
	return &session.Result{
		SubmissionID: result.SubmissionID,
		Score:        result.Score,
		Passed:       result.Passed,
	}, nil
}

type liveSession struct {
	sess *session.Session
	stop chan struct{}
}

type sessionService struct {
	mu                      sync.Mutex
	sessions                map[string]*liveSession
	examRepo                repository.ExamRepository
	examQuestionRepo        repository.ExamQuestionRepository
	grading                 GradingService
	defaultTimeLimitMinutes int
}

func NewSessionService(
	examRepo repository.ExamRepository,
	examQuestionRepo repository.ExamQuestionRepository,
	grading GradingService,
	cfg *config.Config,
) SessionService {
	return &sessionService{
		sessions:                make(map[string]*liveSession),
		examRepo:                examRepo,
		examQuestionRepo:        examQuestionRepo,
		grading:                 grading,
		defaultTimeLimitMinutes: cfg.Exam.DefaultTimeLimitMinutes,
	}
}

func (s *sessionService) StartSession(examID, userID uint) (*dto.SessionStateDTO, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}

	exam, err := s.examRepo.FindByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		log.Error().Err(err).Uint("examID", examID).Msg("StartSession: failed to fetch exam")
		return nil, fmt.Errorf("error fetching exam %d: %w", examID, err)
	}
	if !exam.IsActive {
		return nil, ErrExamNotFound
	}

	links, err := s.examQuestionRepo.FindByExamID(examID)
	if err != nil {
		return nil, fmt.Errorf("error fetching questions for exam %d: %w", examID, err)
	}
	if len(links) == 0 {
		return nil, fmt.Errorf("exam %d has no questions, a session cannot be started", examID)
	}

	// A null time limit never means "unlimited": the countdown needs a
	// finite value, so the configured default applies.
	timeLimit := s.defaultTimeLimitMinutes
	if exam.TimeLimit != nil {
		timeLimit = *exam.TimeLimit
	}

	token := uuid.NewString()
	monitor := session.NewMonitor(func(kind session.ViolationKind, warnings int) {
		log.Warn().Str("token", token).Str("kind", string(kind)).Int("warnings", warnings).Msg("Session integrity violation")
	}, func() error {
		// The full-screen switch happens in the browser; the server only
		// records that the request was issued.
		log.Info().Str("token", token).Msg("Full screen presentation requested")
		return nil
	})

	sess := session.New(token, examID, userID, timeLimit, gradingSubmitter{grading: s.grading}, monitor)
	if err := sess.Start(); err != nil {
		return nil, err
	}

	live := &liveSession{sess: sess, stop: make(chan struct{})}
	s.mu.Lock()
	s.sessions[token] = live
	s.mu.Unlock()

	go s.runCountdown(live)

	return s.stateDTO(sess), nil
}

// runCountdown drives the one-second tick until the session completes or the
// registry drops it.
func (s *sessionService) runCountdown(live *liveSession) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-live.stop:
			return
		case <-ticker.C:
			live.sess.Tick()
			if live.sess.State() == session.StateCompleted {
				s.remove(live.sess.Token())
				return
			}
		}
	}
}

func (s *sessionService) lookup(token string) (*liveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	live, ok := s.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return live, nil
}

func (s *sessionService) remove(token string) {
	s.mu.Lock()
	live, ok := s.sessions[token]
	if ok {
		delete(s.sessions, token)
	}
	s.mu.Unlock()
	if ok {
		select {
		case <-live.stop:
		default:
			close(live.stop)
		}
	}
}

func (s *sessionService) GetSession(token string) (*dto.SessionStateDTO, error) {
	live, err := s.lookup(token)
	if err != nil {
		return nil, err
	}
	return s.stateDTO(live.sess), nil
}

func (s *sessionService) RecordAnswer(token string, req dto.SessionAnswerDTO) error {
	live, err := s.lookup(token)
	if err != nil {
		return err
	}
	return live.sess.RecordAnswer(req.QuestionID, req.Answer)
}

func (s *sessionService) ReportIntegrityEvent(token string, req dto.IntegrityEventDTO) (*dto.IntegrityEventResultDTO, error) {
	live, err := s.lookup(token)
	if err != nil {
		return nil, err
	}

	monitor := live.sess.Monitor()
	result := dto.IntegrityEventResultDTO{}
	switch session.ViolationKind(req.Kind) {
	case session.ViolationCopyPaste:
		result.Suppressed = monitor.ReportCopyPaste()
	case session.ViolationVisibilityChange:
		result.Notice = monitor.ReportVisibilityLoss()
	default:
		return nil, fmt.Errorf("unknown integrity event kind %q", req.Kind)
	}
	result.Warnings = monitor.Warnings()
	return &result, nil
}

func (s *sessionService) SubmitSession(token string, confirmed bool) (*dto.SubmissionResultDTO, error) {
	live, err := s.lookup(token)
	if err != nil {
		return nil, err
	}

	result, err := live.sess.Submit(confirmed)
	if err != nil {
		if errors.Is(err, session.ErrSubmitting) || errors.Is(err, session.ErrCompleted) {
			// Duplicate trigger; the first one wins.
			return nil, err
		}
		log.Error().Err(err).Str("token", token).Msg("SubmitSession: grading failed, session stays in progress")
		return nil, err
	}
	if result == nil {
		// Not confirmed.
		return nil, nil
	}

	s.remove(token)
	return &dto.SubmissionResultDTO{
		SubmissionID: result.SubmissionID,
		Score:        result.Score,
		Passed:       result.Passed,
	}, nil
}

// Shutdown stops every countdown goroutine. In-flight sessions are discarded,
// matching the no-resume policy.
func (s *sessionService) Shutdown() {
	s.mu.Lock()
	tokens := make([]string, 0, len(s.sessions))
	for token := range s.sessions {
		tokens = append(tokens, token)
	}
	s.mu.Unlock()
	for _, token := range tokens {
		s.remove(token)
	}
}

func (s *sessionService) stateDTO(sess *session.Session) *dto.SessionStateDTO {
	return &dto.SessionStateDTO{
		Token:            sess.Token(),
		ExamID:           sess.ExamID(),
		State:            sess.State(),
		RemainingSeconds: sess.RemainingSeconds(),
		Warnings:         sess.Warnings(),
		AnsweredCount:    sess.AnsweredCount(),
	}
}

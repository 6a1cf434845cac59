package service

import (
	"errors"
	"testing"

	"github.com/kkyydd4-lab/certificate/config"
	"github.com/kkyydd4-lab/certificate/internal/dto"
	"github.com/kkyydd4-lab/certificate/internal/model"
	"github.com/kkyydd4-lab/certificate/internal/session"
)

// fakeGrading stands in for the grading pipeline behind a live session.
type fakeGrading struct {
	calls  int
	result dto.SubmissionResultDTO
	err    error
}

func (f *fakeGrading) Submit(examID, userID uint, answerMap map[uint]string, elapsedSeconds int) (*dto.SubmissionResultDTO, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	result := f.result
	return &result, nil
}

func (f *fakeGrading) GetSubmissionDetails(submissionID uint) (*dto.SubmissionDetailDTO, error) {
	return nil, ErrSubmissionNotFound
}

func (f *fakeGrading) GetUserSubmissions(userID uint) ([]dto.SubmissionSummaryDTO, error) {
	return nil, nil
}

func intPtr(n int) *int { return &n }

func newTestSessionService(exam *model.Exam, links []model.ExamQuestion, grading GradingService) SessionService {
	exams := map[uint]*model.Exam{}
	if exam != nil {
		exams[exam.ID] = exam
	}
	return NewSessionService(
		&fakeExamRepo{exams: exams},
		&fakeExamQuestionRepo{links: map[uint][]model.ExamQuestion{1: links}},
		grading,
		&config.Config{Exam: config.Exam{DefaultTimeLimitMinutes: 45}},
	)
}

func activeExam(timeLimit *int) *model.Exam {
	return &model.Exam{ID: 1, Title: "Cloud Fundamentals", TimeLimit: timeLimit, PassingScore: 10, IsActive: true}
}

func TestStartSessionUsesExamTimeLimit(t *testing.T) {
	svc := newTestSessionService(activeExam(intPtr(90)), []model.ExamQuestion{tfLink(1, "true", 10)}, &fakeGrading{})
	defer svc.Shutdown()

	state, err := svc.StartSession(1, 7)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if state.RemainingSeconds != 90*60 {
		t.Errorf("remaining = %d, want %d", state.RemainingSeconds, 90*60)
	}
	if state.State != session.StateInProgress {
		t.Errorf("state = %q, want %q", state.State, session.StateInProgress)
	}
	if state.Token == "" {
		t.Error("expected a session token")
	}
}

func TestStartSessionFallsBackToDefaultTimeLimit(t *testing.T) {
	svc := newTestSessionService(activeExam(nil), []model.ExamQuestion{tfLink(1, "true", 10)}, &fakeGrading{})
	defer svc.Shutdown()

	state, err := svc.StartSession(1, 7)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if state.RemainingSeconds != 45*60 {
		t.Errorf("remaining = %d, want the configured default %d", state.RemainingSeconds, 45*60)
	}
}

func TestStartSessionRejections(t *testing.T) {
	inactive := activeExam(nil)
	inactive.IsActive = false

	tests := []struct {
		name    string
		exam    *model.Exam
		links   []model.ExamQuestion
		userID  uint
		wantErr error
	}{
		{"anonymous user", activeExam(nil), []model.ExamQuestion{tfLink(1, "true", 10)}, 0, ErrUnauthorized},
		{"unknown exam", nil, nil, 7, ErrExamNotFound},
		{"inactive exam", inactive, []model.ExamQuestion{tfLink(1, "true", 10)}, 7, ErrExamNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestSessionService(tt.exam, tt.links, &fakeGrading{})
			defer svc.Shutdown()
			if _, err := svc.StartSession(1, tt.userID); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestStartSessionRequiresQuestions(t *testing.T) {
	svc := newTestSessionService(activeExam(nil), nil, &fakeGrading{})
	defer svc.Shutdown()

	if _, err := svc.StartSession(1, 7); err == nil {
		t.Fatal("expected an error for an exam with no questions")
	}
}

func TestIntegrityEventsAccumulateOnSession(t *testing.T) {
	svc := newTestSessionService(activeExam(nil), []model.ExamQuestion{tfLink(1, "true", 10)}, &fakeGrading{})
	defer svc.Shutdown()

	state, err := svc.StartSession(1, 7)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	result, err := svc.ReportIntegrityEvent(state.Token, dto.IntegrityEventDTO{Kind: "copy_paste"})
	if err != nil {
		t.Fatalf("ReportIntegrityEvent failed: %v", err)
	}
	if !result.Suppressed || result.Warnings != 1 {
		t.Errorf("copy_paste result = %+v, want suppressed with 1 warning", result)
	}

	result, err = svc.ReportIntegrityEvent(state.Token, dto.IntegrityEventDTO{Kind: "visibility_change"})
	if err != nil {
		t.Fatalf("ReportIntegrityEvent failed: %v", err)
	}
	if result.Notice == "" || result.Warnings != 2 {
		t.Errorf("visibility_change result = %+v, want a notice and 2 warnings", result)
	}

	if _, err := svc.ReportIntegrityEvent("missing-token", dto.IntegrityEventDTO{Kind: "copy_paste"}); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSubmitSessionLifecycle(t *testing.T) {
	grading := &fakeGrading{result: dto.SubmissionResultDTO{SubmissionID: 42, Score: 10, Passed: true}}
	svc := newTestSessionService(activeExam(nil), []model.ExamQuestion{tfLink(1, "true", 10)}, grading)
	defer svc.Shutdown()

	state, err := svc.StartSession(1, 7)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if err := svc.RecordAnswer(state.Token, dto.SessionAnswerDTO{QuestionID: 1, Answer: "true"}); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}

	// Declined confirmation leaves the session running and grading untouched.
	result, err := svc.SubmitSession(state.Token, false)
	if err != nil || result != nil {
		t.Fatalf("unconfirmed submit should be a no-op, got result=%v err=%v", result, err)
	}
	if grading.calls != 0 {
		t.Fatalf("expected no grading call, got %d", grading.calls)
	}
	if _, err := svc.GetSession(state.Token); err != nil {
		t.Fatalf("session must survive a declined submit: %v", err)
	}

	result, err = svc.SubmitSession(state.Token, true)
	if err != nil {
		t.Fatalf("SubmitSession failed: %v", err)
	}
	if result.SubmissionID != 42 || result.Score != 10 || !result.Passed {
		t.Fatalf("unexpected result %+v", result)
	}

	// The registry drops the session once the submission is saved.
	if _, err := svc.GetSession(state.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after submit, got %v", err)
	}
}

func TestSubmitSessionKeepsSessionOnGradingFailure(t *testing.T) {
	grading := &fakeGrading{err: ErrPersist}
	svc := newTestSessionService(activeExam(nil), []model.ExamQuestion{tfLink(1, "true", 10)}, grading)
	defer svc.Shutdown()

	state, err := svc.StartSession(1, 7)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if err := svc.RecordAnswer(state.Token, dto.SessionAnswerDTO{QuestionID: 1, Answer: "true"}); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}

	if _, err := svc.SubmitSession(state.Token, true); !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}

	// Session and answers survive for a retry.
	after, err := svc.GetSession(state.Token)
	if err != nil {
		t.Fatalf("session must survive a failed submit: %v", err)
	}
	if after.State != session.StateInProgress || after.AnsweredCount != 1 {
		t.Fatalf("unexpected state after failure: %+v", after)
	}

	grading.err = nil
	grading.result = dto.SubmissionResultDTO{SubmissionID: 7, Score: 10, Passed: true}
	if _, err := svc.SubmitSession(state.Token, true); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
}

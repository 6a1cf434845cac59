package session

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeSubmitter records grading calls and can be told to fail or block.
type fakeSubmitter struct {
	mu      sync.Mutex
	calls   int
	lastIn  map[uint]string
	elapsed int
	err     error
	block   chan struct{} // when non-nil, Submit waits until closed
	result  *Result
}

func (f *fakeSubmitter) Submit(examID, userID uint, answers map[uint]string, elapsedSeconds int) (*Result, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastIn = answers
	f.elapsed = elapsedSeconds
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &Result{SubmissionID: 1}, nil
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestSession(minutes int, submitter Submitter) *Session {
	return New("tok", 1, 7, minutes, submitter, NewMonitor(nil, nil))
}

func TestStartTransitions(t *testing.T) {
	sess := newTestSession(60, &fakeSubmitter{})

	if got := sess.State(); got != StateNotStarted {
		t.Fatalf("expected initial state %q, got %q", StateNotStarted, got)
	}
	if err := sess.RecordAnswer(1, "true"); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted before start, got %v", err)
	}

	if err := sess.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if got := sess.State(); got != StateInProgress {
		t.Fatalf("expected state %q after start, got %q", StateInProgress, got)
	}
	if got := sess.RemainingSeconds(); got != 3600 {
		t.Fatalf("expected 3600 remaining seconds for a 60 minute limit, got %d", got)
	}

	if err := sess.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted on second start, got %v", err)
	}
}

func TestElapsedSecondsFormula(t *testing.T) {
	submitter := &fakeSubmitter{}
	sess := newTestSession(60, submitter)
	if err := sess.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// 2700 ticks leave 900 of 3600 seconds.
	for i := 0; i < 2700; i++ {
		sess.Tick()
	}
	if got := sess.RemainingSeconds(); got != 900 {
		t.Fatalf("expected 900 remaining seconds, got %d", got)
	}
	if got := sess.ElapsedSeconds(); got != 2700 {
		t.Fatalf("expected elapsed 2700, got %d", got)
	}

	if _, err := sess.Submit(true); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if submitter.elapsed != 2700 {
		t.Fatalf("expected submitter to receive elapsed 2700, got %d", submitter.elapsed)
	}
}

func TestAnswerLastWriteWins(t *testing.T) {
	submitter := &fakeSubmitter{}
	sess := newTestSession(30, submitter)
	if err := sess.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := sess.RecordAnswer(5, "1"); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}
	if err := sess.RecordAnswer(5, "3"); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}
	if got := sess.AnsweredCount(); got != 1 {
		t.Fatalf("expected 1 answered question, got %d", got)
	}

	if _, err := sess.Submit(true); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if got := submitter.lastIn[5]; got != "3" {
		t.Fatalf("expected last answer %q to win, got %q", "3", got)
	}
}

func TestSubmitRequiresConfirmation(t *testing.T) {
	submitter := &fakeSubmitter{}
	sess := newTestSession(30, submitter)
	if err := sess.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	result, err := sess.Submit(false)
	if err != nil || result != nil {
		t.Fatalf("unconfirmed submit should be a no-op, got result=%v err=%v", result, err)
	}
	if got := sess.State(); got != StateInProgress {
		t.Fatalf("expected state %q after declined submit, got %q", StateInProgress, got)
	}
	if submitter.callCount() != 0 {
		t.Fatalf("expected no grading call after declined submit, got %d", submitter.callCount())
	}
}

func TestTimerExpiryAutoSubmits(t *testing.T) {
	submitter := &fakeSubmitter{}
	sess := newTestSession(1, submitter)
	if err := sess.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// The 60th tick reaches zero and submits without any confirmation.
	for i := 0; i < 60; i++ {
		sess.Tick()
	}
	if got := sess.State(); got != StateCompleted {
		t.Fatalf("expected state %q after timer expiry, got %q", StateCompleted, got)
	}
	if submitter.callCount() != 1 {
		t.Fatalf("expected exactly one grading call, got %d", submitter.callCount())
	}
	if submitter.elapsed != 60 {
		t.Fatalf("expected elapsed 60 on expiry, got %d", submitter.elapsed)
	}
}

func TestFailedSubmitRevertsAndPreservesState(t *testing.T) {
	submitter := &fakeSubmitter{err: errors.New("store unavailable")}
	sess := newTestSession(60, submitter)
	if err := sess.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := sess.RecordAnswer(1, "true"); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}
	for i := 0; i < 100; i++ {
		sess.Tick()
	}

	if _, err := sess.Submit(true); err == nil {
		t.Fatal("expected submit error")
	}
	if got := sess.State(); got != StateInProgress {
		t.Fatalf("expected reversion to %q, got %q", StateInProgress, got)
	}
	if got := sess.RemainingSeconds(); got != 3500 {
		t.Fatalf("expected remaining time preserved at 3500, got %d", got)
	}
	if got := sess.AnsweredCount(); got != 1 {
		t.Fatalf("expected answer map preserved, got %d answers", got)
	}

	// Retry succeeds once the store recovers.
	submitter.err = nil
	result, err := sess.Submit(true)
	if err != nil {
		t.Fatalf("retry submit failed: %v", err)
	}
	if result == nil || result.SubmissionID != 1 {
		t.Fatalf("unexpected retry result %+v", result)
	}
	if got := sess.State(); got != StateCompleted {
		t.Fatalf("expected state %q after retry, got %q", StateCompleted, got)
	}
}

func TestDuplicateSubmitTriggersCollapse(t *testing.T) {
	submitter := &fakeSubmitter{block: make(chan struct{})}
	sess := newTestSession(30, submitter)
	if err := sess.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := sess.Submit(true)
		done <- err
	}()

	// Wait for the first submit to take the guard.
	deadline := time.Now().Add(2 * time.Second)
	for sess.State() != StateSubmitting {
		if time.Now().After(deadline) {
			t.Fatal("first submit never reached the submitting state")
		}
		time.Sleep(time.Millisecond)
	}

	// Second trigger (manual click racing timer expiry) must be a no-op.
	if _, err := sess.Submit(true); !errors.Is(err, ErrSubmitting) {
		t.Fatalf("expected ErrSubmitting for duplicate trigger, got %v", err)
	}
	if err := sess.RecordAnswer(9, "2"); !errors.Is(err, ErrSubmitting) {
		t.Fatalf("expected answer edits ignored while submitting, got %v", err)
	}
	sess.Tick() // must not double-submit either

	close(submitter.block)
	if err := <-done; err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if got := submitter.callCount(); got != 1 {
		t.Fatalf("expected exactly one grading call, got %d", got)
	}
	if _, err := sess.Submit(true); !errors.Is(err, ErrCompleted) {
		t.Fatalf("expected ErrCompleted after completion, got %v", err)
	}
}

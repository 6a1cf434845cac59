package service

import (
	"errors"
	"testing"
	"time"

	"github.com/kkyydd4-lab/certificate/internal/model"
	"github.com/kkyydd4-lab/certificate/internal/repository"
	"gorm.io/gorm"
)

type fakeExamRepo struct {
	exams   map[uint]*model.Exam
	findErr error
}

func (f *fakeExamRepo) Create(exam *model.Exam) error { return nil }

func (f *fakeExamRepo) FindByID(id uint) (*model.Exam, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	exam, ok := f.exams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return exam, nil
}

func (f *fakeExamRepo) FindPassingScore(id uint) (int, error) {
	if f.findErr != nil {
		return 0, f.findErr
	}
	exam, ok := f.exams[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	return exam.PassingScore, nil
}

func (f *fakeExamRepo) FindAllWithQuestionCount(activeOnly bool) ([]repository.ExamWithQuestionCount, error) {
	return nil, nil
}

func (f *fakeExamRepo) Update(exam *model.Exam) error { return nil }
func (f *fakeExamRepo) Delete(id uint) error          { return nil }

type fakeExamQuestionRepo struct {
	links   map[uint][]model.ExamQuestion
	findErr error
}

func (f *fakeExamQuestionRepo) Upsert(link *model.ExamQuestion) error { return nil }

func (f *fakeExamQuestionRepo) FindByExamID(examID uint) ([]model.ExamQuestion, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.links[examID], nil
}

func (f *fakeExamQuestionRepo) SumPoints(examID uint) (int, error) {
	total := 0
	for _, link := range f.links[examID] {
		total += link.Points
	}
	return total, nil
}

func (f *fakeExamQuestionRepo) Delete(examID, questionID uint) error { return nil }

type fakeSubmissionRepo struct {
	created   []model.ExamSubmission
	createErr error
	nextID    uint
}

func (f *fakeSubmissionRepo) Create(submission *model.ExamSubmission) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	submission.ID = f.nextID
	f.created = append(f.created, *submission)
	return nil
}

func (f *fakeSubmissionRepo) FindByID(id uint) (*model.ExamSubmission, error) {
	for i := range f.created {
		if f.created[i].ID == id {
			return &f.created[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSubmissionRepo) FindByIDWithExam(id uint) (*model.ExamSubmission, error) {
	return f.FindByID(id)
}

func (f *fakeSubmissionRepo) FindAllByUser(userID uint) ([]model.ExamSubmission, error) {
	var out []model.ExamSubmission
	for _, s := range f.created {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubmissionRepo) FindAllByExamAndUser(examID, userID uint) ([]model.ExamSubmission, error) {
	var out []model.ExamSubmission
	for _, s := range f.created {
		if s.ExamID == examID && s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubmissionRepo) CountByExam(examID uint) (int64, error) {
	var count int64
	for _, s := range f.created {
		if s.ExamID == examID {
			count++
		}
	}
	return count, nil
}

func strPtr(s string) *string { return &s }

func mcLink(questionID uint, correct string, points int) model.ExamQuestion {
	return model.ExamQuestion{
		ExamID:     1,
		QuestionID: questionID,
		Points:     points,
		Question: model.Question{
			ID:            questionID,
			Type:          model.QuestionTypeMultipleChoice,
			CorrectAnswer: strPtr(correct),
		},
	}
}

func tfLink(questionID uint, correct string, points int) model.ExamQuestion {
	return model.ExamQuestion{
		ExamID:     1,
		QuestionID: questionID,
		Points:     points,
		Question: model.Question{
			ID:            questionID,
			Type:          model.QuestionTypeTrueFalse,
			CorrectAnswer: strPtr(correct),
		},
	}
}

func essayLink(questionID uint, points int) model.ExamQuestion {
	return model.ExamQuestion{
		ExamID:     1,
		QuestionID: questionID,
		Points:     points,
		Question: model.Question{
			ID:   questionID,
			Type: model.QuestionTypeEssay,
		},
	}
}

func newTestGradingService(links []model.ExamQuestion, passingScore int, submissions *fakeSubmissionRepo) GradingService {
	return NewGradingService(
		&fakeExamRepo{exams: map[uint]*model.Exam{1: {ID: 1, PassingScore: passingScore}}},
		&fakeExamQuestionRepo{links: map[uint][]model.ExamQuestion{1: links}},
		submissions,
	)
}

func TestSubmitScoring(t *testing.T) {
	tests := []struct {
		name         string
		links        []model.ExamQuestion
		answers      map[uint]string
		passingScore int
		wantScore    int
		wantPassed   bool
	}{
		{
			name:         "comparison is case sensitive",
			links:        []model.ExamQuestion{tfLink(1, "true", 10)},
			answers:      map[uint]string{1: "True"},
			passingScore: 10,
			wantScore:    0,
			wantPassed:   false,
		},
		{
			name:         "essay questions never auto score",
			links:        []model.ExamQuestion{essayLink(1, 20)},
			answers:      map[uint]string{1: "A thorough written answer."},
			passingScore: 10,
			wantScore:    0,
			wantPassed:   false,
		},
		{
			name: "unanswered questions score zero",
			links: []model.ExamQuestion{
				mcLink(1, "2", 10),
				mcLink(2, "3", 10),
				mcLink(3, "1", 10),
			},
			answers:      map[uint]string{1: "2", 2: "3"},
			passingScore: 20,
			wantScore:    20,
			wantPassed:   true,
		},
		{
			name: "passing threshold is absolute points",
			links: []model.ExamQuestion{
				mcLink(1, "1", 25),
				mcLink(2, "2", 20),
				mcLink(3, "3", 5),
			},
			answers:      map[uint]string{1: "1", 2: "2"},
			passingScore: 40,
			wantScore:    45,
			wantPassed:   true,
		},
		{
			name: "half right falls short of the threshold",
			links: []model.ExamQuestion{
				mcLink(1, "2", 50),
				tfLink(2, "true", 50),
			},
			answers:      map[uint]string{1: "2", 2: "false"},
			passingScore: 60,
			wantScore:    50,
			wantPassed:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submissions := &fakeSubmissionRepo{}
			svc := newTestGradingService(tt.links, tt.passingScore, submissions)

			result, err := svc.Submit(1, 7, tt.answers, 120)
			if err != nil {
				t.Fatalf("Submit failed: %v", err)
			}
			if result.Score != tt.wantScore {
				t.Errorf("score = %d, want %d", result.Score, tt.wantScore)
			}
			if result.Passed != tt.wantPassed {
				t.Errorf("passed = %v, want %v", result.Passed, tt.wantPassed)
			}
			if len(submissions.created) != 1 {
				t.Fatalf("expected exactly one submission record, got %d", len(submissions.created))
			}
		})
	}
}

func TestSubmitGradedAnswerDetails(t *testing.T) {
	links := []model.ExamQuestion{
		mcLink(1, "2", 10),
		tfLink(2, "true", 10),
		essayLink(3, 30),
	}
	submissions := &fakeSubmissionRepo{}
	svc := newTestGradingService(links, 10, submissions)

	if _, err := svc.Submit(1, 7, map[uint]string{
		1: "2",
		2: "false",
		3: "Verbatim essay text.",
	}, 60); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	graded := submissions.created[0].Answers
	if len(graded) != 3 {
		t.Fatalf("expected 3 graded answers, got %d", len(graded))
	}
	if got := graded[1]; !got.IsCorrect || got.Points != 10 || got.Answer != "2" {
		t.Errorf("question 1 graded as %+v, want correct with 10 points", got)
	}
	if got := graded[2]; got.IsCorrect || got.Points != 0 {
		t.Errorf("question 2 graded as %+v, want incorrect with 0 points", got)
	}
	if got := graded[3]; got.IsCorrect || got.Points != 0 || got.Answer != "Verbatim essay text." {
		t.Errorf("question 3 graded as %+v, want ungraded verbatim essay", got)
	}
	if submissions.created[0].Status != model.SubmissionStatusCompleted {
		t.Errorf("status = %q, want %q", submissions.created[0].Status, model.SubmissionStatusCompleted)
	}
}

func TestSubmitRequiresUser(t *testing.T) {
	submissions := &fakeSubmissionRepo{}
	svc := newTestGradingService([]model.ExamQuestion{tfLink(1, "true", 10)}, 10, submissions)

	if _, err := svc.Submit(1, 0, nil, 0); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if len(submissions.created) != 0 {
		t.Fatal("nothing may be persisted for an unauthorized submit")
	}
}

func TestSubmitFetchFailure(t *testing.T) {
	submissions := &fakeSubmissionRepo{}
	svc := NewGradingService(
		&fakeExamRepo{exams: map[uint]*model.Exam{1: {ID: 1, PassingScore: 10}}},
		&fakeExamQuestionRepo{findErr: errors.New("connection refused")},
		submissions,
	)

	if _, err := svc.Submit(1, 7, map[uint]string{1: "true"}, 30); !errors.Is(err, ErrDataFetch) {
		t.Fatalf("expected ErrDataFetch, got %v", err)
	}
	if len(submissions.created) != 0 {
		t.Fatal("nothing may be persisted when the answer key cannot be fetched")
	}
}

func TestSubmitUnknownExam(t *testing.T) {
	svc := NewGradingService(
		&fakeExamRepo{exams: map[uint]*model.Exam{}},
		&fakeExamQuestionRepo{},
		&fakeSubmissionRepo{},
	)

	if _, err := svc.Submit(99, 7, nil, 0); !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("expected ErrExamNotFound, got %v", err)
	}
}

func TestSubmitPersistFailureAllowsRetry(t *testing.T) {
	submissions := &fakeSubmissionRepo{createErr: errors.New("insert failed")}
	svc := newTestGradingService([]model.ExamQuestion{tfLink(1, "true", 10)}, 10, submissions)

	if _, err := svc.Submit(1, 7, map[uint]string{1: "true"}, 30); !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	if len(submissions.created) != 0 {
		t.Fatal("a failed insert must leave no record behind")
	}

	submissions.createErr = nil
	result, err := svc.Submit(1, 7, map[uint]string{1: "true"}, 45)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if result.Score != 10 || !result.Passed {
		t.Fatalf("unexpected retry result %+v", result)
	}
	if len(submissions.created) != 1 {
		t.Fatalf("expected exactly one record after retry, got %d", len(submissions.created))
	}
}

func TestSubmitDerivesStartedAtFromElapsed(t *testing.T) {
	submissions := &fakeSubmissionRepo{}
	svc := newTestGradingService([]model.ExamQuestion{tfLink(1, "true", 10)}, 10, submissions).(*gradingService)

	fixed := time.Date(2025, 6, 15, 10, 45, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	if _, err := svc.Submit(1, 7, map[uint]string{1: "true"}, 2700); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	saved := submissions.created[0]
	if !saved.SubmittedAt.Equal(fixed) {
		t.Errorf("submitted_at = %v, want %v", saved.SubmittedAt, fixed)
	}
	wantStart := fixed.Add(-2700 * time.Second)
	if !saved.StartedAt.Equal(wantStart) {
		t.Errorf("started_at = %v, want %v", saved.StartedAt, wantStart)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"preparedness-service/internal/grading"
	"preparedness-service/internal/models"
	"preparedness-service/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type fakeAttemptStore struct {
	attempts  map[string]*models.Attempt
	nextID    int
	createErr error
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{attempts: map[string]*models.Attempt{}}
}

func (f *fakeAttemptStore) FindOngoing(ctx context.Context, quizID, studentID string) (*models.Attempt, error) {
	for _, a := range f.attempts {
		if a.Quiz == quizID && a.Student == studentID && !a.IsCompleted() {
			dup := *a
			return &dup, nil
		}
	}
	return nil, nil
}

func (f *fakeAttemptStore) Create(ctx context.Context, attempt *models.Attempt) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	attempt.ID = fmt.Sprintf("attempt-%d", f.nextID)
	dup := *attempt
	f.attempts[attempt.ID] = &dup
	return nil
}

func (f *fakeAttemptStore) FindByID(ctx context.Context, id string) (*models.Attempt, error) {
	a, ok := f.attempts[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	dup := *a
	return &dup, nil
}

func (f *fakeAttemptStore) MarkCompleted(ctx context.Context, id string, answers []models.GradedAnswer, score int, completedAt time.Time, duration int) error {
	a, ok := f.attempts[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if a.IsCompleted() {
		return repository.ErrAttemptCompleted
	}
	a.Answers = answers
	a.Score = score
	a.CompletedAt = &completedAt
	a.Duration = duration
	return nil
}

func (f *fakeAttemptStore) ListByQuizAndStudent(ctx context.Context, quizID, studentID string) ([]models.Attempt, error) {
	out := []models.Attempt{}
	for _, a := range f.attempts {
		if a.Quiz == quizID && a.Student == studentID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAttemptStore) ListByStudent(ctx context.Context, studentID string) ([]models.Attempt, error) {
	out := []models.Attempt{}
	for _, a := range f.attempts {
		if a.Student == studentID {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakeQuizFinder struct {
	quizzes map[string]*models.Quiz
}

func (f *fakeQuizFinder) FindByID(ctx context.Context, id string) (*models.Quiz, error) {
	q, ok := f.quizzes[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return q, nil
}

type fakeModuleFinder struct {
	modules map[string]*models.Module
}

func (f *fakeModuleFinder) FindByID(ctx context.Context, id string) (*models.Module, error) {
	m, ok := f.modules[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return m, nil
}

type fakeUserFinder struct {
	users map[string]*models.User
}

func (f *fakeUserFinder) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return u, nil
}

func twoQuestionQuiz() *models.Quiz {
	return &models.Quiz{
		ID:     "quiz-1",
		QuizID: "earthquake-basics",
		Title:  "Earthquake Basics",
		Module: "module-1",
		Questions: []models.Question{
			{ID: "q1", Text: "Safest indoor action?", Options: []string{"Run outside", "Drop, cover, hold on"}, CorrectOption: 1},
			{ID: "q2", Text: "After shaking stops?", Options: []string{"Check for hazards", "Use elevators"}, CorrectOption: 0},
		},
	}
}

func newTestAttemptService(store *fakeAttemptStore) *AttemptService {
	quizzes := &fakeQuizFinder{quizzes: map[string]*models.Quiz{"quiz-1": twoQuestionQuiz()}}
	modules := &fakeModuleFinder{modules: map[string]*models.Module{
		"module-1": {ID: "module-1", Title: "Earthquake Preparedness"},
	}}
	users := &fakeUserFinder{users: map[string]*models.User{
		"student-1": {ID: "student-1", Name: "Asha", Email: "asha@school.test", Role: models.RoleStudent},
	}}
	return NewAttemptService(store, quizzes, modules, users, zap.NewNop())
}

func TestStartCreatesAttempt(t *testing.T) {
	store := newFakeAttemptStore()
	svc := newTestAttemptService(store)

	result, err := svc.Start(context.Background(), "quiz-1", "student-1")
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if result.Resumed {
		t.Error("fresh start should not be marked resumed")
	}
	if result.TotalPoints != 2 {
		t.Errorf("expected totalPoints snapshot 2, got %d", result.TotalPoints)
	}
	if result.AttemptID == "" {
		t.Error("expected attempt id to be assigned")
	}
	stored := store.attempts[result.AttemptID]
	if stored == nil {
		t.Fatal("attempt was not persisted")
	}
	if stored.IsCompleted() {
		t.Error("new attempt should be ongoing")
	}
	if len(stored.Answers) != 0 {
		t.Errorf("new attempt should have no answers, got %d", len(stored.Answers))
	}
}

func TestStartResumesOngoingAttempt(t *testing.T) {
	store := newFakeAttemptStore()
	svc := newTestAttemptService(store)

	first, err := svc.Start(context.Background(), "quiz-1", "student-1")
	if err != nil {
		t.Fatalf("first Start returned error: %v", err)
	}
	second, err := svc.Start(context.Background(), "quiz-1", "student-1")
	if err != nil {
		t.Fatalf("second Start returned error: %v", err)
	}
	if !second.Resumed {
		t.Error("second start should resume the ongoing attempt")
	}
	if second.AttemptID != first.AttemptID {
		t.Errorf("expected the same attempt id, got %s and %s", first.AttemptID, second.AttemptID)
	}
	if len(store.attempts) != 1 {
		t.Errorf("expected exactly one stored attempt, got %d", len(store.attempts))
	}
}

func TestStartUnknownQuiz(t *testing.T) {
	svc := newTestAttemptService(newFakeAttemptStore())

	_, err := svc.Start(context.Background(), "missing", "student-1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStartRecoversFromDuplicateKeyRace(t *testing.T) {
	store := newFakeAttemptStore()
	svc := newTestAttemptService(store)

	// The concurrent winner's attempt is already in the store; our
	// insert then fails on the partial unique index.
	winner := &models.Attempt{Quiz: "quiz-1", Student: "student-1", TotalPoints: 2, StartedAt: time.Now()}
	if err := store.Create(context.Background(), winner); err != nil {
		t.Fatal(err)
	}
	store.createErr = mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}

	result, err := svc.Start(context.Background(), "quiz-1", "student-1")
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if !result.Resumed {
		t.Error("racing start should resume the winner's attempt")
	}
	if result.AttemptID != winner.ID {
		t.Errorf("expected winner's attempt %s, got %s", winner.ID, result.AttemptID)
	}
}

func TestSubmitGradesAndCompletes(t *testing.T) {
	store := newFakeAttemptStore()
	svc := newTestAttemptService(store)

	started, err := svc.Start(context.Background(), "quiz-1", "student-1")
	if err != nil {
		t.Fatal(err)
	}

	answers := []grading.SubmittedAnswer{
		{QuestionID: "q1", SelectedOption: 1},
		{QuestionID: "q2", SelectedOption: 1},
	}
	result, err := svc.Submit(context.Background(), started.AttemptID, answers, "student-1")
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if result.Score != 1 {
		t.Errorf("expected score 1, got %d", result.Score)
	}
	if result.Percentage != 50 {
		t.Errorf("expected percentage 50, got %d", result.Percentage)
	}
	if result.CorrectAnswers != 1 {
		t.Errorf("expected 1 correct answer, got %d", result.CorrectAnswers)
	}
	if result.TotalQuestions != 2 {
		t.Errorf("expected 2 graded questions, got %d", result.TotalQuestions)
	}
	if result.Duration < 0 {
		t.Errorf("duration must not be negative, got %d", result.Duration)
	}
	if result.Quiz.Title != "Earthquake Basics" {
		t.Errorf("expected quiz summary title, got %q", result.Quiz.Title)
	}
	if result.Quiz.Module == nil || result.Quiz.Module.Title != "Earthquake Preparedness" {
		t.Error("expected module summary on submit result")
	}

	stored := store.attempts[started.AttemptID]
	if !stored.IsCompleted() {
		t.Error("attempt should be completed after submit")
	}
	if len(stored.Answers) != 2 {
		t.Errorf("expected 2 graded answers persisted, got %d", len(stored.Answers))
	}
}

func TestSubmitRequiresAnswerList(t *testing.T) {
	svc := newTestAttemptService(newFakeAttemptStore())

	_, err := svc.Submit(context.Background(), "attempt-1", nil, "student-1")
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSubmitByNonOwnerForbidden(t *testing.T) {
	store := newFakeAttemptStore()
	svc := newTestAttemptService(store)

	started, err := svc.Start(context.Background(), "quiz-1", "student-1")
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Submit(context.Background(), started.AttemptID, []grading.SubmittedAnswer{}, "student-2")
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if store.attempts[started.AttemptID].IsCompleted() {
		t.Error("rejected submission must not complete the attempt")
	}
}

func TestResubmissionRejectedWithoutMutation(t *testing.T) {
	store := newFakeAttemptStore()
	svc := newTestAttemptService(store)

	started, err := svc.Start(context.Background(), "quiz-1", "student-1")
	if err != nil {
		t.Fatal(err)
	}
	first, err := svc.Submit(context.Background(), started.AttemptID, []grading.SubmittedAnswer{
		{QuestionID: "q1", SelectedOption: 1},
		{QuestionID: "q2", SelectedOption: 0},
	}, "student-1")
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Submit(context.Background(), started.AttemptID, []grading.SubmittedAnswer{
		{QuestionID: "q1", SelectedOption: 0},
		{QuestionID: "q2", SelectedOption: 1},
	}, "student-1")
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("expected ErrAlreadyCompleted, got %v", err)
	}

	stored := store.attempts[started.AttemptID]
	if stored.Score != first.Score {
		t.Errorf("resubmission mutated score: had %d, now %d", first.Score, stored.Score)
	}
	if stored.Answers[0].SelectedOption != 1 {
		t.Error("resubmission mutated recorded answers")
	}
}

func TestSubmitUnknownAttempt(t *testing.T) {
	svc := newTestAttemptService(newFakeAttemptStore())

	_, err := svc.Submit(context.Background(), "missing", []grading.SubmittedAnswer{}, "student-1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetAccessControl(t *testing.T) {
	store := newFakeAttemptStore()
	svc := newTestAttemptService(store)

	started, err := svc.Start(context.Background(), "quiz-1", "student-1")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Get(context.Background(), started.AttemptID, "student-1", models.RoleStudent); err != nil {
		t.Errorf("owner should read their attempt, got %v", err)
	}
	if _, err := svc.Get(context.Background(), started.AttemptID, "someone-else", models.RoleAdmin); err != nil {
		t.Errorf("admin should read any attempt, got %v", err)
	}
	if _, err := svc.Get(context.Background(), started.AttemptID, "someone-else", models.RoleStudent); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for other students, got %v", err)
	}
}

func TestGetReportsPercentageAndCompletion(t *testing.T) {
	store := newFakeAttemptStore()
	svc := newTestAttemptService(store)

	started, err := svc.Start(context.Background(), "quiz-1", "student-1")
	if err != nil {
		t.Fatal(err)
	}
	ongoing, err := svc.Get(context.Background(), started.AttemptID, "student-1", models.RoleStudent)
	if err != nil {
		t.Fatal(err)
	}
	if ongoing.IsCompleted {
		t.Error("ongoing attempt should not report completed")
	}
	if ongoing.CompletedAt != nil {
		t.Error("ongoing attempt should have no completedAt")
	}

	if _, err := svc.Submit(context.Background(), started.AttemptID, []grading.SubmittedAnswer{
		{QuestionID: "q1", SelectedOption: 1},
		{QuestionID: "q2", SelectedOption: 0},
	}, "student-1"); err != nil {
		t.Fatal(err)
	}

	done, err := svc.Get(context.Background(), started.AttemptID, "student-1", models.RoleStudent)
	if err != nil {
		t.Fatal(err)
	}
	if !done.IsCompleted {
		t.Error("completed attempt should report completed")
	}
	if done.Percentage != 100 {
		t.Errorf("expected percentage 100, got %d", done.Percentage)
	}
	if done.Student.Name != "Asha" {
		t.Errorf("expected populated student summary, got %q", done.Student.Name)
	}
}

func TestDurationClampedAtZero(t *testing.T) {
	store := newFakeAttemptStore()
	svc := newTestAttemptService(store)

	// A clock skew can leave startedAt in the future; duration must
	// still come out non-negative.
	attempt := &models.Attempt{
		Quiz:        "quiz-1",
		Student:     "student-1",
		TotalPoints: 2,
		StartedAt:   time.Now().Add(time.Hour),
	}
	if err := store.Create(context.Background(), attempt); err != nil {
		t.Fatal(err)
	}

	result, err := svc.Submit(context.Background(), attempt.ID, []grading.SubmittedAnswer{}, "student-1")
	if err != nil {
		t.Fatal(err)
	}
	if result.Duration != 0 {
		t.Errorf("expected duration clamped to 0, got %d", result.Duration)
	}
}

func TestListForStudentCarriesQuizSummaries(t *testing.T) {
	store := newFakeAttemptStore()
	svc := newTestAttemptService(store)

	started, err := svc.Start(context.Background(), "quiz-1", "student-1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Submit(context.Background(), started.AttemptID, []grading.SubmittedAnswer{
		{QuestionID: "q1", SelectedOption: 1},
		{QuestionID: "q2", SelectedOption: 0},
	}, "student-1"); err != nil {
		t.Fatal(err)
	}

	summaries, err := svc.ListForStudent(context.Background(), "student-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	s := summaries[0]
	if s.Quiz == nil || s.Quiz.Title != "Earthquake Basics" {
		t.Error("expected quiz summary on student attempt list")
	}
	if !s.IsCompleted {
		t.Error("expected completed summary")
	}
	if s.Percentage != 100 {
		t.Errorf("expected percentage 100, got %d", s.Percentage)
	}
}

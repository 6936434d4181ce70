package service

import (
	"context"
	"errors"
	"time"

	"preparedness-service/internal/grading"
	"preparedness-service/internal/models"
	"preparedness-service/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// AttemptStore is the persistence surface the attempt lifecycle needs.
type AttemptStore interface {
	FindOngoing(ctx context.Context, quizID, studentID string) (*models.Attempt, error)
	Create(ctx context.Context, attempt *models.Attempt) error
	FindByID(ctx context.Context, id string) (*models.Attempt, error)
	MarkCompleted(ctx context.Context, id string, answers []models.GradedAnswer, score int, completedAt time.Time, duration int) error
	ListByQuizAndStudent(ctx context.Context, quizID, studentID string) ([]models.Attempt, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Attempt, error)
}

type QuizFinder interface {
	FindByID(ctx context.Context, id string) (*models.Quiz, error)
}

type ModuleFinder interface {
	FindByID(ctx context.Context, id string) (*models.Module, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type AttemptService struct {
	Store   AttemptStore
	Quizzes QuizFinder
	Modules ModuleFinder
	Users   UserFinder
	Log     *zap.Logger
}

func NewAttemptService(store AttemptStore, quizzes QuizFinder, modules ModuleFinder, users UserFinder, log *zap.Logger) *AttemptService {
	return &AttemptService{Store: store, Quizzes: quizzes, Modules: modules, Users: users, Log: log}
}

type ModuleSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Level string `json:"level,omitempty"`
}

type QuizSummary struct {
	ID     string         `json:"id"`
	Title  string         `json:"title"`
	Module *ModuleSummary `json:"module,omitempty"`
}

type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// StartResult is returned by Start. Resumed marks idempotent re-entry
// into an existing ongoing attempt.
type StartResult struct {
	AttemptID   string       `json:"attemptId"`
	Quiz        *models.Quiz `json:"quiz"`
	StartedAt   time.Time    `json:"startedAt"`
	TotalPoints int          `json:"totalPoints"`
	Resumed     bool         `json:"-"`
}

type SubmitResult struct {
	AttemptID      string      `json:"attemptId"`
	Score          int         `json:"score"`
	TotalPoints    int         `json:"totalPoints"`
	Percentage     int         `json:"percentage"`
	CorrectAnswers int         `json:"correctAnswers"`
	TotalQuestions int         `json:"totalQuestions"`
	Duration       int         `json:"duration"`
	CompletedAt    time.Time   `json:"completedAt"`
	Quiz           QuizSummary `json:"quiz"`
}

type AttemptDetail struct {
	ID          string                `json:"id"`
	Quiz        QuizSummary           `json:"quiz"`
	Student     UserSummary           `json:"student"`
	Answers     []models.GradedAnswer `json:"answers"`
	Score       int                   `json:"score"`
	TotalPoints int                   `json:"totalPoints"`
	StartedAt   time.Time             `json:"startedAt"`
	CompletedAt *time.Time            `json:"completedAt,omitempty"`
	Duration    int                   `json:"duration,omitempty"`
	Percentage  int                   `json:"percentage"`
	IsCompleted bool                  `json:"isCompleted"`
}

type AttemptSummary struct {
	ID          string       `json:"id"`
	Quiz        *QuizSummary `json:"quiz,omitempty"`
	Score       int          `json:"score"`
	TotalPoints int          `json:"totalPoints"`
	Percentage  int          `json:"percentage"`
	StartedAt   time.Time    `json:"startedAt"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
	Duration    int          `json:"duration,omitempty"`
	IsCompleted bool         `json:"isCompleted"`
}

// Start opens an attempt at a quiz. Re-entry into an ongoing attempt
// returns that attempt unchanged instead of failing.
func (s *AttemptService) Start(ctx context.Context, quizID, studentID string) (*StartResult, error) {
	quiz, err := s.Quizzes.FindByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	ongoing, err := s.Store.FindOngoing(ctx, quizID, studentID)
	if err != nil {
		return nil, err
	}
	if ongoing != nil {
		s.Log.Info("returning existing ongoing attempt",
			zap.String("attemptId", ongoing.ID),
			zap.String("quizId", quizID),
			zap.String("student", studentID))
		return &StartResult{
			AttemptID:   ongoing.ID,
			Quiz:        quiz,
			StartedAt:   ongoing.StartedAt,
			TotalPoints: ongoing.TotalPoints,
			Resumed:     true,
		}, nil
	}

	attempt := &models.Attempt{
		Quiz:        quizID,
		Student:     studentID,
		Answers:     []models.GradedAnswer{},
		Score:       0,
		TotalPoints: quiz.TotalPoints(),
		StartedAt:   time.Now(),
	}
	if err := s.Store.Create(ctx, attempt); err != nil {
		// A concurrent start won the race on the partial unique index;
		// resume the attempt it created.
		if mongo.IsDuplicateKeyError(err) {
			ongoing, findErr := s.Store.FindOngoing(ctx, quizID, studentID)
			if findErr == nil && ongoing != nil {
				return &StartResult{
					AttemptID:   ongoing.ID,
					Quiz:        quiz,
					StartedAt:   ongoing.StartedAt,
					TotalPoints: ongoing.TotalPoints,
					Resumed:     true,
				}, nil
			}
		}
		return nil, err
	}

	s.Log.Info("quiz attempt started",
		zap.String("attemptId", attempt.ID),
		zap.String("quizId", quizID),
		zap.String("student", studentID))

	return &StartResult{
		AttemptID:   attempt.ID,
		Quiz:        quiz,
		StartedAt:   attempt.StartedAt,
		TotalPoints: attempt.TotalPoints,
	}, nil
}

// Submit grades the answers and completes the attempt. The graded result
// is computed in memory before the single completion write, so a failed
// submission never leaves a partially written attempt.
func (s *AttemptService) Submit(ctx context.Context, attemptID string, answers []grading.SubmittedAnswer, callerID string) (*SubmitResult, error) {
	if answers == nil {
		return nil, ErrInvalidInput
	}

	attempt, err := s.Store.FindByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if attempt.Student != callerID {
		s.Log.Warn("unauthorized attempt submission",
			zap.String("attemptId", attemptID),
			zap.String("student", attempt.Student),
			zap.String("caller", callerID))
		return nil, ErrForbidden
	}
	if attempt.IsCompleted() {
		return nil, ErrAlreadyCompleted
	}

	quiz, err := s.Quizzes.FindByID(ctx, attempt.Quiz)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	graded, totalScore := grading.Grade(quiz.Questions, answers)

	completedAt := time.Now()
	duration := int(completedAt.Sub(attempt.StartedAt).Seconds())
	if duration < 0 {
		duration = 0
	}

	if err := s.Store.MarkCompleted(ctx, attemptID, graded, totalScore, completedAt, duration); err != nil {
		if errors.Is(err, repository.ErrAttemptCompleted) {
			return nil, ErrAlreadyCompleted
		}
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.Log.Info("quiz attempt completed",
		zap.String("attemptId", attemptID),
		zap.Int("score", totalScore),
		zap.Int("totalPoints", attempt.TotalPoints),
		zap.Int("duration", duration))

	return &SubmitResult{
		AttemptID:      attemptID,
		Score:          totalScore,
		TotalPoints:    attempt.TotalPoints,
		Percentage:     grading.Percentage(totalScore, attempt.TotalPoints),
		CorrectAnswers: grading.CorrectCount(graded),
		TotalQuestions: len(graded),
		Duration:       duration,
		CompletedAt:    completedAt,
		Quiz:           s.quizSummary(ctx, quiz),
	}, nil
}

// Get returns the full attempt. Only the attempt's student or an admin
// may read it.
func (s *AttemptService) Get(ctx context.Context, attemptID, callerID, callerRole string) (*AttemptDetail, error) {
	attempt, err := s.Store.FindByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if attempt.Student != callerID && callerRole != models.RoleAdmin {
		return nil, ErrForbidden
	}

	detail := &AttemptDetail{
		ID:          attempt.ID,
		Answers:     attempt.Answers,
		Score:       attempt.Score,
		TotalPoints: attempt.TotalPoints,
		StartedAt:   attempt.StartedAt,
		CompletedAt: attempt.CompletedAt,
		Duration:    attempt.Duration,
		Percentage:  grading.Percentage(attempt.Score, attempt.TotalPoints),
		IsCompleted: attempt.IsCompleted(),
	}

	if quiz, err := s.Quizzes.FindByID(ctx, attempt.Quiz); err == nil {
		detail.Quiz = s.quizSummary(ctx, quiz)
	} else {
		detail.Quiz = QuizSummary{ID: attempt.Quiz}
	}
	if student, err := s.Users.FindByID(ctx, attempt.Student); err == nil {
		detail.Student = UserSummary{ID: student.ID, Name: student.Name, Email: student.Email}
	} else {
		detail.Student = UserSummary{ID: attempt.Student}
	}

	return detail, nil
}

// ListForQuiz returns the caller's attempts at one quiz, newest first.
func (s *AttemptService) ListForQuiz(ctx context.Context, quizID, studentID string) ([]AttemptSummary, error) {
	attempts, err := s.Store.ListByQuizAndStudent(ctx, quizID, studentID)
	if err != nil {
		return nil, err
	}
	summaries := make([]AttemptSummary, 0, len(attempts))
	for _, a := range attempts {
		summaries = append(summaries, s.summarize(a, nil))
	}
	return summaries, nil
}

// ListForStudent returns all of the caller's attempts across quizzes,
// newest first, each carrying a quiz summary for display.
func (s *AttemptService) ListForStudent(ctx context.Context, studentID string) ([]AttemptSummary, error) {
	attempts, err := s.Store.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	quizCache := map[string]*QuizSummary{}
	summaries := make([]AttemptSummary, 0, len(attempts))
	for _, a := range attempts {
		summary, cached := quizCache[a.Quiz]
		if !cached {
			if quiz, err := s.Quizzes.FindByID(ctx, a.Quiz); err == nil {
				qs := s.quizSummary(ctx, quiz)
				summary = &qs
			} else {
				summary = &QuizSummary{ID: a.Quiz}
			}
			quizCache[a.Quiz] = summary
		}
		summaries = append(summaries, s.summarize(a, summary))
	}
	return summaries, nil
}

func (s *AttemptService) summarize(a models.Attempt, quiz *QuizSummary) AttemptSummary {
	return AttemptSummary{
		ID:          a.ID,
		Quiz:        quiz,
		Score:       a.Score,
		TotalPoints: a.TotalPoints,
		Percentage:  grading.Percentage(a.Score, a.TotalPoints),
		StartedAt:   a.StartedAt,
		CompletedAt: a.CompletedAt,
		Duration:    a.Duration,
		IsCompleted: a.IsCompleted(),
	}
}

func (s *AttemptService) quizSummary(ctx context.Context, quiz *models.Quiz) QuizSummary {
	summary := QuizSummary{ID: quiz.ID, Title: quiz.Title}
	if quiz.Module != "" {
		if module, err := s.Modules.FindByID(ctx, quiz.Module); err == nil {
			summary.Module = &ModuleSummary{ID: module.ID, Title: module.Title}
		}
	}
	return summary
}

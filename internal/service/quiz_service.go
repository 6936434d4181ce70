package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"preparedness-service/internal/models"
	"preparedness-service/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type QuizService struct {
	Quizzes  *repository.QuizRepository
	Lessons  *repository.LessonRepository
	Modules  *repository.ModuleRepository
	Attempts *repository.AttemptRepository
	Log      *zap.Logger
}

func NewQuizService(quizzes *repository.QuizRepository, lessons *repository.LessonRepository, modules *repository.ModuleRepository, attempts *repository.AttemptRepository, log *zap.Logger) *QuizService {
	return &QuizService{Quizzes: quizzes, Lessons: lessons, Modules: modules, Attempts: attempts, Log: log}
}

type CreateQuizInput struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	LessonID    string            `json:"lessonId"`
	Module      string            `json:"module"`
	Questions   []models.Question `json:"questions"`
}

func (s *QuizService) Create(ctx context.Context, in CreateQuizInput, createdBy string) (*models.Quiz, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len(in.Questions) == 0 {
		return nil, fmt.Errorf("%w: at least one question is required", ErrInvalidInput)
	}
	if err := validateQuestions(in.Questions); err != nil {
		return nil, err
	}

	// A quiz attaches to a lesson, a module, or both. The slug prefix
	// comes from whichever parent it names first.
	parentTitle := ""
	moduleID := in.Module
	if in.LessonID != "" {
		lesson, err := s.Lessons.FindByID(ctx, in.LessonID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, fmt.Errorf("%w: lesson not found", ErrNotFound)
			}
			return nil, err
		}
		parentTitle = lesson.Title
		if moduleID == "" {
			moduleID = lesson.Module
		}
	}
	if moduleID != "" {
		module, err := s.Modules.FindByID(ctx, moduleID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, fmt.Errorf("%w: module not found", ErrNotFound)
			}
			return nil, err
		}
		if parentTitle == "" {
			parentTitle = module.Title
		}
	}
	if parentTitle == "" {
		return nil, fmt.Errorf("%w: a lesson or module is required", ErrInvalidInput)
	}

	slug, err := s.uniqueSlug(ctx, parentTitle, title)
	if err != nil {
		return nil, err
	}

	questions := make([]models.Question, len(in.Questions))
	for i, q := range in.Questions {
		if q.ID == "" {
			q.ID = primitive.NewObjectID().Hex()
		}
		questions[i] = q
	}

	quiz := &models.Quiz{
		QuizID:      slug,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		LessonID:    in.LessonID,
		Module:      moduleID,
		CreatedBy:   createdBy,
		Questions:   questions,
		CreatedAt:   time.Now(),
	}
	if err := s.Quizzes.Create(ctx, quiz); err != nil {
		return nil, err
	}
	s.Log.Info("quiz created",
		zap.String("quizId", quiz.QuizID),
		zap.Int("questions", len(quiz.Questions)))
	return quiz, nil
}

func validateQuestions(questions []models.Question) error {
	for i, q := range questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("%w: question %d has no text", ErrInvalidInput, i+1)
		}
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: question %d needs at least two options", ErrInvalidInput, i+1)
		}
		if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
			return fmt.Errorf("%w: question %d has an out-of-range correct option", ErrInvalidInput, i+1)
		}
	}
	return nil
}

func (s *QuizService) uniqueSlug(ctx context.Context, parentTitle, title string) (string, error) {
	slug := Slugify(parentTitle) + "-" + Slugify(title)
	_, err := s.Quizzes.FindBySlug(ctx, slug)
	if err == nil {
		return fmt.Sprintf("%s-%d", slug, time.Now().UnixMilli()), nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return slug, nil
	}
	return "", err
}

func (s *QuizService) Get(ctx context.Context, id string) (*models.Quiz, error) {
	quiz, err := s.Quizzes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return quiz, nil
}

// GetForStudent returns the quiz with the correct options and point
// weights stripped out of every question.
func (s *QuizService) GetForStudent(ctx context.Context, id string) (*models.Quiz, error) {
	quiz, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sanitized := *quiz
	sanitized.Questions = make([]models.Question, len(quiz.Questions))
	for i, q := range quiz.Questions {
		q.CorrectOption = -1
		q.Points = 0
		sanitized.Questions[i] = q
	}
	return &sanitized, nil
}

func (s *QuizService) List(ctx context.Context) ([]models.Quiz, error) {
	return s.Quizzes.FindAll(ctx)
}

func (s *QuizService) ListByLesson(ctx context.Context, lessonID string) ([]models.Quiz, error) {
	return s.Quizzes.FindByLesson(ctx, lessonID)
}

func (s *QuizService) ListByModule(ctx context.Context, moduleID string) ([]models.Quiz, error) {
	return s.Quizzes.FindByModule(ctx, moduleID)
}

func (s *QuizService) Update(ctx context.Context, id, callerID string, updates map[string]interface{}) (*models.Quiz, error) {
	quiz, err := s.Quizzes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if quiz.CreatedBy != callerID {
		return nil, fmt.Errorf("%w: not authorized to update this quiz", ErrForbidden)
	}

	set := bson.M{}
	if title, ok := updates["title"].(string); ok {
		if strings.TrimSpace(title) == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
		}
		set["title"] = strings.TrimSpace(title)
	}
	if desc, ok := updates["description"].(string); ok {
		set["description"] = strings.TrimSpace(desc)
	}
	if raw, ok := updates["questions"]; ok {
		questions, err := decodeQuestions(raw)
		if err != nil {
			return nil, err
		}
		if len(questions) == 0 {
			return nil, fmt.Errorf("%w: at least one question is required", ErrInvalidInput)
		}
		if err := validateQuestions(questions); err != nil {
			return nil, err
		}
		for i := range questions {
			if questions[i].ID == "" {
				questions[i].ID = primitive.NewObjectID().Hex()
			}
		}
		set["questions"] = questions
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: no updatable fields provided", ErrInvalidInput)
	}

	updated, err := s.Quizzes.Update(ctx, id, set)
	if err != nil {
		return nil, err
	}
	s.Log.Info("quiz updated", zap.String("quizId", updated.QuizID), zap.String("updatedBy", callerID))
	return updated, nil
}

// decodeQuestions rebuilds typed questions from the generic JSON shape a
// partial update carries them in.
func decodeQuestions(raw interface{}) ([]models.Question, error) {
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: questions must be a list", ErrInvalidInput)
	}
	questions := make([]models.Question, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: questions must be a list of objects", ErrInvalidInput)
		}
		var q models.Question
		if id, ok := obj["id"].(string); ok {
			q.ID = id
		}
		if text, ok := obj["text"].(string); ok {
			q.Text = text
		}
		if opts, ok := obj["options"].([]interface{}); ok {
			for _, o := range opts {
				if opt, ok := o.(string); ok {
					q.Options = append(q.Options, opt)
				}
			}
		}
		if correct, ok := obj["correctOption"].(float64); ok {
			q.CorrectOption = int(correct)
		}
		if points, ok := obj["points"].(float64); ok {
			q.Points = int(points)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// Delete removes the quiz and every attempt recorded against it.
func (s *QuizService) Delete(ctx context.Context, id, callerID string) error {
	quiz, err := s.Quizzes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	if quiz.CreatedBy != callerID {
		return fmt.Errorf("%w: not authorized to delete this quiz", ErrForbidden)
	}
	if err := s.Quizzes.Delete(ctx, id); err != nil {
		return err
	}
	removed, err := s.Attempts.DeleteByQuiz(ctx, id)
	if err != nil {
		return err
	}
	s.Log.Info("quiz deleted",
		zap.String("quizId", quiz.QuizID),
		zap.Int64("attemptsRemoved", removed),
		zap.String("deletedBy", callerID))
	return nil
}

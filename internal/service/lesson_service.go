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
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type LessonService struct {
	Lessons *repository.LessonRepository
	Modules *repository.ModuleRepository
	Log     *zap.Logger
}

func NewLessonService(lessons *repository.LessonRepository, modules *repository.ModuleRepository, log *zap.Logger) *LessonService {
	return &LessonService{Lessons: lessons, Modules: modules, Log: log}
}

type CreateLessonInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Module  string `json:"module"`
}

func (s *LessonService) Create(ctx context.Context, in CreateLessonInput, createdBy string) (*models.Lesson, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || strings.TrimSpace(in.Content) == "" || in.Module == "" {
		return nil, fmt.Errorf("%w: title, content and module are required", ErrInvalidInput)
	}

	module, err := s.Modules.FindByID(ctx, in.Module)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: module not found", ErrNotFound)
		}
		return nil, err
	}

	slug, err := s.uniqueSlug(ctx, module.Title, title)
	if err != nil {
		return nil, err
	}

	lesson := &models.Lesson{
		LessonID:  slug,
		Title:     title,
		Content:   in.Content,
		Module:    module.ID,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}
	if err := s.Lessons.Create(ctx, lesson); err != nil {
		return nil, err
	}
	s.Log.Info("lesson created",
		zap.String("lessonId", lesson.LessonID),
		zap.String("module", module.ID))
	return lesson, nil
}

// uniqueSlug builds "<module-slug>-<title-slug>" and appends a timestamp
// suffix when a lesson already holds that slug.
func (s *LessonService) uniqueSlug(ctx context.Context, moduleTitle, title string) (string, error) {
	slug := Slugify(moduleTitle) + "-" + Slugify(title)
	exists, err := s.Lessons.SlugExists(ctx, slug)
	if err != nil {
		return "", err
	}
	if exists {
		slug = fmt.Sprintf("%s-%d", slug, time.Now().UnixMilli())
	}
	return slug, nil
}

type LessonDetail struct {
	models.Lesson
	ModuleInfo *ModuleSummary  `json:"moduleInfo,omitempty"`
	Siblings   []models.Lesson `json:"siblings,omitempty"`
}

// Get returns a lesson with its module summary and the other lessons of
// the same module, so a reader can move between them.
func (s *LessonService) Get(ctx context.Context, id string) (*LessonDetail, error) {
	lesson, err := s.Lessons.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	detail := &LessonDetail{Lesson: *lesson}

	if module, err := s.Modules.FindByID(ctx, lesson.Module); err == nil {
		detail.ModuleInfo = &ModuleSummary{ID: module.ID, Title: module.Title, Level: module.Level}
	}

	siblings, err := s.Lessons.FindByModule(ctx, lesson.Module)
	if err != nil {
		return nil, err
	}
	others := make([]models.Lesson, 0, len(siblings))
	for _, sib := range siblings {
		if sib.ID != lesson.ID {
			others = append(others, sib)
		}
	}
	detail.Siblings = others
	return detail, nil
}

type LessonPage struct {
	Lessons    []models.Lesson `json:"lessons"`
	Pagination Pagination      `json:"pagination"`
}

func (s *LessonService) List(ctx context.Context, page, limit int, moduleID, search string) (*LessonPage, error) {
	filter := bson.M{}
	if moduleID != "" {
		filter["module"] = moduleID
	}
	if search != "" {
		// Searches also match the hyphenated lessonId slugs.
		hyphenated := strings.ReplaceAll(strings.TrimSpace(search), " ", "-")
		filter["$or"] = []bson.M{
			{"title": bson.M{"$regex": search, "$options": "i"}},
			{"lessonId": bson.M{"$regex": hyphenated, "$options": "i"}},
		}
	}
	lessons, total, err := s.Lessons.FindPage(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}
	return &LessonPage{Lessons: lessons, Pagination: NewPagination(page, limit, total)}, nil
}

func (s *LessonService) Update(ctx context.Context, id, callerID string, updates map[string]interface{}) (*models.Lesson, error) {
	lesson, err := s.Lessons.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if lesson.CreatedBy != callerID {
		return nil, fmt.Errorf("%w: not authorized to update this lesson", ErrForbidden)
	}

	// The slug and module binding are immutable once created.
	delete(updates, "_id")
	delete(updates, "id")
	delete(updates, "lessonId")
	delete(updates, "module")
	delete(updates, "createdBy")
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: no updatable fields provided", ErrInvalidInput)
	}

	updated, err := s.Lessons.Update(ctx, id, bson.M(updates))
	if err != nil {
		return nil, err
	}
	s.Log.Info("lesson updated", zap.String("lessonId", updated.LessonID), zap.String("updatedBy", callerID))
	return updated, nil
}

func (s *LessonService) Delete(ctx context.Context, id, callerID string) error {
	lesson, err := s.Lessons.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	if lesson.CreatedBy != callerID {
		return fmt.Errorf("%w: not authorized to delete this lesson", ErrForbidden)
	}
	if err := s.Lessons.Delete(ctx, id); err != nil {
		return err
	}
	s.Log.Info("lesson deleted", zap.String("lessonId", lesson.LessonID), zap.String("deletedBy", callerID))
	return nil
}

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

type ModuleService struct {
	Modules *repository.ModuleRepository
	Lessons *repository.LessonRepository
	Log     *zap.Logger
}

func NewModuleService(modules *repository.ModuleRepository, lessons *repository.LessonRepository, log *zap.Logger) *ModuleService {
	return &ModuleService{Modules: modules, Lessons: lessons, Log: log}
}

type CreateModuleInput struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Level            string   `json:"level"`
	AllowedDistricts []string `json:"allowedDistricts"`
}

func (s *ModuleService) Create(ctx context.Context, in CreateModuleInput, createdBy string) (*models.Module, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	level := in.Level
	if level == "" {
		level = models.LevelBeginner
	}
	if !models.ValidLevel(level) {
		return nil, fmt.Errorf("%w: invalid level specified", ErrInvalidInput)
	}

	districts := []string{}
	for _, d := range in.AllowedDistricts {
		if d = strings.TrimSpace(d); d != "" {
			districts = append(districts, d)
		}
	}

	module := &models.Module{
		Title:            title,
		Description:      strings.TrimSpace(in.Description),
		Level:            level,
		AllowedDistricts: districts,
		CreatedBy:        createdBy,
		CreatedAt:        time.Now(),
	}
	if err := s.Modules.Create(ctx, module); err != nil {
		return nil, err
	}
	s.Log.Info("module created", zap.String("moduleId", module.ID), zap.String("title", module.Title))
	return module, nil
}

type ModulePage struct {
	Modules    []models.Module `json:"modules"`
	Pagination Pagination      `json:"pagination"`
}

func (s *ModuleService) List(ctx context.Context, page, limit int, search string) (*ModulePage, error) {
	filter := bson.M{}
	if search != "" {
		filter["title"] = bson.M{"$regex": search, "$options": "i"}
	}
	modules, total, err := s.Modules.FindPage(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}
	return &ModulePage{Modules: modules, Pagination: NewPagination(page, limit, total)}, nil
}

func (s *ModuleService) ListByLevel(ctx context.Context, level string, page, limit int) (*ModulePage, error) {
	if !models.ValidLevel(level) {
		return nil, fmt.Errorf("%w: invalid level specified", ErrInvalidInput)
	}
	modules, total, err := s.Modules.FindPage(ctx, bson.M{"level": level}, page, limit)
	if err != nil {
		return nil, err
	}
	return &ModulePage{Modules: modules, Pagination: NewPagination(page, limit, total)}, nil
}

func (s *ModuleService) Get(ctx context.Context, id string) (*models.Module, error) {
	module, err := s.Modules.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return module, nil
}

// Update applies updates to a module; only its creator may do so.
func (s *ModuleService) Update(ctx context.Context, id, callerID string, updates map[string]interface{}) (*models.Module, error) {
	if level, ok := updates["level"].(string); ok && !models.ValidLevel(level) {
		return nil, fmt.Errorf("%w: invalid level specified", ErrInvalidInput)
	}

	module, err := s.Modules.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if module.CreatedBy != callerID {
		return nil, fmt.Errorf("%w: not authorized to update this module", ErrForbidden)
	}

	if raw, ok := updates["allowedDistricts"]; ok {
		districts := []string{}
		if list, ok := raw.([]interface{}); ok {
			for _, item := range list {
				if d, ok := item.(string); ok {
					if d = strings.TrimSpace(d); d != "" {
						districts = append(districts, d)
					}
				}
			}
		}
		updates["allowedDistricts"] = districts
	}
	delete(updates, "_id")
	delete(updates, "id")
	delete(updates, "createdBy")

	updated, err := s.Modules.Update(ctx, id, bson.M(updates))
	if err != nil {
		return nil, err
	}
	s.Log.Info("module updated", zap.String("moduleId", id), zap.String("updatedBy", callerID))
	return updated, nil
}

func (s *ModuleService) Delete(ctx context.Context, id, callerID string) error {
	module, err := s.Modules.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	if module.CreatedBy != callerID {
		return fmt.Errorf("%w: not authorized to delete this module", ErrForbidden)
	}
	if err := s.Modules.Delete(ctx, id); err != nil {
		return err
	}
	s.Log.Info("module deleted", zap.String("moduleId", id), zap.String("deletedBy", callerID))
	return nil
}

type ModuleWithLessons struct {
	models.Module
	Lessons     []models.Lesson `json:"lessons"`
	LessonCount int             `json:"lessonCount"`
}

type StudentModulePage struct {
	Modules    []ModuleWithLessons `json:"modules"`
	Pagination Pagination          `json:"pagination"`
}

// ListForStudent returns modules with their lessons attached, the shape
// the student catalog renders.
func (s *ModuleService) ListForStudent(ctx context.Context, page, limit int, search, level string) (*StudentModulePage, error) {
	filter := bson.M{}
	if search != "" {
		filter["$or"] = []bson.M{
			{"title": bson.M{"$regex": search, "$options": "i"}},
			{"description": bson.M{"$regex": search, "$options": "i"}},
		}
	}
	if level != "" && models.ValidLevel(level) {
		filter["level"] = level
	}

	modules, total, err := s.Modules.FindPage(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}

	withLessons := make([]ModuleWithLessons, 0, len(modules))
	for _, m := range modules {
		lessons, err := s.Lessons.FindByModule(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		withLessons = append(withLessons, ModuleWithLessons{
			Module:      m,
			Lessons:     lessons,
			LessonCount: len(lessons),
		})
	}

	return &StudentModulePage{Modules: withLessons, Pagination: NewPagination(page, limit, total)}, nil
}

func (s *ModuleService) GetWithLessons(ctx context.Context, id string) (*ModuleWithLessons, error) {
	module, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	lessons, err := s.Lessons.FindByModule(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ModuleWithLessons{Module: *module, Lessons: lessons, LessonCount: len(lessons)}, nil
}

type ModuleLessonPage struct {
	Lessons    []models.Lesson `json:"lessons"`
	Module     *models.Module  `json:"module"`
	Pagination Pagination      `json:"pagination"`
}

func (s *ModuleService) LessonsByModule(ctx context.Context, moduleID string, page, limit int) (*ModuleLessonPage, error) {
	module, err := s.Get(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	lessons, total, err := s.Lessons.FindPage(ctx, bson.M{"module": moduleID}, page, limit)
	if err != nil {
		return nil, err
	}
	return &ModuleLessonPage{
		Lessons:    lessons,
		Module:     module,
		Pagination: NewPagination(page, limit, total),
	}, nil
}

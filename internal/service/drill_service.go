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

type DrillService struct {
	Drills *repository.DrillRepository
	Log    *zap.Logger
}

func NewDrillService(drills *repository.DrillRepository, log *zap.Logger) *DrillService {
	return &DrillService{Drills: drills, Log: log}
}

type DrillInput struct {
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Assets       []models.DrillAsset `json:"assets"`
	Targets      []string            `json:"targets"`
	Instructions string              `json:"instructions"`
}

func validateAssets(assets []models.DrillAsset) error {
	for i, a := range assets {
		if strings.TrimSpace(a.Name) == "" {
			return fmt.Errorf("%w: asset %d has no name", ErrInvalidInput, i+1)
		}
		if !models.ValidAssetType(a.Type) {
			return fmt.Errorf("%w: asset %d has an invalid type", ErrInvalidInput, i+1)
		}
		if strings.TrimSpace(a.ImageURL) == "" {
			return fmt.Errorf("%w: asset %d has no imageURL", ErrInvalidInput, i+1)
		}
	}
	return nil
}

func (s *DrillService) Create(ctx context.Context, in DrillInput, createdBy string) (*models.VirtualDrill, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: name and description are required", ErrInvalidInput)
	}
	if err := validateAssets(in.Assets); err != nil {
		return nil, err
	}

	assets := in.Assets
	if assets == nil {
		assets = []models.DrillAsset{}
	}
	targets := in.Targets
	if targets == nil {
		targets = []string{}
	}

	now := time.Now()
	drill := &models.VirtualDrill{
		Name:         name,
		Description:  strings.TrimSpace(in.Description),
		Assets:       assets,
		Targets:      targets,
		Instructions: in.Instructions,
		Released:     false,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Drills.Create(ctx, drill); err != nil {
		return nil, err
	}
	s.Log.Info("drill created", zap.String("drillId", drill.ID), zap.String("name", drill.Name))
	return drill, nil
}

// Get enforces visibility: an unreleased drill is only visible to its
// creator and to admins.
func (s *DrillService) Get(ctx context.Context, id, callerID, callerRole string) (*models.VirtualDrill, error) {
	drill, err := s.Drills.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !drill.Released && drill.CreatedBy != callerID && callerRole != models.RoleAdmin {
		return nil, fmt.Errorf("%w: drill has not been released", ErrForbidden)
	}
	return drill, nil
}

type DrillPage struct {
	Drills     []models.VirtualDrill `json:"drills"`
	Pagination Pagination            `json:"pagination"`
}

// ListReleased returns released drills only, the catalog students see.
func (s *DrillService) ListReleased(ctx context.Context, page, limit int, search string) (*DrillPage, error) {
	filter := bson.M{"released": true}
	if search != "" {
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": search, "$options": "i"}},
			{"description": bson.M{"$regex": search, "$options": "i"}},
		}
	}
	drills, total, err := s.Drills.FindPage(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}
	return &DrillPage{Drills: drills, Pagination: NewPagination(page, limit, total)}, nil
}

func (s *DrillService) ListMine(ctx context.Context, callerID string, page, limit int) (*DrillPage, error) {
	drills, total, err := s.Drills.FindPage(ctx, bson.M{"createdBy": callerID}, page, limit)
	if err != nil {
		return nil, err
	}
	return &DrillPage{Drills: drills, Pagination: NewPagination(page, limit, total)}, nil
}

// ListAll is the admin view; it includes unreleased drills and accepts a
// released filter ("true"/"false") alongside free-text search.
func (s *DrillService) ListAll(ctx context.Context, page, limit int, search, released string) (*DrillPage, error) {
	filter := bson.M{}
	switch released {
	case "true":
		filter["released"] = true
	case "false":
		filter["released"] = false
	}
	if search != "" {
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": search, "$options": "i"}},
			{"description": bson.M{"$regex": search, "$options": "i"}},
		}
	}
	drills, total, err := s.Drills.FindPage(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}
	return &DrillPage{Drills: drills, Pagination: NewPagination(page, limit, total)}, nil
}

// ListForInstitute returns released drills that target the institute, or
// target no institute at all.
func (s *DrillService) ListForInstitute(ctx context.Context, instituteID string, page, limit int) (*DrillPage, error) {
	filter := bson.M{
		"released": true,
		"$or": []bson.M{
			{"targets": instituteID},
			{"targets": bson.M{"$size": 0}},
		},
	}
	drills, total, err := s.Drills.FindPage(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}
	return &DrillPage{Drills: drills, Pagination: NewPagination(page, limit, total)}, nil
}

func (s *DrillService) Update(ctx context.Context, id, callerID, callerRole string, updates map[string]interface{}) (*models.VirtualDrill, error) {
	drill, err := s.Drills.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if drill.CreatedBy != callerID && callerRole != models.RoleAdmin {
		return nil, fmt.Errorf("%w: not authorized to update this drill", ErrForbidden)
	}

	if raw, ok := updates["assets"]; ok {
		assets, err := decodeAssets(raw)
		if err != nil {
			return nil, err
		}
		updates["assets"] = assets
	}
	delete(updates, "_id")
	delete(updates, "id")
	delete(updates, "createdBy")
	delete(updates, "released")
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: no updatable fields provided", ErrInvalidInput)
	}
	updates["updatedAt"] = time.Now()

	updated, err := s.Drills.Update(ctx, id, bson.M(updates))
	if err != nil {
		return nil, err
	}
	s.Log.Info("drill updated", zap.String("drillId", id), zap.String("updatedBy", callerID))
	return updated, nil
}

func decodeAssets(raw interface{}) ([]models.DrillAsset, error) {
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: assets must be a list", ErrInvalidInput)
	}
	assets := make([]models.DrillAsset, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: assets must be a list of objects", ErrInvalidInput)
		}
		var a models.DrillAsset
		if name, ok := obj["name"].(string); ok {
			a.Name = name
		}
		if typ, ok := obj["type"].(string); ok {
			a.Type = typ
		}
		if url, ok := obj["imageURL"].(string); ok {
			a.ImageURL = url
		}
		assets = append(assets, a)
	}
	if err := validateAssets(assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// SetReleased flips the release flag; only admins reach this through the
// router, the service just records who did it.
func (s *DrillService) SetReleased(ctx context.Context, id string, released bool, callerID string) (*models.VirtualDrill, error) {
	updated, err := s.Drills.Update(ctx, id, bson.M{"released": released, "updatedAt": time.Now()})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.Log.Info("drill release flag changed",
		zap.String("drillId", id),
		zap.Bool("released", released),
		zap.String("changedBy", callerID))
	return updated, nil
}

func (s *DrillService) Delete(ctx context.Context, id, callerID, callerRole string) error {
	drill, err := s.Drills.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	if drill.CreatedBy != callerID && callerRole != models.RoleAdmin {
		return fmt.Errorf("%w: not authorized to delete this drill", ErrForbidden)
	}
	if err := s.Drills.Delete(ctx, id); err != nil {
		return err
	}
	s.Log.Info("drill deleted", zap.String("drillId", id), zap.String("deletedBy", callerID))
	return nil
}

type DrillStats struct {
	Total      int64                 `json:"total"`
	Released   int64                 `json:"released"`
	Unreleased int64                 `json:"unreleased"`
	Recent     []models.VirtualDrill `json:"recent"`
}

func (s *DrillService) Stats(ctx context.Context) (*DrillStats, error) {
	total, err := s.Drills.Count(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	released, err := s.Drills.Count(ctx, bson.M{"released": true})
	if err != nil {
		return nil, err
	}
	recent, err := s.Drills.FindRecent(ctx, 5)
	if err != nil {
		return nil, err
	}
	return &DrillStats{
		Total:      total,
		Released:   released,
		Unreleased: total - released,
		Recent:     recent,
	}, nil
}

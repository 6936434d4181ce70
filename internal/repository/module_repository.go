package repository

import (
	"context"

	"preparedness-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ModuleRepository struct {
	Col *mongo.Collection
}

func NewModuleRepository(db *mongo.Database) *ModuleRepository {
	return &ModuleRepository{Col: db.Collection("modules")}
}

func (r *ModuleRepository) FindByID(ctx context.Context, id string) (*models.Module, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var module models.Module
	if err := r.Col.FindOne(ctx, bson.M{"_id": objID}).Decode(&module); err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *ModuleRepository) Create(ctx context.Context, module *models.Module) error {
	res, err := r.Col.InsertOne(ctx, module)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		module.ID = oid.Hex()
	}
	return nil
}

func (r *ModuleRepository) Update(ctx context.Context, id string, update bson.M) (*models.Module, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var module models.Module
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.Col.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": update}, opts).Decode(&module)
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *ModuleRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}
	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// FindPage returns one page of modules, newest first, plus the total count.
func (r *ModuleRepository) FindPage(ctx context.Context, filter bson.M, page, limit int) ([]models.Module, int64, error) {
	total, err := r.Col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.Col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	modules := []models.Module{}
	for cur.Next(ctx) {
		var m models.Module
		if err := cur.Decode(&m); err != nil {
			return nil, 0, err
		}
		modules = append(modules, m)
	}
	return modules, total, cur.Err()
}

package repository

import (
	"context"

	"preparedness-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DrillRepository struct {
	Col *mongo.Collection
}

func NewDrillRepository(db *mongo.Database) *DrillRepository {
	return &DrillRepository{Col: db.Collection("virtualdrills")}
}

func (r *DrillRepository) FindByID(ctx context.Context, id string) (*models.VirtualDrill, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var drill models.VirtualDrill
	if err := r.Col.FindOne(ctx, bson.M{"_id": objID}).Decode(&drill); err != nil {
		return nil, err
	}
	return &drill, nil
}

func (r *DrillRepository) Create(ctx context.Context, drill *models.VirtualDrill) error {
	res, err := r.Col.InsertOne(ctx, drill)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		drill.ID = oid.Hex()
	}
	return nil
}

func (r *DrillRepository) Update(ctx context.Context, id string, update bson.M) (*models.VirtualDrill, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var drill models.VirtualDrill
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.Col.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": update}, opts).Decode(&drill)
	if err != nil {
		return nil, err
	}
	return &drill, nil
}

func (r *DrillRepository) Delete(ctx context.Context, id string) error {
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

func (r *DrillRepository) Count(ctx context.Context, filter bson.M) (int64, error) {
	return r.Col.CountDocuments(ctx, filter)
}

// FindPage returns one page of drills, newest first, plus the total count.
func (r *DrillRepository) FindPage(ctx context.Context, filter bson.M, page, limit int) ([]models.VirtualDrill, int64, error) {
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

	drills := []models.VirtualDrill{}
	for cur.Next(ctx) {
		var d models.VirtualDrill
		if err := cur.Decode(&d); err != nil {
			return nil, 0, err
		}
		drills = append(drills, d)
	}
	return drills, total, cur.Err()
}

// FindRecent returns the most recently created drills for the admin
// dashboard.
func (r *DrillRepository) FindRecent(ctx context.Context, limit int) ([]models.VirtualDrill, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.Col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	drills := []models.VirtualDrill{}
	for cur.Next(ctx) {
		var d models.VirtualDrill
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		drills = append(drills, d)
	}
	return drills, cur.Err()
}

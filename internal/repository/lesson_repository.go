package repository

import (
	"context"

	"preparedness-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type LessonRepository struct {
	Col *mongo.Collection
}

func NewLessonRepository(db *mongo.Database) *LessonRepository {
	return &LessonRepository{Col: db.Collection("lessons")}
}

func (r *LessonRepository) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var lesson models.Lesson
	if err := r.Col.FindOne(ctx, bson.M{"_id": objID}).Decode(&lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// SlugExists reports whether a lesson already uses the given lessonId slug.
func (r *LessonRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	err := r.Col.FindOne(ctx, bson.M{"lessonId": slug}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	res, err := r.Col.InsertOne(ctx, lesson)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		lesson.ID = oid.Hex()
	}
	return nil
}

func (r *LessonRepository) Update(ctx context.Context, id string, update bson.M) (*models.Lesson, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var lesson models.Lesson
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.Col.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": update}, opts).Decode(&lesson)
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *LessonRepository) Delete(ctx context.Context, id string) error {
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

// Find returns lessons matching the filter in creation order (oldest
// first, the order students read them in).
func (r *LessonRepository) Find(ctx context.Context, filter bson.M) ([]models.Lesson, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cur, err := r.Col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	lessons := []models.Lesson{}
	for cur.Next(ctx) {
		var l models.Lesson
		if err := cur.Decode(&l); err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, cur.Err()
}

func (r *LessonRepository) FindByModule(ctx context.Context, moduleID string) ([]models.Lesson, error) {
	return r.Find(ctx, bson.M{"module": moduleID})
}

// FindPage returns one page of lessons for a module plus the total count.
func (r *LessonRepository) FindPage(ctx context.Context, filter bson.M, page, limit int) ([]models.Lesson, int64, error) {
	total, err := r.Col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.Col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	lessons := []models.Lesson{}
	for cur.Next(ctx) {
		var l models.Lesson
		if err := cur.Decode(&l); err != nil {
			return nil, 0, err
		}
		lessons = append(lessons, l)
	}
	return lessons, total, cur.Err()
}

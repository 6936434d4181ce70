package repository

import (
	"context"
	"errors"
	"time"

	"preparedness-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrAttemptCompleted is returned when a completion write targets an
// attempt whose completedAt is already set.
var ErrAttemptCompleted = errors.New("attempt already completed")

type AttemptRepository struct {
	Col *mongo.Collection
}

func NewAttemptRepository(db *mongo.Database) *AttemptRepository {
	return &AttemptRepository{Col: db.Collection("attempts")}
}

// FindOngoing returns the ongoing attempt for the (quiz, student) pair,
// or nil when none exists.
func (r *AttemptRepository) FindOngoing(ctx context.Context, quizID, studentID string) (*models.Attempt, error) {
	var attempt models.Attempt
	err := r.Col.FindOne(ctx, bson.M{
		"quiz":        quizID,
		"student":     studentID,
		"completedAt": bson.M{"$exists": false},
	}).Decode(&attempt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *models.Attempt) error {
	res, err := r.Col.InsertOne(ctx, attempt)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		attempt.ID = oid.Hex()
	}
	return nil
}

func (r *AttemptRepository) FindByID(ctx context.Context, id string) (*models.Attempt, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var attempt models.Attempt
	if err := r.Col.FindOne(ctx, bson.M{"_id": objID}).Decode(&attempt); err != nil {
		return nil, err
	}
	return &attempt, nil
}

// MarkCompleted writes the graded answers and completion metadata. The
// filter excludes completed attempts so a finished attempt can never be
// rewritten; in that case ErrAttemptCompleted is returned.
func (r *AttemptRepository) MarkCompleted(ctx context.Context, id string, answers []models.GradedAnswer, score int, completedAt time.Time, duration int) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}
	res, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": objID, "completedAt": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{
			"answers":     answers,
			"score":       score,
			"completedAt": completedAt,
			"duration":    duration,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// The attempt either never existed or was completed concurrently.
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return findErr
		}
		return ErrAttemptCompleted
	}
	return nil
}

func (r *AttemptRepository) ListByQuizAndStudent(ctx context.Context, quizID, studentID string) ([]models.Attempt, error) {
	return r.list(ctx, bson.M{"quiz": quizID, "student": studentID})
}

func (r *AttemptRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Attempt, error) {
	return r.list(ctx, bson.M{"student": studentID})
}

func (r *AttemptRepository) list(ctx context.Context, filter bson.M) ([]models.Attempt, error) {
	opts := options.Find().SetSort(bson.D{{Key: "startedAt", Value: -1}})
	cur, err := r.Col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	attempts := []models.Attempt{}
	for cur.Next(ctx) {
		var a models.Attempt
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, cur.Err()
}

// DeleteByQuiz removes all attempts linked to a quiz. Used when the quiz
// itself is deleted.
func (r *AttemptRepository) DeleteByQuiz(ctx context.Context, quizID string) (int64, error) {
	res, err := r.Col.DeleteMany(ctx, bson.M{"quiz": quizID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

package db

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Client *mongo.Client

func InitMongo(uri string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	Client = client
}

// EnsureIndexes creates the indexes the service relies on. The partial
// unique index over attempts guarantees at most one ongoing attempt per
// (quiz, student) pair even under concurrent starts.
func EnsureIndexes(database *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := database.Collection("attempts").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "quiz", Value: 1}, {Key: "student", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"completedAt": bson.M{"$exists": false}}),
	})
	if err != nil {
		return err
	}

	_, err = database.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = database.Collection("lessons").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "lessonId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mbtispy/internal/model"
)

// RecordRepo archives consented trait records. Unlike sessions, these
// outlive the TTL; they are the only durable data the game writes.
type RecordRepo interface {
	Insert(ctx context.Context, record *model.TraitRecord) error
	ListBySession(ctx context.Context, code string) ([]model.TraitRecord, error)
}

type recordRepo struct {
	collection *mongo.Collection
}

func NewRecordRepo(db *mongo.Database) RecordRepo {
	return &recordRepo{
		collection: db.Collection("trait_records"),
	}
}

func (r *recordRepo) Insert(ctx context.Context, record *model.TraitRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, record)
	return err
}

func (r *recordRepo) ListBySession(ctx context.Context, code string) ([]model.TraitRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"sessionCode": code}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []model.TraitRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

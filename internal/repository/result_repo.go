package repository

import (
	"context"
	"errors"
	"time"

	"surveyassistant/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ResultRepo handles MongoDB operations for finished survey documents
type ResultRepo interface {
	Save(ctx context.Context, result *model.SurveyResult) error
	GetBySessionID(ctx context.Context, sessionID string) (*model.SurveyResult, error)
	List(ctx context.Context, limit int64) ([]*model.SurveyResult, error)
}

type resultRepo struct {
	collection *mongo.Collection
}

// NewResultRepo creates a new result repository
func NewResultRepo(db *mongo.Database) ResultRepo {
	return &resultRepo{
		collection: db.Collection("survey_results"),
	}
}

// Save upserts by session id, so a session has at most one result.
func (r *resultRepo) Save(ctx context.Context, result *model.SurveyResult) error {
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now()
	}

	filter := bson.M{"sessionId": result.SessionID}
	update := bson.M{
		"$set": bson.M{
			"document":    result.Document,
			"completedAt": result.CompletedAt,
		},
		"$setOnInsert": bson.M{
			"sessionId": result.SessionID,
			"createdAt": result.CreatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return err
	}
	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		result.ID = oid.Hex()
	}
	return nil
}

func (r *resultRepo) GetBySessionID(ctx context.Context, sessionID string) (*model.SurveyResult, error) {
	var raw struct {
		ID                 primitive.ObjectID `bson:"_id"`
		model.SurveyResult `bson:",inline"`
	}
	err := r.collection.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	result := raw.SurveyResult
	result.ID = raw.ID.Hex()
	return &result, nil
}

// List returns the most recently completed results first.
func (r *resultRepo) List(ctx context.Context, limit int64) ([]*model.SurveyResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "completedAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []*model.SurveyResult
	for cursor.Next(ctx) {
		var raw struct {
			ID                 primitive.ObjectID `bson:"_id"`
			model.SurveyResult `bson:",inline"`
		}
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		result := raw.SurveyResult
		result.ID = raw.ID.Hex()
		results = append(results, &result)
	}
	return results, cursor.Err()
}

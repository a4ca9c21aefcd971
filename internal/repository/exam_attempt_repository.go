package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Ayush-an/Exam-Buddy-sub000/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ExamAttemptRepository inserts attempts; the only later write clears historyPending.
type ExamAttemptRepository struct {
	collection *mongo.Collection
}

func NewExamAttemptRepository(db *mongo.Database) *ExamAttemptRepository {
	return &ExamAttemptRepository{
		collection: db.Collection("exam_attempts"),
	}
}

func (r *ExamAttemptRepository) CreateIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "submittedAt", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "section", Value: 1}, {Key: "set", Value: 1}}},
		{
			Keys:    bson.D{{Key: "historyPending", Value: 1}, {Key: "submittedAt", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
	return err
}

func (r *ExamAttemptRepository) Create(ctx context.Context, attempt *models.ExamAttempt) error {
	_, err := r.collection.InsertOne(ctx, attempt)
	return err
}

func (r *ExamAttemptRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.ExamAttempt, error) {
	var attempt models.ExamAttempt
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&attempt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}

func (r *ExamAttemptRepository) FindByUser(ctx context.Context, userID bson.ObjectID, page, limit int) ([]*models.ExamAttempt, int64, error) {
	filter := bson.M{"userId": userID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "submittedAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"answers": 0})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var attempts []*models.ExamAttempt
	if err := cursor.All(ctx, &attempts); err != nil {
		return nil, 0, err
	}
	return attempts, total, nil
}

func historyPendingFilter(submittedBefore time.Time) bson.M {
	return bson.M{
		"historyPending": true,
		"submittedAt":    bson.M{"$lt": submittedBefore},
	}
}

func (r *ExamAttemptRepository) FindHistoryPending(ctx context.Context, submittedBefore time.Time, limit int) ([]*models.ExamAttempt, error) {
	filter := historyPendingFilter(submittedBefore)
	opts := options.Find().
		SetSort(bson.D{{Key: "submittedAt", Value: 1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"answers": 0})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var attempts []*models.ExamAttempt
	if err := cursor.All(ctx, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

func (r *ExamAttemptRepository) ClearHistoryPending(ctx context.Context, id bson.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$unset": bson.M{"historyPending": ""},
	})
	return err
}

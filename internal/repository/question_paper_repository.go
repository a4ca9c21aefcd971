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

type QuestionPaperRepository struct {
	collection *mongo.Collection
}

func NewQuestionPaperRepository(db *mongo.Database) *QuestionPaperRepository {
	return &QuestionPaperRepository{
		collection: db.Collection("question_papers"),
	}
}

func (r *QuestionPaperRepository) CreateIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "category", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *QuestionPaperRepository) FindAll(ctx context.Context) ([]*models.QuestionPaper, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "category", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var papers []*models.QuestionPaper
	if err := cursor.All(ctx, &papers); err != nil {
		return nil, err
	}
	return papers, nil
}

func (r *QuestionPaperRepository) FindByCategory(ctx context.Context, category models.Category) (*models.QuestionPaper, error) {
	var paper models.QuestionPaper
	err := r.collection.FindOne(ctx, bson.M{"category": category}).Decode(&paper)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &paper, nil
}

func (r *QuestionPaperRepository) Upsert(ctx context.Context, category models.Category, sections []models.Section) (*models.QuestionPaper, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"sections":  sections,
			"updatedAt": now,
		},
		// category comes from the filter on insert
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var paper models.QuestionPaper
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"category": category}, update, opts).Decode(&paper); err != nil {
		return nil, err
	}
	return &paper, nil
}

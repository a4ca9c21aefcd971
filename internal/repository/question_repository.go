package repository

import (
	"context"
	"errors"

	"github.com/Ayush-an/Exam-Buddy-sub000/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type QuestionRepository struct {
	collection *mongo.Collection
}

func NewQuestionRepository(db *mongo.Database) *QuestionRepository {
	return &QuestionRepository{
		collection: db.Collection("questions"),
	}
}

func (r *QuestionRepository) CreateIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "category", Value: 1},
			{Key: "section", Value: 1},
			{Key: "set", Value: 1},
			{Key: "createdAt", Value: 1},
		},
	})
	return err
}

func setFilter(category models.Category, section, set string) bson.M {
	return bson.M{"category": category, "section": section, "set": set}
}

// FindByIDs loads every listed question in one query. Missing ids are skipped.
func (r *QuestionRepository) FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]*models.Question, error) {
	if len(ids) == 0 {
		return []*models.Question{}, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []*models.Question
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *QuestionRepository) FindBySet(ctx context.Context, category models.Category, section, set string) ([]*models.Question, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, setFilter(category, section, set), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []*models.Question
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *QuestionRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.Question, error) {
	var question models.Question
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&question)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &question, nil
}

func (r *QuestionRepository) Create(ctx context.Context, question *models.Question) error {
	_, err := r.collection.InsertOne(ctx, question)
	return err
}

func (r *QuestionRepository) Update(ctx context.Context, question *models.Question) (bool, error) {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": question.ID}, question)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *QuestionRepository) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

func (r *QuestionRepository) CountBySet(ctx context.Context, category models.Category, section, set string) (int64, error) {
	return r.collection.CountDocuments(ctx, setFilter(category, section, set))
}

func (r *QuestionRepository) CountBySection(ctx context.Context, category models.Category, section string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"category": category, "section": section})
}

func (r *QuestionRepository) RenameSet(ctx context.Context, category models.Category, section, oldName, newName string) (int64, error) {
	result, err := r.collection.UpdateMany(ctx, setFilter(category, section, oldName), bson.M{"$set": bson.M{"set": newName}})
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

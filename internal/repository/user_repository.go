package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ayush-an/Exam-Buddy-sub000/internal/models"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/service"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

func (r *UserRepository) CreateIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "resetToken", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
	return err
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByResetToken(ctx context.Context, token string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"resetToken": token})
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("insert user %s: %w", user.Email, service.ErrDuplicateKey)
	}
	return err
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id bson.ObjectID, name, phone *string) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if name != nil {
		set["name"] = *name
	}
	if phone != nil {
		set["phone"] = *phone
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// AppendHistory links an attempt summary and bumps the aggregate counters in one
// update. An attempt already in the history is not linked twice.
// appendHistoryFilter stops matching once the attempt is in the user's history,
// so a retried link never counts twice.
func appendHistoryFilter(userID, attemptID bson.ObjectID) bson.M {
	return bson.M{
		"_id":                   userID,
		"examHistory.attemptId": bson.M{"$ne": attemptID},
	}
}

func appendHistoryUpdate(entry models.ExamHistoryEntry, scoreDelta float64, now time.Time) bson.M {
	return bson.M{
		"$push": bson.M{"examHistory": entry},
		"$inc":  bson.M{"papersAttempted": 1, "score": scoreDelta},
		"$set":  bson.M{"updatedAt": now},
	}
}

func (r *UserRepository) AppendHistory(ctx context.Context, userID bson.ObjectID, entry models.ExamHistoryEntry, scoreDelta float64) (bool, error) {
	filter := appendHistoryFilter(userID, entry.AttemptID)
	update := appendHistoryUpdate(entry, scoreDelta, time.Now().UTC())
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, id bson.ObjectID, token string, expiresAt time.Time) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"resetToken":           token,
			"resetTokenExpiration": expiresAt,
			"updatedAt":            time.Now().UTC(),
		},
	})
	return err
}

func (r *UserRepository) ResetPassword(ctx context.Context, id bson.ObjectID, passwordHash string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set":   bson.M{"password": passwordHash, "updatedAt": time.Now().UTC()},
		"$unset": bson.M{"resetToken": "", "resetTokenExpiration": ""},
	})
	return err
}

func (r *UserRepository) AddSubscription(ctx context.Context, id bson.ObjectID, sub models.Subscription) (bool, error) {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"subscriptions": sub},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

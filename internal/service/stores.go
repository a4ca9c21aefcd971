package service

import (
	"context"
	"io"
	"time"

	"github.com/Ayush-an/Exam-Buddy-sub000/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Lookups return (nil, nil) when the document does not exist.

type QuestionStore interface {
	FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]*models.Question, error)
	FindBySet(ctx context.Context, category models.Category, section, set string) ([]*models.Question, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Question, error)
	Create(ctx context.Context, question *models.Question) error
	Update(ctx context.Context, question *models.Question) (bool, error)
	Delete(ctx context.Context, id bson.ObjectID) (bool, error)
	CountBySet(ctx context.Context, category models.Category, section, set string) (int64, error)
	CountBySection(ctx context.Context, category models.Category, section string) (int64, error)
	RenameSet(ctx context.Context, category models.Category, section, oldName, newName string) (int64, error)
}

type PaperStore interface {
	FindAll(ctx context.Context) ([]*models.QuestionPaper, error)
	FindByCategory(ctx context.Context, category models.Category) (*models.QuestionPaper, error)
	Upsert(ctx context.Context, category models.Category, sections []models.Section) (*models.QuestionPaper, error)
}

type AttemptStore interface {
	Create(ctx context.Context, attempt *models.ExamAttempt) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.ExamAttempt, error)
	FindByUser(ctx context.Context, userID bson.ObjectID, page, limit int) ([]*models.ExamAttempt, int64, error)
	// FindHistoryPending returns attempts submitted before the cutoff that were never linked.
	FindHistoryPending(ctx context.Context, submittedBefore time.Time, limit int) ([]*models.ExamAttempt, error)
	ClearHistoryPending(ctx context.Context, id bson.ObjectID) error
}

type UserStore interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByResetToken(ctx context.Context, token string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, id bson.ObjectID, name, phone *string) (*models.User, error)
	// AppendHistory reports false when no user matched or the attempt is already linked.
	AppendHistory(ctx context.Context, userID bson.ObjectID, entry models.ExamHistoryEntry, scoreDelta float64) (bool, error)
	SetResetToken(ctx context.Context, id bson.ObjectID, token string, expiresAt time.Time) error
	ResetPassword(ctx context.Context, id bson.ObjectID, passwordHash string) error
	AddSubscription(ctx context.Context, id bson.ObjectID, sub models.Subscription) (bool, error)
}

// SessionStore holds short-lived auth state: revoked tokens and login lockouts.
type SessionStore interface {
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
	RegisterFailedLogin(ctx context.Context, email string, window time.Duration) (int64, error)
	ClearFailedLogins(ctx context.Context, email string) error
	LockUser(ctx context.Context, email string, d time.Duration) error
	IsUserLocked(ctx context.Context, email string) (bool, error)
}

type MediaStorage interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
	Remove(ctx context.Context, objectName string) error
}

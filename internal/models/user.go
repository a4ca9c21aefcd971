package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type User struct {
	ID                   bson.ObjectID      `bson:"_id,omitempty" json:"_id"`
	Name                 string             `bson:"name" json:"name"`
	Email                string             `bson:"email" json:"email"`
	Phone                string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Password             string             `bson:"password" json:"-"`
	Role                 Role               `bson:"role" json:"role"`
	Score                float64            `bson:"score" json:"score"`
	PapersAttempted      int                `bson:"papersAttempted" json:"papersAttempted"`
	Subscriptions        []Subscription     `bson:"subscriptions" json:"subscriptions"`
	ExamHistory          []ExamHistoryEntry `bson:"examHistory" json:"examHistory"`
	ResetToken           string             `bson:"resetToken,omitempty" json:"-"`
	ResetTokenExpiration *time.Time         `bson:"resetTokenExpiration,omitempty" json:"-"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Subscription entitles a user to a paid section until ExpiresAt.
type Subscription struct {
	Category  Category  `bson:"category" json:"category"`
	Section   string    `bson:"section" json:"section"`
	GrantedAt time.Time `bson:"grantedAt" json:"grantedAt"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) HasAccess(category Category, section string, now time.Time) bool {
	for _, s := range u.Subscriptions {
		if s.Category == category && s.Section == section && now.Before(s.ExpiresAt) {
			return true
		}
	}
	return false
}

// FindHistoryEntry matches on the hex form of the attempt id.
func (u *User) FindHistoryEntry(attemptID string) *ExamHistoryEntry {
	for i := range u.ExamHistory {
		if u.ExamHistory[i].AttemptID.Hex() == attemptID {
			return &u.ExamHistory[i]
		}
	}
	return nil
}

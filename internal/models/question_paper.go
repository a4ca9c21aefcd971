package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type QuestionPaper struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Category  Category      `bson:"category" json:"category"`
	Sections  []Section     `bson:"sections" json:"sections"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt" json:"updatedAt"`
}

type Section struct {
	Name              string `bson:"name" json:"name"`
	IsPaid            bool   `bson:"isPaid" json:"isPaid"`
	HasTimeLimit      bool   `bson:"hasTimeLimit" json:"hasTimeLimit"`
	TimeLimitMinutes  int    `bson:"timeLimitMinutes,omitempty" json:"timeLimitMinutes,omitempty"`
	NumberOfQuestions int    `bson:"numberOfQuestions,omitempty" json:"numberOfQuestions,omitempty"`
	Description       string `bson:"description,omitempty" json:"description,omitempty"`
	Sets              []Set  `bson:"sets" json:"sets"`
}

type Set struct {
	Name             string `bson:"name" json:"name"`
	TimeLimitMinutes int    `bson:"timeLimitMinutes,omitempty" json:"timeLimitMinutes,omitempty"`
}

func (p *QuestionPaper) FindSection(name string) (int, *Section) {
	for i := range p.Sections {
		if p.Sections[i].Name == name {
			return i, &p.Sections[i]
		}
	}
	return -1, nil
}

func (s *Section) FindSet(name string) (int, *Set) {
	for i := range s.Sets {
		if s.Sets[i].Name == name {
			return i, &s.Sets[i]
		}
	}
	return -1, nil
}

// EffectiveTimeLimit is the set override when present, else the section limit.
// Zero means untimed.
func (s *Section) EffectiveTimeLimit(set *Set) int {
	if set != nil && set.TimeLimitMinutes > 0 {
		return set.TimeLimitMinutes
	}
	if s.HasTimeLimit {
		return s.TimeLimitMinutes
	}
	return 0
}

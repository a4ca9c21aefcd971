package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Option struct {
	Type    OptionType `bson:"type" json:"type"`
	Content string     `bson:"content" json:"content"`
}

type Question struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Category      Category      `bson:"category" json:"category"`
	Section       string        `bson:"section" json:"section"`
	Set           string        `bson:"set" json:"set"`
	QuestionText  string        `bson:"questionText" json:"questionText"`
	QuestionImage string        `bson:"questionImage,omitempty" json:"questionImage,omitempty"`
	QuestionAudio string        `bson:"questionAudio,omitempty" json:"questionAudio,omitempty"`
	Options       []Option      `bson:"options" json:"options"`
	CorrectAnswer string        `bson:"correctAnswer" json:"correctAnswer"`
	Marks         float64       `bson:"marks" json:"marks"`
	CreatedAt     time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// BelongsTo reports whether the question is filed under the given set.
func (q *Question) BelongsTo(category Category, section, set string) bool {
	return q.Category == category && q.Section == section && q.Set == set
}

// Snapshot captures the parts of a question that decide how an answer was scored.
func (q *Question) Snapshot() *QuestionSnapshot {
	options := make([]Option, len(q.Options))
	copy(options, q.Options)
	return &QuestionSnapshot{
		QuestionText:  q.QuestionText,
		QuestionImage: q.QuestionImage,
		QuestionAudio: q.QuestionAudio,
		Options:       options,
		CorrectAnswer: q.CorrectAnswer,
		Marks:         q.Marks,
	}
}

type QuestionSnapshot struct {
	QuestionText  string   `bson:"questionText" json:"questionText"`
	QuestionImage string   `bson:"questionImage,omitempty" json:"questionImage,omitempty"`
	QuestionAudio string   `bson:"questionAudio,omitempty" json:"questionAudio,omitempty"`
	Options       []Option `bson:"options" json:"options"`
	CorrectAnswer string   `bson:"correctAnswer" json:"correctAnswer"`
	Marks         float64  `bson:"marks" json:"marks"`
}

// DiffersFrom reports whether the live question no longer scores the way the snapshot did.
func (s *QuestionSnapshot) DiffersFrom(q *Question) bool {
	if s.CorrectAnswer != q.CorrectAnswer || s.Marks != q.Marks || len(s.Options) != len(q.Options) {
		return true
	}
	for i := range s.Options {
		if s.Options[i] != q.Options[i] {
			return true
		}
	}
	return false
}

// ExamQuestion is the view served to a candidate during an exam; it omits the answer key.
type ExamQuestion struct {
	ID            bson.ObjectID `json:"_id"`
	QuestionText  string        `json:"questionText"`
	QuestionImage string        `json:"questionImage,omitempty"`
	QuestionAudio string        `json:"questionAudio,omitempty"`
	Options       []Option      `json:"options"`
	Marks         float64       `json:"marks"`
}

func (q *Question) ForExam() ExamQuestion {
	return ExamQuestion{
		ID:            q.ID,
		QuestionText:  q.QuestionText,
		QuestionImage: q.QuestionImage,
		QuestionAudio: q.QuestionAudio,
		Options:       q.Options,
		Marks:         q.Marks,
	}
}

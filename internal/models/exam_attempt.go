package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type AttemptAnswer struct {
	QuestionID     bson.ObjectID     `bson:"questionId" json:"questionId"`
	SelectedOption string            `bson:"selectedOption" json:"selectedOption"`
	IsCorrect      bool              `bson:"isCorrect" json:"isCorrect"`
	MarksAwarded   float64           `bson:"marksAwarded" json:"marksAwarded"`
	Question       *QuestionSnapshot `bson:"question,omitempty" json:"question,omitempty"`
}

// ExamAttempt is written once per submission. Only HistoryPending changes later.
type ExamAttempt struct {
	ID                 bson.ObjectID   `bson:"_id,omitempty" json:"_id"`
	UserID             bson.ObjectID   `bson:"userId" json:"userId"`
	Category           Category        `bson:"category" json:"category"`
	Section            string          `bson:"section" json:"section"`
	Set                string          `bson:"set" json:"set"`
	Score              float64         `bson:"score" json:"score"`
	TotalMarksPossible float64         `bson:"totalMarksPossible" json:"totalMarksPossible"`
	TotalQuestions     int             `bson:"totalQuestions" json:"totalQuestions"`
	CorrectAnswers     int             `bson:"correctAnswers" json:"correctAnswers"`
	Duration           int             `bson:"duration" json:"duration"`
	Answers            []AttemptAnswer `bson:"answers" json:"answers"`
	StartedAt          time.Time       `bson:"startedAt" json:"startedAt"`
	SubmittedAt        time.Time       `bson:"submittedAt" json:"submittedAt"`
	HistoryPending     bool            `bson:"historyPending,omitempty" json:"-"`
}

func (a *ExamAttempt) Summary() ExamHistoryEntry {
	return ExamHistoryEntry{
		AttemptID:          a.ID,
		Category:           a.Category,
		Section:            a.Section,
		Set:                a.Set,
		Score:              a.Score,
		TotalMarksPossible: a.TotalMarksPossible,
		TotalQuestions:     a.TotalQuestions,
		CorrectAnswers:     a.CorrectAnswers,
		Duration:           a.Duration,
		SubmittedAt:        a.SubmittedAt,
	}
}

// ExamHistoryEntry is the summary embedded in User.ExamHistory.
type ExamHistoryEntry struct {
	AttemptID          bson.ObjectID `bson:"attemptId" json:"attemptId"`
	Category           Category      `bson:"category" json:"category"`
	Section            string        `bson:"section" json:"section"`
	Set                string        `bson:"set" json:"set"`
	Score              float64       `bson:"score" json:"score"`
	TotalMarksPossible float64       `bson:"totalMarksPossible" json:"totalMarksPossible"`
	TotalQuestions     int           `bson:"totalQuestions" json:"totalQuestions"`
	CorrectAnswers     int           `bson:"correctAnswers" json:"correctAnswers"`
	Duration           int           `bson:"duration" json:"duration"`
	SubmittedAt        time.Time     `bson:"submittedAt" json:"submittedAt"`
}

package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	ExamSubmitted              = "exam.submitted"
	ExamHistoryLinkFailed      = "exam.history_link_failed"
	CatalogPaperUpdated        = "catalog.paper_updated"
	UserRegistered             = "user.registered"
	UserPasswordResetRequested = "user.password_reset_requested"
)

type BaseEvent struct {
	EventID   string `json:"eventId"`
	EventType string `json:"eventType"`
	Timestamp int64  `json:"timestamp"`
	Version   string `json:"version"`
}

func newBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Timestamp: time.Now().Unix(),
		Version:   "1.0",
	}
}

type ExamSubmittedEvent struct {
	BaseEvent
	AttemptID          string  `json:"attemptId"`
	UserID             string  `json:"userId"`
	Category           string  `json:"category"`
	Section            string  `json:"section"`
	Set                string  `json:"set"`
	Score              float64 `json:"score"`
	TotalMarksPossible float64 `json:"totalMarksPossible"`
	CorrectAnswers     int     `json:"correctAnswers"`
	TotalQuestions     int     `json:"totalQuestions"`
	Duration           int     `json:"duration"`
	HistoryLinked      bool    `json:"historyLinked"`
}

func NewExamSubmittedEvent() *ExamSubmittedEvent {
	return &ExamSubmittedEvent{BaseEvent: newBaseEvent(ExamSubmitted)}
}

// HistoryLinkFailedEvent lets a reconciler re-link an attempt the user document missed.
type HistoryLinkFailedEvent struct {
	BaseEvent
	AttemptID string  `json:"attemptId"`
	UserID    string  `json:"userId"`
	Score     float64 `json:"score"`
	Reason    string  `json:"reason"`
}

func NewHistoryLinkFailedEvent(attemptID, userID string, score float64, reason string) *HistoryLinkFailedEvent {
	return &HistoryLinkFailedEvent{
		BaseEvent: newBaseEvent(ExamHistoryLinkFailed),
		AttemptID: attemptID,
		UserID:    userID,
		Score:     score,
		Reason:    reason,
	}
}

type PaperUpdatedEvent struct {
	BaseEvent
	Category string   `json:"category"`
	Sections []string `json:"sections"`
}

func NewPaperUpdatedEvent(category string, sections []string) *PaperUpdatedEvent {
	return &PaperUpdatedEvent{
		BaseEvent: newBaseEvent(CatalogPaperUpdated),
		Category:  category,
		Sections:  sections,
	}
}

type UserEvent struct {
	BaseEvent
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	// Set on password reset requests only.
	ResetToken string `json:"resetToken,omitempty"`
	ExpiresAt  int64  `json:"expiresAt,omitempty"`
}

func NewUserEvent(eventType, userID, email, name string) *UserEvent {
	return &UserEvent{
		BaseEvent: newBaseEvent(eventType),
		UserID:    userID,
		Email:     email,
		Name:      name,
	}
}

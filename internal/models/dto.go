package models

import "time"

type SubmittedAnswer struct {
	QuestionID     string `json:"questionId" validate:"required,mongodb"`
	SelectedOption string `json:"selectedOption"`
}

type SubmitExamRequest struct {
	UserID   string            `json:"userId" validate:"required,mongodb"`
	Category string            `json:"category" validate:"required,oneof=Beginner Intermediate Advanced"`
	Section  string            `json:"section" validate:"required"`
	Set      string            `json:"set" validate:"required"`
	Duration *int              `json:"duration" validate:"required,gte=0"`
	Answers  []SubmittedAnswer `json:"answers" validate:"required,min=1,dive"`
}

type ExamResult struct {
	MongoID            string  `json:"mongoId"`
	Score              float64 `json:"score"`
	TotalMarksPossible float64 `json:"totalMarksPossible"`
	TotalQuestions     int     `json:"totalQuestions"`
	CorrectAnswers     int     `json:"correctAnswers"`
	Duration           int     `json:"duration"`
}

type ReviewItem struct {
	Question
	UserSelectedOption *string `json:"userSelectedOption"`
	IsUserCorrect      bool    `json:"isUserCorrect"`
	MarksAwarded       float64 `json:"marksAwarded"`
	IsStale            bool    `json:"isStale"`
	QuestionDeleted    bool    `json:"questionDeleted"`
}

type ExamReview struct {
	AttemptSummary ExamHistoryEntry `json:"attemptSummary"`
	ReviewItems    []ReviewItem     `json:"reviewItems"`
}

type ExamSession struct {
	Category          Category       `json:"category"`
	Section           string         `json:"section"`
	Set               string         `json:"set"`
	IsPaid            bool           `json:"isPaid"`
	TimeLimitMinutes  int            `json:"timeLimitMinutes"`
	NumberOfQuestions int            `json:"numberOfQuestions"`
	Questions         []ExamQuestion `json:"questions"`
}

type HistoryPage struct {
	Attempts    []ExamHistoryEntry `json:"attempts"`
	TotalCount  int64              `json:"totalCount"`
	CurrentPage int                `json:"currentPage"`
	PageCount   int                `json:"pageCount"`
}

type QuestionRequest struct {
	Category      string   `json:"category" validate:"required,oneof=Beginner Intermediate Advanced"`
	Section       string   `json:"section" validate:"required"`
	Set           string   `json:"set" validate:"required"`
	QuestionText  string   `json:"questionText" validate:"required"`
	QuestionImage string   `json:"questionImage"`
	QuestionAudio string   `json:"questionAudio"`
	Options       []Option `json:"options" validate:"required,len=4"`
	CorrectAnswer string   `json:"correctAnswer" validate:"required,oneof=a b c d"`
	Marks         *float64 `json:"marks" validate:"required,gte=0"`
}

type UpsertPaperRequest struct {
	Sections []Section `json:"sections"`
}

type SetRequest struct {
	Name             string `json:"name" validate:"required"`
	TimeLimitMinutes int    `json:"timeLimitMinutes" validate:"gte=0"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Phone *string `json:"phone"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

type GrantSubscriptionRequest struct {
	Category  string    `json:"category" validate:"required,oneof=Beginner Intermediate Advanced"`
	Section   string    `json:"section" validate:"required"`
	ExpiresAt time.Time `json:"expiresAt" validate:"required"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

type MediaObject struct {
	ObjectName  string `json:"objectName"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

package service

import (
	"context"

	"github.com/Ayush-an/Exam-Buddy-sub000/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Submission is a validated exam submission.
type Submission struct {
	UserID   bson.ObjectID
	Category models.Category
	Section  string
	Set      string
	Duration int
	Answers  []SubmissionAnswer
}

type SubmissionAnswer struct {
	QuestionID     bson.ObjectID
	SelectedOption string
}

// ScoreResult is the outcome of scoring one submission.
type ScoreResult struct {
	Score              float64
	TotalMarksPossible float64
	TotalQuestions     int
	CorrectAnswers     int
	Answers            []models.AttemptAnswer
}

// ParseSubmission validates a raw request and converts ids.
func ParseSubmission(req *models.SubmitExamRequest) (*Submission, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	userID, err := bson.ObjectIDFromHex(req.UserID)
	if err != nil {
		return nil, newValidationError("userId", "must be a valid id")
	}

	sub := &Submission{
		UserID:   userID,
		Category: models.Category(req.Category),
		Section:  req.Section,
		Set:      req.Set,
		Duration: *req.Duration,
		Answers:  make([]SubmissionAnswer, 0, len(req.Answers)),
	}
	for i, a := range req.Answers {
		qid, err := bson.ObjectIDFromHex(a.QuestionID)
		if err != nil {
			return nil, newValidationError("answers", "answers[%d].questionId must be a valid id", i)
		}
		sub.Answers = append(sub.Answers, SubmissionAnswer{QuestionID: qid, SelectedOption: a.SelectedOption})
	}
	return sub, nil
}

// QuestionIDs returns the distinct question ids in submission order.
func (s *Submission) QuestionIDs() []bson.ObjectID {
	seen := make(map[bson.ObjectID]bool, len(s.Answers))
	ids := make([]bson.ObjectID, 0, len(s.Answers))
	for _, a := range s.Answers {
		if !seen[a.QuestionID] {
			seen[a.QuestionID] = true
			ids = append(ids, a.QuestionID)
		}
	}
	return ids
}

// ScoreAnswers grades a submission against a batch of questions. Answers whose
// question is missing, or filed under another set, score zero.
func ScoreAnswers(sub *Submission, questions []*models.Question) *ScoreResult {
	byID := make(map[bson.ObjectID]*models.Question, len(questions))
	for _, q := range questions {
		if q.BelongsTo(sub.Category, sub.Section, sub.Set) {
			byID[q.ID] = q
		}
	}

	result := &ScoreResult{
		TotalQuestions: len(sub.Answers),
		Answers:        make([]models.AttemptAnswer, 0, len(sub.Answers)),
	}
	for _, q := range byID {
		result.TotalMarksPossible += q.Marks
	}

	for _, a := range sub.Answers {
		answer := models.AttemptAnswer{
			QuestionID:     a.QuestionID,
			SelectedOption: a.SelectedOption,
		}
		if q, ok := byID[a.QuestionID]; ok {
			answer.Question = q.Snapshot()
			if a.SelectedOption == q.CorrectAnswer {
				answer.IsCorrect = true
				answer.MarksAwarded = q.Marks
				result.CorrectAnswers++
			}
		}
		result.Score += answer.MarksAwarded
		result.Answers = append(result.Answers, answer)
	}
	return result
}

type ScoringService struct {
	questions QuestionStore
}

func NewScoringService(questions QuestionStore) *ScoringService {
	return &ScoringService{questions: questions}
}

// Score fetches every referenced question in one batch and grades the submission.
func (s *ScoringService) Score(ctx context.Context, sub *Submission) (*ScoreResult, error) {
	questions, err := s.questions.FindByIDs(ctx, sub.QuestionIDs())
	if err != nil {
		return nil, persistenceError("fetch questions for scoring", err)
	}
	return ScoreAnswers(sub, questions), nil
}

package service

import (
	"context"
	"log"

	"github.com/Ayush-an/Exam-Buddy-sub000/internal/metrics"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type ReviewService struct {
	users     UserStore
	attempts  AttemptStore
	questions QuestionStore
}

func NewReviewService(users UserStore, attempts AttemptStore, questions QuestionStore) *ReviewService {
	return &ReviewService{
		users:     users,
		attempts:  attempts,
		questions: questions,
	}
}

// Review joins a past attempt's answers with the current questions.
func (s *ReviewService) Review(ctx context.Context, userID, attemptID string) (*models.ExamReview, error) {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, newValidationError("userId", "must be a valid id")
	}

	user, err := s.users.FindByID(ctx, uid)
	if err != nil {
		metrics.ReviewRequests.WithLabelValues("error", "").Inc()
		return nil, persistenceError("load user", err)
	}
	if user == nil {
		metrics.ReviewRequests.WithLabelValues("not_found", "").Inc()
		return nil, notFound("user %s", userID)
	}

	source := "history"
	summary := user.FindHistoryEntry(attemptID)

	attempt, err := s.loadAttempt(ctx, attemptID)
	if err != nil {
		metrics.ReviewRequests.WithLabelValues("error", source).Inc()
		return nil, err
	}

	if summary == nil {
		// Attempts whose history link failed are still reviewable by their owner.
		if attempt == nil || attempt.UserID != uid {
			metrics.ReviewRequests.WithLabelValues("not_found", source).Inc()
			return nil, notFound("exam attempt %s for user %s", attemptID, userID)
		}
		source = "attempt"
		entry := attempt.Summary()
		summary = &entry
		log.Printf("Attempt %s is missing from history of user %s, reviewing from attempt record", attemptID, userID)
	}
	if attempt == nil {
		metrics.ReviewRequests.WithLabelValues("not_found", source).Inc()
		return nil, notFound("exam attempt %s", attemptID)
	}

	ids := make([]bson.ObjectID, 0, len(attempt.Answers))
	for _, a := range attempt.Answers {
		ids = append(ids, a.QuestionID)
	}
	questions, err := s.questions.FindByIDs(ctx, ids)
	if err != nil {
		metrics.ReviewRequests.WithLabelValues("error", source).Inc()
		return nil, persistenceError("fetch questions for review", err)
	}

	metrics.ReviewRequests.WithLabelValues("success", source).Inc()
	return &models.ExamReview{
		AttemptSummary: *summary,
		ReviewItems:    AssembleReviewItems(attempt.Answers, questions),
	}, nil
}

func (s *ReviewService) loadAttempt(ctx context.Context, attemptID string) (*models.ExamAttempt, error) {
	id, err := bson.ObjectIDFromHex(attemptID)
	if err != nil {
		return nil, nil
	}
	attempt, err := s.attempts.FindByID(ctx, id)
	if err != nil {
		return nil, persistenceError("load exam attempt", err)
	}
	return attempt, nil
}

// AssembleReviewItems builds one item per stored answer. A question deleted
// since the attempt is rebuilt from the answer's snapshot.
func AssembleReviewItems(answers []models.AttemptAnswer, questions []*models.Question) []models.ReviewItem {
	byID := make(map[bson.ObjectID]*models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	items := make([]models.ReviewItem, 0, len(answers))
	for _, a := range answers {
		item := models.ReviewItem{
			IsUserCorrect: a.IsCorrect,
			MarksAwarded:  a.MarksAwarded,
		}
		if a.SelectedOption != "" {
			selected := a.SelectedOption
			item.UserSelectedOption = &selected
		}

		if q, ok := byID[a.QuestionID]; ok {
			item.Question = *q
			item.IsStale = a.Question != nil && a.Question.DiffersFrom(q)
		} else {
			item.QuestionDeleted = true
			item.Question = models.Question{ID: a.QuestionID}
			if snap := a.Question; snap != nil {
				item.Question.QuestionText = snap.QuestionText
				item.Question.QuestionImage = snap.QuestionImage
				item.Question.QuestionAudio = snap.QuestionAudio
				item.Question.Options = snap.Options
				item.Question.CorrectAnswer = snap.CorrectAnswer
				item.Question.Marks = snap.Marks
			}
		}
		items = append(items, item)
	}
	return items
}

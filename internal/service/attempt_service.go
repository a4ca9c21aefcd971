package service

import (
	"context"
	"log"
	"time"

	"github.com/Ayush-an/Exam-Buddy-sub000/internal/events"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/metrics"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// RecordedAttempt is what a caller gets back after a submission.
type RecordedAttempt struct {
	Attempt       *models.ExamAttempt
	HistoryLinked bool
}

func (r *RecordedAttempt) Result() models.ExamResult {
	return models.ExamResult{
		MongoID:            r.Attempt.ID.Hex(),
		Score:              r.Attempt.Score,
		TotalMarksPossible: r.Attempt.TotalMarksPossible,
		TotalQuestions:     r.Attempt.TotalQuestions,
		CorrectAnswers:     r.Attempt.CorrectAnswers,
		Duration:           r.Attempt.Duration,
	}
}

type AttemptService struct {
	scoring        *ScoringService
	attempts       AttemptStore
	users          UserStore
	eventPublisher events.Publisher
	now            func() time.Time
}

func NewAttemptService(scoring *ScoringService, attempts AttemptStore, users UserStore, eventPublisher events.Publisher) *AttemptService {
	return &AttemptService{
		scoring:        scoring,
		attempts:       attempts,
		users:          users,
		eventPublisher: eventPublisher,
		now:            time.Now,
	}
}

func categoryLabel(raw string) string {
	if models.Category(raw).IsValid() {
		return raw
	}
	return metrics.UnknownLabel
}

// Submit scores and records one exam submission. Every call creates a new attempt.
func (s *AttemptService) Submit(ctx context.Context, req *models.SubmitExamRequest) (*RecordedAttempt, error) {
	start := time.Now()
	defer func() { metrics.SubmissionDuration.Observe(time.Since(start).Seconds()) }()

	sub, err := ParseSubmission(req)
	if err != nil {
		metrics.ExamSubmissions.WithLabelValues("invalid", categoryLabel(req.Category)).Inc()
		return nil, err
	}

	result, err := s.scoring.Score(ctx, sub)
	if err != nil {
		metrics.ExamSubmissions.WithLabelValues("error", string(sub.Category)).Inc()
		return nil, err
	}

	recorded, err := s.Record(ctx, sub, result)
	if err != nil {
		metrics.ExamSubmissions.WithLabelValues("error", string(sub.Category)).Inc()
		return nil, err
	}

	metrics.ExamSubmissions.WithLabelValues("success", string(sub.Category)).Inc()
	if result.TotalMarksPossible > 0 {
		metrics.ScorePercentage.WithLabelValues(string(sub.Category)).Observe(result.Score / result.TotalMarksPossible * 100)
	}
	return recorded, nil
}

// Record stores the attempt, then links it into the user's history. The attempt
// is authoritative: a failed link is logged, counted and published, never returned.
func (s *AttemptService) Record(ctx context.Context, sub *Submission, result *ScoreResult) (*RecordedAttempt, error) {
	submittedAt := s.now().UTC()
	attempt := &models.ExamAttempt{
		ID:                 bson.NewObjectID(),
		UserID:             sub.UserID,
		Category:           sub.Category,
		Section:            sub.Section,
		Set:                sub.Set,
		Score:              result.Score,
		TotalMarksPossible: result.TotalMarksPossible,
		TotalQuestions:     result.TotalQuestions,
		CorrectAnswers:     result.CorrectAnswers,
		Duration:           sub.Duration,
		Answers:            result.Answers,
		StartedAt:          submittedAt.Add(-time.Duration(sub.Duration) * time.Second),
		SubmittedAt:        submittedAt,
		HistoryPending:     true,
	}

	if err := s.attempts.Create(ctx, attempt); err != nil {
		log.Printf("Error saving exam attempt for user %s: %v", sub.UserID.Hex(), err)
		return nil, persistenceError("save exam attempt", err)
	}

	recorded := &RecordedAttempt{Attempt: attempt}
	recorded.HistoryLinked = s.linkHistory(ctx, attempt)
	if recorded.HistoryLinked {
		attempt.HistoryPending = false
		if err := s.attempts.ClearHistoryPending(ctx, attempt.ID); err != nil {
			log.Printf("Warning: Failed to clear pending history flag on attempt %s: %v", attempt.ID.Hex(), err)
		}
	}

	event := events.NewExamSubmittedEvent()
	event.AttemptID = attempt.ID.Hex()
	event.UserID = attempt.UserID.Hex()
	event.Category = string(attempt.Category)
	event.Section = attempt.Section
	event.Set = attempt.Set
	event.Score = attempt.Score
	event.TotalMarksPossible = attempt.TotalMarksPossible
	event.CorrectAnswers = attempt.CorrectAnswers
	event.TotalQuestions = attempt.TotalQuestions
	event.Duration = attempt.Duration
	event.HistoryLinked = recorded.HistoryLinked
	if err := s.eventPublisher.PublishExamEvent(ctx, event); err != nil {
		log.Printf("Warning: Failed to publish exam submitted event for attempt %s: %v", attempt.ID.Hex(), err)
	}

	return recorded, nil
}

func (s *AttemptService) linkHistory(ctx context.Context, attempt *models.ExamAttempt) bool {
	matched, err := s.users.AppendHistory(ctx, attempt.UserID, attempt.Summary(), attempt.Score)

	reason := ""
	switch {
	case err != nil:
		reason = "update_failed"
		log.Printf("Warning: Failed to link attempt %s into history of user %s: %v", attempt.ID.Hex(), attempt.UserID.Hex(), err)
	case !matched:
		reason = "user_not_found"
		log.Printf("Warning: Attempt %s saved but user %s was not found, history not linked", attempt.ID.Hex(), attempt.UserID.Hex())
	default:
		return true
	}

	metrics.HistoryLinkFailures.WithLabelValues(reason).Inc()
	failed := events.NewHistoryLinkFailedEvent(attempt.ID.Hex(), attempt.UserID.Hex(), attempt.Score, reason)
	if err := s.eventPublisher.PublishHistoryLinkFailed(ctx, failed); err != nil {
		log.Printf("Warning: Failed to publish history link failure for attempt %s: %v", attempt.ID.Hex(), err)
	}
	return false
}

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	Scanned   int
	Linked    int
	Abandoned int
	Failed    int
}

// ReconcileHistory retries the history link for attempts still marked pending
// and submitted more than minAge ago. Attempts whose user no longer exists are
// abandoned so they are not retried forever.
func (s *AttemptService) ReconcileHistory(ctx context.Context, minAge time.Duration, limit int) (*ReconcileReport, error) {
	pending, err := s.attempts.FindHistoryPending(ctx, s.now().UTC().Add(-minAge), limit)
	if err != nil {
		return nil, persistenceError("list pending history links", err)
	}

	report := &ReconcileReport{Scanned: len(pending)}
	for _, attempt := range pending {
		matched, err := s.users.AppendHistory(ctx, attempt.UserID, attempt.Summary(), attempt.Score)
		if err != nil {
			report.Failed++
			log.Printf("Warning: Retry of history link for attempt %s failed: %v", attempt.ID.Hex(), err)
			continue
		}

		result := "linked"
		if !matched {
			// No match means the user is gone or the entry is already there.
			user, err := s.users.FindByID(ctx, attempt.UserID)
			if err != nil {
				report.Failed++
				log.Printf("Warning: Failed to load user %s while reconciling attempt %s: %v", attempt.UserID.Hex(), attempt.ID.Hex(), err)
				continue
			}
			if user == nil {
				result = "abandoned"
				log.Printf("Attempt %s belongs to missing user %s, giving up on history link", attempt.ID.Hex(), attempt.UserID.Hex())
			}
		}

		if err := s.attempts.ClearHistoryPending(ctx, attempt.ID); err != nil {
			report.Failed++
			log.Printf("Warning: Failed to clear pending history flag on attempt %s: %v", attempt.ID.Hex(), err)
			continue
		}
		metrics.HistoryReconciled.WithLabelValues(result).Inc()
		if result == "abandoned" {
			report.Abandoned++
		} else {
			report.Linked++
		}
	}
	return report, nil
}

// History lists a user's attempts, newest first.
func (s *AttemptService) History(ctx context.Context, userID string, page, limit int) (*models.HistoryPage, error) {
	id, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, newValidationError("userId", "must be a valid id")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	attempts, total, err := s.attempts.FindByUser(ctx, id, page, limit)
	if err != nil {
		return nil, persistenceError("list exam attempts", err)
	}

	entries := make([]models.ExamHistoryEntry, 0, len(attempts))
	for _, a := range attempts {
		entries = append(entries, a.Summary())
	}

	pageCount := int((total + int64(limit) - 1) / int64(limit))
	return &models.HistoryPage{
		Attempts:    entries,
		TotalCount:  total,
		CurrentPage: page,
		PageCount:   pageCount,
	}, nil
}

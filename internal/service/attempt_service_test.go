package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Ayush-an/Exam-Buddy-sub000/internal/metrics"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/models"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/testutil"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func submitRequestFor(userID bson.ObjectID, answers ...models.SubmittedAnswer) *models.SubmitExamRequest {
	return &models.SubmitExamRequest{
		UserID:   userID.Hex(),
		Category: "Beginner",
		Section:  "Beginner",
		Set:      "Set1",
		Duration: intPtr(90),
		Answers:  answers,
	}
}

func TestSubmitRecordsAttemptAndHistory(t *testing.T) {
	user := &models.User{ID: bson.NewObjectID(), Name: "Asha", Score: 1, PapersAttempted: 1}
	q1 := newQuestion(models.CategoryBeginner, "Beginner", "Set1", "a", 2)
	q2 := newQuestion(models.CategoryBeginner, "Beginner", "Set1", "b", 3)
	f := newAttemptFixture(testutil.NewUserStore(user), q1, q2)

	fixed := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	f.service.now = func() time.Time { return fixed }

	recorded, err := f.service.Submit(context.Background(), submitRequestFor(user.ID,
		models.SubmittedAnswer{QuestionID: q1.ID.Hex(), SelectedOption: "a"},
		models.SubmittedAnswer{QuestionID: q2.ID.Hex(), SelectedOption: "c"},
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !recorded.HistoryLinked {
		t.Error("Expected history to be linked")
	}

	result := recorded.Result()
	if result.MongoID == "" || result.Score != 2 || result.TotalMarksPossible != 5 || result.CorrectAnswers != 1 || result.TotalQuestions != 2 || result.Duration != 90 {
		t.Errorf("Unexpected result %+v", result)
	}

	attempt := recorded.Attempt
	if !attempt.SubmittedAt.Equal(fixed) || !attempt.StartedAt.Equal(fixed.Add(-90*time.Second)) {
		t.Errorf("Unexpected timestamps %v / %v", attempt.StartedAt, attempt.SubmittedAt)
	}

	stored := f.users.Get(user.ID)
	if stored.PapersAttempted != 2 {
		t.Errorf("Expected papersAttempted 2, got %d", stored.PapersAttempted)
	}
	if stored.Score != 3 {
		t.Errorf("Expected cumulative score 3, got %v", stored.Score)
	}
	if entry := stored.FindHistoryEntry(result.MongoID); entry == nil || entry.Score != 2 {
		t.Errorf("Expected history entry for %s, got %+v", result.MongoID, entry)
	}

	if len(f.publisher.Exams) != 1 || f.publisher.Exams[0].AttemptID != result.MongoID {
		t.Errorf("Expected one exam submitted event, got %d", len(f.publisher.Exams))
	}
	if len(f.publisher.LinkFailures) != 0 {
		t.Errorf("Expected no link failure events, got %d", len(f.publisher.LinkFailures))
	}
}

func TestSubmitTwiceCreatesTwoAttempts(t *testing.T) {
	user := &models.User{ID: bson.NewObjectID()}
	q := newQuestion(models.CategoryBeginner, "Beginner", "Set1", "a", 1)
	f := newAttemptFixture(testutil.NewUserStore(user), q)
	answer := models.SubmittedAnswer{QuestionID: q.ID.Hex(), SelectedOption: "a"}

	first, err := f.service.Submit(context.Background(), submitRequestFor(user.ID, answer))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.service.Submit(context.Background(), submitRequestFor(user.ID, answer))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Attempt.ID == second.Attempt.ID {
		t.Error("Expected distinct attempt ids for identical submissions")
	}
	if f.attempts.Count() != 2 {
		t.Errorf("Expected 2 stored attempts, got %d", f.attempts.Count())
	}

	reviews := NewReviewService(f.users, f.attempts, f.questions)
	for _, r := range []*RecordedAttempt{first, second} {
		if _, err := reviews.Review(context.Background(), user.ID.Hex(), r.Attempt.ID.Hex()); err != nil {
			t.Errorf("Expected attempt %s to be reviewable, got %v", r.Attempt.ID.Hex(), err)
		}
	}
}

func TestSubmitHistoryLinkFailure(t *testing.T) {
	testCases := []struct {
		name   string
		users  func(known *models.User) *testutil.UserStore
		reason string
	}{
		{
			name: "update error",
			users: func(known *models.User) *testutil.UserStore {
				s := testutil.NewUserStore(known)
				s.AppendHistoryErr = errors.New("write conflict")
				return s
			},
			reason: "update_failed",
		},
		{
			name:   "user missing",
			users:  func(known *models.User) *testutil.UserStore { return testutil.NewUserStore() },
			reason: "user_not_found",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			user := &models.User{ID: bson.NewObjectID()}
			q := newQuestion(models.CategoryBeginner, "Beginner", "Set1", "a", 1)
			f := newAttemptFixture(tc.users(user), q)

			recorded, err := f.service.Submit(context.Background(), submitRequestFor(user.ID,
				models.SubmittedAnswer{QuestionID: q.ID.Hex(), SelectedOption: "a"}))
			if err != nil {
				t.Fatalf("Expected submission to succeed, got %v", err)
			}
			if recorded.HistoryLinked {
				t.Error("Expected HistoryLinked to be false")
			}
			if f.attempts.Count() != 1 {
				t.Errorf("Expected the attempt to be saved, got %d", f.attempts.Count())
			}
			if len(f.publisher.LinkFailures) != 1 || f.publisher.LinkFailures[0].Reason != tc.reason {
				t.Fatalf("Expected one link failure with reason %s, got %+v", tc.reason, f.publisher.LinkFailures)
			}
			if len(f.publisher.Exams) != 1 || f.publisher.Exams[0].HistoryLinked {
				t.Error("Expected submitted event to report an unlinked history")
			}
		})
	}
}

func TestSubmitAttemptSaveFailure(t *testing.T) {
	user := &models.User{ID: bson.NewObjectID()}
	q := newQuestion(models.CategoryBeginner, "Beginner", "Set1", "a", 1)
	f := newAttemptFixture(testutil.NewUserStore(user), q)
	f.attempts.Err = errors.New("disk full")

	_, err := f.service.Submit(context.Background(), submitRequestFor(user.ID,
		models.SubmittedAnswer{QuestionID: q.ID.Hex(), SelectedOption: "a"}))

	var persistenceErr *PersistenceError
	if !errors.As(err, &persistenceErr) {
		t.Fatalf("Expected PersistenceError, got %v", err)
	}
	if got := f.users.Get(user.ID); got.PapersAttempted != 0 {
		t.Error("History must not be touched when the attempt was not saved")
	}
	if len(f.publisher.Exams) != 0 {
		t.Error("Expected no event for a failed submission")
	}
}

func TestHistoryPaging(t *testing.T) {
	user := &models.User{ID: bson.NewObjectID()}
	q := newQuestion(models.CategoryBeginner, "Beginner", "Set1", "a", 1)
	f := newAttemptFixture(testutil.NewUserStore(user), q)

	for i := 0; i < 5; i++ {
		if _, err := f.service.Submit(context.Background(), submitRequestFor(user.ID,
			models.SubmittedAnswer{QuestionID: q.ID.Hex(), SelectedOption: "a"})); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	page, err := f.service.History(context.Background(), user.ID.Hex(), 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.TotalCount != 5 || page.PageCount != 3 || page.CurrentPage != 2 || len(page.Attempts) != 2 {
		t.Errorf("Unexpected page %+v", page)
	}

	page, err = f.service.History(context.Background(), user.ID.Hex(), 0, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.CurrentPage != 1 || len(page.Attempts) != 5 {
		t.Errorf("Expected defaults to apply, got page %d with %d attempts", page.CurrentPage, len(page.Attempts))
	}

	if _, err := f.service.History(context.Background(), "bad", 1, 10); err == nil {
		t.Error("Expected error for malformed user id")
	}
}

func TestSubmitClearsPendingFlag(t *testing.T) {
	user := &models.User{ID: bson.NewObjectID()}
	q := newQuestion(models.CategoryBeginner, "Beginner", "Set1", "a", 1)
	f := newAttemptFixture(testutil.NewUserStore(user), q)

	recorded, err := f.service.Submit(context.Background(), submitRequestFor(user.ID,
		models.SubmittedAnswer{QuestionID: q.ID.Hex(), SelectedOption: "a"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.attempts.Get(recorded.Attempt.ID).HistoryPending {
		t.Error("Expected linked attempt not to stay pending")
	}
}

func TestReconcileHistory(t *testing.T) {
	user := &models.User{ID: bson.NewObjectID()}
	q := newQuestion(models.CategoryBeginner, "Beginner", "Set1", "a", 3)
	users := testutil.NewUserStore(user)
	users.AppendHistoryErr = errors.New("primary stepped down")
	f := newAttemptFixture(users, q)

	submittedAt := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	f.service.now = func() time.Time { return submittedAt }

	recorded, err := f.service.Submit(context.Background(), submitRequestFor(user.ID,
		models.SubmittedAnswer{QuestionID: q.ID.Hex(), SelectedOption: "a"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	orphan := &models.ExamAttempt{
		ID:             bson.NewObjectID(),
		UserID:         bson.NewObjectID(),
		SubmittedAt:    submittedAt,
		HistoryPending: true,
	}
	if err := f.attempts.Create(context.Background(), orphan); err != nil {
		t.Fatal(err)
	}

	users.AppendHistoryErr = nil

	f.service.now = func() time.Time { return submittedAt.Add(30 * time.Second) }
	report, err := f.service.ReconcileHistory(context.Background(), time.Minute, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Scanned != 0 {
		t.Errorf("Expected recent attempts to be skipped, scanned %d", report.Scanned)
	}

	f.service.now = func() time.Time { return submittedAt.Add(5 * time.Minute) }
	report, err = f.service.ReconcileHistory(context.Background(), time.Minute, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Scanned != 2 || report.Linked != 1 || report.Abandoned != 1 || report.Failed != 0 {
		t.Errorf("Unexpected report %+v", report)
	}

	stored := users.Get(user.ID)
	if stored.PapersAttempted != 1 || stored.Score != 3 || stored.FindHistoryEntry(recorded.Attempt.ID.Hex()) == nil {
		t.Errorf("Expected attempt linked once, got %+v", stored)
	}

	report, err = f.service.ReconcileHistory(context.Background(), time.Minute, 10)
	if err != nil || report.Scanned != 0 {
		t.Errorf("Expected nothing left to reconcile, got %+v (%v)", report, err)
	}
}

func TestReconcileHistoryAlreadyLinked(t *testing.T) {
	attemptID := bson.NewObjectID()
	user := &models.User{
		ID:              bson.NewObjectID(),
		PapersAttempted: 1,
		Score:           2,
		ExamHistory:     []models.ExamHistoryEntry{{AttemptID: attemptID, Score: 2}},
	}
	f := newAttemptFixture(testutil.NewUserStore(user))
	if err := f.attempts.Create(context.Background(), &models.ExamAttempt{
		ID:             attemptID,
		UserID:         user.ID,
		Score:          2,
		SubmittedAt:    time.Now().Add(-time.Hour),
		HistoryPending: true,
	}); err != nil {
		t.Fatal(err)
	}

	report, err := f.service.ReconcileHistory(context.Background(), time.Minute, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Linked != 1 {
		t.Errorf("Expected already linked attempt to be cleared, got %+v", report)
	}
	if stored := f.users.Get(user.ID); stored.PapersAttempted != 1 || len(stored.ExamHistory) != 1 {
		t.Errorf("Expected no double count, got %+v", stored)
	}
}

func TestInvalidSubmissionCategoryLabel(t *testing.T) {
	testCases := []struct {
		raw      string
		expected string
	}{
		{"Beginner", "Beginner"},
		{"Advanced", "Advanced"},
		{"junk-1", metrics.UnknownLabel},
		{"", metrics.UnknownLabel},
	}
	for _, tc := range testCases {
		if got := categoryLabel(tc.raw); got != tc.expected {
			t.Errorf("categoryLabel(%q) = %q, expected %q", tc.raw, got, tc.expected)
		}
	}

	f := newAttemptFixture(testutil.NewUserStore())
	unknown := metrics.ExamSubmissions.WithLabelValues("invalid", metrics.UnknownLabel)
	before := promtest.ToFloat64(unknown)
	for _, category := range []string{"junk-1", "junk-2", "junk-3"} {
		req := submitRequestFor(bson.NewObjectID())
		req.Category = category
		if _, err := f.service.Submit(context.Background(), req); err == nil {
			t.Fatalf("Expected %s to be rejected", category)
		}
	}
	if got := promtest.ToFloat64(unknown) - before; got != 3 {
		t.Errorf("Expected 3 invalid submissions counted as unknown, got %v", got)
	}
}

package service

import (
	"time"

	"github.com/Ayush-an/Exam-Buddy-sub000/internal/config"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/models"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/testutil"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func textOptions(contents ...string) []models.Option {
	options := make([]models.Option, 0, len(contents))
	for _, c := range contents {
		options = append(options, models.Option{Type: models.OptionTypeText, Content: c})
	}
	return options
}

func newQuestion(category models.Category, section, set, correct string, marks float64) *models.Question {
	return &models.Question{
		ID:            bson.NewObjectID(),
		Category:      category,
		Section:       section,
		Set:           set,
		QuestionText:  "Choose the correct word",
		Options:       textOptions("go", "goes", "went", "gone"),
		CorrectAnswer: correct,
		Marks:         marks,
	}
}

func beginnerPaper() *models.QuestionPaper {
	return &models.QuestionPaper{
		Category: models.CategoryBeginner,
		Sections: []models.Section{
			{Name: "Beginner", Sets: []models.Set{{Name: "Set1"}, {Name: "Set2"}}},
			{
				Name:              "Elementary",
				IsPaid:            true,
				HasTimeLimit:      true,
				TimeLimitMinutes:  20,
				NumberOfQuestions: 2,
				Sets:              []models.Set{{Name: "Set A", TimeLimitMinutes: 15}},
			},
		},
	}
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		MaxFailedLogins:   3,
		LockoutDuration:   10 * time.Minute,
		ResetTokenTTL:     time.Hour,
		MinPasswordLength: 6,
	}
}

type attemptFixture struct {
	questions *testutil.QuestionStore
	attempts  *testutil.AttemptStore
	users     *testutil.UserStore
	publisher *testutil.Publisher
	service   *AttemptService
}

func newAttemptFixture(users *testutil.UserStore, questions ...*models.Question) *attemptFixture {
	f := &attemptFixture{
		questions: testutil.NewQuestionStore(questions...),
		attempts:  testutil.NewAttemptStore(),
		users:     users,
		publisher: &testutil.Publisher{},
	}
	f.service = NewAttemptService(NewScoringService(f.questions), f.attempts, f.users, f.publisher)
	return f
}

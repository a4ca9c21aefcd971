package service

import (
	"errors"
	"testing"

	"github.com/Ayush-an/Exam-Buddy-sub000/internal/models"
)

func TestValidateSection(t *testing.T) {
	testCases := []struct {
		name    string
		section models.Section
		field   string
	}{
		{"untimed free", models.Section{Name: "Beginner"}, ""},
		{"timed", models.Section{Name: "Beginner", HasTimeLimit: true, TimeLimitMinutes: 30, NumberOfQuestions: 10}, ""},
		{"paid untimed", models.Section{Name: "Elementary", IsPaid: true, NumberOfQuestions: 5}, ""},
		{"blank name", models.Section{Name: "  "}, "name"},
		{"name from another category", models.Section{Name: "Advanced"}, "name"},
		{"timed without limit", models.Section{Name: "Beginner", HasTimeLimit: true, NumberOfQuestions: 10}, "timeLimitMinutes"},
		{"negative limit", models.Section{Name: "Beginner", TimeLimitMinutes: -5}, "timeLimitMinutes"},
		{"timed without count", models.Section{Name: "Beginner", HasTimeLimit: true, TimeLimitMinutes: 30}, "numberOfQuestions"},
		{"paid without count", models.Section{Name: "Beginner", IsPaid: true}, "numberOfQuestions"},
		{"negative count", models.Section{Name: "Beginner", NumberOfQuestions: -1}, "numberOfQuestions"},
		{"blank set", models.Section{Name: "Beginner", Sets: []models.Set{{Name: ""}}}, "sets.name"},
		{"negative set limit", models.Section{Name: "Beginner", Sets: []models.Set{{Name: "Set1", TimeLimitMinutes: -1}}}, "sets.timeLimitMinutes"},
		{"duplicate set", models.Section{Name: "Beginner", Sets: []models.Set{{Name: "Set1"}, {Name: " Set1 "}}}, "sets"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			section := tc.section
			err := ValidateSection(models.CategoryBeginner, &section)
			if tc.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if validationErr.Field != tc.field {
				t.Errorf("Expected field %q, got %q", tc.field, validationErr.Field)
			}
		})
	}
}

func TestValidateSectionNormalizes(t *testing.T) {
	section := models.Section{Name: " Elementary ", TimeLimitMinutes: 25}
	if err := ValidateSection(models.CategoryBeginner, &section); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if section.Name != "Elementary" {
		t.Errorf("Expected trimmed name, got %q", section.Name)
	}
	if section.TimeLimitMinutes != 0 {
		t.Errorf("Expected untimed section to drop its limit, got %d", section.TimeLimitMinutes)
	}
	if section.Sets == nil {
		t.Error("Expected sets to be an empty slice")
	}
}

func TestValidateSectionsDuplicate(t *testing.T) {
	sections := []models.Section{{Name: "Beginner"}, {Name: "Beginner"}}
	err := ValidateSections(models.CategoryBeginner, sections)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "sections" {
		t.Errorf("Expected duplicate section error, got %v", err)
	}
}

func TestResolveSet(t *testing.T) {
	paper := beginnerPaper()

	testCases := []struct {
		name    string
		paper   *models.QuestionPaper
		section string
		set     string
		field   string
	}{
		{"known", paper, "Beginner", "Set1", ""},
		{"known in other section", paper, "Elementary", "Set A", ""},
		{"no paper", nil, "Beginner", "Set1", "category"},
		{"unknown section", paper, "Advanced", "Set1", "section"},
		{"set from sibling section", paper, "Beginner", "Set A", "set"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			section, set, err := ResolveSet(tc.paper, tc.section, tc.set)
			if tc.field == "" {
				if err != nil || section == nil || set == nil {
					t.Fatalf("Expected resolved set, got %v", err)
				}
				return
			}
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) || validationErr.Field != tc.field {
				t.Errorf("Expected %s error, got %v", tc.field, err)
			}
		})
	}
}

func TestValidateQuestion(t *testing.T) {
	valid := func() *models.Question {
		return newQuestion(models.CategoryBeginner, "Beginner", "Set1", "a", 1)
	}

	testCases := []struct {
		name   string
		mutate func(q *models.Question)
		field  string
	}{
		{"valid", func(q *models.Question) {}, ""},
		{"zero marks", func(q *models.Question) { q.Marks = 0 }, ""},
		{"unknown category", func(q *models.Question) { q.Category = "Expert" }, "category"},
		{"blank text", func(q *models.Question) { q.QuestionText = " " }, "questionText"},
		{"three options", func(q *models.Question) { q.Options = q.Options[:3] }, "options"},
		{"bad option type", func(q *models.Question) { q.Options[1].Type = "video" }, "options[1].type"},
		{"empty option", func(q *models.Question) { q.Options[3].Content = "" }, "options[3].content"},
		{"bad answer key", func(q *models.Question) { q.CorrectAnswer = "e" }, "correctAnswer"},
		{"negative marks", func(q *models.Question) { q.Marks = -1 }, "marks"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q := valid()
			tc.mutate(q)
			err := ValidateQuestion(q)
			if tc.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) || validationErr.Field != tc.field {
				t.Errorf("Expected %s error, got %v", tc.field, err)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	if c, err := ParseCategory("Advanced"); err != nil || c != models.CategoryAdvanced {
		t.Errorf("Expected Advanced, got %q (%v)", c, err)
	}
	if _, err := ParseCategory("advanced"); err == nil {
		t.Error("Expected categories to be case sensitive")
	}
}

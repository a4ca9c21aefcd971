package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Ayush-an/Exam-Buddy-sub000/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json names so field errors match the request body.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateRequest runs the struct tags and reports the first failing field.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	fe := fieldErrs[0]
	field := strings.SplitN(fe.Namespace(), ".", 2)
	path := fe.Field()
	if len(field) == 2 {
		path = field[1]
	}
	return &ValidationError{Field: path, Message: describeTag(fe)}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "mongodb":
		return "must be a valid id"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must have at least " + fe.Param() + " entries"
	case "len":
		return "must have exactly " + fe.Param() + " entries"
	case "gte":
		return "must be at least " + fe.Param()
	case "email":
		return "must be a valid email address"
	}
	return "is invalid"
}

func ParseCategory(raw string) (models.Category, error) {
	category := models.Category(raw)
	if !category.IsValid() {
		return "", newValidationError("category", "unknown category %q", raw)
	}
	return category, nil
}

// ValidateSection enforces the rules that depend on sibling fields and
// normalizes the section in place.
func ValidateSection(category models.Category, section *models.Section) error {
	section.Name = strings.TrimSpace(section.Name)
	if section.Name == "" {
		return newValidationError("name", "section name is required")
	}
	if !category.AllowsSection(section.Name) {
		return newValidationError("name", "section %q is not allowed in category %s (allowed: %s)",
			section.Name, category, strings.Join(category.SectionNames(), ", "))
	}

	if section.TimeLimitMinutes < 0 {
		return newValidationError("timeLimitMinutes", "must not be negative")
	}
	if section.HasTimeLimit {
		if section.TimeLimitMinutes <= 0 {
			return newValidationError("timeLimitMinutes", "is required when hasTimeLimit is true")
		}
	} else {
		section.TimeLimitMinutes = 0
	}

	if section.NumberOfQuestions < 0 {
		return newValidationError("numberOfQuestions", "must not be negative")
	}
	if (section.HasTimeLimit || section.IsPaid) && section.NumberOfQuestions <= 0 {
		return newValidationError("numberOfQuestions", "is required when the section is timed or paid")
	}

	if section.Sets == nil {
		section.Sets = []models.Set{}
	}
	seen := make(map[string]bool, len(section.Sets))
	for i := range section.Sets {
		if err := ValidateSet(&section.Sets[i]); err != nil {
			return err
		}
		name := section.Sets[i].Name
		if seen[name] {
			return newValidationError("sets", "duplicate set name %q in section %s", name, section.Name)
		}
		seen[name] = true
	}
	return nil
}

func ValidateSet(set *models.Set) error {
	set.Name = strings.TrimSpace(set.Name)
	if set.Name == "" {
		return newValidationError("sets.name", "set name is required")
	}
	if set.TimeLimitMinutes < 0 {
		return newValidationError("sets.timeLimitMinutes", "must not be negative")
	}
	return nil
}

func ValidateSections(category models.Category, sections []models.Section) error {
	seen := make(map[string]bool, len(sections))
	for i := range sections {
		if err := ValidateSection(category, &sections[i]); err != nil {
			return err
		}
		if seen[sections[i].Name] {
			return newValidationError("sections", "duplicate section %q", sections[i].Name)
		}
		seen[sections[i].Name] = true
	}
	return nil
}

// ResolveSet is the single membership check for the category/section/set
// reference. Every write that names a set goes through it.
func ResolveSet(paper *models.QuestionPaper, sectionName, setName string) (*models.Section, *models.Set, error) {
	if paper == nil {
		return nil, nil, newValidationError("category", "no question paper exists for this category")
	}
	_, section := paper.FindSection(sectionName)
	if section == nil {
		return nil, nil, newValidationError("section", "section %q does not exist in %s", sectionName, paper.Category)
	}
	_, set := section.FindSet(setName)
	if set == nil {
		return nil, nil, newValidationError("set", "set %q does not exist in %s/%s", setName, paper.Category, sectionName)
	}
	return section, set, nil
}

// ValidateQuestion checks the question body; set membership is checked separately.
func ValidateQuestion(q *models.Question) error {
	if !q.Category.IsValid() {
		return newValidationError("category", "unknown category %q", q.Category)
	}
	q.Section = strings.TrimSpace(q.Section)
	q.Set = strings.TrimSpace(q.Set)
	if q.Section == "" {
		return newValidationError("section", "is required")
	}
	if q.Set == "" {
		return newValidationError("set", "is required")
	}
	if strings.TrimSpace(q.QuestionText) == "" {
		return newValidationError("questionText", "is required")
	}
	if len(q.Options) != models.OptionCount {
		return newValidationError("options", "must have exactly %d entries", models.OptionCount)
	}
	for i, opt := range q.Options {
		field := fmt.Sprintf("options[%d]", i)
		if !opt.Type.IsValid() {
			return newValidationError(field+".type", "must be one of text, image, audio")
		}
		if strings.TrimSpace(opt.Content) == "" {
			return newValidationError(field+".content", "is required")
		}
	}
	if !models.IsValidOptionLabel(q.CorrectAnswer) {
		return newValidationError("correctAnswer", "must be one of a, b, c, d")
	}
	if q.Marks < 0 {
		return newValidationError("marks", "must not be negative")
	}
	return nil
}

package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/Ayush-an/Exam-Buddy-sub000/internal/events"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type CatalogService struct {
	papers         PaperStore
	questions      QuestionStore
	users          UserStore
	eventPublisher events.Publisher
	now            func() time.Time
}

func NewCatalogService(papers PaperStore, questions QuestionStore, users UserStore, eventPublisher events.Publisher) *CatalogService {
	return &CatalogService{
		papers:         papers,
		questions:      questions,
		users:          users,
		eventPublisher: eventPublisher,
		now:            time.Now,
	}
}

func (s *CatalogService) ListPapers(ctx context.Context) ([]*models.QuestionPaper, error) {
	papers, err := s.papers.FindAll(ctx)
	if err != nil {
		return nil, persistenceError("list question papers", err)
	}
	if papers == nil {
		papers = []*models.QuestionPaper{}
	}
	return papers, nil
}

func (s *CatalogService) GetPaper(ctx context.Context, rawCategory string) (*models.QuestionPaper, error) {
	category, err := ParseCategory(rawCategory)
	if err != nil {
		return nil, err
	}
	paper, err := s.papers.FindByCategory(ctx, category)
	if err != nil {
		return nil, persistenceError("load question paper", err)
	}
	if paper == nil {
		return nil, notFound("question paper %s", category)
	}
	return paper, nil
}

// FindSectionAndSet resolves a category/section/set triple.
func (s *CatalogService) FindSectionAndSet(ctx context.Context, category models.Category, section, set string) (*models.Section, *models.Set, error) {
	paper, err := s.papers.FindByCategory(ctx, category)
	if err != nil {
		return nil, nil, persistenceError("load question paper", err)
	}
	sec, st, err := ResolveSet(paper, section, set)
	if err != nil {
		return nil, nil, notFound("%s", err.Error())
	}
	return sec, st, nil
}

// UpsertQuestionPaper replaces the sections of a category's paper, creating it
// if needed. Sections or sets that still hold questions cannot be dropped.
func (s *CatalogService) UpsertQuestionPaper(ctx context.Context, rawCategory string, sections []models.Section) (*models.QuestionPaper, error) {
	category, err := ParseCategory(rawCategory)
	if err != nil {
		return nil, err
	}
	if sections == nil {
		sections = []models.Section{}
	}
	if err := ValidateSections(category, sections); err != nil {
		return nil, err
	}

	current, err := s.papers.FindByCategory(ctx, category)
	if err != nil {
		return nil, persistenceError("load question paper", err)
	}
	if current != nil {
		proposed := &models.QuestionPaper{Category: category, Sections: sections}
		for _, sec := range current.Sections {
			for _, set := range sec.Sets {
				if _, _, err := ResolveSet(proposed, sec.Name, set.Name); err == nil {
					continue
				}
				if err := s.ensureSetEmpty(ctx, category, sec.Name, set.Name); err != nil {
					return nil, err
				}
			}
		}
	}

	return s.save(ctx, category, sections)
}

func (s *CatalogService) AddSection(ctx context.Context, rawCategory string, section models.Section) (*models.QuestionPaper, error) {
	category, err := ParseCategory(rawCategory)
	if err != nil {
		return nil, err
	}
	if err := ValidateSection(category, &section); err != nil {
		return nil, err
	}

	paper, err := s.papers.FindByCategory(ctx, category)
	if err != nil {
		return nil, persistenceError("load question paper", err)
	}
	var sections []models.Section
	if paper != nil {
		if _, existing := paper.FindSection(section.Name); existing != nil {
			return nil, newValidationError("name", "section %q already exists in %s", section.Name, category)
		}
		sections = append(sections, paper.Sections...)
	}
	sections = append(sections, section)
	return s.save(ctx, category, sections)
}

// UpdateSection replaces a section's policy fields and sets. The section keeps its name.
func (s *CatalogService) UpdateSection(ctx context.Context, rawCategory, sectionName string, section models.Section) (*models.QuestionPaper, error) {
	category, paper, idx, err := s.loadSection(ctx, rawCategory, sectionName)
	if err != nil {
		return nil, err
	}
	section.Name = sectionName
	if err := ValidateSection(category, &section); err != nil {
		return nil, err
	}

	existing := paper.Sections[idx]
	for _, set := range existing.Sets {
		if _, found := section.FindSet(set.Name); found != nil {
			continue
		}
		if err := s.ensureSetEmpty(ctx, category, sectionName, set.Name); err != nil {
			return nil, err
		}
	}

	paper.Sections[idx] = section
	return s.save(ctx, category, paper.Sections)
}

func (s *CatalogService) DeleteSection(ctx context.Context, rawCategory, sectionName string) (*models.QuestionPaper, error) {
	category, paper, idx, err := s.loadSection(ctx, rawCategory, sectionName)
	if err != nil {
		return nil, err
	}
	count, err := s.questions.CountBySection(ctx, category, sectionName)
	if err != nil {
		return nil, persistenceError("count section questions", err)
	}
	if count > 0 {
		return nil, newValidationError("section", "section %q still has %d questions", sectionName, count)
	}

	sections := append(paper.Sections[:idx:idx], paper.Sections[idx+1:]...)
	return s.save(ctx, category, sections)
}

func (s *CatalogService) AddSet(ctx context.Context, rawCategory, sectionName string, set models.Set) (*models.QuestionPaper, error) {
	category, paper, idx, err := s.loadSection(ctx, rawCategory, sectionName)
	if err != nil {
		return nil, err
	}
	section := &paper.Sections[idx]
	section.Sets = append(section.Sets, set)
	if err := ValidateSection(category, section); err != nil {
		return nil, err
	}
	return s.save(ctx, category, paper.Sections)
}

// UpdateSet renames and retimes a set. Questions filed under the old name follow it.
func (s *CatalogService) UpdateSet(ctx context.Context, rawCategory, sectionName, setName string, set models.Set) (*models.QuestionPaper, error) {
	category, paper, idx, err := s.loadSection(ctx, rawCategory, sectionName)
	if err != nil {
		return nil, err
	}
	if _, _, err := ResolveSet(paper, sectionName, setName); err != nil {
		return nil, notFound("%s", err.Error())
	}

	section := &paper.Sections[idx]
	setIdx, _ := section.FindSet(setName)
	section.Sets[setIdx] = set
	if err := ValidateSection(category, section); err != nil {
		return nil, err
	}
	newName := section.Sets[setIdx].Name
	if newName == setName {
		return s.save(ctx, category, paper.Sections)
	}

	// Questions move first so a failure leaves the paper on the old name.
	moved, err := s.questions.RenameSet(ctx, category, sectionName, setName, newName)
	if err != nil {
		return nil, persistenceError("move questions to renamed set", err)
	}

	saved, err := s.save(ctx, category, paper.Sections)
	if err != nil {
		if _, rollbackErr := s.questions.RenameSet(ctx, category, sectionName, newName, setName); rollbackErr != nil {
			log.Printf("Error moving %d questions back from %s/%s/%s to %s: %v", moved, category, sectionName, newName, setName, rollbackErr)
		}
		return nil, err
	}
	log.Printf("Renamed set %s/%s/%s to %s, moved %d questions", category, sectionName, setName, newName, moved)
	return saved, nil
}

func (s *CatalogService) DeleteSet(ctx context.Context, rawCategory, sectionName, setName string) (*models.QuestionPaper, error) {
	category, paper, idx, err := s.loadSection(ctx, rawCategory, sectionName)
	if err != nil {
		return nil, err
	}
	if _, _, err := ResolveSet(paper, sectionName, setName); err != nil {
		return nil, notFound("%s", err.Error())
	}
	if err := s.ensureSetEmpty(ctx, category, sectionName, setName); err != nil {
		return nil, err
	}

	section := &paper.Sections[idx]
	setIdx, _ := section.FindSet(setName)
	section.Sets = append(section.Sets[:setIdx:setIdx], section.Sets[setIdx+1:]...)
	return s.save(ctx, category, paper.Sections)
}

func (s *CatalogService) loadSection(ctx context.Context, rawCategory, sectionName string) (models.Category, *models.QuestionPaper, int, error) {
	category, err := ParseCategory(rawCategory)
	if err != nil {
		return "", nil, -1, err
	}
	paper, err := s.papers.FindByCategory(ctx, category)
	if err != nil {
		return "", nil, -1, persistenceError("load question paper", err)
	}
	if paper == nil {
		return "", nil, -1, notFound("question paper %s", category)
	}
	idx, section := paper.FindSection(sectionName)
	if section == nil {
		return "", nil, -1, notFound("section %s in %s", sectionName, category)
	}
	return category, paper, idx, nil
}

func (s *CatalogService) ensureSetEmpty(ctx context.Context, category models.Category, section, set string) error {
	count, err := s.questions.CountBySet(ctx, category, section, set)
	if err != nil {
		return persistenceError("count set questions", err)
	}
	if count > 0 {
		return newValidationError("sets", "set %s/%s still has %d questions", section, set, count)
	}
	return nil
}

func (s *CatalogService) save(ctx context.Context, category models.Category, sections []models.Section) (*models.QuestionPaper, error) {
	paper, err := s.papers.Upsert(ctx, category, sections)
	if err != nil {
		return nil, persistenceError("save question paper", err)
	}

	names := make([]string, 0, len(sections))
	for _, sec := range sections {
		names = append(names, sec.Name)
	}
	if err := s.eventPublisher.PublishPaperEvent(ctx, events.NewPaperUpdatedEvent(string(category), names)); err != nil {
		log.Printf("Warning: Failed to publish paper updated event for %s: %v", category, err)
	}
	return paper, nil
}

// Question authoring

func (s *CatalogService) CreateQuestion(ctx context.Context, req *models.QuestionRequest) (*models.Question, error) {
	question, err := s.buildQuestion(ctx, req)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	question.ID = bson.NewObjectID()
	question.CreatedAt = now
	question.UpdatedAt = now
	if err := s.questions.Create(ctx, question); err != nil {
		return nil, persistenceError("create question", err)
	}
	return question, nil
}

func (s *CatalogService) UpdateQuestion(ctx context.Context, rawID string, req *models.QuestionRequest) (*models.Question, error) {
	existing, err := s.GetQuestion(ctx, rawID)
	if err != nil {
		return nil, err
	}
	question, err := s.buildQuestion(ctx, req)
	if err != nil {
		return nil, err
	}

	question.ID = existing.ID
	question.CreatedAt = existing.CreatedAt
	question.UpdatedAt = s.now().UTC()
	matched, err := s.questions.Update(ctx, question)
	if err != nil {
		return nil, persistenceError("update question", err)
	}
	if !matched {
		return nil, notFound("question %s", rawID)
	}
	return question, nil
}

func (s *CatalogService) GetQuestion(ctx context.Context, rawID string) (*models.Question, error) {
	id, err := bson.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, newValidationError("id", "must be a valid id")
	}
	question, err := s.questions.FindByID(ctx, id)
	if err != nil {
		return nil, persistenceError("load question", err)
	}
	if question == nil {
		return nil, notFound("question %s", rawID)
	}
	return question, nil
}

func (s *CatalogService) DeleteQuestion(ctx context.Context, rawID string) error {
	id, err := bson.ObjectIDFromHex(rawID)
	if err != nil {
		return newValidationError("id", "must be a valid id")
	}
	deleted, err := s.questions.Delete(ctx, id)
	if err != nil {
		return persistenceError("delete question", err)
	}
	if !deleted {
		return notFound("question %s", rawID)
	}
	return nil
}

func (s *CatalogService) ListQuestions(ctx context.Context, rawCategory, section, set string) ([]*models.Question, error) {
	category, err := ParseCategory(rawCategory)
	if err != nil {
		return nil, err
	}
	questions, err := s.questions.FindBySet(ctx, category, section, set)
	if err != nil {
		return nil, persistenceError("list questions", err)
	}
	if questions == nil {
		questions = []*models.Question{}
	}
	return questions, nil
}

// buildQuestion validates the body and the set reference before anything is written.
func (s *CatalogService) buildQuestion(ctx context.Context, req *models.QuestionRequest) (*models.Question, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	question := &models.Question{
		Category:      models.Category(req.Category),
		Section:       req.Section,
		Set:           req.Set,
		QuestionText:  strings.TrimSpace(req.QuestionText),
		QuestionImage: req.QuestionImage,
		QuestionAudio: req.QuestionAudio,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Marks:         *req.Marks,
	}
	if err := ValidateQuestion(question); err != nil {
		return nil, err
	}

	paper, err := s.papers.FindByCategory(ctx, question.Category)
	if err != nil {
		return nil, persistenceError("load question paper", err)
	}
	if _, _, err := ResolveSet(paper, question.Section, question.Set); err != nil {
		return nil, err
	}
	return question, nil
}

// ExamSession returns the questions a candidate sees for one set. Paid sections
// need an active subscription unless the caller is an admin.
func (s *CatalogService) ExamSession(ctx context.Context, userID, rawCategory, sectionName, setName string) (*models.ExamSession, error) {
	category, err := ParseCategory(rawCategory)
	if err != nil {
		return nil, err
	}
	section, set, err := s.FindSectionAndSet(ctx, category, sectionName, setName)
	if err != nil {
		return nil, err
	}

	if section.IsPaid {
		if err := s.checkEntitlement(ctx, userID, category, sectionName); err != nil {
			return nil, err
		}
	}

	questions, err := s.questions.FindBySet(ctx, category, sectionName, setName)
	if err != nil {
		return nil, persistenceError("list questions", err)
	}
	if section.NumberOfQuestions > 0 && len(questions) > section.NumberOfQuestions {
		questions = questions[:section.NumberOfQuestions]
	}

	session := &models.ExamSession{
		Category:          category,
		Section:           section.Name,
		Set:               set.Name,
		IsPaid:            section.IsPaid,
		TimeLimitMinutes:  section.EffectiveTimeLimit(set),
		NumberOfQuestions: len(questions),
		Questions:         make([]models.ExamQuestion, 0, len(questions)),
	}
	for _, q := range questions {
		session.Questions = append(session.Questions, q.ForExam())
	}
	return session, nil
}

func (s *CatalogService) checkEntitlement(ctx context.Context, userID string, category models.Category, section string) error {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return ErrUnauthorized
	}
	user, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return persistenceError("load user", err)
	}
	if user == nil {
		return ErrUnauthorized
	}
	if user.IsAdmin() || user.HasAccess(category, section, s.now()) {
		return nil
	}
	return &entitlementError{category: category, section: section}
}

type entitlementError struct {
	category models.Category
	section  string
}

func (e *entitlementError) Error() string {
	return "an active subscription is required for " + string(e.category) + "/" + e.section
}

func (e *entitlementError) Unwrap() error {
	return ErrForbidden
}

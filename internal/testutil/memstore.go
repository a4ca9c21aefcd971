// Package testutil holds in-memory stores for exercising services and handlers
// without MongoDB, Redis or RabbitMQ.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Ayush-an/Exam-Buddy-sub000/internal/events"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type QuestionStore struct {
	mu            sync.Mutex
	questions     map[bson.ObjectID]*models.Question
	order         []bson.ObjectID
	FindByIDsCall int
	Err           error
	RenameErr     error
}

func NewQuestionStore(questions ...*models.Question) *QuestionStore {
	s := &QuestionStore{questions: make(map[bson.ObjectID]*models.Question)}
	for _, q := range questions {
		s.put(q)
	}
	return s
}

func (s *QuestionStore) put(q *models.Question) {
	if q.ID.IsZero() {
		q.ID = bson.NewObjectID()
	}
	if _, exists := s.questions[q.ID]; !exists {
		s.order = append(s.order, q.ID)
	}
	clone := *q
	s.questions[q.ID] = &clone
}

func (s *QuestionStore) FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FindByIDsCall++
	if s.Err != nil {
		return nil, s.Err
	}
	var out []*models.Question
	for _, id := range ids {
		if q, ok := s.questions[id]; ok {
			clone := *q
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *QuestionStore) FindBySet(ctx context.Context, category models.Category, section, set string) ([]*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []*models.Question
	for _, id := range s.order {
		if q, ok := s.questions[id]; ok && q.BelongsTo(category, section, set) {
			clone := *q
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *QuestionStore) FindByID(ctx context.Context, id bson.ObjectID) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	q, ok := s.questions[id]
	if !ok {
		return nil, nil
	}
	clone := *q
	return &clone, nil
}

func (s *QuestionStore) Create(ctx context.Context, question *models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.put(question)
	return nil
}

func (s *QuestionStore) Update(ctx context.Context, question *models.Question) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	if _, ok := s.questions[question.ID]; !ok {
		return false, nil
	}
	s.put(question)
	return true, nil
}

func (s *QuestionStore) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	if _, ok := s.questions[id]; !ok {
		return false, nil
	}
	delete(s.questions, id)
	return true, nil
}

func (s *QuestionStore) CountBySet(ctx context.Context, category models.Category, section, set string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, q := range s.questions {
		if q.BelongsTo(category, section, set) {
			n++
		}
	}
	return n, nil
}

func (s *QuestionStore) CountBySection(ctx context.Context, category models.Category, section string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, q := range s.questions {
		if q.Category == category && q.Section == section {
			n++
		}
	}
	return n, nil
}

func (s *QuestionStore) RenameSet(ctx context.Context, category models.Category, section, oldName, newName string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RenameErr != nil {
		return 0, s.RenameErr
	}
	var n int64
	for _, q := range s.questions {
		if q.BelongsTo(category, section, oldName) {
			q.Set = newName
			n++
		}
	}
	return n, nil
}

type PaperStore struct {
	mu     sync.Mutex
	papers    map[models.Category]*models.QuestionPaper
	Err       error
	UpsertErr error
}

func NewPaperStore(papers ...*models.QuestionPaper) *PaperStore {
	s := &PaperStore{papers: make(map[models.Category]*models.QuestionPaper)}
	for _, p := range papers {
		if p.ID.IsZero() {
			p.ID = bson.NewObjectID()
		}
		s.papers[p.Category] = clonePaper(p)
	}
	return s
}

func clonePaper(p *models.QuestionPaper) *models.QuestionPaper {
	clone := *p
	clone.Sections = make([]models.Section, len(p.Sections))
	for i, sec := range p.Sections {
		sec.Sets = append([]models.Set(nil), sec.Sets...)
		clone.Sections[i] = sec
	}
	return &clone
}

func (s *PaperStore) FindAll(ctx context.Context) ([]*models.QuestionPaper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []*models.QuestionPaper
	for _, p := range s.papers {
		out = append(out, clonePaper(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (s *PaperStore) FindByCategory(ctx context.Context, category models.Category) (*models.QuestionPaper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.papers[category]
	if !ok {
		return nil, nil
	}
	return clonePaper(p), nil
}

func (s *PaperStore) Upsert(ctx context.Context, category models.Category, sections []models.Section) (*models.QuestionPaper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if s.UpsertErr != nil {
		return nil, s.UpsertErr
	}
	now := time.Now().UTC()
	p, ok := s.papers[category]
	if !ok {
		p = &models.QuestionPaper{ID: bson.NewObjectID(), Category: category, CreatedAt: now}
	}
	p.Sections = sections
	p.UpdatedAt = now
	s.papers[category] = clonePaper(p)
	return clonePaper(p), nil
}

type AttemptStore struct {
	mu       sync.Mutex
	attempts []*models.ExamAttempt
	Err      error
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{}
}

func (s *AttemptStore) Create(ctx context.Context, attempt *models.ExamAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	clone := *attempt
	s.attempts = append(s.attempts, &clone)
	return nil
}

func (s *AttemptStore) FindByID(ctx context.Context, id bson.ObjectID) (*models.ExamAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.attempts {
		if a.ID == id {
			clone := *a
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *AttemptStore) FindByUser(ctx context.Context, userID bson.ObjectID, page, limit int) ([]*models.ExamAttempt, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var owned []*models.ExamAttempt
	for i := len(s.attempts) - 1; i >= 0; i-- {
		if s.attempts[i].UserID == userID {
			owned = append(owned, s.attempts[i])
		}
	}
	total := int64(len(owned))
	start := (page - 1) * limit
	if start >= len(owned) {
		return []*models.ExamAttempt{}, total, nil
	}
	end := min(start+limit, len(owned))
	return owned[start:end], total, nil
}

func (s *AttemptStore) FindHistoryPending(ctx context.Context, submittedBefore time.Time, limit int) ([]*models.ExamAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []*models.ExamAttempt
	for _, a := range s.attempts {
		if a.HistoryPending && a.SubmittedAt.Before(submittedBefore) && len(out) < limit {
			clone := *a
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *AttemptStore) ClearHistoryPending(ctx context.Context, id bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.attempts {
		if a.ID == id {
			a.HistoryPending = false
		}
	}
	return nil
}

func (s *AttemptStore) Get(id bson.ObjectID) *models.ExamAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.attempts {
		if a.ID == id {
			clone := *a
			return &clone
		}
	}
	return nil
}

func (s *AttemptStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attempts)
}

type UserStore struct {
	mu               sync.Mutex
	users            map[bson.ObjectID]*models.User
	AppendHistoryErr error
}

func NewUserStore(users ...*models.User) *UserStore {
	s := &UserStore{users: make(map[bson.ObjectID]*models.User)}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = bson.NewObjectID()
		}
		clone := *u
		s.users[u.ID] = &clone
	}
	return s
}

func cloneUser(u *models.User) *models.User {
	clone := *u
	clone.ExamHistory = append([]models.ExamHistoryEntry(nil), u.ExamHistory...)
	clone.Subscriptions = append([]models.Subscription(nil), u.Subscriptions...)
	return &clone
}

func (s *UserStore) Get(id bson.ObjectID) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	return cloneUser(u)
}

func (s *UserStore) FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	return s.Get(id), nil
}

func (s *UserStore) find(match func(*models.User) bool) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			return cloneUser(u)
		}
	}
	return nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.Email == email }), nil
}

func (s *UserStore) FindByResetToken(ctx context.Context, token string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return token != "" && u.ResetToken == token }), nil
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *UserStore) UpdateProfile(ctx context.Context, id bson.ObjectID, name, phone *string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	if name != nil {
		u.Name = *name
	}
	if phone != nil {
		u.Phone = *phone
	}
	return cloneUser(u), nil
}

func (s *UserStore) AppendHistory(ctx context.Context, userID bson.ObjectID, entry models.ExamHistoryEntry, scoreDelta float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AppendHistoryErr != nil {
		return false, s.AppendHistoryErr
	}
	u, ok := s.users[userID]
	if !ok {
		return false, nil
	}
	for _, existing := range u.ExamHistory {
		if existing.AttemptID == entry.AttemptID {
			return false, nil
		}
	}
	u.ExamHistory = append(u.ExamHistory, entry)
	u.PapersAttempted++
	u.Score += scoreDelta
	return true, nil
}

func (s *UserStore) SetResetToken(ctx context.Context, id bson.ObjectID, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.ResetToken = token
		u.ResetTokenExpiration = &expiresAt
	}
	return nil
}

func (s *UserStore) ResetPassword(ctx context.Context, id bson.ObjectID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.Password = passwordHash
		u.ResetToken = ""
		u.ResetTokenExpiration = nil
	}
	return nil
}

func (s *UserStore) AddSubscription(ctx context.Context, id bson.ObjectID, sub models.Subscription) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return false, nil
	}
	u.Subscriptions = append(u.Subscriptions, sub)
	return true, nil
}

type SessionStore struct {
	mu       sync.Mutex
	revoked  map[string]bool
	failures map[string]int64
	locked   map[string]bool
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		revoked:  make(map[string]bool),
		failures: make(map[string]int64),
		locked:   make(map[string]bool),
	}
}

func (s *SessionStore) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = true
	return nil
}

func (s *SessionStore) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[tokenID], nil
}

func (s *SessionStore) RegisterFailedLogin(ctx context.Context, email string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[email]++
	return s.failures[email], nil
}

func (s *SessionStore) ClearFailedLogins(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, email)
	delete(s.locked, email)
	return nil
}

func (s *SessionStore) LockUser(ctx context.Context, email string, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked[email] = true
	return nil
}

func (s *SessionStore) IsUserLocked(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked[email], nil
}

// Publisher records every event instead of sending it.
type Publisher struct {
	mu           sync.Mutex
	Exams        []*events.ExamSubmittedEvent
	LinkFailures []*events.HistoryLinkFailedEvent
	Papers       []*events.PaperUpdatedEvent
	Users        []*events.UserEvent
}

func (p *Publisher) PublishExamEvent(ctx context.Context, event *events.ExamSubmittedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Exams = append(p.Exams, event)
	return nil
}

func (p *Publisher) PublishHistoryLinkFailed(ctx context.Context, event *events.HistoryLinkFailedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.LinkFailures = append(p.LinkFailures, event)
	return nil
}

func (p *Publisher) PublishPaperEvent(ctx context.Context, event *events.PaperUpdatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Papers = append(p.Papers, event)
	return nil
}

func (p *Publisher) PublishUserEvent(ctx context.Context, event *events.UserEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Users = append(p.Users, event)
	return nil
}

func (p *Publisher) Close() error {
	return nil
}

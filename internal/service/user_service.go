package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Ayush-an/Exam-Buddy-sub000/internal/config"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/events"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/metrics"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"
)

// ErrDuplicateKey is returned by a UserStore when a unique index rejects a write.
var ErrDuplicateKey = errors.New("duplicate key")

type UserService struct {
	users          UserStore
	sessions       SessionStore
	jwtService     *JWTService
	eventPublisher events.Publisher
	cfg            config.AuthConfig
	now            func() time.Time
}

func NewUserService(users UserStore, sessions SessionStore, jwtService *JWTService, eventPublisher events.Publisher, cfg config.AuthConfig) *UserService {
	return &UserService{
		users:          users,
		sessions:       sessions,
		jwtService:     jwtService,
		eventPublisher: eventPublisher,
		cfg:            cfg,
		now:            time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

const maxPasswordBytes = 72

func (s *UserService) checkPassword(password string) error {
	if len(password) < s.cfg.MinPasswordLength {
		return newValidationError("password", "must be at least %d characters", s.cfg.MinPasswordLength)
	}
	// bcrypt rejects longer input.
	if len(password) > maxPasswordBytes {
		return newValidationError("password", "must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}

func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.checkPassword(req.Password); err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, persistenceError("check existing user", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("email %s is already registered: %w", email, ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	user := &models.User{
		ID:            bson.NewObjectID(),
		Name:          strings.TrimSpace(req.Name),
		Email:         email,
		Phone:         strings.TrimSpace(req.Phone),
		Password:      string(hash),
		Role:          models.RoleUser,
		Subscriptions: []models.Subscription{},
		ExamHistory:   []models.ExamHistoryEntry{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			return nil, fmt.Errorf("email %s is already registered: %w", email, ErrConflict)
		}
		return nil, persistenceError("create user", err)
	}

	event := events.NewUserEvent(events.UserRegistered, user.ID.Hex(), user.Email, user.Name)
	if err := s.eventPublisher.PublishUserEvent(ctx, event); err != nil {
		log.Printf("Warning: Failed to publish user registered event: %v", err)
	}
	return user, nil
}

// Login checks credentials and issues a token. Repeated failures lock the
// account for the configured duration.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)

	locked, err := s.sessions.IsUserLocked(ctx, email)
	if err != nil {
		log.Printf("Warning: Failed to read lock state for %s: %v", email, err)
	}
	if locked {
		metrics.LoginAttempts.WithLabelValues("locked").Inc()
		return nil, fmt.Errorf("account is temporarily locked: %w", ErrForbidden)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, persistenceError("load user", err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		s.recordFailedLogin(ctx, email)
		return nil, fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
	}

	if err := s.sessions.ClearFailedLogins(ctx, email); err != nil {
		log.Printf("Warning: Failed to clear failed logins for %s: %v", email, err)
	}

	token, expiresAt, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	return &models.AuthResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *UserService) recordFailedLogin(ctx context.Context, email string) {
	failures, err := s.sessions.RegisterFailedLogin(ctx, email, s.cfg.LockoutDuration)
	if err != nil {
		log.Printf("Warning: Failed to record failed login for %s: %v", email, err)
		return
	}
	if failures >= int64(s.cfg.MaxFailedLogins) {
		log.Printf("User %s, login failed %d times. Locked for %v", email, failures, s.cfg.LockoutDuration)
		if err := s.sessions.LockUser(ctx, email, s.cfg.LockoutDuration); err != nil {
			log.Printf("Warning: Failed to lock user %s: %v", email, err)
		}
	}
}

// Logout revokes the token until it would have expired anyway.
func (s *UserService) Logout(ctx context.Context, claims *Claims) error {
	ttl := claims.RemainingTTL()
	if ttl <= 0 {
		return nil
	}
	if err := s.sessions.RevokeToken(ctx, claims.ID, ttl); err != nil {
		return persistenceError("revoke token", err)
	}
	return nil
}

func (s *UserService) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	return s.sessions.IsTokenRevoked(ctx, tokenID)
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	id, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, newValidationError("userId", "must be a valid id")
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, persistenceError("load user", err)
	}
	if user == nil {
		return nil, notFound("user %s", userID)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	id, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, newValidationError("userId", "must be a valid id")
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, newValidationError("name", "must not be empty")
		}
		req.Name = &name
	}

	user, err := s.users.UpdateProfile(ctx, id, req.Name, req.Phone)
	if err != nil {
		return nil, persistenceError("update profile", err)
	}
	if user == nil {
		return nil, notFound("user %s", userID)
	}
	return user, nil
}

// ForgotPassword issues a reset token. Unknown emails succeed silently so the
// endpoint does not reveal which addresses are registered.
func (s *UserService) ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	email := normalizeEmail(req.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return persistenceError("load user", err)
	}
	if user == nil {
		log.Printf("Password reset requested for unknown email %s", email)
		return nil
	}

	token := uuid.NewString()
	expiresAt := s.now().Add(s.cfg.ResetTokenTTL).UTC()
	if err := s.users.SetResetToken(ctx, user.ID, token, expiresAt); err != nil {
		return persistenceError("store reset token", err)
	}

	event := events.NewUserEvent(events.UserPasswordResetRequested, user.ID.Hex(), user.Email, user.Name)
	event.ResetToken = token
	event.ExpiresAt = expiresAt.Unix()
	if err := s.eventPublisher.PublishUserEvent(ctx, event); err != nil {
		log.Printf("Warning: Failed to publish password reset event for %s: %v", user.ID.Hex(), err)
	}
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, token string, req *models.ResetPasswordRequest) error {
	if token == "" {
		return newValidationError("token", "is required")
	}
	if err := validateRequest(req); err != nil {
		return err
	}
	if err := s.checkPassword(req.Password); err != nil {
		return err
	}

	user, err := s.users.FindByResetToken(ctx, token)
	if err != nil {
		return persistenceError("load user by reset token", err)
	}
	if user == nil || user.ResetTokenExpiration == nil || !s.now().Before(*user.ResetTokenExpiration) {
		return newValidationError("token", "reset token is invalid or has expired")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.ResetPassword(ctx, user.ID, string(hash)); err != nil {
		return persistenceError("reset password", err)
	}
	if err := s.sessions.ClearFailedLogins(ctx, user.Email); err != nil {
		log.Printf("Warning: Failed to clear failed logins for %s: %v", user.Email, err)
	}
	return nil
}

func (s *UserService) GrantSubscription(ctx context.Context, userID string, req *models.GrantSubscriptionRequest) (*models.Subscription, error) {
	id, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, newValidationError("userId", "must be a valid id")
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	category := models.Category(req.Category)
	if !category.AllowsSection(req.Section) {
		return nil, newValidationError("section", "section %q is not allowed in category %s", req.Section, category)
	}
	now := s.now().UTC()
	if !req.ExpiresAt.After(now) {
		return nil, newValidationError("expiresAt", "must be in the future")
	}

	sub := models.Subscription{
		Category:  category,
		Section:   req.Section,
		GrantedAt: now,
		ExpiresAt: req.ExpiresAt.UTC(),
	}
	matched, err := s.users.AddSubscription(ctx, id, sub)
	if err != nil {
		return nil, persistenceError("grant subscription", err)
	}
	if !matched {
		return nil, notFound("user %s", userID)
	}
	return &sub, nil
}

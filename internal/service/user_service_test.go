package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Ayush-an/Exam-Buddy-sub000/internal/events"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/models"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/testutil"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type userFixture struct {
	users     *testutil.UserStore
	sessions  *testutil.SessionStore
	publisher *testutil.Publisher
	jwt       *JWTService
	service   *UserService
}

func newUserFixture(t *testing.T, users ...*models.User) *userFixture {
	t.Helper()
	jwtService, err := NewJWTService("test-secret", "exam-service", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := &userFixture{
		users:     testutil.NewUserStore(users...),
		sessions:  testutil.NewSessionStore(),
		publisher: &testutil.Publisher{},
		jwt:       jwtService,
	}
	f.service = NewUserService(f.users, f.sessions, f.jwt, f.publisher, testAuthConfig())
	return f
}

func register(t *testing.T, f *userFixture, email, password string) *models.User {
	t.Helper()
	user, err := f.service.Register(context.Background(), &models.RegisterRequest{
		Name:     "Ravi",
		Email:    email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return user
}

func TestRegisterAndLogin(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	user := register(t, f, "Ravi@Example.com", "secret123")
	if user.Email != "ravi@example.com" || user.Role != models.RoleUser {
		t.Errorf("Unexpected user %+v", user)
	}
	if user.Password == "secret123" {
		t.Error("Password must be stored hashed")
	}
	if len(f.publisher.Users) != 1 || f.publisher.Users[0].EventType != events.UserRegistered {
		t.Errorf("Expected a registered event, got %+v", f.publisher.Users)
	}

	_, err := f.service.Register(ctx, &models.RegisterRequest{Name: "Dup", Email: "ravi@example.com", Password: "secret123"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("Expected ErrConflict, got %v", err)
	}

	resp, err := f.service.Login(ctx, &models.LoginRequest{Email: "RAVI@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	claims, err := f.jwt.VerifyToken(resp.Token)
	if err != nil {
		t.Fatalf("Expected a valid token, got %v", err)
	}
	if claims.UserID != user.ID.Hex() || claims.Role != models.RoleUser {
		t.Errorf("Unexpected claims %+v", claims)
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newUserFixture(t)

	testCases := []struct {
		name  string
		req   models.RegisterRequest
		field string
	}{
		{"missing name", models.RegisterRequest{Email: "a@b.co", Password: "secret123"}, "name"},
		{"bad email", models.RegisterRequest{Name: "A", Email: "a-at-b", Password: "secret123"}, "email"},
		{"short password", models.RegisterRequest{Name: "A", Email: "a@b.co", Password: "abc"}, "password"},
		{"password over bcrypt limit", models.RegisterRequest{Name: "A", Email: "a@b.co", Password: strings.Repeat("p", 80)}, "password"},
		{"multibyte password over bcrypt limit", models.RegisterRequest{Name: "A", Email: "a@b.co", Password: strings.Repeat("é", 40)}, "password"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.Register(context.Background(), &tc.req)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) || validationErr.Field != tc.field {
				t.Errorf("Expected %s error, got %v", tc.field, err)
			}
		})
	}
}

func TestLoginLockout(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	register(t, f, "ravi@example.com", "secret123")

	wrong := &models.LoginRequest{Email: "ravi@example.com", Password: "wrong-pass"}
	for i := 0; i < 3; i++ {
		if _, err := f.service.Login(ctx, wrong); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("attempt %d: expected ErrUnauthorized, got %v", i+1, err)
		}
	}

	_, err := f.service.Login(ctx, &models.LoginRequest{Email: "ravi@example.com", Password: "secret123"})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected locked account to be refused, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newUserFixture(t)
	_, err := f.service.Login(context.Background(), &models.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	register(t, f, "ravi@example.com", "secret123")

	resp, err := f.service.Login(ctx, &models.LoginRequest{Email: "ravi@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	claims, err := f.jwt.VerifyToken(resp.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.service.Logout(ctx, claims); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	revoked, err := f.service.IsTokenRevoked(ctx, claims.ID)
	if err != nil || !revoked {
		t.Errorf("Expected token %s to be revoked", claims.ID)
	}
}

func TestPasswordReset(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	user := register(t, f, "ravi@example.com", "secret123")

	if err := f.service.ForgotPassword(ctx, &models.ForgotPasswordRequest{Email: "unknown@example.com"}); err != nil {
		t.Errorf("Expected unknown email to succeed silently, got %v", err)
	}

	if err := f.service.ForgotPassword(ctx, &models.ForgotPasswordRequest{Email: "ravi@example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	token := f.users.Get(user.ID).ResetToken
	if token == "" {
		t.Fatal("Expected a reset token to be stored")
	}
	last := f.publisher.Users[len(f.publisher.Users)-1]
	if last.EventType != events.UserPasswordResetRequested || last.ResetToken != token {
		t.Errorf("Expected reset event carrying the token, got %+v", last)
	}

	var validationErr *ValidationError
	if err := f.service.ResetPassword(ctx, "not-a-token", &models.ResetPasswordRequest{Password: "newsecret"}); !errors.As(err, &validationErr) || validationErr.Field != "token" {
		t.Errorf("Expected token error, got %v", err)
	}

	if err := f.service.ResetPassword(ctx, token, &models.ResetPasswordRequest{Password: strings.Repeat("n", 73)}); !errors.As(err, &validationErr) || validationErr.Field != "password" {
		t.Errorf("Expected password ValidationError, got %v", err)
	}
	if err := f.service.ResetPassword(ctx, token, &models.ResetPasswordRequest{Password: "newsecret"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.users.Get(user.ID).ResetToken != "" {
		t.Error("Expected reset token to be cleared")
	}

	if _, err := f.service.Login(ctx, &models.LoginRequest{Email: "ravi@example.com", Password: "newsecret"}); err != nil {
		t.Errorf("Expected login with new password, got %v", err)
	}
	if err := f.service.ResetPassword(ctx, token, &models.ResetPasswordRequest{Password: "another1"}); err == nil {
		t.Error("Expected a used token to be rejected")
	}
}

func TestPasswordResetExpired(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	user := register(t, f, "ravi@example.com", "secret123")

	if err := f.users.SetResetToken(ctx, user.ID, "expired-token", time.Now().Add(-time.Minute)); err != nil {
		t.Fatal(err)
	}
	var validationErr *ValidationError
	if err := f.service.ResetPassword(ctx, "expired-token", &models.ResetPasswordRequest{Password: "newsecret"}); !errors.As(err, &validationErr) {
		t.Errorf("Expected expired token to be rejected, got %v", err)
	}
}

func TestProfile(t *testing.T) {
	user := &models.User{ID: bson.NewObjectID(), Name: "Ravi", Phone: "111"}
	f := newUserFixture(t, user)
	ctx := context.Background()

	name := "  Ravi K "
	updated, err := f.service.UpdateProfile(ctx, user.ID.Hex(), &models.UpdateProfileRequest{Name: &name})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Ravi K" || updated.Phone != "111" {
		t.Errorf("Unexpected profile %+v", updated)
	}

	blank := "   "
	var validationErr *ValidationError
	if _, err := f.service.UpdateProfile(ctx, user.ID.Hex(), &models.UpdateProfileRequest{Name: &blank}); !errors.As(err, &validationErr) {
		t.Errorf("Expected blank name rejected, got %v", err)
	}

	if _, err := f.service.GetProfile(ctx, bson.NewObjectID().Hex()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestGrantSubscription(t *testing.T) {
	user := &models.User{ID: bson.NewObjectID()}
	f := newUserFixture(t, user)
	ctx := context.Background()
	future := time.Now().Add(30 * 24 * time.Hour)

	sub, err := f.service.GrantSubscription(ctx, user.ID.Hex(), &models.GrantSubscriptionRequest{
		Category:  "Advanced",
		Section:   "Proficiency",
		ExpiresAt: future,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.users.Get(user.ID).HasAccess(models.CategoryAdvanced, "Proficiency", time.Now()) {
		t.Errorf("Expected access after grant %+v", sub)
	}

	testCases := []struct {
		name   string
		userID string
		req    models.GrantSubscriptionRequest
		check  func(error) bool
	}{
		{"section outside category", user.ID.Hex(), models.GrantSubscriptionRequest{Category: "Advanced", Section: "Beginner", ExpiresAt: future}, isValidationError},
		{"past expiry", user.ID.Hex(), models.GrantSubscriptionRequest{Category: "Advanced", Section: "Advanced", ExpiresAt: time.Now().Add(-time.Hour)}, isValidationError},
		{"unknown user", bson.NewObjectID().Hex(), models.GrantSubscriptionRequest{Category: "Advanced", Section: "Advanced", ExpiresAt: future}, func(err error) bool { return errors.Is(err, ErrNotFound) }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.service.GrantSubscription(ctx, tc.userID, &tc.req); !tc.check(err) {
				t.Errorf("Unexpected error %v", err)
			}
		})
	}
}

func isValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

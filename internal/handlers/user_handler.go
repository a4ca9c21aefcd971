package handlers

import (
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/middleware"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/models"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/service"

	"github.com/gofiber/fiber/v3"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) RegisterRoutes(app *fiber.App, auth fiber.Handler) {
	users := app.Group("/api/user")

	// PUBLIC ROUTES
	users.Post("/register", h.Register)
	users.Post("/login", h.Login)
	users.Post("/forgot-password", h.ForgotPassword)
	users.Post("/reset-password/:token", h.ResetPassword)

	// PROTECTED ROUTES
	users.Post("/logout", h.Logout, auth)
	users.Get("/profile", h.GetProfile, auth)
	users.Put("/profile", h.UpdateProfile, auth)

	app.Post("/api/admin/users/:userId/subscriptions", h.GrantSubscription, auth, middleware.AdminRequired())
}

func (h *UserHandler) Register(c fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.Bind().Body(&req); err != nil {
		return badBody(c)
	}

	ctx, cancel := requestContext(writeTimeout)
	defer cancel()

	user, err := h.userService.Register(ctx, &req)
	if err != nil {
		return respondError(c, err, "register user")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

func (h *UserHandler) Login(c fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.Bind().Body(&req); err != nil {
		return badBody(c)
	}

	ctx, cancel := requestContext(readTimeout)
	defer cancel()

	resp, err := h.userService.Login(ctx, &req)
	if err != nil {
		return respondError(c, err, "login")
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *UserHandler) Logout(c fiber.Ctx) error {
	ctx, cancel := requestContext(readTimeout)
	defer cancel()

	if err := h.userService.Logout(ctx, middleware.Claims(c)); err != nil {
		return respondError(c, err, "logout")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

func (h *UserHandler) GetProfile(c fiber.Ctx) error {
	ctx, cancel := requestContext(readTimeout)
	defer cancel()

	user, err := h.userService.GetProfile(ctx, middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "load profile")
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

func (h *UserHandler) UpdateProfile(c fiber.Ctx) error {
	var req models.UpdateProfileRequest
	if err := c.Bind().Body(&req); err != nil {
		return badBody(c)
	}

	ctx, cancel := requestContext(writeTimeout)
	defer cancel()

	user, err := h.userService.UpdateProfile(ctx, middleware.UserID(c), &req)
	if err != nil {
		return respondError(c, err, "update profile")
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

func (h *UserHandler) ForgotPassword(c fiber.Ctx) error {
	var req models.ForgotPasswordRequest
	if err := c.Bind().Body(&req); err != nil {
		return badBody(c)
	}

	ctx, cancel := requestContext(writeTimeout)
	defer cancel()

	if err := h.userService.ForgotPassword(ctx, &req); err != nil {
		return respondError(c, err, "request password reset")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "If the email is registered, a reset link has been sent",
	})
}

func (h *UserHandler) ResetPassword(c fiber.Ctx) error {
	var req models.ResetPasswordRequest
	if err := c.Bind().Body(&req); err != nil {
		return badBody(c)
	}

	ctx, cancel := requestContext(writeTimeout)
	defer cancel()

	if err := h.userService.ResetPassword(ctx, c.Params("token"), &req); err != nil {
		return respondError(c, err, "reset password")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Password has been reset",
	})
}

func (h *UserHandler) GrantSubscription(c fiber.Ctx) error {
	var req models.GrantSubscriptionRequest
	if err := c.Bind().Body(&req); err != nil {
		return badBody(c)
	}

	ctx, cancel := requestContext(writeTimeout)
	defer cancel()

	sub, err := h.userService.GrantSubscription(ctx, c.Params("userId"), &req)
	if err != nil {
		return respondError(c, err, "grant subscription")
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

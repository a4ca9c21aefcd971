package handlers

import (
	"strconv"

	"github.com/Ayush-an/Exam-Buddy-sub000/internal/middleware"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/models"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/service"

	"github.com/gofiber/fiber/v3"
)

type ExamHandler struct {
	attemptService *service.AttemptService
	reviewService  *service.ReviewService
	catalogService *service.CatalogService
}

func NewExamHandler(attemptService *service.AttemptService, reviewService *service.ReviewService, catalogService *service.CatalogService) *ExamHandler {
	return &ExamHandler{
		attemptService: attemptService,
		reviewService:  reviewService,
		catalogService: catalogService,
	}
}

func (h *ExamHandler) RegisterRoutes(app *fiber.App, auth fiber.Handler) {
	// Route middleware runs in order before the handler.
	userGroup := app.Group("/api/user")
	userGroup.Post("/submit-exam-results", h.SubmitExamResults, auth)
	userGroup.Get("/exam-history", h.GetExamHistory, auth)
	userGroup.Get("/exam-review/:userId/:examAttemptId", h.GetExamReview, auth, middleware.OwnerOrAdminRequired("userId"))

	app.Get("/api/questions/:category/:section/:set", h.GetExamQuestions, auth)
}

func (h *ExamHandler) SubmitExamResults(c fiber.Ctx) error {
	var req models.SubmitExamRequest
	if err := c.Bind().Body(&req); err != nil {
		return badBody(c)
	}

	if req.UserID != "" && req.UserID != middleware.UserID(c) && !middleware.IsAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Cannot submit results for another user",
		})
	}

	ctx, cancel := requestContext(writeTimeout)
	defer cancel()

	recorded, err := h.attemptService.Submit(ctx, &req)
	if err != nil {
		return respondError(c, err, "submit exam results")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Exam results submitted successfully",
		"examResult": recorded.Result(),
	})
}

func (h *ExamHandler) GetExamReview(c fiber.Ctx) error {
	ctx, cancel := requestContext(readTimeout)
	defer cancel()

	review, err := h.reviewService.Review(ctx, c.Params("userId"), c.Params("examAttemptId"))
	if err != nil {
		return respondError(c, err, "load exam review")
	}
	return c.Status(fiber.StatusOK).JSON(review)
}

func (h *ExamHandler) GetExamHistory(c fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	ctx, cancel := requestContext(readTimeout)
	defer cancel()

	history, err := h.attemptService.History(ctx, middleware.UserID(c), page, limit)
	if err != nil {
		return respondError(c, err, "load exam history")
	}
	return c.Status(fiber.StatusOK).JSON(history)
}

func (h *ExamHandler) GetExamQuestions(c fiber.Ctx) error {
	ctx, cancel := requestContext(readTimeout)
	defer cancel()

	session, err := h.catalogService.ExamSession(ctx, middleware.UserID(c), c.Params("category"), c.Params("section"), c.Params("set"))
	if err != nil {
		return respondError(c, err, "load exam questions")
	}
	return c.Status(fiber.StatusOK).JSON(session)
}

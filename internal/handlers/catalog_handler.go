package handlers

import (
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/middleware"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/models"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/service"

	"github.com/gofiber/fiber/v3"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) RegisterRoutes(app *fiber.App, auth fiber.Handler) {
	admin := middleware.AdminRequired()

	// PUBLIC ROUTES
	papers := app.Group("/api/question-papers")
	papers.Get("/", h.ListPapers)
	papers.Get("/:category", h.GetPaper)

	// ADMIN ROUTES
	papers.Put("/:category", h.UpsertPaper, auth, admin)
	papers.Post("/:category/sections", h.AddSection, auth, admin)
	papers.Put("/:category/sections/:section", h.UpdateSection, auth, admin)
	papers.Delete("/:category/sections/:section", h.DeleteSection, auth, admin)
	papers.Post("/:category/sections/:section/sets", h.AddSet, auth, admin)
	papers.Put("/:category/sections/:section/sets/:set", h.UpdateSet, auth, admin)
	papers.Delete("/:category/sections/:section/sets/:set", h.DeleteSet, auth, admin)

	questions := app.Group("/api/questions")
	questions.Post("/", h.CreateQuestion, auth, admin)
	questions.Get("/id/:id", h.GetQuestion, auth, admin)
	questions.Put("/id/:id", h.UpdateQuestion, auth, admin)
	questions.Delete("/id/:id", h.DeleteQuestion, auth, admin)
	questions.Get("/admin/:category/:section/:set", h.ListQuestions, auth, admin)
}

func (h *CatalogHandler) ListPapers(c fiber.Ctx) error {
	ctx, cancel := requestContext(readTimeout)
	defer cancel()

	papers, err := h.catalogService.ListPapers(ctx)
	if err != nil {
		return respondError(c, err, "list question papers")
	}
	return c.Status(fiber.StatusOK).JSON(papers)
}

func (h *CatalogHandler) GetPaper(c fiber.Ctx) error {
	ctx, cancel := requestContext(readTimeout)
	defer cancel()

	paper, err := h.catalogService.GetPaper(ctx, c.Params("category"))
	if err != nil {
		return respondError(c, err, "load question paper")
	}
	return c.Status(fiber.StatusOK).JSON(paper)
}

func (h *CatalogHandler) UpsertPaper(c fiber.Ctx) error {
	var req models.UpsertPaperRequest
	if err := c.Bind().Body(&req); err != nil {
		return badBody(c)
	}

	ctx, cancel := requestContext(writeTimeout)
	defer cancel()

	paper, err := h.catalogService.UpsertQuestionPaper(ctx, c.Params("category"), req.Sections)
	if err != nil {
		return respondError(c, err, "save question paper")
	}
	return c.Status(fiber.StatusOK).JSON(paper)
}

func (h *CatalogHandler) AddSection(c fiber.Ctx) error {
	var section models.Section
	if err := c.Bind().Body(&section); err != nil {
		return badBody(c)
	}

	ctx, cancel := requestContext(writeTimeout)
	defer cancel()

	paper, err := h.catalogService.AddSection(ctx, c.Params("category"), section)
	if err != nil {
		return respondError(c, err, "add section")
	}
	return c.Status(fiber.StatusCreated).JSON(paper)
}

func (h *CatalogHandler) UpdateSection(c fiber.Ctx) error {
	var section models.Section
	if err := c.Bind().Body(&section); err != nil {
		return badBody(c)
	}

	ctx, cancel := requestContext(writeTimeout)
	defer cancel()

	paper, err := h.catalogService.UpdateSection(ctx, c.Params("category"), c.Params("section"), section)
	if err != nil {
		return respondError(c, err, "update section")
	}
	return c.Status(fiber.StatusOK).JSON(paper)
}

func (h *CatalogHandler) DeleteSection(c fiber.Ctx) error {
	ctx, cancel := requestContext(writeTimeout)
	defer cancel()

	paper, err := h.catalogService.DeleteSection(ctx, c.Params("category"), c.Params("section"))
	if err != nil {
		return respondError(c, err, "delete section")
	}
	return c.Status(fiber.StatusOK).JSON(paper)
}

func (h *CatalogHandler) AddSet(c fiber.Ctx) error {
	var req models.SetRequest
	if err := c.Bind().Body(&req); err != nil {
		return badBody(c)
	}

	ctx, cancel := requestContext(writeTimeout)
	defer cancel()

	set := models.Set{Name: req.Name, TimeLimitMinutes: req.TimeLimitMinutes}
	paper, err := h.catalogService.AddSet(ctx, c.Params("category"), c.Params("section"), set)
	if err != nil {
		return respondError(c, err, "add set")
	}
	return c.Status(fiber.StatusCreated).JSON(paper)
}

func (h *CatalogHandler) UpdateSet(c fiber.Ctx) error {
	var req models.SetRequest
	if err := c.Bind().Body(&req); err != nil {
		return badBody(c)
	}

	ctx, cancel := requestContext(writeTimeout)
	defer cancel()

	set := models.Set{Name: req.Name, TimeLimitMinutes: req.TimeLimitMinutes}
	paper, err := h.catalogService.UpdateSet(ctx, c.Params("category"), c.Params("section"), c.Params("set"), set)
	if err != nil {
		return respondError(c, err, "update set")
	}
	return c.Status(fiber.StatusOK).JSON(paper)
}

func (h *CatalogHandler) DeleteSet(c fiber.Ctx) error {
	ctx, cancel := requestContext(writeTimeout)
	defer cancel()

	paper, err := h.catalogService.DeleteSet(ctx, c.Params("category"), c.Params("section"), c.Params("set"))
	if err != nil {
		return respondError(c, err, "delete set")
	}
	return c.Status(fiber.StatusOK).JSON(paper)
}

func (h *CatalogHandler) CreateQuestion(c fiber.Ctx) error {
	var req models.QuestionRequest
	if err := c.Bind().Body(&req); err != nil {
		return badBody(c)
	}

	ctx, cancel := requestContext(writeTimeout)
	defer cancel()

	question, err := h.catalogService.CreateQuestion(ctx, &req)
	if err != nil {
		return respondError(c, err, "create question")
	}
	return c.Status(fiber.StatusCreated).JSON(question)
}

func (h *CatalogHandler) GetQuestion(c fiber.Ctx) error {
	ctx, cancel := requestContext(readTimeout)
	defer cancel()

	question, err := h.catalogService.GetQuestion(ctx, c.Params("id"))
	if err != nil {
		return respondError(c, err, "load question")
	}
	return c.Status(fiber.StatusOK).JSON(question)
}

func (h *CatalogHandler) UpdateQuestion(c fiber.Ctx) error {
	var req models.QuestionRequest
	if err := c.Bind().Body(&req); err != nil {
		return badBody(c)
	}

	ctx, cancel := requestContext(writeTimeout)
	defer cancel()

	question, err := h.catalogService.UpdateQuestion(ctx, c.Params("id"), &req)
	if err != nil {
		return respondError(c, err, "update question")
	}
	return c.Status(fiber.StatusOK).JSON(question)
}

func (h *CatalogHandler) DeleteQuestion(c fiber.Ctx) error {
	ctx, cancel := requestContext(writeTimeout)
	defer cancel()

	if err := h.catalogService.DeleteQuestion(ctx, c.Params("id")); err != nil {
		return respondError(c, err, "delete question")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Question deleted successfully",
	})
}

func (h *CatalogHandler) ListQuestions(c fiber.Ctx) error {
	ctx, cancel := requestContext(readTimeout)
	defer cancel()

	questions, err := h.catalogService.ListQuestions(ctx, c.Params("category"), c.Params("section"), c.Params("set"))
	if err != nil {
		return respondError(c, err, "list questions")
	}
	return c.Status(fiber.StatusOK).JSON(questions)
}

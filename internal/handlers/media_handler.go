package handlers

import (
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/middleware"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/service"

	"github.com/gofiber/fiber/v3"
)

type MediaHandler struct {
	mediaService *service.MediaService
}

func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

func (h *MediaHandler) RegisterRoutes(app *fiber.App, auth fiber.Handler) {
	uploads := app.Group("/api/uploads")
	uploads.Post("/", h.Upload, auth, middleware.AdminRequired())
	uploads.Get("/url/+", h.GetURL, auth)
	uploads.Delete("/+", h.Delete, auth, middleware.AdminRequired())
}

func (h *MediaHandler) Upload(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file provided",
			"field": "file",
		})
	}
	kind := service.MediaKind(c.FormValue("kind", string(service.MediaImage)))

	ctx, cancel := requestContext(writeTimeout)
	defer cancel()

	object, err := h.mediaService.Upload(ctx, kind, fileHeader)
	if err != nil {
		return respondError(c, err, "upload media")
	}
	return c.Status(fiber.StatusCreated).JSON(object)
}

func (h *MediaHandler) GetURL(c fiber.Ctx) error {
	ctx, cancel := requestContext(readTimeout)
	defer cancel()

	url, err := h.mediaService.URL(ctx, c.Params("+"))
	if err != nil {
		return respondError(c, err, "presign media")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"url": url})
}

func (h *MediaHandler) Delete(c fiber.Ctx) error {
	ctx, cancel := requestContext(writeTimeout)
	defer cancel()

	if err := h.mediaService.Delete(ctx, c.Params("+")); err != nil {
		return respondError(c, err, "delete media")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Media deleted successfully",
	})
}

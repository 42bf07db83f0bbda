package controller

import (
	"github.com/Gatu-1548/plagio-ia/internal/dto"
	"github.com/Gatu-1548/plagio-ia/internal/entity"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/serverutils"
	"github.com/Gatu-1548/plagio-ia/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router, requireSession fiber.Handler)
	Show(ctx *fiber.Ctx) error
	Track(ctx *fiber.Ctx) error
	StopTracking(ctx *fiber.Ctx) error
	Tracking(ctx *fiber.Ctx) error
}

type documentController struct {
	service service.IDocumentService
}

func NewDocumentController(service service.IDocumentService) IDocumentController {
	return &documentController{service: service}
}

func (c *documentController) RegisterRoutes(r fiber.Router, requireSession fiber.Handler) {
	h := r.Group("/documents", requireSession)
	h.Get("/tracking", c.Tracking)
	h.Get("/:id", c.Show)
	h.Post("/:id/track", c.Track)
	h.Delete("/:id/track", c.StopTracking)
}

func (c *documentController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Show(ctx.UserContext(), serverutils.Workspace(ctx), entity.ID(ctx.Params("id")))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show document", res))
}

func (c *documentController) Track(ctx *fiber.Ctx) error {
	var req dto.TrackDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res := c.service.Track(ctx.UserContext(), serverutils.Workspace(ctx), entity.ID(ctx.Params("id")), &req)
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Tracking document", res))
}

func (c *documentController) StopTracking(ctx *fiber.Ctx) error {
	res := c.service.StopTracking(serverutils.Workspace(ctx))
	return ctx.JSON(serverutils.SuccessResponse("Tracking stopped", res))
}

func (c *documentController) Tracking(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Tracking status", c.service.Tracking(serverutils.Workspace(ctx))))
}

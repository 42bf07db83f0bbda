package controller

import (
	"github.com/Gatu-1548/plagio-ia/internal/dto"
	"github.com/Gatu-1548/plagio-ia/internal/entity"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/serverutils"
	"github.com/Gatu-1548/plagio-ia/internal/service"

	"github.com/gofiber/fiber/v2"
)

// IBIController serves the analytics dashboards. Every route is scoped to
// the tab's active organization.
type IBIController interface {
	RegisterRoutes(r fiber.Router, requireSession fiber.Handler)
}

type biController struct {
	service service.IBIService
}

func NewBIController(service service.IBIService) IBIController {
	return &biController{service: service}
}

func (c *biController) RegisterRoutes(r fiber.Router, requireSession fiber.Handler) {
	h := r.Group("/bi", requireSession)
	h.Get("/kpis", c.GlobalKpis)
	h.Get("/kpis/users", c.KpisByUser)
	h.Get("/kpis/projects/:id", c.KpisByProject)
	h.Get("/history", c.GlobalHistory)
	h.Get("/history/users", c.HistoryByUser)
	h.Get("/history/projects/:id", c.ProjectHistory)
	h.Get("/top-risk/users", c.TopRiskByUser)
	h.Get("/trends", c.RiskTrends)
	h.Get("/trends/users/:userId", c.RiskTrends)
}

func (c *biController) GlobalKpis(ctx *fiber.Ctx) error {
	res, err := c.service.GlobalKpis(ctx.UserContext(), serverutils.Workspace(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Global KPIs", res))
}

func (c *biController) KpisByUser(ctx *fiber.Ctx) error {
	res, err := c.service.KpisByUser(ctx.UserContext(), serverutils.Workspace(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("User KPIs", res))
}

func (c *biController) KpisByProject(ctx *fiber.Ctx) error {
	res, err := c.service.KpisByProject(ctx.UserContext(), serverutils.Workspace(ctx), entity.ID(ctx.Params("id")))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Project KPIs", res))
}

func (c *biController) GlobalHistory(ctx *fiber.Ctx) error {
	res, err := c.service.GlobalHistory(ctx.UserContext(), serverutils.Workspace(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Global history", res))
}

func (c *biController) HistoryByUser(ctx *fiber.Ctx) error {
	res, err := c.service.HistoryByUser(ctx.UserContext(), serverutils.Workspace(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("User history", res))
}

func (c *biController) ProjectHistory(ctx *fiber.Ctx) error {
	var q dto.ProjectHistoryQuery
	if err := ctx.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(q); err != nil {
		return err
	}

	res, err := c.service.ProjectHistory(ctx.UserContext(), serverutils.Workspace(ctx), entity.ID(ctx.Params("id")), q.StartDate, q.EndDate)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Project history", res))
}

func (c *biController) TopRiskByUser(ctx *fiber.Ctx) error {
	res, err := c.service.TopRiskByUser(ctx.UserContext(), serverutils.Workspace(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Top risk documents", res))
}

// RiskTrends defaults to the signed-in user when no :userId is given.
func (c *biController) RiskTrends(ctx *fiber.Ctx) error {
	var q dto.RiskTrendQuery
	if err := ctx.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(q); err != nil {
		return err
	}

	var userID int64
	if ctx.Params("userId") != "" {
		id, err := ctx.ParamsInt("userId")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid user id")
		}
		userID = int64(id)
	}

	res, err := c.service.RiskTrends(ctx.UserContext(), serverutils.Workspace(ctx), userID, q.Period)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Risk trends", res))
}

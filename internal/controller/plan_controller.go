// FILE: internal/controller/plan_controller.go
// Controller for plan catalogue endpoints
package controller

import (
	"github.com/Gatu-1548/plagio-ia/internal/dto"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/serverutils"
	"github.com/Gatu-1548/plagio-ia/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PlanController interface {
	RegisterRoutes(api fiber.Router, requireSession fiber.Handler)
}

type planController struct {
	planService service.PlanService
}

func NewPlanController(planService service.PlanService) PlanController {
	return &planController{
		planService: planService,
	}
}

func (c *planController) RegisterRoutes(api fiber.Router, requireSession fiber.Handler) {
	plans := api.Group("/plans", requireSession)
	plans.Get("", c.GetAllPlans)
	plans.Post("", c.CreatePlan)
	plans.Get("/:id", c.GetPlan)
	plans.Patch("/:id", c.UpdatePlan)
	plans.Patch("/:id/active", c.SetActive)
	plans.Delete("/:id", c.DeletePlan)
}

// GetAllPlans returns the whole catalogue, inactive plans included
// @Summary List subscription plans
// @Tags Plans
// @Produce json
// @Success 200 {object} []entity.Plan
// @Router /api/plans [get]
func (c *planController) GetAllPlans(ctx *fiber.Ctx) error {
	plans, err := c.planService.List(ctx.UserContext(), serverutils.Workspace(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Plans retrieved", plans))
}

func (c *planController) GetPlan(ctx *fiber.Ctx) error {
	plan, err := c.planService.Show(ctx.UserContext(), serverutils.Workspace(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Plan retrieved", plan))
}

func (c *planController) CreatePlan(ctx *fiber.Ctx) error {
	var req dto.CreatePlanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	plan, err := c.planService.Create(ctx.UserContext(), serverutils.Workspace(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Plan created", plan))
}

// UpdatePlan applies a partial update; omitted fields keep their value
// @Summary Update a plan
// @Tags Plans
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Router /api/plans/{id} [patch]
func (c *planController) UpdatePlan(ctx *fiber.Ctx) error {
	var req dto.PlanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	plan, err := c.planService.Update(ctx.UserContext(), serverutils.Workspace(ctx), ctx.Params("id"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Plan updated", plan))
}

func (c *planController) SetActive(ctx *fiber.Ctx) error {
	var req dto.PlanActiveRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	plan, err := c.planService.SetActive(ctx.UserContext(), serverutils.Workspace(ctx), ctx.Params("id"), *req.Value)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Plan updated", plan))
}

func (c *planController) DeletePlan(ctx *fiber.Ctx) error {
	if err := c.planService.Delete(ctx.UserContext(), serverutils.Workspace(ctx), ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Plan deleted", nil))
}

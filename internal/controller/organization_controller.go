package controller

import (
	"github.com/Gatu-1548/plagio-ia/internal/dto"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/serverutils"
	"github.com/Gatu-1548/plagio-ia/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IOrganizationController interface {
	RegisterRoutes(r fiber.Router, requireSession fiber.Handler)
}

type organizationController struct {
	service service.IOrganizationService
}

func NewOrganizationController(service service.IOrganizationService) IOrganizationController {
	return &organizationController{service: service}
}

func (c *organizationController) RegisterRoutes(r fiber.Router, requireSession fiber.Handler) {
	h := r.Group("/organizations", requireSession)
	h.Get("", c.GetAll)
	h.Post("", c.Create)

	// the active organization of the tab
	h.Get("/current", c.Current)
	h.Put("/current", c.Select)
	h.Delete("/current", c.ClearCurrent)

	h.Get("/:id", c.Show)
	h.Patch("/:id", c.Update)
	h.Delete("/:id", c.Delete)
	h.Get("/:id/members", c.Members)
	h.Get("/:id/members/count", c.CountMembers)
	h.Post("/:id/members", c.AddMember)
	h.Post("/:id/subscriptions", c.Subscribe)
}

func (c *organizationController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.service.List(ctx.UserContext(), serverutils.Workspace(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get all organizations", res))
}

func (c *organizationController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Show(ctx.UserContext(), serverutils.Workspace(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show organization", res))
}

func (c *organizationController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateOrganizationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.UserContext(), serverutils.Workspace(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create organization", res))
}

func (c *organizationController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateOrganizationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Update(ctx.UserContext(), serverutils.Workspace(ctx), ctx.Params("id"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update organization", res))
}

func (c *organizationController) Delete(ctx *fiber.Ctx) error {
	if err := c.service.Delete(ctx.UserContext(), serverutils.Workspace(ctx), ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete organization", nil))
}

func (c *organizationController) Members(ctx *fiber.Ctx) error {
	var q dto.MemberListQuery
	if err := ctx.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(q); err != nil {
		return err
	}

	res, err := c.service.Members(ctx.UserContext(), serverutils.Workspace(ctx), ctx.Params("id"), &q)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get members", res))
}

func (c *organizationController) CountMembers(ctx *fiber.Ctx) error {
	res, err := c.service.CountMembers(ctx.UserContext(), serverutils.Workspace(ctx), ctx.Params("id"), ctx.Query("status"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success count members", res))
}

func (c *organizationController) AddMember(ctx *fiber.Ctx) error {
	var req dto.AddMemberRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.AddMember(ctx.UserContext(), serverutils.Workspace(ctx), ctx.Params("id"), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Member added", res))
}

func (c *organizationController) Subscribe(ctx *fiber.Ctx) error {
	var req dto.CreateSubscriptionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Subscribe(ctx.UserContext(), serverutils.Workspace(ctx), ctx.Params("id"), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Subscription created", res))
}

func (c *organizationController) Current(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Active organization", c.service.Current(serverutils.Workspace(ctx))))
}

func (c *organizationController) Select(ctx *fiber.Ctx) error {
	var req dto.SelectOrganizationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Select(ctx.UserContext(), serverutils.Workspace(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Organization selected", res))
}

func (c *organizationController) ClearCurrent(ctx *fiber.Ctx) error {
	if err := c.service.ClearCurrent(ctx.UserContext(), serverutils.Workspace(ctx)); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Organization cleared", nil))
}

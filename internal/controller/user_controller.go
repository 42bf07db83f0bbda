// FILE: internal/controller/user_controller.go
package controller

import (
	"github.com/Gatu-1548/plagio-ia/internal/dto"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/serverutils"
	"github.com/Gatu-1548/plagio-ia/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router, requireSession fiber.Handler)
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	FindByEmail(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	DeleteByEmail(ctx *fiber.Ctx) error
}

type userController struct {
	service service.IUserService
}

func NewUserController(service service.IUserService) IUserController {
	return &userController{service: service}
}

func (c *userController) RegisterRoutes(r fiber.Router, requireSession fiber.Handler) {
	h := r.Group("/users", requireSession)
	h.Get("", c.GetAll)
	h.Post("", c.Create)
	h.Get("/by-email", c.FindByEmail)
	h.Delete("/by-email", c.DeleteByEmail)
	h.Get("/:id", c.Show)
	h.Put("/:id", c.Update)
}

func (c *userController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.service.List(ctx.UserContext(), serverutils.Workspace(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get all users", res))
}

func (c *userController) Show(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid user id")
	}

	res, err := c.service.Show(ctx.UserContext(), serverutils.Workspace(ctx), int64(id))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show user", res))
}

func (c *userController) FindByEmail(ctx *fiber.Ctx) error {
	email := ctx.Query("email")
	if email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Query parameter email is required")
	}

	res, err := c.service.FindByEmail(ctx.UserContext(), serverutils.Workspace(ctx), email)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show user", res))
}

func (c *userController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateUserRequest
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
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create user", res))
}

func (c *userController) Update(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid user id")
	}

	var req dto.UpdateUserRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Update(ctx.UserContext(), serverutils.Workspace(ctx), int64(id), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update user", res))
}

func (c *userController) DeleteByEmail(ctx *fiber.Ctx) error {
	email := ctx.Query("email")
	if email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Query parameter email is required")
	}

	if err := c.service.DeleteByEmail(ctx.UserContext(), serverutils.Workspace(ctx), email); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete user", nil))
}

// FILE: internal/controller/auth_controller.go
package controller

import (
	"github.com/Gatu-1548/plagio-ia/internal/dto"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/serverutils"
	"github.com/Gatu-1548/plagio-ia/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Register(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
	Session(ctx *fiber.Ctx) error
}

type authController struct {
	service service.IAuthService
}

func NewAuthController(service service.IAuthService) IAuthController {
	return &authController{service: service}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Post("/register", c.Register)
	h.Post("/login", c.Login)
	h.Post("/logout", c.Logout)
	h.Get("/session", c.Session)
}

func (c *authController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Register(ctx.UserContext(), serverutils.Workspace(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Account registered", res))
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Login(ctx.UserContext(), serverutils.Workspace(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Signed in", res))
}

func (c *authController) Logout(ctx *fiber.Ctx) error {
	ws := serverutils.Workspace(ctx)
	if err := c.service.Logout(ctx.UserContext(), ws); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Signed out", c.service.Session(ws)))
}

func (c *authController) Session(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Current session", c.service.Session(serverutils.Workspace(ctx))))
}

package controller

import (
	"github.com/Gatu-1548/plagio-ia/internal/dto"
	"github.com/Gatu-1548/plagio-ia/internal/entity"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/serverutils"
	"github.com/Gatu-1548/plagio-ia/internal/service"
	"github.com/Gatu-1548/plagio-ia/pkg/gateway"

	"github.com/gofiber/fiber/v2"
)

// UploadField is the multipart field the console reads the PDF from.
const UploadField = "documento"

type IProjectController interface {
	RegisterRoutes(r fiber.Router, requireSession fiber.Handler)
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Upload(ctx *fiber.Ctx) error
	DeleteDocument(ctx *fiber.Ctx) error
}

type projectController struct {
	projects  service.IProjectService
	documents service.IDocumentService
}

func NewProjectController(projects service.IProjectService, documents service.IDocumentService) IProjectController {
	return &projectController{projects: projects, documents: documents}
}

func (c *projectController) RegisterRoutes(r fiber.Router, requireSession fiber.Handler) {
	h := r.Group("/projects", requireSession)
	h.Get("", c.GetAll)
	h.Post("", c.Create)
	h.Get("/:id", c.Show)
	h.Put("/:id", c.Update)
	h.Delete("/:id", c.Delete)
	h.Post("/:id/documents", c.Upload)
	h.Delete("/:projectId/documents/:id", c.DeleteDocument)
}

func (c *projectController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.projects.List(ctx.UserContext(), serverutils.Workspace(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get all projects", res))
}

func (c *projectController) Show(ctx *fiber.Ctx) error {
	res, err := c.projects.Show(ctx.UserContext(), serverutils.Workspace(ctx), entity.ID(ctx.Params("id")))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show project", res))
}

func (c *projectController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateProjectRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.projects.Create(ctx.UserContext(), serverutils.Workspace(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create project", res))
}

func (c *projectController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateProjectRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.projects.Update(ctx.UserContext(), serverutils.Workspace(ctx), entity.ID(ctx.Params("id")), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update project", res))
}

func (c *projectController) Delete(ctx *fiber.Ctx) error {
	id := entity.ID(ctx.Params("id"))
	if err := c.projects.Delete(ctx.UserContext(), serverutils.Workspace(ctx), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete project", fiber.Map{"proyecto_id": id}))
}

// Upload reads the multipart field "documento" and hands it to the upload
// lifecycle. The response returns once the gateway accepted the file;
// analysis progress arrives over the websocket.
func (c *projectController) Upload(ctx *fiber.Ctx) error {
	header, err := ctx.FormFile(UploadField)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing multipart field \""+UploadField+"\"")
	}
	f, err := header.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	// Generic binary types say nothing; the content sniff decides.
	contentType := header.Header.Get(fiber.HeaderContentType)
	if contentType == fiber.MIMEOctetStream {
		contentType = ""
	}

	res, err := c.documents.Upload(ctx.UserContext(), serverutils.Workspace(ctx), entity.ID(ctx.Params("id")), gateway.UploadFile{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: contentType,
		Reader:      f,
	})
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Document uploaded", res))
}

func (c *projectController) DeleteDocument(ctx *fiber.Ctx) error {
	res, err := c.documents.Delete(ctx.UserContext(), serverutils.Workspace(ctx), entity.ID(ctx.Params("projectId")), entity.ID(ctx.Params("id")))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete document", res))
}

package controller

import (
	"legalai-be/internal/dto"
	"legalai-be/internal/pkg/serverutils"
	"legalai-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	pdfFileName  = "legal_document.pdf"
	docxFileName = "legal_document.docx"
	docxMIME     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

type IDraftController interface {
	RegisterRoutes(r *serverutils.GuardedRouter)
	Show(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
	ExportPDF(ctx *fiber.Ctx) error
	ExportDOCX(ctx *fiber.Ctx) error
}

type draftController struct {
	service service.IDraftService
}

func NewDraftController(service service.IDraftService) IDraftController {
	return &draftController{service: service}
}

func (c *draftController) RegisterRoutes(r *serverutils.GuardedRouter) {
	h := r.Group("/draft")
	h.Get("", c.Show)
	h.Post("", c.Create)
	h.Delete("", c.Reset)
	h.Get("/export/pdf", c.ExportPDF)
	h.Get("/export/docx", c.ExportDOCX)
}

func (c *draftController) Show(ctx *fiber.Ctx) error {
	res := c.service.Get(ctx.UserContext(), serverutils.SubjectFrom(ctx))
	return ctx.JSON(serverutils.SuccessResponse("Success get draft", res))
}

// Create blocks until the document is generated; progress also goes out as draft.state frames.
func (c *draftController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateDraftRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}

	res, err := c.service.Submit(ctx.UserContext(), serverutils.SubjectFrom(ctx), &req)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success generate draft", res))
}

func (c *draftController) Reset(ctx *fiber.Ctx) error {
	res := c.service.Reset(ctx.UserContext(), serverutils.SubjectFrom(ctx))
	return ctx.JSON(serverutils.SuccessResponse("Success reset draft", res))
}

func (c *draftController) ExportPDF(ctx *fiber.Ctx) error {
	data, err := c.service.ExportPDF(ctx.UserContext(), serverutils.SubjectFrom(ctx))
	if err != nil {
		return httpError(err)
	}
	ctx.Attachment(pdfFileName)
	ctx.Set(fiber.HeaderContentType, "application/pdf")
	return ctx.Send(data)
}

func (c *draftController) ExportDOCX(ctx *fiber.Ctx) error {
	data, err := c.service.ExportDOCX(ctx.UserContext(), serverutils.SubjectFrom(ctx))
	if err != nil {
		return httpError(err)
	}
	ctx.Attachment(docxFileName)
	ctx.Set(fiber.HeaderContentType, docxMIME)
	return ctx.Send(data)
}

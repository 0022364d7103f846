package controller

import (
	"fmt"
	"mime/multipart"

	"legalai-be/internal/pkg/serverutils"
	"legalai-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const missingFileMessage = "Please select a file to summarise."

type ISummaryController interface {
	RegisterRoutes(r *serverutils.GuardedRouter)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	File(ctx *fiber.Ctx) error
	ReplaceFile(ctx *fiber.Ctx) error
	Retry(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type summaryController struct {
	service service.ISummaryService
}

func NewSummaryController(service service.ISummaryService) ISummaryController {
	return &summaryController{service: service}
}

func (c *summaryController) RegisterRoutes(r *serverutils.GuardedRouter) {
	h := r.Group("/summary")
	h.Post("", c.Create)
	h.Get("/:id", c.Show)
	h.Get("/:id/file", c.File)
	h.Put("/:id/file", c.ReplaceFile)
	h.Post("/:id/retry", c.Retry)
	h.Delete("/:id", c.Delete)
}

func formFile(ctx *fiber.Ctx) (*multipart.FileHeader, multipart.File, error) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return nil, nil, serverutils.NewHTTPError(fiber.StatusBadRequest, missingFileMessage, err)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, serverutils.NewHTTPError(fiber.StatusBadRequest, missingFileMessage, err)
	}
	return fh, f, nil
}

func (c *summaryController) Create(ctx *fiber.Ctx) error {
	fh, f, err := formFile(ctx)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := c.service.Create(ctx.UserContext(), serverutils.SubjectFrom(ctx), fh.Filename, fh.Header.Get(fiber.HeaderContentType), f)
	if err != nil {
		return httpError(err)
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Success queue summary", res))
}

func (c *summaryController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Get(ctx.UserContext(), serverutils.SubjectFrom(ctx), ctx.Params("id"))
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get summary", res))
}

// File streams the uploaded document for inline preview.
func (c *summaryController) File(ctx *fiber.Ctx) error {
	handle, err := c.service.File(ctx.UserContext(), serverutils.SubjectFrom(ctx), ctx.Params("id"))
	if err != nil {
		return httpError(err)
	}
	f, err := handle.Open()
	if err != nil {
		return httpError(err)
	}

	ctx.Set(fiber.HeaderContentType, handle.Info.Type)
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", handle.Info.Name))
	return ctx.SendStream(f, int(handle.Info.Size))
}

func (c *summaryController) ReplaceFile(ctx *fiber.Ctx) error {
	fh, f, err := formFile(ctx)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := c.service.ReplaceFile(ctx.UserContext(), serverutils.SubjectFrom(ctx), ctx.Params("id"), fh.Filename, fh.Header.Get(fiber.HeaderContentType), f)
	if err != nil {
		return httpError(err)
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Success replace summary file", res))
}

func (c *summaryController) Retry(ctx *fiber.Ctx) error {
	res, err := c.service.Retry(ctx.UserContext(), serverutils.SubjectFrom(ctx), ctx.Params("id"))
	if err != nil {
		return httpError(err)
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Success retry summary", res))
}

func (c *summaryController) Delete(ctx *fiber.Ctx) error {
	if err := c.service.Remove(ctx.UserContext(), serverutils.SubjectFrom(ctx), ctx.Params("id")); err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete summary", nil))
}

package controller

import (
	"io"

	"legalai-be/internal/dto"
	"legalai-be/internal/pkg/serverutils"
	"legalai-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IShareController interface {
	RegisterRoutes(r *serverutils.GuardedRouter)
	Share(ctx *fiber.Ctx) error
}

type shareController struct {
	service service.IShareService
}

func NewShareController(service service.IShareService) IShareController {
	return &shareController{service: service}
}

func (c *shareController) RegisterRoutes(r *serverutils.GuardedRouter) {
	r.Post("/share", c.Share)
}

func (c *shareController) Share(ctx *fiber.Ctx) error {
	req := dto.ShareRequest{RecipientEmail: ctx.FormValue("recipient_email")}

	var upload *service.Upload
	if fh, err := ctx.FormFile("file"); err == nil {
		upload = &service.Upload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Open:        func() (io.ReadCloser, error) { return fh.Open() },
		}
	}

	res, err := c.service.Share(ctx.UserContext(), serverutils.SubjectFrom(ctx), &req, upload)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("File sent successfully", res))
}

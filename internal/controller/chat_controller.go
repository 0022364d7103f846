package controller

import (
	"legalai-be/internal/dto"
	"legalai-be/internal/pkg/serverutils"
	"legalai-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r *serverutils.GuardedRouter)
	History(ctx *fiber.Ctx) error
	Send(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r *serverutils.GuardedRouter) {
	h := r.Group("/chat")
	h.Get("", c.History)
	h.Post("", c.Send)
	h.Delete("", c.Reset)
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	res := c.service.Transcript(ctx.UserContext(), serverutils.SubjectFrom(ctx))
	return ctx.JSON(serverutils.SuccessResponse("Success get chat", res))
}

func (c *chatController) Send(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Send(ctx.UserContext(), serverutils.SubjectFrom(ctx), &req)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success send chat", res))
}

func (c *chatController) Reset(ctx *fiber.Ctx) error {
	res := c.service.Reset(ctx.UserContext(), serverutils.SubjectFrom(ctx))
	return ctx.JSON(serverutils.SuccessResponse("Success reset chat", res))
}

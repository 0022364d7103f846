package controller

import (
	"legalai-be/internal/dto"
	"legalai-be/internal/pkg/serverutils"
	"legalai-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type INavigationController interface {
	RegisterRoutes(r *serverutils.GuardedRouter)
	Menu(ctx *fiber.Ctx) error
	Resolve(ctx *fiber.Ctx) error
}

type navigationController struct {
	service  service.INavigationService
	sessions *serverutils.SessionReader
}

func NewNavigationController(service service.INavigationService, sessions *serverutils.SessionReader) INavigationController {
	return &navigationController{service: service, sessions: sessions}
}

func (c *navigationController) RegisterRoutes(r *serverutils.GuardedRouter) {
	h := r.Group("/navigation")
	h.Get("/menu", c.Menu)
	h.Get("/resolve", c.Resolve)
}

func (c *navigationController) Menu(ctx *fiber.Ctx) error {
	res := c.service.Menu(ctx.UserContext(), serverutils.SubjectFrom(ctx))
	return ctx.JSON(serverutils.SuccessResponse("Success get menu", res))
}

// Resolve is public: it answers for whatever session the caller presents, including none.
func (c *navigationController) Resolve(ctx *fiber.Ctx) error {
	var req dto.ResolveRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Resolve(ctx.UserContext(), req.Path, c.sessions.Read(ctx))
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success resolve route", res))
}

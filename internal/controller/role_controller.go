package controller

import (
	"legalai-be/internal/dto"
	"legalai-be/internal/pkg/serverutils"
	"legalai-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IRoleController interface {
	RegisterRoutes(r *serverutils.GuardedRouter)
	Get(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
}

type roleController struct {
	service service.IRoleService
}

func NewRoleController(service service.IRoleService) IRoleController {
	return &roleController{service: service}
}

func (c *roleController) RegisterRoutes(r *serverutils.GuardedRouter) {
	h := r.Group("/role")
	h.Get("", c.Get)
	h.Put("", c.Update)
}

func (c *roleController) Get(ctx *fiber.Ctx) error {
	res := c.service.Get(ctx.UserContext(), serverutils.SubjectFrom(ctx))
	return ctx.JSON(serverutils.SuccessResponse("Success get role", res))
}

func (c *roleController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateRoleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Set(ctx.UserContext(), serverutils.SubjectFrom(ctx), &req)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update role", res))
}

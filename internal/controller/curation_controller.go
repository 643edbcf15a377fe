package controller

import (
	"errors"

	"vibe-curation-be/internal/dto"
	"vibe-curation-be/internal/pkg/serverutils"
	"vibe-curation-be/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type ICurationController interface {
	RegisterRoutes(r fiber.Router)
	StartSession(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Accept(ctx *fiber.Ctx) error
	Reject(ctx *fiber.Ctx) error
	Analyze(ctx *fiber.Ctx) error
	Research(ctx *fiber.Ctx) error
}

type curationController struct {
	curationService service.ICurationService
	validate        *validator.Validate
}

func NewCurationController(curationService service.ICurationService) ICurationController {
	return &curationController{
		curationService: curationService,
		validate:        validator.New(),
	}
}

func (c *curationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/curation")
	h.Post("sessions", c.StartSession)
	h.Get("sessions/:id", c.Show)
	h.Delete("sessions/:id", c.Delete)
	h.Post("sessions/:id/accept", c.Accept)
	h.Post("sessions/:id/reject", c.Reject)
	h.Post("sessions/:id/analyze", c.Analyze)
	h.Post("sessions/:id/research", c.Research)
}

func (c *curationController) StartSession(ctx *fiber.Ctx) error {
	userID, _ := ctx.Locals("user_id").(string)

	var req dto.StartSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "invalid request body"))
	}
	if err := c.validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, err.Error()))
	}

	res, err := c.curationService.StartSession(ctx.Context(), userID, req.SeedQuery)
	if err != nil {
		return c.mapError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse(res))
}

func (c *curationController) Show(ctx *fiber.Ctx) error {
	res, err := c.curationService.GetSession(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return c.mapError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse(res))
}

func (c *curationController) Delete(ctx *fiber.Ctx) error {
	if err := c.curationService.DeleteSession(ctx.Context(), ctx.Params("id")); err != nil {
		return c.mapError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse(nil))
}

func (c *curationController) Accept(ctx *fiber.Ctx) error {
	var req dto.SlotActionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "invalid request body"))
	}
	if err := c.validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, err.Error()))
	}

	res, err := c.curationService.Accept(ctx.Context(), ctx.Params("id"), *req.Slot)
	if err != nil {
		return c.mapError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse(res))
}

func (c *curationController) Reject(ctx *fiber.Ctx) error {
	var req dto.SlotActionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "invalid request body"))
	}
	if err := c.validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, err.Error()))
	}

	res, err := c.curationService.Reject(ctx.Context(), ctx.Params("id"), *req.Slot)
	if err != nil {
		return c.mapError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse(res))
}

func (c *curationController) Analyze(ctx *fiber.Ctx) error {
	var req dto.AnalyzeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "invalid request body"))
	}
	if err := c.validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, err.Error()))
	}

	res, err := c.curationService.Analyze(ctx.Context(), ctx.Params("id"), req.Text)
	if err != nil {
		return c.mapError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse(res))
}

func (c *curationController) Research(ctx *fiber.Ctx) error {
	var req dto.ResearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "invalid request body"))
	}
	if err := c.validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, err.Error()))
	}

	res, err := c.curationService.Research(ctx.Context(), ctx.Params("id"), req.Text)
	if err != nil {
		return c.mapError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse(res))
}

func (c *curationController) mapError(ctx *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrSessionNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(fiber.StatusNotFound, err.Error()))
	}
	return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, err.Error()))
}

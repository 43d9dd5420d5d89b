package promotion

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

// RegisterAdminRoutes expects r to be guarded by the admin role check.
func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/promotions", h.list)
	r.Post("/promotions", h.create)
	r.Patch("/promotions/:id<int>", h.setActive)
	r.Delete("/promotions/:id<int>", h.delete)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrDuplicateCode):
		return fiber.StatusConflict
	case errors.Is(err, ErrInvalidPromotion):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *Handler) list(c *fiber.Ctx) error {
	promos, err := h.service.List(c.UserContext())
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"message": err.Error()})
	}
	active, err := h.service.ActiveCount(c.UserContext())
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{"promotions": promos, "activeCount": active})
}

func (h *Handler) create(c *fiber.Ctx) error {
	var p Promotion
	if err := c.BodyParser(&p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	created, err := h.service.Create(c.UserContext(), p)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"message": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

type activeRequest struct {
	Active *bool `json:"active"`
}

func (h *Handler) setActive(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	var req activeRequest
	if err := c.BodyParser(&req); err != nil || req.Active == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "active is required"})
	}
	p, err := h.service.SetActive(c.UserContext(), id, *req.Active)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(p)
}

func (h *Handler) delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"message": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

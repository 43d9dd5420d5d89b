package inventory

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/grocery-delivery-backend/internal/product"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

// RegisterAdminRoutes expects r to be guarded by the admin role check.
func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/inventory", h.list)
	r.Patch("/inventory/:id<int>", h.adjust)
}

func (h *Handler) list(c *fiber.Ctx) error {
	f := Filter{Query: c.Query("q"), Status: Status(c.Query("status"))}
	if cat := c.Query("category"); cat != "" {
		id, err := strconv.Atoi(cat)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid category"})
		}
		f.CategoryID = id
	}
	items, err := h.service.List(c.UserContext(), f)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	summary, err := h.service.Summary(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{"items": items, "summary": summary})
}

type adjustRequest struct {
	Stock *int `json:"stock"`
}

func (h *Handler) adjust(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	var req adjustRequest
	if err := c.BodyParser(&req); err != nil || req.Stock == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "stock is required"})
	}

	item, err := h.service.AdjustStock(c.UserContext(), id, *req.Stock)
	switch {
	case errors.Is(err, product.ErrInvalidStock):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, product.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(item)
}

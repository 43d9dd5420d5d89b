package report

import "github.com/gofiber/fiber/v2"

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

// RegisterAdminRoutes expects r to be guarded by the admin role check.
func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/dashboard", h.dashboard)
	r.Get("/reports/top-products", h.topProducts)
}

func (h *Handler) dashboard(c *fiber.Ctx) error {
	d, err := h.service.Dashboard(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(d)
}

func (h *Handler) topProducts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", DefaultTopProducts)
	if limit <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "limit must be positive"})
	}
	top, err := h.service.TopProducts(c.UserContext(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(top)
}

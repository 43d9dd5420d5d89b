package dispatch

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/grocery-delivery-backend/internal/order"
	"github.com/wichananm65/grocery-delivery-backend/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

// RegisterAdminRoutes expects r to be guarded by the admin role check.
func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/drivers", h.listDrivers)
	r.Get("/drivers/available", h.listAvailable)
	r.Post("/orders/:id<int>/assign", h.assign)
}

// RegisterDriverRoutes expects r to be guarded by the driver role check.
func (h *Handler) RegisterDriverRoutes(r fiber.Router) {
	r.Get("/deliveries", h.deliveries)
	r.Post("/orders/:id<int>/delivered", h.delivered)
	r.Get("/earnings", h.earnings)
}

func writeError(c *fiber.Ctx, err error) error {
	status := order.HTTPStatus(err)
	if errors.Is(err, ErrNotAssigned) {
		status = fiber.StatusForbidden
	}
	return c.Status(status).JSON(fiber.Map{"message": err.Error()})
}

func (h *Handler) listDrivers(c *fiber.Ctx) error {
	drivers, err := h.service.Drivers(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(drivers)
}

func (h *Handler) listAvailable(c *fiber.Ctx) error {
	drivers, err := h.service.ListAvailable(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(drivers)
}

type assignRequest struct {
	DriverID int `json:"driverId"`
}

func (h *Handler) assign(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	payload := new(assignRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.DriverID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "driverId is required"})
	}

	o, err := h.service.Assign(c.UserContext(), id, payload.DriverID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) deliveries(c *fiber.Ctx) error {
	id, err := user.GetDriverIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "no driver profile"})
	}
	orders, err := h.service.ActiveDeliveries(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(orders)
}

func (h *Handler) delivered(c *fiber.Ctx) error {
	drvID, err := user.GetDriverIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "no driver profile"})
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	o, err := h.service.CompleteDelivery(c.UserContext(), drvID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) earnings(c *fiber.Ctx) error {
	id, err := user.GetDriverIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "no driver profile"})
	}
	e, err := h.service.Earnings(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(e)
}

package order

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/grocery-delivery-backend/internal/address"
	"github.com/wichananm65/grocery-delivery-backend/internal/driver"
	"github.com/wichananm65/grocery-delivery-backend/internal/product"
	"github.com/wichananm65/grocery-delivery-backend/internal/user"
)

// Handler delegates order operations to the order service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Post("/api/v1/orders", h.createOrder)
	r.Get("/api/v1/orders", h.getOrders)
	r.Get("/api/v1/orders/:id<int>", h.getOrder)
	r.Get("/api/v1/orders/:id<int>/tracking", h.getTracking)
	r.Post("/api/v1/orders/:id<int>/cancel", h.cancelOwnOrder)
}

// RegisterAdminRoutes expects r to be guarded by the admin role check.
func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/orders", h.adminList)
	r.Post("/orders/:id<int>/prepare", h.prepare)
	r.Post("/orders/:id<int>/cancel", h.adminCancel)
	r.Post("/orders/:id<int>/delivered", h.adminDelivered)
}

// HTTPStatus maps lifecycle errors to response codes.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, address.ErrNotFound),
		errors.Is(err, driver.ErrNotFound), errors.Is(err, product.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrEmptyCart):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrDriverUnavailable),
		errors.Is(err, product.ErrInsufficientStock):
		return fiber.StatusConflict
	case errors.Is(err, ErrInvalidOrder):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func writeError(c *fiber.Ctx, err error) error {
	return c.Status(HTTPStatus(err)).JSON(fiber.Map{"message": err.Error()})
}

type createOrderRequest struct {
	AddressID int `json:"addressId"`
}

func (h *Handler) createOrder(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(createOrderRequest)
	if len(c.Body()) > 0 {
		if err := c.BodyParser(payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		}
	}

	created, err := h.service.Create(c.UserContext(), userID, payload.AddressID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// getOrders returns the authenticated customer's order history.
func (h *Handler) getOrders(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	f := Filter{UserID: userID}
	if st := c.Query("status"); st != "" {
		parsed, ok := ParseStatus(st)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "unknown status"})
		}
		f.Status = parsed
	}
	orders, err := h.service.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(orders)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	o, err := h.service.GetForUser(c.UserContext(), userID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) getTracking(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	t, err := h.service.Tracking(c.UserContext(), userID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(t)
}

func (h *Handler) cancelOwnOrder(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if _, err := h.service.GetForUser(c.UserContext(), userID, id); err != nil {
		return writeError(c, err)
	}
	o, err := h.service.Cancel(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) adminList(c *fiber.Ctx) error {
	f := Filter{Query: c.Query("q")}
	if st := c.Query("status"); st != "" && st != "all" {
		parsed, ok := ParseStatus(st)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "unknown status"})
		}
		f.Status = parsed
	}
	orders, err := h.service.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"orders": orders, "stats": stats})
}

func (h *Handler) transition(c *fiber.Ctx, fn func(*fiber.Ctx, int) (Order, error)) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	o, err := fn(c, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) prepare(c *fiber.Ctx) error {
	return h.transition(c, func(c *fiber.Ctx, id int) (Order, error) {
		return h.service.StartPreparing(c.UserContext(), id)
	})
}

func (h *Handler) adminCancel(c *fiber.Ctx) error {
	return h.transition(c, func(c *fiber.Ctx, id int) (Order, error) {
		return h.service.Cancel(c.UserContext(), id)
	})
}

func (h *Handler) adminDelivered(c *fiber.Ctx) error {
	return h.transition(c, func(c *fiber.Ctx, id int) (Order, error) {
		return h.service.MarkDelivered(c.UserContext(), id)
	})
}

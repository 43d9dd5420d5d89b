package cart

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/grocery-delivery-backend/internal/promotion"
	"github.com/wichananm65/grocery-delivery-backend/internal/user"
)

// Handler delegates cart operations to the cart service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Get("/api/v1/cart", h.getCart)
	r.Delete("/api/v1/cart", h.clearCart)
	r.Post("/api/v1/cart/items", h.addItem)
	r.Put("/api/v1/cart/items/:productId<int>", h.setQuantity)
	r.Post("/api/v1/cart/promotion", h.applyPromotion)
	r.Delete("/api/v1/cart/promotion", h.removePromotion)
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrNotFound), errors.Is(err, promotion.ErrPromotionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}

// respond renders the priced cart after a successful change.
func (h *Handler) respond(c *fiber.Ctx, userID int) error {
	snap, err := h.service.Snapshot(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(snap)
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	return h.respond(c, userID)
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if err := h.service.Clear(c.UserContext(), userID); err != nil {
		return writeError(c, err)
	}
	return h.respond(c, userID)
}

type cartRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity,omitempty"`
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(cartRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ProductID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}

	if _, err := h.service.AddLine(c.UserContext(), userID, payload.ProductID, payload.Quantity); err != nil {
		return writeError(c, err)
	}
	return h.respond(c, userID)
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *Handler) setQuantity(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	productID, err := c.ParamsInt("productId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	payload := new(quantityRequest)
	if err := c.BodyParser(payload); err != nil || payload.Quantity == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "quantity is required"})
	}

	if _, err := h.service.SetQuantity(c.UserContext(), userID, productID, *payload.Quantity); err != nil {
		return writeError(c, err)
	}
	return h.respond(c, userID)
}

type promotionRequest struct {
	Code string `json:"code"`
}

func (h *Handler) applyPromotion(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(promotionRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if _, err := h.service.ApplyPromotion(c.UserContext(), userID, payload.Code); err != nil {
		return writeError(c, err)
	}
	return h.respond(c, userID)
}

func (h *Handler) removePromotion(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if _, err := h.service.RemovePromotion(c.UserContext(), userID); err != nil {
		return writeError(c, err)
	}
	return h.respond(c, userID)
}

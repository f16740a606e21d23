package order

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"storefront-backend/internal/user"
)

// Handler exposes the checkout workflow and order lifecycle over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/orders", h.checkout)
	app.Post("/api/v1/orders/quote", h.quote)
	app.Get("/api/v1/orders", h.listMine)
	app.Get("/api/v1/orders/:id<[0-9]+>", h.getOrder)
	app.Post("/api/v1/orders/:id<[0-9]+>/cancel", h.cancel)

	app.Get("/api/v1/admin/orders", h.listAll)
	app.Patch("/api/v1/admin/orders/:id<[0-9]+>/status", h.updateStatus)
}

func (h *Handler) checkout(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(CheckoutInput)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	ord, err := h.service.Checkout(userID, *payload)
	if err != nil {
		return checkoutError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(ord)
}

func (h *Handler) quote(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(CheckoutInput)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	draft, err := h.service.Quote(userID, *payload)
	if err != nil {
		return checkoutError(c, err)
	}

	return c.JSON(draft)
}

func (h *Handler) listMine(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	orders, err := h.service.ListByUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(orders)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}

	ord, err := h.service.GetByID(orderID)
	if err != nil {
		return checkoutError(c, err)
	}
	if ord.UserID != userID && !user.IsAdminFromCtx(c) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
	}

	return c.JSON(ord)
}

func (h *Handler) cancel(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}

	ord, err := h.service.Cancel(userID, orderID, user.IsAdminFromCtx(c))
	if err != nil {
		return checkoutError(c, err)
	}

	return c.JSON(ord)
}

func (h *Handler) listAll(c *fiber.Ctx) error {
	if !user.IsAdminFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin only"})
	}

	orders, err := h.service.ListAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(orders)
}

type statusRequest struct {
	Status Status `json:"status"`
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	if !user.IsAdminFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin only"})
	}

	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}

	payload := new(statusRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	ord, err := h.service.UpdateStatus(orderID, payload.Status)
	if err != nil {
		return checkoutError(c, err)
	}

	return c.JSON(ord)
}

// checkoutError maps workflow failures onto HTTP responses. The insufficient
// stock payload names every short product with its available quantity; other
// persistence failures surface as a generic message with no partial order.
func checkoutError(c *fiber.Ctx, err error) error {
	var stockErr *InsufficientStockError
	if errors.As(err, &stockErr) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":   stockErr.Error(),
			"shortages": stockErr.Shortages,
		})
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": validationErr.Message})
	}

	var unknownErr *UnknownProductError
	if errors.As(err, &unknownErr) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": unknownErr.Error()})
	}

	switch err {
	case ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
	case ErrEmptyOrder:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "cart is empty"})
	case ErrNotCancellable, ErrInvalidTransition:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to place order"})
	}
}

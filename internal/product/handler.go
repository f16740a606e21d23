package product

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"storefront-backend/internal/user"
)

// Handler delegates catalog operations to the product service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/products", h.listProducts)
	app.Get("/api/v1/products/categories", h.listCategories)
	app.Get("/api/v1/products/:id<[0-9]+>", h.getProduct)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/admin/products", h.createProduct)
	app.Put("/api/v1/admin/products/:id<[0-9]+>", h.updateProduct)
	app.Delete("/api/v1/admin/products/:id<[0-9]+>", h.deleteProduct)
}

func (h *Handler) listProducts(c *fiber.Ctx) error {
	products, err := h.service.List(c.Query("category"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(products)
}

func (h *Handler) listCategories(c *fiber.Ctx) error {
	categories, err := h.service.Categories()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(categories)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	p, err := h.service.GetByID(id)
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.JSON(p)
}

type productRequest struct {
	Name        string   `json:"productName"`
	Description string   `json:"productDesc"`
	Category    string   `json:"category"`
	Brand       string   `json:"brand"`
	Price       float64  `json:"productPrice"`
	Stock       int      `json:"stock"`
	Pic         *string  `json:"productPic"`
	PicSecond   *string  `json:"productPicSecond"`
	Tags        []string `json:"tags"`
	Rating      float64  `json:"rating"`
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	if !user.IsAdminFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin only"})
	}

	payload := new(productRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "productName is required"})
	}
	if payload.Price < 0 || payload.Stock < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "price and stock must be non-negative"})
	}

	now := time.Now().UTC().Format(time.RFC3339)
	created, err := h.service.Create(Product{
		Name:        payload.Name,
		Description: payload.Description,
		Category:    payload.Category,
		Brand:       payload.Brand,
		Price:       payload.Price,
		Stock:       payload.Stock,
		Pic:         payload.Pic,
		PicSecond:   payload.PicSecond,
		Tags:        payload.Tags,
		Rating:      payload.Rating,
		CreatedAt:   &now,
		UpdatedAt:   &now,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	if !user.IsAdminFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin only"})
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	payload := new(productRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Price < 0 || payload.Stock < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "price and stock must be non-negative"})
	}

	now := time.Now().UTC().Format(time.RFC3339)
	updated, err := h.service.Update(id, Product{
		Name:        payload.Name,
		Description: payload.Description,
		Category:    payload.Category,
		Brand:       payload.Brand,
		Price:       payload.Price,
		Stock:       payload.Stock,
		Pic:         payload.Pic,
		PicSecond:   payload.PicSecond,
		Tags:        payload.Tags,
		Rating:      payload.Rating,
		UpdatedAt:   &now,
	})
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.JSON(updated)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	if !user.IsAdminFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin only"})
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	if err := h.service.Delete(id); err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}

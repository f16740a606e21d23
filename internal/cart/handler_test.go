package cart

import (
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"storefront-backend/internal/product"
)

func makeAppWithCartHandler(h *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			id, err := strconv.Atoi(v)
			if err == nil {
				claims := jwt.MapClaims{"user_id": id}
				tok := &jwt.Token{Claims: claims}
				c.Locals("user", tok)
			}
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return app
}

func makeCartApp() *fiber.App {
	catalog := []product.Product{
		{ID: 1, Name: "P1", Price: 10.00, Stock: 5},
		{ID: 3, Name: "P3", Price: 2.50, Stock: 9},
	}
	repo := NewInMemoryRepository(map[int]map[int]int{42: {1: 1}}, catalog)
	return makeAppWithCartHandler(NewHandler(NewService(repo)))
}

func TestCartRoutes_Basic(t *testing.T) {
	app := makeCartApp()

	// unauthenticated access is blocked
	req := httptest.NewRequest("GET", "/api/v1/cart", nil)
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated GET, got %d", res.StatusCode)
	}

	// the cart hydrates name, price and stock from the catalog
	req2 := httptest.NewRequest("GET", "/api/v1/cart", nil)
	req2.Header.Set("X-User-ID", "42")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for authenticated GET, got %d", res2.StatusCode)
	}
	var items []CartItem
	if err := json.NewDecoder(res2.Body).Decode(&items); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if len(items) != 1 || items[0].Name != "P1" || items[0].Price != 10.00 || items[0].Stock != 5 {
		t.Fatalf("unexpected cart %+v", items)
	}

	// add a second product with quantity 2
	req3 := httptest.NewRequest("POST", "/api/v1/cart", strings.NewReader(`{"productId":3,"quantity":2}`))
	req3.Header.Set("Content-Type", "application/json")
	req3.Header.Set("X-User-ID", "42")
	res3, _ := app.Test(req3)
	if res3.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for add, got %d", res3.StatusCode)
	}
	items = items[:0]
	if err := json.NewDecoder(res3.Body).Decode(&items); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %+v", items)
	}

	// unknown products are rejected
	req4 := httptest.NewRequest("POST", "/api/v1/cart", strings.NewReader(`{"productId":99,"quantity":1}`))
	req4.Header.Set("Content-Type", "application/json")
	req4.Header.Set("X-User-ID", "42")
	res4, _ := app.Test(req4)
	if res4.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", res4.StatusCode)
	}
}

func TestCartRoutes_SetAndRemove(t *testing.T) {
	app := makeCartApp()

	// overwrite the quantity
	req := httptest.NewRequest("PUT", "/api/v1/cart", strings.NewReader(`{"productId":1,"quantity":4}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for set quantity, got %d", res.StatusCode)
	}
	var items []CartItem
	if err := json.NewDecoder(res.Body).Decode(&items); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 4 {
		t.Fatalf("expected quantity 4, got %+v", items)
	}

	// setting zero removes the line
	req2 := httptest.NewRequest("PUT", "/api/v1/cart", strings.NewReader(`{"productId":1,"quantity":0}`))
	req2.Header.Set("Content-Type", "application/json")
	req2.Header.Set("X-User-ID", "42")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for removal, got %d", res2.StatusCode)
	}
	items = items[:0]
	if err := json.NewDecoder(res2.Body).Decode(&items); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty cart, got %+v", items)
	}
}

func TestCartRoutes_Clear(t *testing.T) {
	app := makeCartApp()

	req := httptest.NewRequest("DELETE", "/api/v1/cart", nil)
	req.Header.Set("X-User-ID", "42")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204 for clear, got %d", res.StatusCode)
	}

	req2 := httptest.NewRequest("GET", "/api/v1/cart", nil)
	req2.Header.Set("X-User-ID", "42")
	res2, _ := app.Test(req2)
	var items []CartItem
	if err := json.NewDecoder(res2.Body).Decode(&items); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty cart after clear, got %+v", items)
	}
}

func TestAddToCart_NegativeDecrements(t *testing.T) {
	catalog := []product.Product{{ID: 1, Name: "P1", Price: 10.00, Stock: 5}}
	repo := NewInMemoryRepository(map[int]map[int]int{42: {1: 3}}, catalog)
	service := NewService(repo)

	items, err := service.AddToCart(42, 1, -2)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 1 {
		t.Fatalf("expected quantity 1 after decrement, got %+v", items)
	}

	// dropping to zero removes the line entirely
	items, err = service.AddToCart(42, 1, -1)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty cart, got %+v", items)
	}
}

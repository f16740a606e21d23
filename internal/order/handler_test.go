package order

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"storefront-backend/internal/address"
	"storefront-backend/internal/product"
)

func makeAppWithOrderHandler(h *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			id, err := strconv.Atoi(v)
			if err == nil {
				claims := jwt.MapClaims{"user_id": id}
				if role := c.Get("X-User-Role"); role != "" {
					claims["role"] = role
				}
				tok := &jwt.Token{Claims: claims}
				c.Locals("user", tok)
			}
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return app
}

func makeOrderApp(products []product.Product, stocks map[int]int, carts map[int]map[int]int) (*fiber.App, *InMemoryRepository) {
	repo := NewInMemoryRepository(stocks, carts)
	catalog := product.NewService(product.NewInMemoryRepository(products))
	addresses := address.NewService(address.NewInMemoryRepository(nil))
	svc := NewService(repo, catalog, repo, addresses, 5.00)
	return makeAppWithOrderHandler(NewHandler(svc)), repo
}

func TestOrderRoutes_Checkout(t *testing.T) {
	products := []product.Product{{ID: 1, Name: "P1", Price: 10.00, Stock: 5}}
	app, repo := makeOrderApp(products, map[int]int{1: 5}, map[int]map[int]int{42: {1: 2}})

	// unauthenticated requests are blocked
	req := httptest.NewRequest("POST", "/api/v1/orders", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated checkout, got %d", res.StatusCode)
	}

	body := `{"paymentMethod":"cod","address":{"recipientName":"Jo","phone":"555","line":"12 Main St","city":"Springfield","postalCode":"12345"}}`
	req2 := httptest.NewRequest("POST", "/api/v1/orders", strings.NewReader(body))
	req2.Header.Set("Content-Type", "application/json")
	req2.Header.Set("X-User-ID", "42")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusCreated {
		raw, _ := io.ReadAll(res2.Body)
		t.Fatalf("expected 201 for checkout, got %d: %s", res2.StatusCode, raw)
	}

	var ord Order
	if err := json.NewDecoder(res2.Body).Decode(&ord); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if ord.Total != 25.00 {
		t.Errorf("expected total 25.00, got %v", ord.Total)
	}
	if ord.Status != StatusProcessing {
		t.Errorf("expected status processing, got %s", ord.Status)
	}
	if got := repo.Stock(1); got != 3 {
		t.Errorf("expected stock 3 after checkout, got %d", got)
	}
}

func TestOrderRoutes_InsufficientStockBody(t *testing.T) {
	products := []product.Product{{ID: 2, Name: "P2", Price: 5.00, Stock: 3}}
	app, _ := makeOrderApp(products, map[int]int{2: 3}, map[int]map[int]int{42: {2: 10}})

	body := `{"paymentMethod":"cod","address":{"recipientName":"Jo","line":"12 Main St","city":"Springfield"}}`
	req := httptest.NewRequest("POST", "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 for insufficient stock, got %d", res.StatusCode)
	}

	var payload struct {
		Message   string     `json:"message"`
		Shortages []Shortage `json:"shortages"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(payload.Shortages) != 1 {
		t.Fatalf("expected 1 shortage in body, got %+v", payload)
	}
	s := payload.Shortages[0]
	if s.ProductID != 2 || s.Name != "P2" || s.Requested != 10 || s.Available != 3 {
		t.Errorf("unexpected shortage payload %+v", s)
	}
	if !strings.Contains(payload.Message, "P2") || !strings.Contains(payload.Message, "3") {
		t.Errorf("message must name the product and the available quantity, got %q", payload.Message)
	}
}

func TestOrderRoutes_Quote(t *testing.T) {
	products := []product.Product{{ID: 1, Name: "P1", Price: 10.00, Stock: 5}}
	app, repo := makeOrderApp(products, map[int]int{1: 5}, map[int]map[int]int{42: {1: 2}})

	req := httptest.NewRequest("POST", "/api/v1/orders/quote", strings.NewReader(`{"paymentMethod":"cod"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for quote, got %d", res.StatusCode)
	}

	var draft Draft
	if err := json.NewDecoder(res.Body).Decode(&draft); err != nil {
		t.Fatalf("decode draft: %v", err)
	}
	if draft.Subtotal != 20.00 || draft.ShippingFee != 5.00 || draft.Total != 25.00 {
		t.Errorf("unexpected draft totals %+v", draft)
	}

	// quoting never commits
	if got := repo.Stock(1); got != 5 {
		t.Errorf("quote must not touch stock, got %d", got)
	}
	items, _ := repo.Items(42)
	if len(items) != 1 {
		t.Errorf("quote must not touch the cart, got %v", items)
	}
}

func TestOrderRoutes_GetOrderOwnership(t *testing.T) {
	products := []product.Product{{ID: 1, Name: "P1", Price: 10.00, Stock: 5}}
	app, _ := makeOrderApp(products, map[int]int{1: 5}, map[int]map[int]int{42: {1: 1}})

	body := `{"paymentMethod":"cod","address":{"recipientName":"Jo","line":"12 Main St","city":"Springfield"}}`
	req := httptest.NewRequest("POST", "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("checkout failed: %d", res.StatusCode)
	}
	var ord Order
	_ = json.NewDecoder(res.Body).Decode(&ord)

	path := "/api/v1/orders/" + strconv.Itoa(ord.OrderID)

	// owner can read it
	req2 := httptest.NewRequest("GET", path, nil)
	req2.Header.Set("X-User-ID", "42")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200 for owner, got %d", res2.StatusCode)
	}

	// a stranger sees 404, not 403
	req3 := httptest.NewRequest("GET", path, nil)
	req3.Header.Set("X-User-ID", "43")
	res3, _ := app.Test(req3)
	if res3.StatusCode != fiber.StatusNotFound {
		t.Errorf("expected 404 for non-owner, got %d", res3.StatusCode)
	}

	// admins can read anyone's order
	req4 := httptest.NewRequest("GET", path, nil)
	req4.Header.Set("X-User-ID", "43")
	req4.Header.Set("X-User-Role", "admin")
	res4, _ := app.Test(req4)
	if res4.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200 for admin, got %d", res4.StatusCode)
	}
}

func TestOrderRoutes_AdminStatusUpdate(t *testing.T) {
	products := []product.Product{{ID: 1, Name: "P1", Price: 10.00, Stock: 5}}
	app, _ := makeOrderApp(products, map[int]int{1: 5}, map[int]map[int]int{42: {1: 1}})

	body := `{"paymentMethod":"cod","address":{"recipientName":"Jo","line":"12 Main St","city":"Springfield"}}`
	req := httptest.NewRequest("POST", "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	res, _ := app.Test(req)
	var ord Order
	_ = json.NewDecoder(res.Body).Decode(&ord)

	path := "/api/v1/admin/orders/" + strconv.Itoa(ord.OrderID) + "/status"

	// non-admins are refused
	req2 := httptest.NewRequest("PATCH", path, strings.NewReader(`{"status":"shipped"}`))
	req2.Header.Set("Content-Type", "application/json")
	req2.Header.Set("X-User-ID", "42")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusForbidden {
		t.Errorf("expected 403 for non-admin, got %d", res2.StatusCode)
	}

	req3 := httptest.NewRequest("PATCH", path, strings.NewReader(`{"status":"shipped"}`))
	req3.Header.Set("Content-Type", "application/json")
	req3.Header.Set("X-User-ID", "1")
	req3.Header.Set("X-User-Role", "admin")
	res3, _ := app.Test(req3)
	if res3.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200 for admin status update, got %d", res3.StatusCode)
	}

	// backwards transitions are refused
	req4 := httptest.NewRequest("PATCH", path, strings.NewReader(`{"status":"processing"}`))
	req4.Header.Set("Content-Type", "application/json")
	req4.Header.Set("X-User-ID", "1")
	req4.Header.Set("X-User-Role", "admin")
	res4, _ := app.Test(req4)
	if res4.StatusCode != fiber.StatusConflict {
		t.Errorf("expected 409 for backwards transition, got %d", res4.StatusCode)
	}
}

func TestOrderRoutes_Cancel(t *testing.T) {
	products := []product.Product{{ID: 1, Name: "P1", Price: 10.00, Stock: 5}}
	app, _ := makeOrderApp(products, map[int]int{1: 5}, map[int]map[int]int{42: {1: 1}})

	body := `{"paymentMethod":"cod","address":{"recipientName":"Jo","line":"12 Main St","city":"Springfield"}}`
	req := httptest.NewRequest("POST", "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	res, _ := app.Test(req)
	var ord Order
	_ = json.NewDecoder(res.Body).Decode(&ord)

	path := "/api/v1/orders/" + strconv.Itoa(ord.OrderID) + "/cancel"
	req2 := httptest.NewRequest("POST", path, nil)
	req2.Header.Set("X-User-ID", "42")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for cancel, got %d", res2.StatusCode)
	}

	var cancelled Order
	if err := json.NewDecoder(res2.Body).Decode(&cancelled); err != nil {
		t.Fatalf("decode cancelled order: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Errorf("expected status cancelled, got %s", cancelled.Status)
	}

	// a second cancel conflicts
	res3, _ := app.Test(httptest.NewRequest("POST", path, nil))
	if res3.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401 without auth, got %d", res3.StatusCode)
	}
	req4 := httptest.NewRequest("POST", path, nil)
	req4.Header.Set("X-User-ID", "42")
	res4, _ := app.Test(req4)
	if res4.StatusCode != fiber.StatusConflict {
		t.Errorf("expected 409 for cancelling a cancelled order, got %d", res4.StatusCode)
	}
}

package wishlist

import (
	"testing"

	"storefront-backend/internal/product"
)

func newTestService() *Service {
	catalog := product.NewService(product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "P1", Price: 10.00},
		{ID: 3, Name: "P3", Price: 2.50},
	}))
	return NewService(NewInMemoryRepository(map[int][]int{7: {}}), catalog)
}

func TestWishlist_AddIsIdempotent(t *testing.T) {
	service := newTestService()

	if _, err := service.Add(7, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	ids, err := service.Add(7, 1)
	if err != nil {
		t.Fatalf("re-add failed: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("adding twice must not duplicate, got %v", ids)
	}
}

func TestWishlist_ListHydratesFromCatalog(t *testing.T) {
	service := newTestService()

	service.Add(7, 3)
	service.Add(7, 1)
	service.Add(7, 99) // product no longer in the catalog

	products, err := service.List(7)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 hydrated products, got %+v", products)
	}
	if products[0].ID != 3 || products[0].Name != "P3" {
		t.Errorf("expected insertion order preserved, got %+v", products)
	}
}

func TestWishlist_Remove(t *testing.T) {
	service := newTestService()

	service.Add(7, 1)
	service.Add(7, 3)
	ids, err := service.Remove(7, 1)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != 3 {
		t.Fatalf("expected [3], got %v", ids)
	}

	// removing something absent is a no-op
	ids, err = service.Remove(7, 1)
	if err != nil {
		t.Fatalf("remove of absent id failed: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected [3] unchanged, got %v", ids)
	}
}

package cart

import (
	"errors"
	"sync"

	"storefront-backend/internal/product"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrUnknownProduct = errors.New("product not found")
)

// CartItem is a cart line hydrated with live catalog data.
type CartItem struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"productName"`
	Price     float64 `json:"productPrice"`
	Pic       *string `json:"productPic,omitempty"`
	Stock     int     `json:"stock"`
	Quantity  int     `json:"quantity"`
}

// Repository provides access to cart operations. Quantities are stored per
// product so duplicates increment rather than append.
type Repository interface {
	AddToCart(userID int, productID int, qty int, updatedAt string) ([]CartItem, error)
	SetQuantity(userID int, productID int, qty int, updatedAt string) ([]CartItem, error)
	GetCart(userID int) ([]CartItem, error)
	// GetCartMap returns the raw productID -> quantity map.
	GetCartMap(userID int) (map[int]int, error)
	ClearCart(userID int, updatedAt string) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu      sync.RWMutex
	carts   map[int]map[int]int
	catalog []product.Product
}

func NewInMemoryRepository(carts map[int]map[int]int, catalog []product.Product) *InMemoryRepository {
	if carts == nil {
		carts = map[int]map[int]int{}
	}
	return &InMemoryRepository{carts: carts, catalog: catalog}
}

func (r *InMemoryRepository) lookup(productID int) (product.Product, bool) {
	for _, p := range r.catalog {
		if p.ID == productID {
			return p, true
		}
	}
	return product.Product{}, false
}

func (r *InMemoryRepository) items(userID int) []CartItem {
	out := make([]CartItem, 0, len(r.carts[userID]))
	for pid, qty := range r.carts[userID] {
		item := CartItem{ProductID: pid, Quantity: qty}
		if p, ok := r.lookup(pid); ok {
			item.Name = p.Name
			item.Price = p.Price
			item.Pic = p.Pic
			item.Stock = p.Stock
		}
		out = append(out, item)
	}
	return out
}

func (r *InMemoryRepository) AddToCart(userID int, productID int, qty int, updatedAt string) ([]CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carts[userID]; !ok {
		return nil, ErrNotFound
	}
	if _, ok := r.lookup(productID); !ok {
		return nil, ErrUnknownProduct
	}

	cart := r.carts[userID]
	cart[productID] += qty
	if cart[productID] <= 0 {
		delete(cart, productID)
	}
	return r.items(userID), nil
}

func (r *InMemoryRepository) SetQuantity(userID int, productID int, qty int, updatedAt string) ([]CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carts[userID]; !ok {
		return nil, ErrNotFound
	}
	if _, ok := r.lookup(productID); !ok {
		return nil, ErrUnknownProduct
	}

	if qty <= 0 {
		delete(r.carts[userID], productID)
	} else {
		r.carts[userID][productID] = qty
	}
	return r.items(userID), nil
}

func (r *InMemoryRepository) GetCart(userID int) ([]CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.carts[userID]; !ok {
		return nil, ErrNotFound
	}
	return r.items(userID), nil
}

func (r *InMemoryRepository) GetCartMap(userID int) (map[int]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make(map[int]int, len(cart))
	for pid, qty := range cart {
		out[pid] = qty
	}
	return out, nil
}

func (r *InMemoryRepository) ClearCart(userID int, updatedAt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carts[userID]; !ok {
		return ErrNotFound
	}
	r.carts[userID] = map[int]int{}
	return nil
}

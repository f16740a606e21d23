package order

import "sync"

// CommitOptions controls the side effects applied together with the order
// insert.
type CommitOptions struct {
	// ClearCart empties the user's cart in the same transaction; set for
	// cart-sourced orders, never for buy-now.
	ClearCart bool
	// SaveAddress appends the order's shipping address to the user's saved
	// addresses (deduplicated) when it was newly entered.
	SaveAddress bool
}

// Repository defines persistence for orders. Commit must apply the stock
// decrements, the order insert and the options' side effects atomically:
// either all persist or none do.
type Repository interface {
	Commit(ord Order, opts CommitOptions) (Order, error)
	GetByID(orderID int) (Order, error)
	ListByUser(userID int) ([]Order, error)
	ListAll() ([]Order, error)
	// UpdateStatus flips status only when the stored status still equals
	// from, so a concurrent transition cannot be overwritten.
	UpdateStatus(orderID int, from, to Status, updatedAt string) (Order, error)
}

// InMemoryRepository holds stock, carts and orders behind a single mutex so
// commits form one critical section; used for tests and local scenarios.
type InMemoryRepository struct {
	mu        sync.Mutex
	stocks    map[int]int
	carts     map[int]map[int]int
	addresses map[int][]ShippingAddress
	orders    []Order
	nextID    int
}

func NewInMemoryRepository(stocks map[int]int, carts map[int]map[int]int) *InMemoryRepository {
	if stocks == nil {
		stocks = map[int]int{}
	}
	if carts == nil {
		carts = map[int]map[int]int{}
	}
	return &InMemoryRepository{
		stocks:    stocks,
		carts:     carts,
		addresses: map[int][]ShippingAddress{},
		nextID:    1,
	}
}

func (r *InMemoryRepository) Commit(ord Order, opts CommitOptions) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// re-verify every line against current stock before mutating anything
	shortages := make([]Shortage, 0)
	for _, it := range ord.Items {
		available, ok := r.stocks[it.ProductID]
		if !ok {
			return Order{}, &UnknownProductError{ProductID: it.ProductID}
		}
		if available < it.Quantity {
			shortages = append(shortages, Shortage{
				ProductID: it.ProductID,
				Name:      it.Name,
				Requested: it.Quantity,
				Available: available,
			})
		}
	}
	if len(shortages) > 0 {
		return Order{}, &InsufficientStockError{Shortages: shortages}
	}

	for _, it := range ord.Items {
		r.stocks[it.ProductID] -= it.Quantity
	}

	ord.OrderID = r.nextID
	r.nextID++
	r.orders = append(r.orders, ord)

	if opts.ClearCart {
		r.carts[ord.UserID] = map[int]int{}
	}
	if opts.SaveAddress {
		exists := false
		for _, a := range r.addresses[ord.UserID] {
			if a == ord.ShippingAddress {
				exists = true
				break
			}
		}
		if !exists {
			r.addresses[ord.UserID] = append(r.addresses[ord.UserID], ord.ShippingAddress)
		}
	}

	return ord, nil
}

func (r *InMemoryRepository) GetByID(orderID int) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ord := range r.orders {
		if ord.OrderID == orderID {
			return ord, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) ListByUser(userID int) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Order, 0)
	for _, ord := range r.orders {
		if ord.UserID == userID {
			out = append(out, ord)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) ListAll() ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Order, len(r.orders))
	copy(out, r.orders)
	return out, nil
}

func (r *InMemoryRepository) UpdateStatus(orderID int, from, to Status, updatedAt string) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, ord := range r.orders {
		if ord.OrderID == orderID {
			if ord.Status != from {
				return Order{}, ErrInvalidTransition
			}
			ord.Status = to
			ord.UpdatedAt = updatedAt
			r.orders[i] = ord
			return ord, nil
		}
	}
	return Order{}, ErrNotFound
}

// Items implements the checkout cart source over the repository's own carts.
func (r *InMemoryRepository) Items(userID int) (map[int]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart := r.carts[userID]
	out := make(map[int]int, len(cart))
	for pid, qty := range cart {
		out[pid] = qty
	}
	return out, nil
}

// Stock reports the current stock for a product; test helper.
func (r *InMemoryRepository) Stock(productID int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stocks[productID]
}

// SavedAddresses reports the addresses captured at commit; test helper.
func (r *InMemoryRepository) SavedAddresses(userID int) []ShippingAddress {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ShippingAddress, len(r.addresses[userID]))
	copy(out, r.addresses[userID])
	return out
}

package product

import (
	"errors"
	"sort"
	"sync"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Repository interface {
	List(category string) ([]Product, error)
	GetByID(id int) (Product, error)
	// ListByIDs returns the products whose id is present in ids, ordered the
	// same way as the ids argument. Unknown ids are skipped.
	ListByIDs(ids []int) ([]Product, error)
	Categories() ([]string, error)
	Create(p Product) (Product, error)
	Update(id int, p Product) (Product, error)
	Delete(id int) error
	// DecrementStock atomically subtracts qty with a floor check. It returns
	// ErrInsufficientStock when stock < qty and never drives stock negative.
	DecrementStock(id int, qty int) error
	// RestoreStock adds qty back; the compensation counterpart of DecrementStock.
	RestoreStock(id int, qty int) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu       sync.Mutex
	products []Product
	nextID   int
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	repo := &InMemoryRepository{products: make([]Product, 0, len(seed)), nextID: 1}
	maxID := 0
	for _, p := range seed {
		repo.products = append(repo.products, p)
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	repo.nextID = maxID + 1
	return repo
}

func (r *InMemoryRepository) List(category string) ([]Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Product, 0, len(r.products))
	for _, p := range r.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) GetByID(id int) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) ListByIDs(ids []int) ([]Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		for _, p := range r.products {
			if p.ID == id {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Categories() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, p := range r.products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; !ok {
			seen[p.Category] = struct{}{}
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *InMemoryRepository) Create(p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == 0 {
		p.ID = r.nextID
		r.nextID++
	}
	r.products = append(r.products, p)
	return p, nil
}

func (r *InMemoryRepository) Update(id int, update Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.products {
		if p.ID == id {
			update.ID = id
			r.products[i] = update
			return update, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.products {
		if p.ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) DecrementStock(id int, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.products {
		if p.ID == id {
			if p.Stock < qty {
				return ErrInsufficientStock
			}
			r.products[i].Stock -= qty
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) RestoreStock(id int, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.products {
		if p.ID == id {
			r.products[i].Stock += qty
			return nil
		}
	}
	return ErrNotFound
}

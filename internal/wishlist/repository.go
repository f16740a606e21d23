package wishlist

import (
	"errors"
	"sync"
)

var ErrNotFound = errors.New("user not found")

// Repository stores wishlist entries as plain product id references; there is
// exactly one entry shape, normalized at this boundary.
type Repository interface {
	Add(userID int, productID int, updatedAt string) ([]int, error)
	Remove(userID int, productID int, updatedAt string) ([]int, error)
	List(userID int) ([]int, error)
}

// InMemoryRepository for tests.
type InMemoryRepository struct {
	mu   sync.Mutex
	data map[int][]int // userID -> product ids
}

func NewInMemoryRepository(seed map[int][]int) *InMemoryRepository {
	if seed == nil {
		seed = map[int][]int{}
	}
	return &InMemoryRepository{data: seed}
}

func (r *InMemoryRepository) Add(userID int, productID int, updatedAt string) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids, ok := r.data[userID]
	if !ok {
		return nil, ErrNotFound
	}
	for _, id := range ids {
		if id == productID {
			return append([]int{}, ids...), nil
		}
	}
	r.data[userID] = append(ids, productID)
	return append([]int{}, r.data[userID]...), nil
}

func (r *InMemoryRepository) Remove(userID int, productID int, updatedAt string) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids, ok := r.data[userID]
	if !ok {
		return nil, ErrNotFound
	}
	for i, id := range ids {
		if id == productID {
			r.data[userID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return append([]int{}, r.data[userID]...), nil
}

func (r *InMemoryRepository) List(userID int) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids, ok := r.data[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]int{}, ids...), nil
}

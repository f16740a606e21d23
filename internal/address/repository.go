package address

import (
	"errors"
	"sync"
)

var ErrNotFound = errors.New("address not found")

type Repository interface {
	GetAddresses(userID int) ([]Address, error)
	GetByID(userID int, addressID int) (Address, error)
	// AddIfAbsent inserts the address unless the user already saved a
	// structurally equal one, in which case the existing row is returned.
	AddIfAbsent(addr Address) (Address, error)
	UpdateAddress(addr Address) (Address, error)
	DeleteAddress(userID int, addressID int) error
}

// InMemoryRepository for tests.
type InMemoryRepository struct {
	mu     sync.Mutex
	data   map[int][]Address // keyed by userID
	nextID int
}

func NewInMemoryRepository(seed map[int][]Address) *InMemoryRepository {
	if seed == nil {
		seed = map[int][]Address{}
	}
	maxID := 0
	for _, addrs := range seed {
		for _, a := range addrs {
			if a.AddressID > maxID {
				maxID = a.AddressID
			}
		}
	}
	return &InMemoryRepository{data: seed, nextID: maxID + 1}
}

func (r *InMemoryRepository) GetAddresses(userID int) ([]Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Address, len(r.data[userID]))
	copy(out, r.data[userID])
	return out, nil
}

func (r *InMemoryRepository) GetByID(userID int, addressID int) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.data[userID] {
		if a.AddressID == addressID {
			return a, nil
		}
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) AddIfAbsent(addr Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.data[addr.UserID] {
		if existing.SameLocation(addr) {
			return existing, nil
		}
	}

	addr.AddressID = r.nextID
	r.nextID++
	r.data[addr.UserID] = append(r.data[addr.UserID], addr)
	return addr, nil
}

func (r *InMemoryRepository) UpdateAddress(addr Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, a := range r.data[addr.UserID] {
		if a.AddressID == addr.AddressID {
			addr.CreatedAt = a.CreatedAt
			r.data[addr.UserID][i] = addr
			return addr, nil
		}
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) DeleteAddress(userID int, addressID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	addrs := r.data[userID]
	for i, a := range addrs {
		if a.AddressID == addressID {
			r.data[userID] = append(addrs[:i], addrs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

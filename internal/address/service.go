package address

import (
	"errors"
	"time"
)

var ErrIncomplete = errors.New("recipientName, line and city are required")

// Service orchestrates saved-address operations.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetAddresses(userID int) ([]Address, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.GetAddresses(userID)
}

func (s *Service) GetByID(userID int, addressID int) (Address, error) {
	if userID <= 0 || addressID <= 0 {
		return Address{}, ErrNotFound
	}
	return s.repo.GetByID(userID, addressID)
}

func (s *Service) AddAddress(addr Address) (Address, error) {
	if addr.UserID <= 0 {
		return Address{}, ErrNotFound
	}
	if addr.RecipientName == "" || addr.Line == "" || addr.City == "" {
		return Address{}, ErrIncomplete
	}
	now := time.Now().UTC().Format(time.RFC3339)
	addr.CreatedAt = now
	addr.UpdatedAt = now
	return s.repo.AddIfAbsent(addr)
}

func (s *Service) UpdateAddress(addr Address) (Address, error) {
	if addr.UserID <= 0 || addr.AddressID <= 0 {
		return Address{}, ErrNotFound
	}
	if addr.RecipientName == "" || addr.Line == "" || addr.City == "" {
		return Address{}, ErrIncomplete
	}
	addr.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return s.repo.UpdateAddress(addr)
}

func (s *Service) DeleteAddress(userID int, addressID int) error {
	if userID <= 0 || addressID <= 0 {
		return ErrNotFound
	}
	return s.repo.DeleteAddress(userID, addressID)
}

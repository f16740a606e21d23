package cart

import "time"

// Service orchestrates cart operations.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) AddToCart(userID int, productID int, qty int) ([]CartItem, error) {
	if userID <= 0 || productID <= 0 {
		return nil, ErrNotFound
	}
	// zero qty does nothing, but we still return the current cart
	if qty == 0 {
		return s.repo.GetCart(userID)
	}
	return s.repo.AddToCart(userID, productID, qty, now())
}

func (s *Service) SetQuantity(userID int, productID int, qty int) ([]CartItem, error) {
	if userID <= 0 || productID <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.SetQuantity(userID, productID, qty, now())
}

func (s *Service) GetCart(userID int) ([]CartItem, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.GetCart(userID)
}

// Items exposes the raw product -> quantity map; the checkout draft builder
// consumes this.
func (s *Service) Items(userID int) (map[int]int, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.GetCartMap(userID)
}

func (s *Service) ClearCart(userID int) error {
	if userID <= 0 {
		return ErrNotFound
	}
	return s.repo.ClearCart(userID, now())
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

package wishlist

import (
	"time"

	"storefront-backend/internal/product"
)

// Catalog hydrates wishlist ids with product details.
type Catalog interface {
	ListByIDs(ids []int) ([]product.Product, error)
}

type Service struct {
	repo    Repository
	catalog Catalog
}

func NewService(repo Repository, catalog Catalog) *Service {
	return &Service{repo: repo, catalog: catalog}
}

func (s *Service) Add(userID int, productID int) ([]int, error) {
	if userID <= 0 || productID <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.Add(userID, productID, now())
}

func (s *Service) Remove(userID int, productID int) ([]int, error) {
	if userID <= 0 || productID <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.Remove(userID, productID, now())
}

// List returns the wishlist hydrated with catalog data; ids whose product
// disappeared are omitted from the result.
func (s *Service) List(userID int) ([]product.Product, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	ids, err := s.repo.List(userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []product.Product{}, nil
	}
	return s.catalog.ListByIDs(ids)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

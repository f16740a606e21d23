package product

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(category string) ([]Product, error) {
	return s.repo.List(category)
}

func (s *Service) GetByID(id int) (Product, error) {
	if id <= 0 {
		return Product{}, ErrNotFound
	}
	return s.repo.GetByID(id)
}

func (s *Service) ListByIDs(ids []int) ([]Product, error) {
	return s.repo.ListByIDs(ids)
}

func (s *Service) Categories() ([]string, error) {
	return s.repo.Categories()
}

func (s *Service) Create(p Product) (Product, error) {
	return s.repo.Create(p)
}

func (s *Service) Update(id int, p Product) (Product, error) {
	return s.repo.Update(id, p)
}

func (s *Service) Delete(id int) error {
	return s.repo.Delete(id)
}

func (s *Service) DecrementStock(id int, qty int) error {
	if qty <= 0 {
		return nil
	}
	return s.repo.DecrementStock(id, qty)
}

func (s *Service) RestoreStock(id int, qty int) error {
	if qty <= 0 {
		return nil
	}
	return s.repo.RestoreStock(id, qty)
}

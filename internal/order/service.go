package order

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"storefront-backend/internal/address"
	"storefront-backend/internal/product"
)

// Catalog is the read side of the product store the checkout consumes.
type Catalog interface {
	GetByID(id int) (product.Product, error)
}

// CartSource yields a user's current cart as a productID -> quantity map.
type CartSource interface {
	Items(userID int) (map[int]int, error)
}

// AddressBook resolves a user's saved addresses for checkout.
type AddressBook interface {
	GetByID(userID int, addressID int) (address.Address, error)
}

// Service implements the checkout workflow: draft pricing, validation and the
// atomic commit, plus the status lifecycle.
type Service struct {
	repo      Repository
	catalog   Catalog
	carts     CartSource
	addresses AddressBook
	codFee    float64
}

func NewService(repo Repository, catalog Catalog, carts CartSource, addresses AddressBook, codFee float64) *Service {
	return &Service{repo: repo, catalog: catalog, carts: carts, addresses: addresses, codFee: codFee}
}

// CheckoutInput describes one checkout attempt. A positive ProductID selects
// the buy-now path; otherwise the order is built from the user's cart.
type CheckoutInput struct {
	ProductID int `json:"productId,omitempty"`
	Quantity  int `json:"quantity,omitempty"`

	// AddressID selects a saved address; Address carries a newly entered one.
	AddressID int              `json:"addressId,omitempty"`
	Address   *ShippingAddress `json:"address,omitempty"`

	PaymentMethod  PaymentMethod  `json:"paymentMethod"`
	PaymentDetails PaymentDetails `json:"paymentDetails"`
}

// Draft is a priced, uncommitted order.
type Draft struct {
	Items       []LineItem `json:"items"`
	Subtotal    float64    `json:"subtotal"`
	ShippingFee float64    `json:"shippingFee"`
	Total       float64    `json:"total"`
}

// roundToCent rounds half-up at the cent.
func roundToCent(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// shippingFee is the policy table keyed by payment method: cash on delivery
// carries a flat surcharge, everything else ships free.
func (s *Service) shippingFee(method PaymentMethod) float64 {
	if method == PaymentCOD {
		return s.codFee
	}
	return 0
}

// buildItems assembles line items from the cart or the buy-now input, priced
// from the live catalog. A missing product fails the draft; priced lines are
// never silently dropped.
func (s *Service) buildItems(userID int, in CheckoutInput) ([]LineItem, error) {
	quantities := map[int]int{}

	if in.ProductID > 0 {
		if in.Quantity <= 0 {
			return nil, validationf("quantity must be positive")
		}
		quantities[in.ProductID] = in.Quantity
	} else {
		cart, err := s.carts.Items(userID)
		if err != nil {
			return nil, err
		}
		quantities = cart
	}

	if len(quantities) == 0 {
		return nil, ErrEmptyOrder
	}

	ids := make([]int, 0, len(quantities))
	for pid := range quantities {
		ids = append(ids, pid)
	}
	sort.Ints(ids)

	items := make([]LineItem, 0, len(ids))
	for _, pid := range ids {
		qty := quantities[pid]
		if qty <= 0 {
			return nil, validationf("quantity must be positive")
		}
		p, err := s.catalog.GetByID(pid)
		if err == product.ErrNotFound {
			return nil, &UnknownProductError{ProductID: pid}
		}
		if err != nil {
			return nil, err
		}
		items = append(items, LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  qty,
			Pic:       p.Pic,
		})
	}
	return items, nil
}

func (s *Service) price(items []LineItem, method PaymentMethod) Draft {
	subtotal := 0.0
	for _, it := range items {
		subtotal += it.Price * float64(it.Quantity)
	}
	subtotal = roundToCent(subtotal)
	fee := s.shippingFee(method)
	return Draft{
		Items:       items,
		Subtotal:    subtotal,
		ShippingFee: fee,
		Total:       roundToCent(subtotal + fee),
	}
}

// Quote prices a checkout without committing anything.
func (s *Service) Quote(userID int, in CheckoutInput) (Draft, error) {
	if err := validatePayment(in.PaymentMethod, in.PaymentDetails); err != nil {
		return Draft{}, err
	}
	items, err := s.buildItems(userID, in)
	if err != nil {
		return Draft{}, err
	}
	return s.price(items, in.PaymentMethod), nil
}

func validatePayment(method PaymentMethod, details PaymentDetails) error {
	switch method {
	case PaymentCOD:
		return nil
	case PaymentCard:
		if details.CardNumber == "" || details.CardExpiry == "" || details.CardCVV == "" {
			return validationf("card number, expiry and cvv are required")
		}
		return nil
	case PaymentUPI:
		if details.VPA == "" {
			return validationf("vpa is required")
		}
		return nil
	case PaymentNetbanking:
		if details.Bank == "" {
			return validationf("bank is required")
		}
		return nil
	default:
		return validationf("unknown payment method %q", method)
	}
}

// resolveAddress picks the saved address or validates a newly entered one.
// The second return reports whether the address should be appended to the
// user's address book at commit.
func (s *Service) resolveAddress(userID int, in CheckoutInput) (ShippingAddress, bool, error) {
	if in.AddressID > 0 {
		saved, err := s.addresses.GetByID(userID, in.AddressID)
		if err == address.ErrNotFound {
			return ShippingAddress{}, false, validationf("address %d not found", in.AddressID)
		}
		if err != nil {
			return ShippingAddress{}, false, err
		}
		return ShippingAddress{
			RecipientName: saved.RecipientName,
			Phone:         saved.Phone,
			Line:          saved.Line,
			City:          saved.City,
			PostalCode:    saved.PostalCode,
		}, false, nil
	}

	if in.Address == nil {
		return ShippingAddress{}, false, validationf("shipping address is required")
	}
	if in.Address.RecipientName == "" || in.Address.Line == "" || in.Address.City == "" {
		return ShippingAddress{}, false, validationf("recipientName, line and city are required")
	}
	return *in.Address, true, nil
}

// Checkout runs the full workflow: draft, validate, commit. Stock coverage is
// verified against the live catalog first so obviously doomed orders fail
// before touching the store, and re-verified inside Commit's transaction,
// which is what actually guarantees no oversell under concurrency.
func (s *Service) Checkout(userID int, in CheckoutInput) (Order, error) {
	if err := validatePayment(in.PaymentMethod, in.PaymentDetails); err != nil {
		return Order{}, err
	}

	shipTo, save, err := s.resolveAddress(userID, in)
	if err != nil {
		return Order{}, err
	}

	items, err := s.buildItems(userID, in)
	if err != nil {
		return Order{}, err
	}

	shortages := make([]Shortage, 0)
	for _, it := range items {
		p, err := s.catalog.GetByID(it.ProductID)
		if err == product.ErrNotFound {
			return Order{}, &UnknownProductError{ProductID: it.ProductID}
		}
		if err != nil {
			return Order{}, err
		}
		if p.Stock < it.Quantity {
			shortages = append(shortages, Shortage{
				ProductID: it.ProductID,
				Name:      it.Name,
				Requested: it.Quantity,
				Available: p.Stock,
			})
		}
	}
	if len(shortages) > 0 {
		return Order{}, &InsufficientStockError{Shortages: shortages}
	}

	draft := s.price(items, in.PaymentMethod)
	now := time.Now().UTC().Format(time.RFC3339)
	ord := Order{
		Reference:       uuid.NewString(),
		UserID:          userID,
		Items:           draft.Items,
		Subtotal:        draft.Subtotal,
		ShippingFee:     draft.ShippingFee,
		Total:           draft.Total,
		ShippingAddress: shipTo,
		PaymentMethod:   in.PaymentMethod,
		PaymentDetails:  in.PaymentDetails,
		Status:          StatusProcessing,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	return s.repo.Commit(ord, CommitOptions{
		ClearCart:   in.ProductID <= 0,
		SaveAddress: save,
	})
}

func (s *Service) GetByID(orderID int) (Order, error) {
	if orderID <= 0 {
		return Order{}, ErrNotFound
	}
	return s.repo.GetByID(orderID)
}

func (s *Service) ListByUser(userID int) ([]Order, error) {
	return s.repo.ListByUser(userID)
}

func (s *Service) ListAll() ([]Order, error) {
	return s.repo.ListAll()
}

// Cancel applies the cancellation rules: owners may cancel while processing,
// admins also while shipped. Terminal states never change.
func (s *Service) Cancel(userID int, orderID int, admin bool) (Order, error) {
	ord, err := s.repo.GetByID(orderID)
	if err != nil {
		return Order{}, err
	}
	if !admin && ord.UserID != userID {
		return Order{}, ErrNotFound
	}
	if !CanTransition(ord.Status, StatusCancelled, admin) {
		return Order{}, ErrNotCancellable
	}
	return s.repo.UpdateStatus(orderID, ord.Status, StatusCancelled, time.Now().UTC().Format(time.RFC3339))
}

// UpdateStatus is the admin-driven lifecycle transition.
func (s *Service) UpdateStatus(orderID int, to Status) (Order, error) {
	if !ValidStatus(to) {
		return Order{}, validationf("unknown status %q", to)
	}
	ord, err := s.repo.GetByID(orderID)
	if err != nil {
		return Order{}, err
	}
	if !CanTransition(ord.Status, to, true) {
		return Order{}, ErrInvalidTransition
	}
	return s.repo.UpdateStatus(orderID, ord.Status, to, time.Now().UTC().Format(time.RFC3339))
}

package order

// Status is the order lifecycle state.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// PaymentMethod selects the payment flow. No payment processor is ever
// contacted; details are recorded as entered.
type PaymentMethod string

const (
	PaymentCOD        PaymentMethod = "cod"
	PaymentCard       PaymentMethod = "card"
	PaymentUPI        PaymentMethod = "upi"
	PaymentNetbanking PaymentMethod = "netbanking"
)

// LineItem snapshots name, price and image from the catalog at draft time so
// later catalog edits never rewrite order history.
type LineItem struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"productName"`
	Price     float64 `json:"productPrice"`
	Quantity  int     `json:"quantity"`
	Pic       *string `json:"productPic,omitempty"`
}

// ShippingAddress is embedded in the order as a snapshot, independent of the
// user's saved address book.
type ShippingAddress struct {
	RecipientName string `json:"recipientName"`
	Phone         string `json:"phone"`
	Line          string `json:"line"`
	City          string `json:"city"`
	PostalCode    string `json:"postalCode"`
}

// PaymentDetails carries method-specific sub-fields.
type PaymentDetails struct {
	CardNumber string `json:"cardNumber,omitempty"`
	CardExpiry string `json:"cardExpiry,omitempty"`
	CardCVV    string `json:"cardCvv,omitempty"`
	VPA        string `json:"vpa,omitempty"`
	Bank       string `json:"bank,omitempty"`
}

// Order represents a committed purchase. Items and totals are immutable after
// commit; only Status and UpdatedAt change.
type Order struct {
	OrderID         int             `json:"orderId"`
	Reference       string          `json:"reference"`
	UserID          int             `json:"userId"`
	Items           []LineItem      `json:"items"`
	Subtotal        float64         `json:"subtotal"`
	ShippingFee     float64         `json:"shippingFee"`
	Total           float64         `json:"total"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	PaymentDetails  PaymentDetails  `json:"paymentDetails"`
	Status          Status          `json:"status"`
	CreatedAt       string          `json:"createdAt"`
	UpdatedAt       string          `json:"updatedAt"`
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCompleted || s == StatusCancelled
}

// CanTransition applies the lifecycle rules:
//
//	processing -> shipped -> delivered   (admin, forward only)
//	processing|shipped -> completed      (admin)
//	processing|shipped -> cancelled      (users only from processing)
func CanTransition(from, to Status, admin bool) bool {
	if from.Terminal() || from == to {
		return false
	}
	switch to {
	case StatusShipped:
		return admin && from == StatusProcessing
	case StatusDelivered:
		return admin && from == StatusShipped
	case StatusCompleted:
		return admin && (from == StatusProcessing || from == StatusShipped)
	case StatusCancelled:
		if admin {
			return from == StatusProcessing || from == StatusShipped
		}
		return from == StatusProcessing
	default:
		return false
	}
}

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

package address

type Address struct {
	AddressID     int    `json:"addressId"`
	UserID        int    `json:"userId"`
	RecipientName string `json:"recipientName"`
	Phone         string `json:"phone"`
	Line          string `json:"line"`
	City          string `json:"city"`
	PostalCode    string `json:"postalCode"`
	CreatedAt     string `json:"createdAt,omitempty"`
	UpdatedAt     string `json:"updatedAt,omitempty"`
}

// SameLocation reports structural equality ignoring identity and timestamps.
// It is the dedupe rule for saved addresses.
func (a Address) SameLocation(b Address) bool {
	return a.RecipientName == b.RecipientName &&
		a.Phone == b.Phone &&
		a.Line == b.Line &&
		a.City == b.City &&
		a.PostalCode == b.PostalCode
}

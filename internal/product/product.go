package product

// Product represents a catalog item and maps to the `product` table.
// Stock is mutated only by order commits (guarded decrement) and admin edits.
type Product struct {
	ID          int      `json:"productId"`
	Name        string   `json:"productName"`
	Description string   `json:"productDesc,omitempty"`
	Category    string   `json:"category,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	Price       float64  `json:"productPrice"`
	Stock       int      `json:"stock"`
	Pic         *string  `json:"productPic,omitempty"`
	PicSecond   *string  `json:"productPicSecond,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Rating      float64  `json:"rating"`
	CreatedAt   *string  `json:"createdAt,omitempty"`
	UpdatedAt   *string  `json:"updatedAt,omitempty"`
}

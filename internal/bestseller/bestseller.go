package bestseller

// Item is one row of the top-sellers feed: a product and the quantity sold
// across committed orders.
type Item struct {
	ProductID int      `json:"productId"`
	Sold      int      `json:"sold"`
	Name      *string  `json:"productName,omitempty"`
	Price     *float64 `json:"productPrice,omitempty"`
	Pic       *string  `json:"productPic,omitempty"`
}

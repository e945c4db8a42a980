package domain

// CartItem is a product together with the quantity held in the cart.
// The product fields are flattened into the same JSON object.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// Subtotal returns price * quantity.
func (i CartItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// CloneItems returns a copy of items that shares no memory with the input.
func CloneItems(items []CartItem) []CartItem {
	if items == nil {
		return nil
	}
	out := make([]CartItem, len(items))
	for i, item := range items {
		out[i] = item
		if item.CreatedAt != nil {
			t := *item.CreatedAt
			out[i].CreatedAt = &t
		}
		if item.UpdatedAt != nil {
			t := *item.UpdatedAt
			out[i].UpdatedAt = &t
		}
	}
	return out
}

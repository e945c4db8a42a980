package domain

import "time"

type OrderItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	ImageURL    string  `json:"imageUrl"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// Order is created from a staged checkout snapshot. Only Status changes after creation.
type Order struct {
	ID           string      `json:"id"`
	CustomerName string      `json:"customerName"`
	Email        string      `json:"email"`
	OrderDate    time.Time   `json:"orderDate"`
	Status       OrderStatus `json:"status"`
	TotalAmount  float64     `json:"totalAmount"`
	Items        []OrderItem `json:"items"`
}

// ItemsFromCart maps staged cart items to order lines.
func ItemsFromCart(items []CartItem) []OrderItem {
	out := make([]OrderItem, len(items))
	for i, item := range items {
		out[i] = OrderItem{
			ProductID:   item.ID,
			ProductName: item.Name,
			ImageURL:    item.ImageURL,
			Quantity:    item.Quantity,
			Price:       item.Price,
		}
	}
	return out
}

// TotalOf sums price * quantity over items.
func TotalOf(items []CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

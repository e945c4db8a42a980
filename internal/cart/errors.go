package cart

import "errors"

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrDuplicateItem   = errors.New("duplicate product in cart")
	ErrItemNotInCart   = errors.New("product not in cart")
	ErrInvalidProduct  = errors.New("product id is required")
)

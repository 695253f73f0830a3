package events

const (
	ProductCreated = "product_created"
	ProductUpdated = "product_updated"
	ProductDeleted = "product_deleted"

	CartItemAdded   = "cart_item_added"
	CartItemUpdated = "cart_item_updated"
	CartItemRemoved = "cart_item_removed"

	UserRegistered = "user_registered"
	UserLoggedIn   = "user_logged_in"
	UserUpdated    = "user_updated"
	UserDeleted    = "user_deleted"
)

type ProductEvent struct {
	Type      string  `json:"type"`
	ID        string  `json:"id"`
	ProductID string  `json:"productID"`
	Name      string  `json:"name,omitempty"`
	Category  string  `json:"category,omitempty"`
	Price     float64 `json:"price,omitempty"`
}

type CartEvent struct {
	Type      string `json:"type"`
	UserID    string `json:"userID"`
	ProductID string `json:"productID"`
	Action    string `json:"action,omitempty"`
}

type UserEvent struct {
	Type     string `json:"type"`
	UserID   string `json:"userID"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}

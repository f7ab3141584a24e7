package models

import "encoding/json"

// CheckoutRequest is the storefront's checkout payload. The cart snapshot is
// serialized back into the Stripe session metadata so the webhook can rebuild
// it without any server-side session state.
type CheckoutRequest struct {
	CartItems []CheckoutCartItem `json:"cartItems"`
	Customer  CheckoutCustomer   `json:"customer"`
}

type CheckoutCartItem struct {
	Pass          CheckoutPass `json:"pass"`
	EventActivity *CheckoutRef `json:"eventActivity,omitempty"`
	TimeSlot      *CheckoutRef `json:"timeSlot,omitempty"`
	Quantity      int          `json:"quantity"`
}

type CheckoutPass struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type CheckoutRef struct {
	ID string `json:"id"`
}

type CheckoutCustomer struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// ParseCartMetadata decodes the cart snapshot stored in session metadata.
// Malformed input degrades to an empty list: the webhook must keep its
// idempotency marker and 200 response even when the snapshot is unreadable.
func ParseCartMetadata(raw string) []CheckoutCartItem {
	if raw == "" {
		return nil
	}
	var items []CheckoutCartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	return items
}

// ParseCustomerMetadata decodes the customer snapshot from session metadata.
func ParseCustomerMetadata(raw string) (CheckoutCustomer, bool) {
	var customer CheckoutCustomer
	if raw == "" {
		return customer, false
	}
	if err := json.Unmarshal([]byte(raw), &customer); err != nil {
		return CheckoutCustomer{}, false
	}
	return customer, true
}

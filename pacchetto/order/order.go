// Package order holds the pizza order model, the submission validator and the normalizer
// turning a valid submission into a storable order.
package order

const (
	MethodPickup   = "pickup"
	MethodDelivery = "delivery"

	SizeSmall  = "small"
	SizeMedium = "med"
	SizeLarge  = "large"
	// SizeNone is what the form sends when no size was picked.
	SizeNone = "none"
)

// OrderID is the identity assigned by the store on insert.
type OrderID int64

// Submission is the raw order form. Toppings is empty when none were picked,
// a single scalar form value arrives as a one element slice.
type Submission struct {
	FirstName string   `json:"fname" validate:"notblank"`
	LastName  string   `json:"lname" validate:"notblank"`
	Email     string   `json:"email" validate:"looseemail"`
	Method    string   `json:"method" validate:"required,oneof=pickup delivery"`
	Toppings  []string `json:"toppings"`
	Size      string   `json:"size" validate:"ne=none,oneof=small med large"`
}

type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// NormalizedOrder is a validated submission with its toppings collapsed into one string.
type NormalizedOrder struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Method    string `json:"method"`
	Toppings  string `json:"toppings"`
	Size      string `json:"size"`
}

type PersistedOrder struct {
	ID OrderID `json:"id"`
	NormalizedOrder
}

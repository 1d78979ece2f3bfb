package order

import "strings"

const ToppingsSeparator = ","

// Normalize converts a submission already known to be valid into a storable order.
// Only the toppings are touched, every other field is kept verbatim.
func Normalize(s Submission) NormalizedOrder {
	return NormalizedOrder{
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
		Method:    s.Method,
		Toppings:  JoinToppings(s.Toppings),
		Size:      s.Size,
	}
}

// JoinToppings keeps submission order and duplicates. No toppings gives "".
func JoinToppings(toppings []string) string {
	return strings.Join(toppings, ToppingsSeparator)
}

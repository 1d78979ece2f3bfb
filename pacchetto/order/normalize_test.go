package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinToppings(t *testing.T) {
	tests := []struct {
		name     string
		toppings []string
		want     string
	}{
		{name: "absent", toppings: nil, want: ""},
		{name: "empty", toppings: []string{}, want: ""},
		{name: "scalar", toppings: []string{"cheese"}, want: "cheese"},
		{name: "sequence", toppings: []string{"pepperoni", "olives"}, want: "pepperoni,olives"},
		{name: "duplicates are kept", toppings: []string{"olives", "olives"}, want: "olives,olives"},
		{name: "order is kept", toppings: []string{"basil", "cheese", "anchovies"}, want: "basil,cheese,anchovies"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinToppings(tt.toppings))
		})
	}
}

func TestNormalize(t *testing.T) {
	// Arrange
	s := Submission{
		FirstName: "Ana",
		LastName:  "Lee",
		Email:     "a@b.com",
		Method:    MethodDelivery,
		Toppings:  []string{"cheese", "basil"},
		Size:      SizeMedium,
	}

	// Act
	got := Normalize(s)

	// Assert
	assert.Equal(t, NormalizedOrder{
		FirstName: "Ana",
		LastName:  "Lee",
		Email:     "a@b.com",
		Method:    MethodDelivery,
		Toppings:  "cheese,basil",
		Size:      SizeMedium,
	}, got)
}

func TestNormalizeDoesNotTrim(t *testing.T) {
	s := Submission{FirstName: "  Ana ", LastName: "Lee\t", Email: " a@b.com", Method: MethodPickup, Size: SizeLarge}

	got := Normalize(s)

	assert.Equal(t, "  Ana ", got.FirstName)
	assert.Equal(t, "Lee\t", got.LastName)
	assert.Equal(t, " a@b.com", got.Email)
	assert.Equal(t, "", got.Toppings)
}

func TestNormalizeIsIdempotentOnJoinedToppings(t *testing.T) {
	// Arrange
	first := Normalize(Submission{Toppings: []string{"pepperoni", "olives"}})

	// Act
	second := Normalize(Submission{Toppings: []string{first.Toppings}})

	// Assert
	assert.Equal(t, first.Toppings, second.Toppings)
	assert.Equal(t, "pepperoni,olives", second.Toppings)
}

func TestValidateThenNormalize(t *testing.T) {
	s := Submission{
		FirstName: "Ana",
		LastName:  "Lee",
		Email:     "a@b.com",
		Method:    MethodDelivery,
		Toppings:  []string{"cheese", "basil"},
		Size:      SizeMedium,
	}

	result := Validate(s)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)

	got := Normalize(s)
	assert.Equal(t, "cheese,basil", got.Toppings)
	assert.Equal(t, MethodDelivery, got.Method)
	assert.Equal(t, SizeMedium, got.Size)
}

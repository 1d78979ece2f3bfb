package order

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validSubmission() Submission {
	return Submission{
		FirstName: "Ana",
		LastName:  "Lee",
		Email:     "a@b.com",
		Method:    MethodDelivery,
		Toppings:  []string{"cheese", "basil"},
		Size:      SizeMedium,
	}
}

func TestValidateAcceptsWellFormedSubmissions(t *testing.T) {
	methods := []string{MethodPickup, MethodDelivery}
	sizes := []string{SizeSmall, SizeMedium, SizeLarge}
	toppings := [][]string{nil, {}, {"cheese"}, {"pepperoni", "olives", "olives"}}

	for _, method := range methods {
		for _, size := range sizes {
			for _, tops := range toppings {
				// Arrange
				s := validSubmission()
				s.Method = method
				s.Size = size
				s.Toppings = tops

				// Act
				result := Validate(s)

				// Assert
				assert.True(t, result.IsValid, "method=%s size=%s toppings=%v", method, size, tops)
				assert.NotNil(t, result.Errors)
				assert.Empty(t, result.Errors)
			}
		}
	}
}

func TestValidateFieldRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Submission)
		want   []string
	}{
		{
			name:   "missing first name",
			mutate: func(s *Submission) { s.FirstName = "" },
			want:   []string{MsgFirstNameRequired},
		},
		{
			name:   "whitespace first name",
			mutate: func(s *Submission) { s.FirstName = " \t\n" },
			want:   []string{MsgFirstNameRequired},
		},
		{
			name:   "missing last name",
			mutate: func(s *Submission) { s.LastName = "" },
			want:   []string{MsgLastNameRequired},
		},
		{
			name:   "whitespace last name",
			mutate: func(s *Submission) { s.LastName = "   " },
			want:   []string{MsgLastNameRequired},
		},
		{
			name:   "missing email",
			mutate: func(s *Submission) { s.Email = "" },
			want:   []string{MsgEmailInvalid},
		},
		{
			name:   "whitespace email",
			mutate: func(s *Submission) { s.Email = "  " },
			want:   []string{MsgEmailInvalid},
		},
		{
			name:   "email without at",
			mutate: func(s *Submission) { s.Email = "ana.example.com" },
			want:   []string{MsgEmailInvalid},
		},
		{
			name:   "email without dot",
			mutate: func(s *Submission) { s.Email = "ana@example" },
			want:   []string{MsgEmailInvalid},
		},
		{
			name:   "email check is syntactic only",
			mutate: func(s *Submission) { s.Email = ".@" },
			want:   []string{},
		},
		{
			name:   "missing method",
			mutate: func(s *Submission) { s.Method = "" },
			want:   []string{MsgMethodRequired},
		},
		{
			name:   "unknown method",
			mutate: func(s *Submission) { s.Method = "drone" },
			want:   []string{MsgMethodInvalid},
		},
		{
			name:   "method is case sensitive",
			mutate: func(s *Submission) { s.Method = "Pickup" },
			want:   []string{MsgMethodInvalid},
		},
		{
			name:   "size sentinel",
			mutate: func(s *Submission) { s.Size = SizeNone },
			want:   []string{MsgSizeRequired},
		},
		{
			name:   "unknown size",
			mutate: func(s *Submission) { s.Size = "huge" },
			want:   []string{MsgSizeInvalid},
		},
		{
			name:   "missing size",
			mutate: func(s *Submission) { s.Size = "" },
			want:   []string{MsgSizeInvalid},
		},
		{
			name:   "long names are fine",
			mutate: func(s *Submission) { s.FirstName = strings.Repeat("a", 5000) },
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			s := validSubmission()
			tt.mutate(&s)

			// Act
			result := Validate(s)

			// Assert
			assert.Equal(t, tt.want, result.Errors)
			assert.Equal(t, len(tt.want) == 0, result.IsValid)
		})
	}
}

func TestValidateAccumulatesErrorsInFieldOrder(t *testing.T) {
	// Arrange
	s := Submission{
		FirstName: "",
		LastName:  "Lee",
		Email:     "bad-email",
		Method:    "",
		Size:      SizeNone,
	}

	// Act
	result := Validate(s)

	// Assert
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{
		"First name is required",
		"Email is required and must be valid",
		"Select pickup or delivery",
		"Please select a size",
	}, result.Errors)
}

func TestValidateEmptySubmission(t *testing.T) {
	result := Validate(Submission{})

	assert.False(t, result.IsValid)
	assert.Equal(t, []string{
		MsgFirstNameRequired,
		MsgLastNameRequired,
		MsgEmailInvalid,
		MsgMethodRequired,
		MsgSizeInvalid,
	}, result.Errors)
}

func TestValidateEveryFieldInvalid(t *testing.T) {
	s := Submission{
		FirstName: " ",
		LastName:  "\t",
		Email:     "nope",
		Method:    "teleport",
		Size:      "xl",
	}

	result := NewValidator().Validate(s)

	assert.Equal(t, []string{
		MsgFirstNameRequired,
		MsgLastNameRequired,
		MsgEmailInvalid,
		MsgMethodInvalid,
		MsgSizeInvalid,
	}, result.Errors)
}

func TestNewValidatorRegistersCustomTags(t *testing.T) {
	assert.NotPanics(t, func() { NewValidator() })
}

func TestMustRegisterValidationPanicsOnBadTag(t *testing.T) {
	v := NewValidator()

	assert.Panics(t, func() { mustRegisterValidation(v.validate, "", looseEmail) })
}

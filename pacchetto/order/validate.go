package order

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const (
	MsgFirstNameRequired = "First name is required"
	MsgLastNameRequired  = "Last name is required"
	MsgEmailInvalid      = "Email is required and must be valid"
	MsgMethodRequired    = "Select pickup or delivery"
	MsgMethodInvalid     = "Invalid method value"
	MsgSizeRequired      = "Please select a size"
	MsgSizeInvalid       = "Invalid size value"
)

// rule maps the validator tags that can fail on a field to user facing messages.
type rule struct {
	field    string
	messages map[string]string
	fallback string
}

// rules is evaluated in order, which fixes the order of the reported errors.
var rules = []rule{
	{field: "FirstName", fallback: MsgFirstNameRequired},
	{field: "LastName", fallback: MsgLastNameRequired},
	{field: "Email", fallback: MsgEmailInvalid},
	{field: "Method", messages: map[string]string{"required": MsgMethodRequired}, fallback: MsgMethodInvalid},
	{field: "Size", messages: map[string]string{"ne": MsgSizeRequired}, fallback: MsgSizeInvalid},
}

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()
	mustRegisterValidation(validate, "notblank", validators.NotBlank)
	mustRegisterValidation(validate, "looseemail", looseEmail)
	return &Validator{validate: validate}
}

func mustRegisterValidation(validate *validator.Validate, tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("order: register validation %q: %v", tag, err))
	}
}

// looseEmail only checks that the address is not blank and has an "@" and a "." somewhere.
func looseEmail(fl validator.FieldLevel) bool {
	email := fl.Field().String()
	return strings.TrimSpace(email) != "" &&
		strings.Contains(email, "@") &&
		strings.Contains(email, ".")
}

// Validate runs every field rule and collects all failures.
func (v *Validator) Validate(s Submission) ValidationResult {
	failedTags := make(map[string]string, len(rules))

	var fieldErrs validator.ValidationErrors
	if err := v.validate.Struct(s); errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			failedTags[fe.StructField()] = fe.Tag()
		}
	}

	errs := make([]string, 0, len(failedTags))
	for _, r := range rules {
		tag, failed := failedTags[r.field]
		if !failed {
			continue
		}
		msg, ok := r.messages[tag]
		if !ok {
			msg = r.fallback
		}
		errs = append(errs, msg)
	}

	return ValidationResult{
		IsValid: len(errs) == 0,
		Errors:  errs,
	}
}

var defaultValidator = NewValidator()

// Validate checks s with a shared Validator.
func Validate(s Submission) ValidationResult {
	return defaultValidator.Validate(s)
}

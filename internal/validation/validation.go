package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NonFieldKey is the bucket for violations that span multiple fields.
const NonFieldKey = "non_field_errors"

// Errors accumulates human-readable validation messages keyed by field name.
// Checks never fail fast; every independent violation lands in the same map.
type Errors map[string][]string

func New() Errors {
	return Errors{}
}

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e Errors) AddNonField(message string) {
	e.Add(NonFieldKey, message)
}

func (e Errors) Merge(other Errors) {
	for field, messages := range other {
		e[field] = append(e[field], messages...)
	}
}

func (e Errors) HasErrors() bool {
	return len(e) > 0
}

// RegisterTagNames makes the binding validator report json field names instead
// of Go struct field names, so binding errors key the same way rule errors do.
func RegisterTagNames(v *validator.Validate) {
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
}

// FromBinding translates a Gin binding error into accumulated field errors.
func FromBinding(err error) Errors {
	out := New()
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		out.AddNonField("Invalid request body.")
		return out
	}
	for _, fe := range fieldErrors {
		out.Add(fe.Field(), messageFor(fe))
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "url":
		return "Enter a valid URL."
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	default:
		return "Invalid value."
	}
}

package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// register adds the custom rules and reports fields by their flag label.
func register(validate *validator.Validate) error {
	if err := validate.RegisterValidation("exclusive", validateExclusive); err != nil {
		return fmt.Errorf("registering exclusive validation: %w", err)
	}

	if err := validate.RegisterValidation("mode", validateMode); err != nil {
		return fmt.Errorf("registering mode validation: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		const splitSize = 2

		name := strings.SplitN(fld.Tag.Get("label"), ",", splitSize)[0]
		if name == "-" || name == "" {
			return fld.Name
		}

		return name
	})

	return nil
}

// validateExclusive fails when both the field and the named sibling are non-empty strings.
func validateExclusive(fl validator.FieldLevel) bool {
	field := fl.Field()
	other := fl.Parent().FieldByName(fl.Param())

	if !field.IsValid() || !other.IsValid() {
		return true
	}

	if field.Kind() != reflect.String || other.Kind() != reflect.String {
		return true
	}

	return field.String() == "" || other.String() == ""
}

// validateMode accepts the cipher mode names in any case.
func validateMode(fl validator.FieldLevel) bool {
	switch strings.ToLower(fl.Field().String()) {
	case "ecb", "ctr", "cbc":
		return true
	default:
		return false
	}
}

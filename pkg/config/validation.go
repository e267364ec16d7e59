package config

import (
	"reflect"

	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
)

// Validator is an optional interface configuration structs may implement
// for custom validation. If the struct passed to [Loader.Load] implements
// Validator, Validate is called after required-tag validation succeeds.
//
// Errors that are already [*erperr.Error] are returned unchanged; other
// errors are wrapped with [erperr.CodeValidation].
type Validator interface {
	Validate() error
}

func validate(cfg any, rv reflect.Value) error {
	if err := validateRequired(rv, ""); err != nil {
		return err
	}

	if v, ok := cfg.(Validator); ok {
		if err := v.Validate(); err != nil {
			if _, isERPErr := erperr.AsError(err); isERPErr {
				return err
			}
			return erperr.Wrap(err, erperr.CodeValidation,
				"config: custom validation failed")
		}
	}

	return nil
}

// validateRequired recursively checks that fields tagged `required:"true"`
// hold non-zero values. The path parameter carries the dotted field path
// for error messages (e.g. "Token.PublicKeyPath").
func validateRequired(rv reflect.Value, path string) error {
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rv.Field(i)
		sf := rt.Field(i)

		if !field.CanSet() {
			continue
		}

		fieldPath := sf.Name
		if path != "" {
			fieldPath = path + "." + sf.Name
		}

		if field.Kind() == reflect.Struct {
			if err := validateRequired(field, fieldPath); err != nil {
				return err
			}
			continue
		}

		if sf.Tag.Get("required") != "true" {
			continue
		}

		if field.IsZero() {
			return erperr.Newf(erperr.CodeValidationRequired,
				"config: required field %q is empty", fieldPath)
		}
	}

	return nil
}

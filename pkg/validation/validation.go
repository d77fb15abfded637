// Package validation checks operation inputs against their struct tags.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"taskhub-backend/pkg/apperr"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

var messages = map[string]string{
	"required": "The field '%s' is required.",
	"email":    "The field '%s' must be a valid email address.",
	"min":      "The field '%s' must be at least %s characters long.",
	"max":      "The field '%s' must be no longer than %s characters.",
	"oneof":    "The field '%s' must be one of %s.",
}

func message(e validator.FieldError) string {
	msg, ok := messages[e.Tag()]
	if !ok {
		return fmt.Sprintf("Field '%s' is invalid: %s", e.Field(), e.Tag())
	}
	if strings.Count(msg, "%s") == 2 {
		return fmt.Sprintf(msg, e.Field(), e.Param())
	}
	return fmt.Sprintf(msg, e.Field())
}

// Struct validates s and returns a ValidationFailed error describing the first
// failing field, or nil.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return apperr.Validation(message(fieldErrs[0]))
	}
	return apperr.Validation("Invalid input")
}

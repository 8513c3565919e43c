// Package validation wraps go-playground/validator for gearfit's data records.
package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/dotcommander/gearfit/internal/types"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("slot", validateSlot)
		instance = v
	})
	return instance
}

// Struct validates s using its struct tags. Failures are returned as a single
// error listing every offending field.
func Struct(s any) error {
	if err := get().Struct(s); err != nil {
		return errors.New(FormatValidationError(err))
	}
	return nil
}

// FormatValidationError turns validator errors into a stable, user-facing message.
func FormatValidationError(err error) string {
	if err == nil {
		return ""
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := fieldPath(e.Namespace())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, e.Param()))
		case "ltefield":
			msgs = append(msgs, fmt.Sprintf("%s must not exceed %s", field, strings.ToLower(e.Param())))
		case "slot":
			msgs = append(msgs, fmt.Sprintf("%s: unknown slot %q", field, e.Value()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return strings.ToLower(ns)
}

func validateSlot(fl validator.FieldLevel) bool {
	s := types.Slot(fl.Field().String())
	return s == "" || s.IsKnown()
}

package validator

import (
	"fmt"
	"sort"
	"strings"

	"atelier/internal/pkg/apperr"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate returns field -> failed tag, or nil when v is valid.
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errors["_"] = err.Error()
		return errors
	}
	for _, err := range verrs {
		errors[err.Field()] = err.Tag()
	}
	return errors
}

// Check is Validate folded into a VALIDATION_ERROR.
func Check(v interface{}) error {
	fields := Validate(v)
	if len(fields) == 0 {
		return nil
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s failed %q", name, fields[name]))
	}
	return apperr.Validation("invalid request: " + strings.Join(parts, ", "))
}

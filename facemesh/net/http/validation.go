package http

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/LerianStudio/lib-facemesh/facemesh/digest"
	"github.com/go-playground/validator/v10"
)

// Validation errors.
var (
	// ErrValidationFailed is returned when struct validation fails.
	ErrValidationFailed = errors.New("validation failed")
	// ErrFieldRequired is returned when a required field is missing.
	ErrFieldRequired = errors.New("field is required")
	// ErrFieldBelowMinimum is returned when a field is below its min constraint.
	ErrFieldBelowMinimum = errors.New("field below minimum")
	// ErrFieldAboveMaximum is returned when a field exceeds its max constraint.
	ErrFieldAboveMaximum = errors.New("field exceeds maximum")
	// ErrFieldOneOf is returned when a field must be one of allowed values.
	ErrFieldOneOf = errors.New("field must be one of allowed values")
)

// ErrValidatorInit is returned when custom validator registration fails during initialization.
var ErrValidatorInit = errors.New("validator initialization failed")

// TagDigestAlgorithm accepts an empty string or any name digest.ParseAlgorithm resolves.
const TagDigestAlgorithm = "digest_algorithm"

var (
	validate     *validator.Validate
	validateOnce sync.Once
	errValidate  error
)

func initValidators() (*validator.Validate, error) {
	vld := validator.New(validator.WithRequiredStructEnabled())

	if err := vld.RegisterValidation(TagDigestAlgorithm, func(fl validator.FieldLevel) bool {
		_, err := digest.ParseAlgorithm(fl.Field().String())
		return err == nil
	}); err != nil {
		return nil, fmt.Errorf("%w: failed to register '%s': %w", ErrValidatorInit, TagDigestAlgorithm, err)
	}

	return vld, nil
}

// GetValidator returns the singleton validator instance and any initialization error.
func GetValidator() (*validator.Validate, error) {
	validateOnce.Do(func() {
		validate, errValidate = initValidators()
	})

	return validate, errValidate
}

// ValidateStruct validates payload against its `validate` tags and returns
// the first failure mapped to one of the sentinel errors above.
func ValidateStruct(payload any) error {
	vld, initErr := GetValidator()
	if initErr != nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, initErr)
	}

	if err := vld.Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			return formatValidationError(validationErrors[0])
		}

		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	return nil
}

var validationErrorFormatters = map[string]func(field, param string, value any) error{
	"required": func(field, _ string, _ any) error {
		return fmt.Errorf("%w: '%s'", ErrFieldRequired, field)
	},
	"min": func(field, param string, value any) error {
		return fmt.Errorf("%w: '%s' must be at least %s, got %v", ErrFieldBelowMinimum, field, param, value)
	},
	"max": func(field, param string, value any) error {
		return fmt.Errorf("%w: '%s' must be at most %s, got %v", ErrFieldAboveMaximum, field, param, value)
	},
	"oneof": func(field, param string, value any) error {
		return fmt.Errorf("%w: '%s' must be one of [%s], got %q", ErrFieldOneOf, field, param, value)
	},
	TagDigestAlgorithm: func(field, _ string, value any) error {
		return fmt.Errorf("%w: '%s' %q, want one of %v", digest.ErrUnknownAlgorithm, field, value, digest.Algorithms())
	},
}

func formatValidationError(fe validator.FieldError) error {
	field := toSnakeCase(fe.Field())

	if formatter, ok := validationErrorFormatters[fe.Tag()]; ok {
		return formatter(field, fe.Param(), fe.Value())
	}

	return fmt.Errorf("%w: '%s' failed '%s' check", ErrValidationFailed, field, fe.Tag())
}

// toSnakeCase converts a PascalCase or camelCase string to snake_case.
func toSnakeCase(s string) string {
	var result strings.Builder

	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteByte('_')
		}

		result.WriteRune(r)
	}

	return strings.ToLower(result.String())
}

// Package validation checks request payloads before they reach the services.
//
// It wraps go-playground/validator with the domain tags used on the service
// input structs:
//
//	datatype     one of the twelve attribute data types
//	cardinality  ZERO_ONE, ONE, ZERO_MANY or ONE_MANY
//	objecttype   SUPERDOMAIN, DOMAIN or ENTITY
//	anchor       top, bottom, left, right, auto (empty allowed)
//	notblank     non-empty after trimming
//
// Field names in results use the json tag of the struct field, so they match
// what clients sent.
//
// # Usage Example
//
//	v := validation.New()
//	result := v.Struct(input)
//	if !result.Valid {
//	    for _, e := range result.Errors {
//	        fmt.Printf("%s: %s\n", e.Field, e.Message)
//	    }
//	}
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/schalkje/DiagramDesigner/models"
)

// Validator validates service input structs.
type Validator struct {
	// structValidator validates Go struct constraints and tags
	structValidator *validator.Validate
}

// ValidationError represents a single validation error with field-level details.
type ValidationError struct {
	// Field is the json name of the field that failed validation
	Field string `json:"field"`

	// Message describes why the validation failed
	Message string `json:"message"`

	// Value is the invalid value that caused the error (optional)
	Value interface{} `json:"value,omitempty"`
}

// ValidationResult represents the complete result of a validation operation.
type ValidationResult struct {
	// Valid is true if validation passed, false otherwise
	Valid bool `json:"valid"`

	// Errors contains all validation errors found (empty if Valid is true)
	Errors []ValidationError `json:"errors,omitempty"`
}

// Fields returns the errors keyed by field name. The first message wins when
// a field failed more than one rule.
func (r *ValidationResult) Fields() map[string]string {
	if r == nil || len(r.Errors) == 0 {
		return nil
	}
	out := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

// Error joins all messages; it lets a result travel as an error value.
func (r *ValidationResult) Error() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// New creates a Validator with the domain tags registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})

	mustRegister(v, "notblank", validators.NotBlank)
	mustRegister(v, "datatype", func(fl validator.FieldLevel) bool {
		return models.DataType(fl.Field().String()).Valid()
	})
	mustRegister(v, "cardinality", func(fl validator.FieldLevel) bool {
		return models.Cardinality(fl.Field().String()).Valid()
	})
	mustRegister(v, "objecttype", func(fl validator.FieldLevel) bool {
		return models.ObjectType(fl.Field().String()).Valid()
	})
	mustRegister(v, "anchor", func(fl validator.FieldLevel) bool {
		_, err := models.ParseAnchor(fl.Field().String())
		return err == nil
	})

	return &Validator{structValidator: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Struct validates s and converts the failures into a ValidationResult.
func (v *Validator) Struct(s interface{}) *ValidationResult {
	err := v.structValidator.Struct(s)
	if err == nil {
		return &ValidationResult{Valid: true}
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: "document", Message: err.Error()}},
		}
	}

	errors := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errors = append(errors, ValidationError{
			Field:   fe.Field(),
			Message: message(fe),
			Value:   valueOf(fe),
		})
	}
	return &ValidationResult{Valid: false, Errors: errors}
}

// Validate implements echo.Validator. It returns a *ValidationResult as the
// error when s is invalid.
func (v *Validator) Validate(s interface{}) error {
	if res := v.Struct(s); !res.Valid {
		return res
	}
	return nil
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	value := fmt.Sprint(valueOf(fe))

	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be %s characters or less", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "datatype":
		return fmt.Sprintf("Invalid data type '%s'. Must be one of: %s", value, list(models.DataTypes()))
	case "cardinality":
		return fmt.Sprintf("Invalid %s '%s'. Must be one of: %s", field, value, list(models.Cardinalities()))
	case "objecttype":
		return fmt.Sprintf("Invalid object type '%s'. Must be one of: %s", value, list(models.ObjectTypes()))
	case "anchor":
		return fmt.Sprintf("Invalid %s '%s'. Must be one of: top, bottom, left, right, auto", field, value)
	}
	return fmt.Sprintf("%s failed the '%s' rule", field, fe.Tag())
}

// valueOf dereferences pointer values so messages show what was sent.
func valueOf(fe validator.FieldError) interface{} {
	rv := reflect.ValueOf(fe.Value())
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

func list[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// Package inputval validates API request input using waffle/pantry/validate.
//
// Define an input struct with validate tags, populate it from the request,
// and call Validate. Fields() feeds jsonutil.ValidationError directly.
//
//	type productInput struct {
//	    Brand   string `json:"brand" validate:"required,max=100" label:"Brand"`
//	    Battery int    `json:"battery" validate:"min=0,max=100" label:"Battery"`
//	}
//
//	if res := inputval.Validate(in); res.HasErrors() {
//	    jsonutil.ValidationError(w, res.Fields())
//	    return
//	}
package inputval

import (
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/stratashop/internal/app/system/normalize"
	"github.com/dalemusser/stratashop/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/validate"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Result holds validation results with user-friendly messages.
type Result struct {
	Errors []FieldError
}

// FieldError represents a validation error for a single field.
type FieldError struct {
	Field   string
	Label   string
	Message string
}

// HasErrors returns true if there are any validation errors.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Fields maps each failing field (by JSON name) to its first message.
func (r *Result) Fields() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

// customValidator is a singleton validator with custom rules registered.
var (
	customValidator *validate.Validator
	validatorOnce   sync.Once
)

// getValidator returns the singleton validator with custom rules.
func getValidator() *validate.Validator {
	validatorOnce.Do(func() {
		customValidator = validate.New(validate.WithStopOnFirstError())

		// role: validates against models.AllRoles
		customValidator.RegisterRuleFunc("role", func(value any) bool {
			if s, ok := value.(string); ok {
				return models.IsValidRole(normalize.Role(s))
			}
			return false
		}, "role")

		// phone: at least 8 digits once separators are stripped
		customValidator.RegisterRuleFunc("phone", func(value any) bool {
			if s, ok := value.(string); ok {
				return IsValidPhone(s)
			}
			return false
		}, "phone")

		// objectid: validates that string is a valid MongoDB ObjectID hex
		customValidator.RegisterRuleFunc("objectid", func(value any) bool {
			if s, ok := value.(string); ok {
				return isObjectID(s)
			}
			return false
		}, "objectid")
	})
	return customValidator
}

// Validate validates a struct and returns a Result with user-friendly errors.
// The struct should have `validate` tags for rules and optional `label` tags
// for user-friendly field names.
//
// Supported validation rules (from pantry/validate):
//   - required: field must not be empty
//   - email: field must be a valid email address
//   - oneof=a b c: field must be one of the specified values
//   - timezone: field must be a valid IANA time zone
//   - min=N: string length or numeric value must be >= N
//   - max=N: string length or numeric value must be <= N
//
// Custom validation rules (registered by this package):
//   - role: field must be admin, staff or user
//   - phone: field must hold at least 8 digits
//   - objectid: field must be a valid MongoDB ObjectID hex string
func Validate(s any) *Result {
	result := &Result{}

	v := getValidator()
	err := v.Struct(s)
	if err == nil {
		return result
	}

	labels, names := getFieldInfo(s)

	if errs, ok := err.(validate.Errors); ok {
		for _, e := range errs {
			field := e.Field
			if n, ok := names[field]; ok {
				field = n
			}
			label := labels[field]
			if label == "" {
				label = e.Field
			}

			result.Errors = append(result.Errors, FieldError{
				Field:   field,
				Label:   label,
				Message: formatMessage(label, e.Rule, e.Param),
			})
		}
	}

	return result
}

// getFieldInfo reads struct tags. labels is keyed by JSON name; names maps
// Go field names to JSON names so errors report the name clients send.
func getFieldInfo(s any) (labels, names map[string]string) {
	labels = make(map[string]string)
	names = make(map[string]string)

	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return labels, names
	}

	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		fieldName := field.Name
		if jsonTag := field.Tag.Get("json"); jsonTag != "" {
			if n, _, _ := strings.Cut(jsonTag, ","); n != "" && n != "-" {
				fieldName = n
			}
		}
		names[field.Name] = fieldName

		if label := field.Tag.Get("label"); label != "" {
			labels[fieldName] = label
		}
	}

	return labels, names
}

// formatMessage creates a user-friendly message for a validation rule.
func formatMessage(label, rule, param string) string {
	switch rule {
	case "required":
		return label + " is required."
	case "email":
		return "A valid email address is required."
	case "oneof", "enum":
		return label + " must be one of: " + strings.ReplaceAll(param, " ", ", ") + "."
	case "timezone":
		return label + " must be a valid time zone."
	case "min":
		return label + " must be at least " + param + "."
	case "max":
		return label + " must be at most " + param + "."
	case "role":
		return label + " must be one of: " + strings.Join(models.AllRoles(), ", ") + "."
	case "phone":
		return label + " must be a phone number."
	case "objectid":
		return label + " is not a valid ID."
	default:
		return label + " is invalid."
	}
}

// IsValidPhone reports whether s has at least 8 digits after separators are removed.
func IsValidPhone(s string) bool {
	return len(strings.TrimPrefix(normalize.Phone(s), "+")) >= 8
}

// isObjectID reports whether s is a MongoDB ObjectID in hex.
func isObjectID(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}

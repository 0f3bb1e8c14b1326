// internal/app/system/inputval/inputval.go
package inputval

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/sangathan/internal/domain/models"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldError is one failed rule, with a message fit for the user.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result collects validation failures.
type Result struct {
	Errors []FieldError `json:"errors,omitempty"`
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// Err returns nil when no rule failed and an *Error otherwise.
func (r *Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return &Error{Fields: r.Errors}
}

// Error is a validation failure returned by services.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "invalid input"
	}
	return e.Fields[0].Message
}

// Invalid builds a single-field validation error.
func Invalid(field, msg string) error {
	return &Error{Fields: []FieldError{{Field: field, Message: msg}}}
}

// Add appends a failure for field.
func (r *Result) Add(field, msg string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: msg})
}

// MobileMessage is shown for any malformed mobile number.
const MobileMessage = "Please enter a valid 10-digit mobile number."

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			return f.Name
		})
		_ = v.RegisterValidation("mobile10", func(fl validator.FieldLevel) bool {
			return IsValidMobile(fl.Field().String())
		})
		_ = v.RegisterValidation("district", func(fl validator.FieldLevel) bool {
			_, ok := models.CanonicalDistrict(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("meetingtarget", func(fl validator.FieldLevel) bool {
			return models.IsMeetingTarget(fl.Field().String())
		})
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return IsValidObjectID(fl.Field().String())
		})
		_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
			return IsValidHTTPURL(fl.Field().String())
		})
	})
	return v
}

// Validate runs the `validate` tags on s. Field names in messages come from
// the `label` tag.
func Validate(s any) *Result {
	res := &Result{}
	err := instance().Struct(s)
	if err == nil {
		return res
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		res.Add("", err.Error())
		return res
	}
	for _, fe := range verrs {
		res.Add(fe.StructField(), message(fe))
	}
	return res
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "mobile10":
		return MobileMessage
	case "district":
		return "Please choose a valid district."
	case "meetingtarget":
		return "Please choose a district or All Bihar."
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "objectid":
		return label + " is not a valid id."
	case "httpurl":
		return label + " must be an http(s) URL."
	case "datetime":
		return label + " is not in the expected format."
	}
	return label + " is invalid."
}

// IsValidMobile reports whether s is exactly ten digits.
func IsValidMobile(s string) bool {
	if len(s) != 10 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IsValidObjectID reports whether s is a hex ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}

// IsValidHTTPURL reports whether s is an absolute http or https URL.
func IsValidHTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

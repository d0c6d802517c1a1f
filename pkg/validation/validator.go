package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/invest-tracker/pkg/helpers"
)

// Reason classifies why a payload was rejected. The HTTP layer maps every
// reason to a 400 response.
type Reason string

const (
	ReasonMissingFields        Reason = "missing_fields"
	ReasonInvalidEmail         Reason = "invalid_email"
	ReasonWeakPassword         Reason = "weak_password"
	ReasonDisallowedCharacters Reason = "disallowed_characters"
	ReasonMalformedPayload     Reason = "malformed_payload"
)

// MinPasswordLength is inclusive: a six character password is accepted.
const MinPasswordLength = 6

// Rejection is returned when a payload fails validation. Message is the
// client facing summary; Details names the offending fields.
type Rejection struct {
	Reason  Reason
	Message string
	Details map[string]string
}

func (r *Rejection) Error() string {
	return "validation rejected: " + string(r.Reason)
}

// Registration is the register payload.
type Registration struct {
	Email    string `json:"email" validate:"required,emailshape"`
	Password string `json:"password" validate:"required,min=6,bcryptlen"`
	Name     string `json:"name" validate:"required,safetext"`
}

// Login is the login payload. Email format is only enforced at registration.
type Login struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// sqlControl matches quotes, comment markers, statement separators and
// DDL/DML keywords in statement form. Bare words such as "Grant" or "Union"
// are names, not statements. This is a secondary textual guard; the store
// only ever receives values as bound query parameters.
var sqlControl = regexp.MustCompile(`(?i)['";` + "`" + `\\]|--|/\*|\*/` +
	`|\b(drop|alter|truncate|create)\s+(table|database|schema|index|view)\b` +
	`|\bunion\s+(all\s+)?select\b` +
	`|\bselect\b.*\bfrom\b` +
	`|\binsert\s+into\b` +
	`|\bdelete\s+from\b` +
	`|\bupdate\s+\w+\s+set\b`)

// tag priority decides which reason wins when several fields fail at once.
var tagReasons = []struct {
	tag     string
	reason  Reason
	message string
}{
	{"required", ReasonMissingFields, "missing required fields"},
	{"emailshape", ReasonInvalidEmail, "invalid email format"},
	{"min", ReasonWeakPassword, fmt.Sprintf("password must be at least %d characters long", MinPasswordLength)},
	{"bcryptlen", ReasonWeakPassword, fmt.Sprintf("password must be at most %d bytes long", helpers.MaxPasswordBytes)},
	{"safetext", ReasonDisallowedCharacters, "name contains disallowed characters"},
}

// Validator checks auth payloads before they reach persistence. It never
// deals with HTTP.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Uses JSON tag names in errors.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("safetext", func(fl validator.FieldLevel) bool {
		return !sqlControl.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= helpers.MaxPasswordBytes
	})
	return &Validator{v: v}
}

// ValidateRegistration returns nil or a *Rejection.
func (val *Validator) ValidateRegistration(in Registration) error {
	return val.check(in)
}

// ValidateLogin returns nil or a *Rejection.
func (val *Validator) ValidateLogin(in Login) error {
	return val.check(in)
}

func (val *Validator) check(in any) error {
	err := val.v.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Malformed(err)
	}
	for _, tr := range tagReasons {
		for _, fe := range verrs {
			if fe.Tag() == tr.tag {
				return &Rejection{Reason: tr.reason, Message: tr.message, Details: ToDetails(verrs)}
			}
		}
	}
	return &Rejection{Reason: ReasonMalformedPayload, Message: "invalid payload", Details: ToDetails(verrs)}
}

// Malformed wraps a body that could not be decoded at all.
func Malformed(err error) *Rejection {
	return &Rejection{Reason: ReasonMalformedPayload, Message: "invalid payload", Details: ToDetails(err)}
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) || errors.Is(err, io.ErrUnexpectedEOF) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	// Fallback
	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "emailshape":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param() + " characters long"
	case "bcryptlen":
		return fmt.Sprintf("must be at most %d bytes long", helpers.MaxPasswordBytes)
	case "safetext":
		return "must not contain quotes, comment markers, semicolons or SQL statements"
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("validation failed for '%s'", fe.Tag())
	}
}

// Package validation wraps go-playground/validator with JSON field paths and
// flat violation messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid is matched by every *Error via errors.Is.
var ErrInvalid = errors.New("validation failed")

// Violation is a single failed constraint on a field path such as "standort.plz".
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return v.Field + ": " + v.Message
}

// Error reports every violation of a validated value.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalid, strings.Join(e.Messages(), "; "))
}

func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}

// Messages renders each violation as "field.path: message".
func (e *Error) Messages() []string {
	out := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		out[i] = v.String()
	}
	return out
}

// Validator validates structs tagged with `validate`.
type Validator struct {
	v        *validator.Validate
	patterns map[string]*regexp.Regexp
}

// New creates a Validator that reports JSON field names and supports the
// "pattern" tag for use with RegisterPattern.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	return &Validator{v: v, patterns: make(map[string]*regexp.Regexp)}
}

// RegisterPattern adds a tag that checks string fields against re.
// Empty strings pass; combine with required when the field is mandatory.
func (val *Validator) RegisterPattern(tag string, re *regexp.Regexp) error {
	err := val.v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || re.MatchString(s)
	})
	if err != nil {
		return err
	}
	val.patterns[tag] = re
	return nil
}

// RegisterType validates fields of the given wrapper types by the value fn
// extracts. A nil result counts as empty.
func (val *Validator) RegisterType(fn validator.CustomTypeFunc, types ...any) {
	val.v.RegisterCustomTypeFunc(fn, types...)
}

// Struct validates s, returning *Error with all violations or nil.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &Error{Violations: make([]Violation, 0, len(verrs))}
	for _, fe := range verrs {
		out.Violations = append(out.Violations, Violation{
			Field:   fieldPath(fe.Namespace()),
			Message: val.message(fe),
		})
	}
	return out
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func (val *Validator) message(fe validator.FieldError) string {
	if re, ok := val.patterns[fe.Tag()]; ok {
		return fmt.Sprintf("must match %s", re)
	}

	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "unique":
		return "must not contain duplicates"
	case "datetime":
		return fmt.Sprintf("must be a date in the form %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q constraint", fe.Tag())
	}
}

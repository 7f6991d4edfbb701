// Package validate wraps go-playground/validator so that services report
// struct validation failures as apperror.ValidationFailed with the JSON field
// name the client sent.
package validate

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/flexfolio/internal/apperror"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)
	hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// Validator validates request structs by their `validate` tags.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the project's custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("validate: registering %q: %v", tag, err))
		}
	}
	mustRegister("username", func(fl validator.FieldLevel) bool {
		return ValidUsername(fl.Field().String())
	})
	mustRegister("hexcolor_or_empty", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || hexColorPattern.MatchString(s)
	})
	mustRegister("url_or_empty", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || isHTTPURL(s)
	})

	return &Validator{validate: v}
}

// ValidUsername reports whether s is 3–30 characters of [a-zA-Z0-9_.].
func ValidUsername(s string) bool {
	return len(s) >= 3 && len(s) <= 30 && usernamePattern.MatchString(s)
}

// Struct validates s and returns the first failing field as a validation
// error, or nil.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return fmt.Errorf("validate: %w", err)
	}

	fe := ves[0]
	field := fieldPath(fe)
	return apperror.ValidationFailed(field, message(field, fe))
}

// Var validates a single value against tag and reports a failure under field.
func (v *Validator) Var(value any, tag, field string) error {
	err := v.validate.Var(value, tag)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return fmt.Errorf("validate: %w", err)
	}
	return apperror.ValidationFailed(field, message(field, ves[0]))
}

// fieldPath drops the struct name from the namespace, so
// "ProjectInput.tech[2]" becomes "tech[2]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if isLengthKind(fe.Kind()) {
			return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if isLengthKind(fe.Kind()) {
			return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url", "url_or_empty":
		return fmt.Sprintf("%s must be a valid http(s) URL", field)
	case "username":
		return "username must be 3-30 characters of letters, digits, '_' or '.'"
	case "hexcolor_or_empty":
		return fmt.Sprintf("%s must be a hex colour like #3B82F6", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func isLengthKind(k reflect.Kind) bool {
	return k == reflect.String || k == reflect.Slice || k == reflect.Map
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

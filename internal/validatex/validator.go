// Package validatex wraps go-playground/validator so request models can be
// checked locally before any network call. Only the most relevant failure
// is reported: presence rules win over equality rules, which win over
// format rules.
package validatex

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError describes the first failing rule of a validated value.
type ValidationError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Messenger lets a model override the message of a failed rule. Keys are
// "<json field>.<tag>" or just "<tag>" for a model-wide default.
type Messenger interface {
	ValidationMessages() map[string]string
}

// tag ranks; anything unlisted ranks last.
var tagRank = map[string]int{
	"required": 0,
	"eqfield":  1,
	"min":      2,
	"max":      2,
	"oneof":    3,
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(fld.Name)
		}
		return name
	})

	// "notblank" treats whitespace-only strings as missing.
	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return &Validator{validate: v}
}

// mustRegister panics when tag cannot be registered; an unknown tag would
// otherwise panic later inside Struct.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validatex: register %q: %v", tag, err))
	}
}

var std = New()

// Validate checks s with the package-level validator.
func Validate(s any) error { return std.Validate(s) }

// Validate returns nil or a *ValidationError for the highest priority
// failure in s. Ties keep struct field order.
func (v *Validator) Validate(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	fe := pickFirst(errs)
	ve := &ValidationError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()}
	ve.Message = message(s, fe)
	return ve
}

func pickFirst(errs validator.ValidationErrors) validator.FieldError {
	ordered := make([]validator.FieldError, len(errs))
	copy(ordered, errs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return rank(ordered[i].Tag()) < rank(ordered[j].Tag())
	})
	return ordered[0]
}

func rank(tag string) int {
	if tag == "notblank" {
		tag = "required"
	}
	if r, ok := tagRank[tag]; ok {
		return r
	}
	return len(tagRank)
}

func message(s any, fe validator.FieldError) string {
	if m, ok := s.(Messenger); ok {
		msgs := m.ValidationMessages()
		if msg, ok := msgs[fe.Field()+"."+fe.Tag()]; ok {
			return msg
		}
		if msg, ok := msgs[fe.Tag()]; ok {
			return msg
		}
	}

	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s does not match", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed validation for %s", field, fe.Tag())
	}
}

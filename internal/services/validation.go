// Package services – input validation
//
// Struct-level rules use go-playground/validator with a custom "farmphone"
// rule. Rules validator cannot express (no future dates, non-negative
// decimals, female-only records) are small helpers returning
// *ValidationError.
package services

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mashamba/dairy-backend/internal/domain"
)

// futureSkew tolerates client clocks running slightly ahead.
const futureSkew = 5 * time.Minute

var phoneRE = regexp.MustCompile(`^\+?1?\d{9,15}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("farmphone", func(fl validator.FieldLevel) bool {
		return phoneRE.MatchString(fl.Field().String())
	})
	return v
}

// checkStruct runs the tag rules on in and converts the first failure into
// a *ValidationError.
func checkStruct(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return invalid(fe.Field(), "%s", ruleMessage(fe))
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "farmphone":
		return "must be a phone number of 9 to 15 digits, optionally prefixed with + or +1"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed the " + fe.Tag() + " rule"
	}
}

func notFuture(field string, t, now time.Time) error {
	if t.After(now.Add(futureSkew)) {
		return invalid(field, "must not be in the future")
	}
	return nil
}

func notFuturePtr(field string, t *time.Time, now time.Time) error {
	if t == nil {
		return nil
	}
	return notFuture(field, *t, now)
}

func requireTime(field string, t time.Time) error {
	if t.IsZero() {
		return invalid(field, "is required")
	}
	return nil
}

func nonNegative(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return invalid(field, "must not be negative")
	}
	return nil
}

// requireFemale rejects records that only make sense for a female cow.
func requireFemale(cow *domain.Cow, kind string) error {
	if !cow.IsFemale() {
		return invalid("cow", "%s records can only be attached to a female cow", kind)
	}
	return nil
}

// requireActive rejects new records for archived cows.
func requireActive(cow *domain.Cow) error {
	if cow.Status == domain.CowArchived {
		return ErrCowArchived
	}
	return nil
}

// firstErr returns the first non-nil error.
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

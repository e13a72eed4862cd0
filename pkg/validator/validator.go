package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/jwalitptl/hpms-api/pkg/errors"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// IsValidEmail reports whether email looks deliverable.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

var messages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email",
	"min":      "is too short",
	"max":      "is too long",
	"role":     "must be one of admin, doctor, nurse, user",
	"datetime": "must be a date in YYYY-MM-DD format",
}

var configureOnce sync.Once

// Configure registers json field names and the custom tags on v. It is safe
// to call more than once.
func Configure(v *validator.Validate, roles []string) {
	configureOnce.Do(func() {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		allowed := make(map[string]struct{}, len(roles))
		for _, r := range roles {
			allowed[r] = struct{}{}
		}
		if err := v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			if value == "" {
				return true
			}
			_, ok := allowed[value]
			return ok
		}); err != nil {
			panic(err)
		}
	})
}

// Translate converts a binding error into an InvalidFormat AppError naming the
// first offending field.
func Translate(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		msg, ok := messages[fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("failed %s validation", fe.Tag())
		}
		return apperrors.InvalidFormat(fe.Field(), fmt.Sprintf("%s %s", fe.Field(), msg), err)
	}
	return apperrors.InvalidFormat("", "invalid request body", err)
}

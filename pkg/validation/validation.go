package validation

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	cardExpiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/(\d{2}|\d{4})$`)
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
	ibanPattern       = regexp.MustCompile(`^[A-Z]{2}\d{2}[A-Z0-9]{11,30}$`)

	ginOnce sync.Once
	ginErr  error
)

// Register installs the payment tags and json field naming on v.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	for tag, fn := range map[string]validator.Func{
		"card_expiry": isCardExpiry,
		"cvv":         isCVV,
		"iban":        isIBAN,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s validator: %w", tag, err)
		}
	}
	return nil
}

// RegisterGin installs the payment tags on gin's default binding engine once per process.
func RegisterGin() error {
	ginOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			ginErr = errors.New("gin binding engine is not go-playground/validator")
			return
		}
		ginErr = Register(v)
	})
	return ginErr
}

// Details flattens a binding error into field -> message pairs.
func Details(err error) map[string]string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return map[string]string{"body": err.Error()}
	}
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		details[fieldPath(fe)] = message(fe)
	}
	return details
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "iso4217":
		return "must be an ISO 4217 currency code"
	case "credit_card":
		return "must be a valid card number"
	case "card_expiry":
		return "must be MM/YY or MM/YYYY"
	case "cvv":
		return "must be 3 or 4 digits"
	case "iban":
		return "must be a valid IBAN"
	case "bic":
		return "must be a valid BIC"
	}
	return "is invalid"
}

func isCardExpiry(fl validator.FieldLevel) bool {
	return cardExpiryPattern.MatchString(fl.Field().String())
}

func isCVV(fl validator.FieldLevel) bool {
	return cvvPattern.MatchString(fl.Field().String())
}

func isIBAN(fl validator.FieldLevel) bool {
	return ValidIBAN(fl.Field().String())
}

// ValidIBAN checks the ISO 13616 shape and mod-97 checksum. Spaces are ignored.
func ValidIBAN(s string) bool {
	iban := strings.ToUpper(strings.ReplaceAll(s, " ", ""))
	if !ibanPattern.MatchString(iban) {
		return false
	}
	rearranged := iban[4:] + iban[:4]
	var digits strings.Builder
	for _, r := range rearranged {
		if r >= 'A' && r <= 'Z' {
			fmt.Fprintf(&digits, "%d", r-'A'+10)
			continue
		}
		digits.WriteRune(r)
	}
	n, ok := new(big.Int).SetString(digits.String(), 10)
	if !ok {
		return false
	}
	return new(big.Int).Mod(n, big.NewInt(97)).Int64() == 1
}

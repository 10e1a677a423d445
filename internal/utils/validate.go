package utils

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	phonePattern = regexp.MustCompile(`^01[016789]-?\d{3,4}-?\d{4}$`)
	validate     = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return passwordPolicy(fl.Field().String())
	})
	return v
}

// IsEmail reports whether s is a well-formed email address.
func IsEmail(s string) bool {
	return validate.Var(s, "required,email,max=255") == nil
}

// IsPhone reports whether s is a mobile phone number (010-1234-5678 or 01012345678).
func IsPhone(s string) bool {
	return validate.Var(s, "required,phone") == nil
}

// NormalizePhone strips separators so that 010-1234-5678 and 01012345678
// refer to the same number.
func NormalizePhone(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "-", "")
}

// IsPassword enforces the password policy: 8 to 64 characters with at least
// one letter and one digit.
func IsPassword(s string) bool {
	return validate.Var(s, "required,password") == nil
}

// ValidateStruct runs the `validate` tags of v.
func ValidateStruct(v interface{}) error {
	return validate.Struct(v)
}

func passwordPolicy(s string) bool {
	n := len([]rune(s))
	if n < 8 || n > 64 {
		return false
	}

	var letter, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsSpace(r):
			return false
		}
	}
	return letter && digit
}

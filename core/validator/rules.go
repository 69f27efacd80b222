package validator

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrymomot/notifykit/core/email"
)

// MinLenString requires at least min characters. Empty values pass.
func MinLenString(field, value string, min int) Rule {
	return Rule{
		Check: func() bool { return value == "" || utf8.RuneCountInString(value) >= min },
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must be at least %d characters long", min),
			TranslationKey: "validation.min_length",
			TranslationValues: map[string]any{
				"field": field,
				"min":   min,
			},
		},
	}
}

// MaxLenString allows at most max characters.
func MaxLenString(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= max },
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must be at most %d characters long", max),
			TranslationKey: "validation.max_length",
			TranslationValues: map[string]any{
				"field": field,
				"max":   max,
			},
		},
	}
}

// ValidEmail requires a single bare address. Empty values pass; combine with required.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool { return value == "" || email.IsValidAddress(value) },
		Error: ValidationError{
			Field:             field,
			Message:           "must be a valid email address",
			TranslationKey:    "validation.email",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// ValidNumericString requires ASCII digits only. Empty values pass.
func ValidNumericString(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.IndexFunc(value, func(r rune) bool { return r > unicode.MaxASCII || !unicode.IsDigit(r) }) < 0
		},
		Error: ValidationError{
			Field:             field,
			Message:           "must contain only digits",
			TranslationKey:    "validation.numeric",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// InList requires value to be one of allowed. Empty values pass.
func InList(field, value string, allowed []string) Rule {
	return Rule{
		Check: func() bool { return value == "" || slices.Contains(allowed, value) },
		Error: ValidationError{
			Field:          field,
			Message:        "must be one of: " + strings.Join(allowed, ", "),
			TranslationKey: "validation.in",
			TranslationValues: map[string]any{
				"field":   field,
				"allowed": allowed,
			},
		},
	}
}

package inn

import (
	"strings"
	"unicode"
)

var (
	weights10   = []int{2, 4, 10, 3, 5, 9, 4, 6, 8}
	weights12n1 = []int{7, 2, 4, 10, 3, 5, 9, 4, 6, 8}
	weights12n2 = []int{3, 7, 2, 4, 10, 3, 5, 9, 4, 6, 8}
)

// Validate reports whether s is a valid INN. Whitespace anywhere in s is ignored.
// Ten digits denote a legal entity, twelve an individual.
func Validate(s string) bool {
	digits, ok := parse(s)
	if !ok {
		return false
	}

	switch len(digits) {
	case 10:
		return checksum(digits, weights10) == digits[9]
	case 12:
		return checksum(digits, weights12n1) == digits[10] &&
			checksum(digits, weights12n2) == digits[11]
	default:
		return false
	}
}

// Normalize strips whitespace from s and returns the INN if it is valid.
func Normalize(s string) (string, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if !Validate(cleaned) {
		return "", false
	}
	return cleaned, true
}

func parse(s string) ([]int, bool) {
	digits := make([]int, 0, 12)
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			continue
		case r >= '0' && r <= '9':
			digits = append(digits, int(r-'0'))
		default:
			return nil, false
		}
		if len(digits) > 12 {
			return nil, false
		}
	}
	return digits, true
}

func checksum(digits, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += w * digits[i]
	}
	return sum % 11 % 10
}

package validation

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Postal code length bounds in runes, after trimming.
const (
	MinPostalCodeLen = 3
	MaxPostalCodeLen = 10
)

// ErrLocationEmpty is returned when location is empty or whitespace-only after trim.
var ErrLocationEmpty = errors.New("location is required")

// ErrLocationTooShort is returned when location length is below the minimum.
var ErrLocationTooShort = errors.New("location too short")

// ErrLocationTooLong is returned when location length exceeds the maximum.
var ErrLocationTooLong = errors.New("location too long")

// ErrLocationInvalidChars is returned when location contains disallowed characters.
var ErrLocationInvalidChars = errors.New("location contains invalid characters")

// ErrTemperatureInvalid is returned when a threshold temperature is not a finite number.
var ErrTemperatureInvalid = errors.New("temperature must be a finite number")

// ValidatePostalCode trims the input, enforces MinPostalCodeLen..MaxPostalCodeLen runes,
// and restricts to letters, digits, space and hyphen. The result doubles as a cache key and
// a file name, so path separators and dots are rejected.
func ValidatePostalCode(input string) (string, error) {
	s := strings.TrimSpace(input)
	r := []rune(s)
	n := len(r)
	if n == 0 {
		return "", ErrLocationEmpty
	}
	if n < MinPostalCodeLen {
		return "", ErrLocationTooShort
	}
	if n > MaxPostalCodeLen {
		return "", ErrLocationTooLong
	}
	for _, c := range r {
		if !isAllowedPostalRune(c) {
			return "", ErrLocationInvalidChars
		}
	}
	return s, nil
}

// isAllowedPostalRune returns true for letters (Unicode), digits, space, hyphen.
func isAllowedPostalRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsNumber(r) {
		return true
	}
	switch r {
	case ' ', '-':
		return true
	}
	return false
}

// ParseTemperature parses a user-supplied threshold temperature in °F.
func ParseTemperature(input string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrTemperatureInvalid
	}
	return v, nil
}

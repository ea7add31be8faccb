// Package validate holds the field validators used while collecting booking
// data in the chat flow. They accept already trimmed user input.
package validate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var (
	nameRe = regexp.MustCompile(`^[\p{L} ]{2,100}$`)

	// Deliberately permissive: real address verification happens when the
	// confirmation mail bounces, not here.
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Name accepts letters (any script) and spaces, 2 to 100 characters.
func Name(s string) bool {
	return nameRe.MatchString(s)
}

func Email(s string) bool {
	return emailRe.MatchString(s)
}

// Phone reports whether s parses as a valid number for the given region.
// The empty string is accepted: phone is an optional field.
func Phone(s, region string) bool {
	if s == "" {
		return true
	}
	num, err := phonenumbers.Parse(s, region)
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(num)
}

// Choice parses a 1-based menu selection. It returns the selected index and
// whether the input was a number within [1, max].
func Choice(s string, max int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > max {
		return 0, false
	}
	return n, true
}

// Confirmation interprets a yes/no answer at the final step. The second
// return value is false when the input is neither.
func Confirmation(s string) (confirmed bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "si", "sí", "yes":
		return true, true
	case "no", "cancel", "cancelar":
		return false, true
	}
	return false, false
}

// Package phone validates outbound destination numbers.
package phone

import (
	"fmt"
	"strings"
	"unicode"
)

// Rules describes an acceptable mobile number: a country-calling-code prefix
// followed by a fixed number of subscriber digits whose first digit is in
// MobileLeading.
type Rules struct {
	Prefix           string
	SubscriberDigits int
	MobileLeading    string
}

// India is the default rule set: +91 followed by ten digits starting 6-9.
var India = Rules{Prefix: "+91", SubscriberDigits: 10, MobileLeading: "6789"}

// Validate checks raw against the India rules.
func Validate(raw string) (bool, string) {
	return India.Validate(raw)
}

// Validate applies the rules in order and reports the first failing one.
func (r Rules) Validate(raw string) (bool, string) {
	if raw == "" {
		return false, "Phone number is required"
	}

	cleaned := Clean(raw)
	if !strings.HasPrefix(cleaned, r.Prefix) {
		return false, fmt.Sprintf("Phone number must start with %s", r.Prefix)
	}
	if len(cleaned) != len(r.Prefix)+r.SubscriberDigits {
		return false, fmt.Sprintf("Phone number must be %s followed by %d digits", r.Prefix, r.SubscriberDigits)
	}
	if !strings.ContainsRune(r.MobileLeading, rune(cleaned[len(r.Prefix)])) {
		return false, "Invalid mobile number"
	}
	return true, ""
}

// Clean strips everything except digits and a leading plus sign.
func Clean(raw string) string {
	var b strings.Builder
	for _, c := range strings.TrimSpace(raw) {
		switch {
		case c == '+' && b.Len() == 0:
			b.WriteRune(c)
		case c < unicode.MaxASCII && unicode.IsDigit(c):
			b.WriteRune(c)
		}
	}
	return b.String()
}

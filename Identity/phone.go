package Identity

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidPhoneFormat means no normalization strategy produced a valid
// E.164 number.
var ErrInvalidPhoneFormat = errors.New("invalid phone number format")

// DefaultCountryCode is prefixed onto national numbers dictated without
// one.
const DefaultCountryCode = "1"

// e164Pattern: leading +, country code starting 1-9, then 7-15 digits in
// total.
var e164Pattern = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

func ValidPhone(phone string) bool {
	return e164Pattern.MatchString(strings.TrimSpace(phone))
}

// FormatToE164 normalizes a dictated phone number to canonical E.164.
// Already-canonical numbers come back unchanged, so the function is
// idempotent. Order of attempts: as-is with +, 10-digit national, 11
// digits starting with the country code, then a default-prefix attempt on
// any 7-14 digit string.
func FormatToE164(phone string) (string, error) {
	var cleaned strings.Builder
	for _, char := range phone {
		if char >= '0' && char <= '9' || char == '+' {
			cleaned.WriteRune(char)
		}
	}
	number := cleaned.String()

	if strings.HasPrefix(number, "+") {
		if ValidPhone(number) {
			return number, nil
		}
		return "", ErrInvalidPhoneFormat
	}

	if len(number) == 10 {
		formatted := "+" + DefaultCountryCode + number
		if ValidPhone(formatted) {
			return formatted, nil
		}
		return "", ErrInvalidPhoneFormat
	}

	if len(number) == 11 && strings.HasPrefix(number, DefaultCountryCode) {
		formatted := "+" + number
		if ValidPhone(formatted) {
			return formatted, nil
		}
		return "", ErrInvalidPhoneFormat
	}

	if len(number) >= 7 && len(number) <= 14 {
		formatted := "+" + DefaultCountryCode + number
		if ValidPhone(formatted) {
			return formatted, nil
		}
	}

	return "", ErrInvalidPhoneFormat
}

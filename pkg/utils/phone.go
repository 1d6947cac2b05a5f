package utils

import (
	"strings"
	"unicode"
)

const (
	minPhoneDigits = 8
	maxPhoneDigits = 15
)

// NormalizePhone returns raw in E.164 form ("+" followed by digits), or "" when it
// cannot be a phone number. A national number with a leading 0 is rewritten to
// countryCode; without a countryCode such numbers are rejected.
func NormalizePhone(raw, countryCode string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(raw) {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return ""
		}
	}

	phone := b.String()
	switch {
	case strings.HasPrefix(phone, "+"):
		phone = phone[1:]
	case strings.HasPrefix(phone, "00"):
		phone = phone[2:]
	case strings.HasPrefix(phone, "0"):
		if countryCode == "" {
			return ""
		}
		phone = strings.TrimPrefix(countryCode, "+") + phone[1:]
	}

	if len(phone) < minPhoneDigits || len(phone) > maxPhoneDigits {
		return ""
	}
	return "+" + phone
}

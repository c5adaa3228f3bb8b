package dispatch

import "strings"

// defaultCountryCode is prefixed to local numbers that arrive without one.
const defaultCountryCode = "55"

// NormalizePhone converts a raw phone number to E.164 form. Local numbers of
// 10 or 11 digits get the default country code prefixed; 12 or 13 digit
// numbers are taken as already carrying it. Anything else is rejected with
// ok = false and the recipient is excluded from the batch.
func NormalizePhone(raw string) (string, bool) {
	digits := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}

	switch n := len(digits); {
	case n >= 10 && n <= 11:
		return "+" + defaultCountryCode + string(digits), true
	case n >= 12 && n <= 13:
		if string(digits[:2]) != defaultCountryCode {
			return "", false
		}
		return "+" + string(digits), true
	default:
		return "", false
	}
}

// PhoneVariants lists the storage forms a normalized number may appear under
// in the externally-owned resident table: E.164, digits with country code, and
// the local number without it. Lookups by phone must match any of them,
// otherwise a resident stored in local format could never be resolved.
func PhoneVariants(normalized string) []string {
	digits := strings.TrimPrefix(normalized, "+")
	variants := []string{normalized, digits}
	if strings.HasPrefix(digits, defaultCountryCode) && len(digits) > len(defaultCountryCode) {
		variants = append(variants, digits[len(defaultCountryCode):])
	}
	return variants
}

// Package card holds pure validation helpers for checkout payment data:
// Luhn check, card brand detection and CPF validation. None of them touch
// the network, so they can run before any PSP call.
package card

import "strings"

type Brand string

const (
	BrandVisa       Brand = "visa"
	BrandMastercard Brand = "mastercard"
	BrandAmex       Brand = "amex"
	BrandElo        Brand = "elo"
	BrandHipercard  Brand = "hipercard"
	BrandUnknown    Brand = "unknown"
)

// brandPrefixes maps leading-digit patterns to brands. Longer prefixes are
// checked first so Elo and Hipercard ranges win over the generic Visa "4".
var brandPrefixes = []struct {
	prefixes []string
	brand    Brand
}{
	{[]string{"606282", "3841"}, BrandHipercard},
	{[]string{"4011", "4312", "4389", "4514", "4576", "5041", "5066", "5090",
		"6277", "6362", "6504", "6505", "6509", "6516", "6550"}, BrandElo},
	{[]string{"34", "37"}, BrandAmex},
	{[]string{"51", "52", "53", "54", "55", "222", "223", "224", "225", "226",
		"227", "228", "229", "23", "24", "25", "26", "270", "271", "2720"}, BrandMastercard},
	{[]string{"4"}, BrandVisa},
}

// OnlyDigits strips every non-digit rune from s.
func OnlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidLuhn reports whether number passes the Luhn checksum. Spaces and
// separators are stripped first; anything shorter than 13 digits fails.
func ValidLuhn(number string) bool {
	digits := OnlyDigits(number)
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// DetectBrand returns the card brand by leading-digit pattern. It does not
// validate the number; combine with ValidLuhn.
func DetectBrand(number string) Brand {
	digits := OnlyDigits(number)
	if digits == "" {
		return BrandUnknown
	}
	for _, entry := range brandPrefixes {
		for _, prefix := range entry.prefixes {
			if strings.HasPrefix(digits, prefix) {
				return entry.brand
			}
		}
	}
	return BrandUnknown
}

// ValidCPF validates a CPF using the two-pass mod-11 check digit algorithm.
// All-equal-digit strings (11111111111 etc.) are rejected regardless of the
// check digits, as the registry never issues them.
func ValidCPF(cpf string) bool {
	digits := OnlyDigits(cpf)
	if len(digits) != 11 {
		return false
	}

	allEqual := true
	for i := 1; i < 11; i++ {
		if digits[i] != digits[0] {
			allEqual = false
			break
		}
	}
	if allEqual {
		return false
	}

	if int(digits[9]-'0') != cpfCheckDigit(digits, 9) {
		return false
	}
	return int(digits[10]-'0') == cpfCheckDigit(digits, 10)
}

// cpfCheckDigit computes the mod-11 check digit over the first n digits,
// with weights n+1 down to 2.
func cpfCheckDigit(digits string, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(digits[i]-'0') * (n + 1 - i)
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		rest = 0
	}
	return rest
}

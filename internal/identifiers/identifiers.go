// Package identifiers classifies the product codes a manifest row may carry
// (ASIN/UPC/EAN) and produces the has_high_trust_id boolean the evidence
// gate bypasses admission requirements on. Grounded on
// backend/lotgenius/ids.py in original_source/: ASIN is shape-only, UPC
// must pass the modulo-10 check digit, EAN is shape-only (13 digits).
package identifiers

import (
	"regexp"
	"strings"

	"github.com/lotgenius/core/internal/domain"
)

var nonDigit = regexp.MustCompile(`[^0-9]`)

// NormalizeDigits strips every non-digit rune from s.
func NormalizeDigits(s string) string {
	return nonDigit.ReplaceAllString(s, "")
}

// NormalizeASIN uppercases s and returns it only if it is exactly 10
// alphanumeric characters; otherwise returns "".
func NormalizeASIN(s string) string {
	t := strings.ToUpper(strings.TrimSpace(s))
	if len(t) != 10 {
		return ""
	}
	for _, r := range t {
		if !(r >= '0' && r <= '9') && !(r >= 'A' && r <= 'Z') {
			return ""
		}
	}
	return t
}

// ValidateUPCCheckDigit validates a 12-digit UPC-A string against the
// modulo-10 check digit algorithm: odd positions (1st,3rd,...,11th) summed
// and tripled, plus even positions summed, check = (10 - sum%10) % 10.
func ValidateUPCCheckDigit(upc string) bool {
	if len(upc) != 12 {
		return false
	}
	for _, r := range upc {
		if r < '0' || r > '9' {
			return false
		}
	}
	// Only the first 11 digits (the payload) feed the checksum; index 11 is
	// the check digit being verified, never summed.
	oddSum, evenSum := 0, 0
	for i := 0; i < 11; i++ {
		d := int(upc[i] - '0')
		if i%2 == 0 {
			oddSum += d // 1st, 3rd, ..., 11th digits (odd positions, 1-indexed)
		} else {
			evenSum += d // 2nd, 4th, ..., 10th digits (even positions)
		}
	}
	checkDigit := int(upc[11] - '0')
	check := (10 - ((oddSum*3 + evenSum) % 10)) % 10
	return checkDigit == check
}

// isEAN13 reports whether s is exactly 13 digits.
func isEAN13(s string) bool {
	if len(s) != 13 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Raw carries the unnormalized identifier fields a manifest row may supply.
type Raw struct {
	ASIN       string
	UPC        string
	EAN        string
	UPCEANASIN string // combined field; classified by shape/length
}

// Extract normalizes the raw identifier fields into domain.Identifiers with
// priority ASIN > UPC > EAN for the canonical value, and computes
// HasHighTrustID: true iff any identifier is present and, for UPC, the
// check digit is valid.
func Extract(raw Raw) domain.Identifiers {
	var out domain.Identifiers

	if a := NormalizeASIN(raw.ASIN); a != "" {
		out.ASIN = a
	} else if a := NormalizeASIN(raw.UPCEANASIN); a != "" {
		out.ASIN = a
	}

	upcCandidate := raw.UPC
	eanCandidate := raw.EAN
	if out.ASIN == "" && raw.UPCEANASIN != "" {
		digits := NormalizeDigits(raw.UPCEANASIN)
		switch len(digits) {
		case 12:
			upcCandidate = digits
		case 13:
			eanCandidate = digits
		}
	}

	if d := NormalizeDigits(upcCandidate); len(d) == 12 && ValidateUPCCheckDigit(d) {
		out.UPC = d
	}
	if out.UPC == "" {
		if d := NormalizeDigits(eanCandidate); isEAN13(d) {
			out.EAN = d
		}
	}

	out.HasHighTrustID = out.ASIN != "" || out.UPC != "" || out.EAN != ""
	return out
}

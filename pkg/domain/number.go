package domain

import (
	"strings"

	dErrors "numcheck/pkg/domain-errors"
)

// CanonicalNumber is a phone number reduced to bare digits: no leading plus, no
// leading zeros, no separators. Invariant: 8-15 digits, either opening with a
// recognized country calling code or accepted through the long-number fallback.
//
// Usage: construct via ParseCanonicalNumber at trust boundaries; direct casting
// bypasses validation.
//
// This is a deliberate heuristic, not an E.164 validator: the calling-code
// allow-list says nothing about national numbering plans, and the >=10 digit
// fallback admits numbers whose country could not be determined. Callers that
// need real validation must plug in a stricter parser.
type CanonicalNumber string

// String returns the bare digit form.
func (n CanonicalNumber) String() string {
	return string(n)
}

// E164 returns the display form with a leading plus, as used in reports.
func (n CanonicalNumber) E164() string {
	return "+" + string(n)
}

const (
	minNumberDigits = 8
	maxNumberDigits = 15

	// fallbackMinDigits is the threshold for accepting a digit string whose
	// country code is not on the allow-list. Documented as permissive: a
	// ten-digit national number with its trunk zero stripped lands here.
	fallbackMinDigits = 10
)

// countryCallingCodes is the single source of truth for recognized country
// calling codes (ITU-T E.164 assignments, 1-3 digits).
var countryCallingCodes = map[string]struct{}{}

func init() {
	codes := []string{
		"1", "7",
		"20", "27", "30", "31", "32", "33", "34", "36", "39",
		"40", "41", "43", "44", "45", "46", "47", "48", "49",
		"51", "52", "53", "54", "55", "56", "57", "58",
		"60", "61", "62", "63", "64", "65", "66",
		"81", "82", "84", "86",
		"90", "91", "92", "93", "94", "95", "98",
		"211", "212", "213", "216", "218", "220", "221", "222", "223",
		"224", "225", "226", "227", "228", "229", "230", "231", "232",
		"233", "234", "235", "236", "237", "238", "239", "240", "241",
		"242", "243", "244", "245", "246", "248", "249", "250", "251",
		"252", "253", "254", "255", "256", "257", "258", "260", "261",
		"262", "263", "264", "265", "266", "267", "268", "269", "290",
		"291", "297", "298", "299",
		"350", "351", "352", "353", "354", "355", "356", "357", "358",
		"359", "370", "371", "372", "373", "374", "375", "376", "377",
		"378", "380", "381", "382", "383", "385", "386", "387", "389",
		"420", "421", "423",
		"500", "501", "502", "503", "504", "505", "506", "507", "508",
		"509", "590", "591", "592", "593", "594", "595", "596", "597",
		"598", "599",
		"670", "672", "673", "674", "675", "676", "677", "678", "679",
		"680", "681", "682", "683", "685", "686", "687", "688", "689",
		"690", "691", "692",
		"850", "852", "853", "855", "856", "880", "886",
		"960", "961", "962", "963", "964", "965", "966", "967", "968",
		"970", "971", "972", "973", "974", "975", "976", "977",
		"992", "993", "994", "995", "996", "998",
	}
	for _, c := range codes {
		countryCallingCodes[c] = struct{}{}
	}
}

// ParseCanonicalNumber normalizes a free-form candidate token into a
// CanonicalNumber.
//
// Algorithm: strip separators (spaces, tabs, dashes, dots, parentheses), drop a
// single leading plus, reject any other non-digit, strip leading zeros, enforce
// 8-15 digits. A candidate is accepted when it opens with an allow-listed
// calling code (longest match) and keeps at least one subscriber digit, or,
// failing that, when it is at least ten digits long.
//
// Errors: returns CodeInvalidInput for every rejection; callers extracting
// batches drop rejected candidates silently so one garbage token never fails a
// whole upload.
func ParseCanonicalNumber(raw string) (CanonicalNumber, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "empty candidate")
	}

	var b strings.Builder
	for i, r := range trimmed {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			// international prefix, dropped
		case r == ' ' || r == '\t' || r == '-' || r == '.' || r == '(' || r == ')':
			// separator, dropped
		default:
			return "", dErrors.New(dErrors.CodeInvalidInput, "candidate contains non-numeric characters")
		}
	}

	digits := strings.TrimLeft(b.String(), "0")
	if len(digits) < minNumberDigits {
		return "", dErrors.New(dErrors.CodeInvalidInput, "candidate too short")
	}
	if len(digits) > maxNumberDigits {
		return "", dErrors.New(dErrors.CodeInvalidInput, "candidate too long")
	}

	if code, ok := matchCallingCode(digits); ok && len(digits) > len(code) {
		return CanonicalNumber(digits), nil
	}

	if len(digits) >= fallbackMinDigits {
		// Undetermined-country national number, accepted permissively.
		return CanonicalNumber(digits), nil
	}

	return "", dErrors.New(dErrors.CodeInvalidInput, "unrecognized country calling code")
}

// matchCallingCode finds the longest allow-listed calling code prefixing the
// digit string.
func matchCallingCode(digits string) (string, bool) {
	for l := 3; l >= 1; l-- {
		if len(digits) < l {
			continue
		}
		if _, ok := countryCallingCodes[digits[:l]]; ok {
			return digits[:l], true
		}
	}
	return "", false
}

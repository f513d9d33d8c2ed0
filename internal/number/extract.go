// Package number turns free-form text into deduplicated canonical phone
// numbers. Individual candidates that fail validation are dropped silently so
// a single garbage token never fails a whole paste or upload.
package number

import (
	"regexp"
	"strings"

	id "numcheck/pkg/domain"
	pstrings "numcheck/pkg/platform/strings"
)

// tokenSplit matches a run of the delimiters accepted between candidates:
// commas, semicolons, and any whitespace (covers tab-delimited tabular text).
var tokenSplit = regexp.MustCompile(`[,;\s]+`)

// ExtractText tokenizes raw text and normalizes every candidate. The returned
// slice is deduplicated with input order preserved, so downstream processing
// and reports follow the order numbers arrived in.
func ExtractText(text string) []id.CanonicalNumber {
	return normalizeCandidates(Tokenize(text))
}

// Tokenize splits raw text into candidate tokens: first by newlines, then by
// runs of comma/semicolon/whitespace within each line.
func Tokenize(text string) []string {
	var tokens []string
	for _, line := range strings.Split(text, "\n") {
		for _, tok := range tokenSplit.Split(line, -1) {
			if tok != "" {
				tokens = append(tokens, tok)
			}
		}
	}
	return tokens
}

// normalizeCandidates parses each candidate and dedupes the survivors. Note
// the dedupe runs on canonical forms: "+234..." and "234..." collapse to one
// entry even though the raw tokens differ.
func normalizeCandidates(candidates []string) []id.CanonicalNumber {
	canonical := make([]string, 0, len(candidates))
	for _, c := range pstrings.DedupeAndTrim(candidates) {
		n, err := id.ParseCanonicalNumber(c)
		if err != nil {
			// Intentionally silent: isolated garbage must not abort a batch.
			continue
		}
		canonical = append(canonical, n.String())
	}

	deduped := pstrings.DedupeAndTrim(canonical)
	result := make([]id.CanonicalNumber, 0, len(deduped))
	for _, s := range deduped {
		result = append(result, id.CanonicalNumber(s))
	}
	return result
}

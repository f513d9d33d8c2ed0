package domain

import dErrors "numcheck/pkg/domain-errors"

// CheckKind identifies an independent status dimension tested per number.
// Invariant: the value must be one of the supported kinds.
//
// Usage: construct via ParseCheckKind at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type CheckKind string

// Supported check kinds.
const (
	// CheckKindReachability asks whether the number is present on the
	// messaging network at all.
	CheckKindReachability CheckKind = "reachability"

	// CheckKindReceive asks whether the number can receive a text message.
	CheckKindReceive CheckKind = "receive"
)

// validCheckKinds is the single source of truth for valid check kinds.
var validCheckKinds = map[CheckKind]bool{
	CheckKindReachability: true,
	CheckKindReceive:      true,
}

// AllCheckKinds returns the supported kinds in stable order. Stable ordering
// matters for deterministic bucketing and report layout.
func AllCheckKinds() []CheckKind {
	return []CheckKind{CheckKindReachability, CheckKindReceive}
}

// ParseCheckKind constructs a CheckKind from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseCheckKind(s string) (CheckKind, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "check kind cannot be empty")
	}
	k := CheckKind(s)
	if !k.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid check kind")
	}
	return k, nil
}

// IsValid checks if the kind is one of the supported enum values.
func (k CheckKind) IsValid() bool {
	return validCheckKinds[k]
}

// String returns the string representation of the kind.
func (k CheckKind) String() string {
	return string(k)
}

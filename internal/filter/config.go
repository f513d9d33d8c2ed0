// Package filter owns the operation configuration and the bucketing rules
// applied to check outcomes.
package filter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	id "numcheck/pkg/domain"
	dErrors "numcheck/pkg/domain-errors"
)

// Polarity narrows which outcomes satisfy a kind in combo mode.
type Polarity string

const (
	PolarityAny       Polarity = "any"
	PolarityTrueOnly  Polarity = "true_only"
	PolarityFalseOnly Polarity = "false_only"
)

// validPolarities is the single source of truth for valid polarity values.
var validPolarities = map[Polarity]bool{
	PolarityAny:       true,
	PolarityTrueOnly:  true,
	PolarityFalseOnly: true,
}

// ParsePolarity constructs a Polarity from external input.
func ParsePolarity(s string) (Polarity, error) {
	if s == "" {
		return PolarityAny, nil
	}
	p := Polarity(s)
	if !validPolarities[p] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid polarity")
	}
	return p, nil
}

// ComboStrategy selects how per-kind polarity filters combine in combo mode.
// The AND form is the classic behavior; OR is supported as an explicit
// strategy rather than left undefined.
type ComboStrategy string

const (
	ComboAND ComboStrategy = "and"
	ComboOR  ComboStrategy = "or"
)

// ParseComboStrategy constructs a ComboStrategy from external input.
func ParseComboStrategy(s string) (ComboStrategy, error) {
	switch ComboStrategy(s) {
	case "":
		return ComboAND, nil
	case ComboAND:
		return ComboAND, nil
	case ComboOR:
		return ComboOR, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid combo strategy")
	}
}

// Retry interval bounds, in hours. Carried over from the operational defaults
// of the original checker workflow: hourly at the tightest, one week at most.
const (
	MinRetryAfter     = time.Hour
	MaxRetryAfter     = 168 * time.Hour
	DefaultRetryAfter = 24 * time.Hour
)

// KindConfig is the per-kind slice of an OperationConfig.
type KindConfig struct {
	Enabled  bool
	Polarity Polarity
}

// OperationConfig is the active selection of kinds, polarities, and combo
// behavior for one caller. Owned per caller session; mutated only through
// explicit configuration calls.
type OperationConfig struct {
	Kinds          map[id.CheckKind]KindConfig
	Combo          bool
	ComboStrategy  ComboStrategy
	RetryAfter     time.Duration
	SalvagePartial bool
}

// DefaultConfig returns the documented default: all kinds enabled, polarity
// any, combo off, AND strategy, 24h retry hint, partial results discarded on
// systemic failure.
func DefaultConfig() OperationConfig {
	kinds := make(map[id.CheckKind]KindConfig, len(id.AllCheckKinds()))
	for _, k := range id.AllCheckKinds() {
		kinds[k] = KindConfig{Enabled: true, Polarity: PolarityAny}
	}
	return OperationConfig{
		Kinds:         kinds,
		Combo:         false,
		ComboStrategy: ComboAND,
		RetryAfter:    DefaultRetryAfter,
	}
}

// EnabledKinds returns the enabled kinds in the domain's stable order.
func (c OperationConfig) EnabledKinds() []id.CheckKind {
	var kinds []id.CheckKind
	for _, k := range id.AllCheckKinds() {
		if kc, ok := c.Kinds[k]; ok && kc.Enabled {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Validate rejects inconsistent configurations at configuration time. A bad
// config is an error to the caller, never a silent downgrade.
func (c OperationConfig) Validate() error {
	if len(c.EnabledKinds()) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "at least one check kind must be enabled")
	}
	for kind, kc := range c.Kinds {
		if !kind.IsValid() {
			return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown check kind %q", kind))
		}
		if !validPolarities[kc.Polarity] {
			return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("invalid polarity for kind %q", kind))
		}
	}
	if c.Combo && len(c.EnabledKinds()) < 2 {
		return dErrors.New(dErrors.CodeInvalidInput, "combo mode requires at least two enabled kinds")
	}
	if c.ComboStrategy != ComboAND && c.ComboStrategy != ComboOR {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid combo strategy")
	}
	if c.RetryAfter < MinRetryAfter || c.RetryAfter > MaxRetryAfter {
		return dErrors.New(dErrors.CodeInvalidInput, "retry interval must be between 1 and 168 hours")
	}
	return nil
}

// Describe renders the active operation for report headers and audit events.
func (c OperationConfig) Describe() string {
	var parts []string
	for _, k := range c.EnabledKinds() {
		kc := c.Kinds[k]
		if kc.Polarity == PolarityAny {
			parts = append(parts, k.String())
		} else {
			parts = append(parts, fmt.Sprintf("%s(%s)", k, kc.Polarity))
		}
	}
	sort.Strings(parts)
	if c.Combo {
		return fmt.Sprintf("combo %s across %s", strings.ToUpper(string(c.ComboStrategy)), strings.Join(parts, ", "))
	}
	return "per-kind buckets for " + strings.Join(parts, ", ")
}

package filter

import (
	"numcheck/internal/check"
	id "numcheck/pkg/domain"
)

// BucketCombo is the single bucket used in combo mode.
const BucketCombo = "combo"

// BucketOn, BucketOff, and BucketUndetermined name the per-kind buckets of
// non-combo mode. Undetermined gets its own bucket so a failed check is never
// presented as a genuine negative.
func BucketOn(kind id.CheckKind) string           { return kind.String() + "_on" }
func BucketOff(kind id.CheckKind) string          { return kind.String() + "_off" }
func BucketUndetermined(kind id.CheckKind) string { return kind.String() + "_undetermined" }

// NumberOutcomes pairs one number with its full outcome set for the run.
type NumberOutcomes struct {
	Number   id.CanonicalNumber
	Outcomes map[id.CheckKind]check.Outcome
}

// ResultSet is the bucketed output of one run. Buckets hold numbers in
// processing order; Processed retains every number's full outcome set for
// audit and export. Created fresh per run, discarded after the report.
type ResultSet struct {
	Buckets   map[string][]id.CanonicalNumber
	Processed []NumberOutcomes
}

// Stats carries per-bucket counts plus the processed total. Derived from a
// ResultSet, never independently mutated.
type Stats struct {
	Total   int
	Buckets map[string]int
}

// NewResultSet initializes the result set with every bucket the config can
// produce, so empty buckets are present (and render as empty) rather than
// missing from counts.
func NewResultSet(cfg OperationConfig) *ResultSet {
	rs := &ResultSet{Buckets: make(map[string][]id.CanonicalNumber)}
	if cfg.Combo {
		rs.Buckets[BucketCombo] = nil
		return rs
	}
	for _, kind := range cfg.EnabledKinds() {
		rs.Buckets[BucketOn(kind)] = nil
		rs.Buckets[BucketOff(kind)] = nil
		rs.Buckets[BucketUndetermined(kind)] = nil
	}
	return rs
}

// Add classifies one number's outcomes into the result set. The orchestrator
// calls this between chunks, never concurrently.
func (rs *ResultSet) Add(cfg OperationConfig, no NumberOutcomes) {
	rs.Processed = append(rs.Processed, no)

	if cfg.Combo {
		if comboMatch(cfg, no) {
			rs.Buckets[BucketCombo] = append(rs.Buckets[BucketCombo], no.Number)
		}
		return
	}

	// Non-combo: polarity filters do not narrow bucket membership here; every
	// number lands in exactly one bucket per enabled kind.
	for _, kind := range cfg.EnabledKinds() {
		out, ok := no.Outcomes[kind]
		if !ok {
			out = check.Outcome{Status: check.StatusUndetermined}
		}
		switch out.Status {
		case check.StatusMatched:
			rs.Buckets[BucketOn(kind)] = append(rs.Buckets[BucketOn(kind)], no.Number)
		case check.StatusUnmatched:
			rs.Buckets[BucketOff(kind)] = append(rs.Buckets[BucketOff(kind)], no.Number)
		default:
			rs.Buckets[BucketUndetermined(kind)] = append(rs.Buckets[BucketUndetermined(kind)], no.Number)
		}
	}
}

// Stats derives the per-bucket counts.
func (rs *ResultSet) Stats() *Stats {
	st := &Stats{
		Total:   len(rs.Processed),
		Buckets: make(map[string]int, len(rs.Buckets)),
	}
	for name, members := range rs.Buckets {
		st.Buckets[name] = len(members)
	}
	return st
}

// Bucket applies the configured rules to a full outcome sequence at once.
func Bucket(processed []NumberOutcomes, cfg OperationConfig) (*ResultSet, *Stats) {
	rs := NewResultSet(cfg)
	for _, no := range processed {
		rs.Add(cfg, no)
	}
	return rs, rs.Stats()
}

// comboMatch evaluates the per-kind polarity filters under the configured
// strategy. Undetermined outcomes satisfy only PolarityAny: a check that
// produced no answer can never certify a true-only or false-only condition.
func comboMatch(cfg OperationConfig, no NumberOutcomes) bool {
	kinds := cfg.EnabledKinds()
	switch cfg.ComboStrategy {
	case ComboOR:
		for _, kind := range kinds {
			if polaritySatisfied(cfg.Kinds[kind].Polarity, no.Outcomes[kind]) {
				return true
			}
		}
		return false
	default: // ComboAND
		for _, kind := range kinds {
			if !polaritySatisfied(cfg.Kinds[kind].Polarity, no.Outcomes[kind]) {
				return false
			}
		}
		return true
	}
}

func polaritySatisfied(p Polarity, out check.Outcome) bool {
	switch p {
	case PolarityTrueOnly:
		return out.Status == check.StatusMatched
	case PolarityFalseOnly:
		return out.Status == check.StatusUnmatched
	default:
		return true
	}
}

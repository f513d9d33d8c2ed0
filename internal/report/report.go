// Package report turns a run result into caller-facing artifacts: a plain
// text summary and CSV/XLSX exports. Rendering is pure and deterministic;
// everything time-shaped comes in through the result.
package report

import (
	"fmt"
	"strings"
	"time"

	"numcheck/internal/filter"
	"numcheck/internal/run"
	id "numcheck/pkg/domain"
)

// Text renders the run result as a plain-text report. Output is byte-stable
// for a given result: bucket sections follow the configured kind order, and
// numbers appear in processing order.
func Text(res *run.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Number check report\n")
	fmt.Fprintf(&b, "Run:       %s\n", res.RunID)
	fmt.Fprintf(&b, "Generated: %s\n", res.FinishedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Operation: %s\n", res.Config.Describe())
	fmt.Fprintf(&b, "Numbers:   %d processed\n", res.Stats.Total)
	if res.Truncated > 0 {
		fmt.Fprintf(&b, "Note:      %d numbers over the batch limit were not checked\n", res.Truncated)
	}
	if res.Partial {
		fmt.Fprintf(&b, "Note:      run aborted early, results below cover completed checks only\n")
	}

	for _, name := range bucketOrder(res.Config) {
		members := res.Results.Buckets[name]
		if len(members) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n== %s (%d) ==\n", bucketLabel(name), len(members))
		for _, n := range members {
			fmt.Fprintf(&b, "%s\n", n.E164())
		}
	}

	fmt.Fprintf(&b, "\n== Summary ==\n")
	for _, name := range bucketOrder(res.Config) {
		fmt.Fprintf(&b, "%s: %d\n", bucketLabel(name), res.Stats.Buckets[name])
	}
	fmt.Fprintf(&b, "Total: %d\n", res.Stats.Total)

	next := res.FinishedAt.UTC().Add(res.Config.RetryAfter)
	fmt.Fprintf(&b, "Recheck suggested after %s (%s)\n",
		formatRetry(res.Config.RetryAfter), next.Format("2006-01-02 15:04 MST"))

	return b.String()
}

// bucketOrder lists every bucket the configuration produces, in render order.
// Combo mode has a single bucket; per-kind mode orders on, off, undetermined
// within each enabled kind.
func bucketOrder(cfg filter.OperationConfig) []string {
	if cfg.Combo {
		return []string{filter.BucketCombo}
	}
	var names []string
	for _, kind := range cfg.EnabledKinds() {
		names = append(names,
			filter.BucketOn(kind),
			filter.BucketOff(kind),
			filter.BucketUndetermined(kind),
		)
	}
	return names
}

func bucketLabel(name string) string {
	if name == filter.BucketCombo {
		return "combo matches"
	}
	for _, kind := range id.AllCheckKinds() {
		switch name {
		case filter.BucketOn(kind):
			return kind.String() + ": on"
		case filter.BucketOff(kind):
			return kind.String() + ": off"
		case filter.BucketUndetermined(kind):
			return kind.String() + ": undetermined"
		}
	}
	return name
}

// formatRetry renders a retry interval in whole hours, the only granularity
// the configuration accepts.
func formatRetry(d time.Duration) string {
	h := int(d / time.Hour)
	if h == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", h)
}

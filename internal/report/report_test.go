package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"numcheck/internal/check"
	"numcheck/internal/filter"
	"numcheck/internal/run"
	id "numcheck/pkg/domain"
)

func mustNumber(t *testing.T, raw string) id.CanonicalNumber {
	t.Helper()
	n, err := id.ParseCanonicalNumber(raw)
	require.NoError(t, err)
	return n
}

func sampleResult(t *testing.T) *run.Result {
	t.Helper()

	checkedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cfg := filter.DefaultConfig()

	n1 := mustNumber(t, "+2348012345678")
	n2 := mustNumber(t, "+14155550100")
	n3 := mustNumber(t, "+447911123456")

	processed := []filter.NumberOutcomes{
		{Number: n1, Outcomes: map[id.CheckKind]check.Outcome{
			id.CheckKindReachability: {Status: check.StatusMatched, CheckedAt: checkedAt},
			id.CheckKindReceive:      {Status: check.StatusUnmatched, CheckedAt: checkedAt},
		}},
		{Number: n2, Outcomes: map[id.CheckKind]check.Outcome{
			id.CheckKindReachability: {Status: check.StatusUnmatched, CheckedAt: checkedAt},
			id.CheckKindReceive:      {Status: check.StatusMatched, CheckedAt: checkedAt},
		}},
		{Number: n3, Outcomes: map[id.CheckKind]check.Outcome{
			id.CheckKindReachability: {Status: check.StatusUndetermined, Detail: "check timed out", CheckedAt: checkedAt},
			id.CheckKindReceive:      {Status: check.StatusMatched, CheckedAt: checkedAt},
		}},
	}

	results, stats := filter.Bucket(processed, cfg)
	return &run.Result{
		RunID:      "run-report",
		CallerID:   "caller-1",
		Config:     cfg,
		Submitted:  3,
		Processed:  processed,
		Results:    results,
		Stats:      stats,
		StartedAt:  checkedAt,
		FinishedAt: checkedAt.Add(2 * time.Second),
	}
}

func TestTextReport(t *testing.T) {
	res := sampleResult(t)
	out := Text(res)

	assert.Contains(t, out, "Run:       run-report")
	assert.Contains(t, out, "Generated: 2025-06-01 12:00:02 UTC")
	assert.Contains(t, out, "Operation: per-kind buckets for reachability, receive")
	assert.Contains(t, out, "Numbers:   3 processed")

	assert.Contains(t, out, "== reachability: on (1) ==\n+2348012345678\n")
	assert.Contains(t, out, "== reachability: off (1) ==\n+14155550100\n")
	assert.Contains(t, out, "== reachability: undetermined (1) ==\n+447911123456\n")
	assert.Contains(t, out, "== receive: on (2) ==\n+14155550100\n+447911123456\n")

	assert.Contains(t, out, "reachability: undetermined: 1")
	assert.Contains(t, out, "Total: 3")
	assert.Contains(t, out, "Recheck suggested after 24 hours (2025-06-02 12:00 UTC)")
}

func TestTextReportDeterministic(t *testing.T) {
	res := sampleResult(t)
	first := Text(res)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Text(res))
	}
}

func TestTextReportEmptyBucketsOmitted(t *testing.T) {
	res := sampleResult(t)
	// All three numbers have a determined receive outcome.
	out := Text(res)
	assert.NotContains(t, out, "== receive: undetermined (")
	// But the summary still counts the empty bucket.
	assert.Contains(t, out, "receive: undetermined: 0")
}

func TestTextReportComboLayout(t *testing.T) {
	checkedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cfg := filter.DefaultConfig()
	cfg.Combo = true
	cfg.Kinds[id.CheckKindReachability] = filter.KindConfig{Enabled: true, Polarity: filter.PolarityTrueOnly}
	cfg.Kinds[id.CheckKindReceive] = filter.KindConfig{Enabled: true, Polarity: filter.PolarityTrueOnly}

	n1 := mustNumber(t, "+2348012345678")
	processed := []filter.NumberOutcomes{
		{Number: n1, Outcomes: map[id.CheckKind]check.Outcome{
			id.CheckKindReachability: {Status: check.StatusMatched, CheckedAt: checkedAt},
			id.CheckKindReceive:      {Status: check.StatusMatched, CheckedAt: checkedAt},
		}},
	}
	results, stats := filter.Bucket(processed, cfg)
	res := &run.Result{
		RunID: "run-combo", Config: cfg,
		Processed: processed, Results: results, Stats: stats,
		FinishedAt: checkedAt,
	}

	out := Text(res)
	assert.Contains(t, out, "Operation: combo AND across")
	assert.Contains(t, out, "== combo matches (1) ==\n+2348012345678\n")
	assert.NotContains(t, out, "reachability: on")
}

func TestTextReportTruncationAndPartialNotes(t *testing.T) {
	res := sampleResult(t)
	res.Truncated = 5
	res.Partial = true
	out := Text(res)
	assert.Contains(t, out, "5 numbers over the batch limit were not checked")
	assert.Contains(t, out, "results below cover completed checks only")
}

func TestFilename(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC)
	assert.Equal(t, "number_check_20250601_123045.csv", Filename(ts, "csv"))
	assert.Equal(t, "number_check_20250601_123045.xlsx", Filename(ts, "xlsx"))
}

func TestCSVExport(t *testing.T) {
	res := sampleResult(t)

	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, res))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 7) // header + 3 numbers x 2 kinds
	assert.Equal(t, []string{"phone", "kind", "status", "detail", "checked_at", "next_retry"}, records[0])

	first := records[1]
	assert.Equal(t, "+2348012345678", first[0])
	assert.Equal(t, "reachability", first[1])
	assert.Equal(t, "matched", first[2])
	assert.Equal(t, "2025-06-01T12:00:00Z", first[4])
	assert.Equal(t, "2025-06-02T12:00:00Z", first[5])

	// The undetermined outcome carries its detail and no retry hint.
	undet := records[5]
	assert.Equal(t, "+447911123456", undet[0])
	assert.Equal(t, "undetermined", undet[2])
	assert.Equal(t, "check timed out", undet[3])
	assert.Empty(t, undet[5])
}

func TestXLSXExport(t *testing.T) {
	res := sampleResult(t)

	var buf bytes.Buffer
	require.NoError(t, XLSX(&buf, res))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, []string{"phone", "kind", "status", "detail", "checked_at", "next_retry"}, rows[0])
	assert.Equal(t, "+2348012345678", rows[1][0])
	assert.Equal(t, "matched", rows[1][2])
}

package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"numcheck/internal/check"
	"numcheck/internal/run"
	id "numcheck/pkg/domain"
)

// exportHeader is the column layout shared by both export formats.
var exportHeader = []string{"phone", "kind", "status", "detail", "checked_at", "next_retry"}

// Filename builds the canonical export filename for a run finished at t.
func Filename(t time.Time, ext string) string {
	return fmt.Sprintf("number_check_%s.%s", t.UTC().Format("20060102_150405"), ext)
}

// exportRow flattens one (number, kind) outcome into the shared column
// layout. Undetermined outcomes export with an empty next_retry: there is no
// point scheduling a recheck of an answer that never arrived on the same
// cadence as real answers.
func exportRow(res *run.Result, number id.CanonicalNumber, kind id.CheckKind, out check.Outcome) []string {
	checkedAt := ""
	if !out.CheckedAt.IsZero() {
		checkedAt = out.CheckedAt.UTC().Format(time.RFC3339)
	}

	nextRetry := ""
	if out.Status.Determined() && !out.CheckedAt.IsZero() {
		interval := out.RetryAfter
		if interval <= 0 {
			interval = res.Config.RetryAfter
		}
		nextRetry = out.CheckedAt.UTC().Add(interval).Format(time.RFC3339)
	}

	return []string{
		number.E164(),
		kind.String(),
		string(out.Status),
		out.Detail,
		checkedAt,
		nextRetry,
	}
}

func exportRows(res *run.Result) [][]string {
	kinds := res.Config.EnabledKinds()
	rows := make([][]string, 0, len(res.Processed)*len(kinds))
	for _, no := range res.Processed {
		for _, kind := range kinds {
			out, ok := no.Outcomes[kind]
			if !ok {
				out = check.Outcome{Status: check.StatusUndetermined}
			}
			rows = append(rows, exportRow(res, no.Number, kind, out))
		}
	}
	return rows
}

// CSV writes the per-outcome export in CSV form.
func CSV(w io.Writer, res *run.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range exportRows(res) {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// XLSX writes the per-outcome export as a single-sheet workbook.
func XLSX(w io.Writer, res *run.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for i, row := range exportRows(res) {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell := "A" + strconv.Itoa(i+2)
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("write xlsx row: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

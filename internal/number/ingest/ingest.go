// Package ingest reads uploaded number lists. Supported kinds: plain
// line-delimited text, comma/semicolon-delimited tabular text, and xlsx
// workbooks. Every cell of tabular input is an independent candidate.
package ingest

import (
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"numcheck/internal/number"
	id "numcheck/pkg/domain"
	dErrors "numcheck/pkg/domain-errors"
	pstrings "numcheck/pkg/platform/strings"
)

// maxUploadBytes bounds how much of an upload is read into memory.
const maxUploadBytes = 8 << 20

// ExtractFile normalizes every candidate found in an uploaded file. The
// filename extension selects the decoder; unsupported extensions are rejected
// before any content is inspected.
//
// Decoding is forgiving: malformed UTF-8 in text content is replaced rather
// than reported, so one bad byte sequence never fails an upload.
func ExtractFile(r io.Reader, filename string) ([]id.CanonicalNumber, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxUploadBytes))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read upload")
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return number.ExtractText(lossyString(data)), nil
	case ".csv":
		return extractCSV(lossyString(data)), nil
	case ".xlsx":
		return extractXLSX(data)
	default:
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unsupported file type: only .txt, .csv, and .xlsx are accepted")
	}
}

// extractCSV treats every cell as an independent candidate. The reader is
// deliberately lax (variable field counts, stray quotes demoted to content)
// because real uploads are messy; rows that still fail to parse fall back to
// plain-text tokenization of the raw line.
func extractCSV(content string) []id.CanonicalNumber {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var cells []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Whole-file parse failure: degrade to token extraction so a
			// malformed header or row does not discard valid numbers.
			return number.ExtractText(content)
		}
		cells = append(cells, record...)
	}

	return normalizeCells(cells)
}

// extractXLSX walks every cell of every sheet.
func extractXLSX(data []byte) ([]id.CanonicalNumber, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "failed to open xlsx workbook")
	}
	defer f.Close()

	var cells []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "failed to read xlsx sheet")
		}
		for _, row := range rows {
			cells = append(cells, row...)
		}
	}

	return normalizeCells(cells), nil
}

func normalizeCells(cells []string) []id.CanonicalNumber {
	canonical := make([]string, 0, len(cells))
	for _, cell := range cells {
		n, err := id.ParseCanonicalNumber(cell)
		if err != nil {
			// Header cells and stray labels land here; dropped silently.
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

// lossyString decodes bytes as UTF-8, replacing invalid sequences.
func lossyString(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), string(utf8.RuneError))
}

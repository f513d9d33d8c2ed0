package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	id "numcheck/pkg/domain"
	dErrors "numcheck/pkg/domain-errors"
)

func TestExtractFileTxt(t *testing.T) {
	content := "+2348012345678\n08012345678\njunk\n"
	got, err := ExtractFile(strings.NewReader(content), "numbers.txt")
	require.NoError(t, err)
	assert.Equal(t, []id.CanonicalNumber{"2348012345678", "8012345678"}, got)
}

func TestExtractFileTxtLossyDecoding(t *testing.T) {
	// Invalid UTF-8 between valid candidates must not abort the upload.
	content := []byte("+2348012345678\n\xff\xfe\n+14155550123\n")
	got, err := ExtractFile(bytes.NewReader(content), "numbers.txt")
	require.NoError(t, err)
	assert.Equal(t, []id.CanonicalNumber{"2348012345678", "14155550123"}, got)
}

func TestExtractFileCSV(t *testing.T) {
	t.Run("every cell is a candidate", func(t *testing.T) {
		content := "name,phone,backup\nalice,+2348012345678,+14155550123\nbob,+442079460958,\n"
		got, err := ExtractFile(strings.NewReader(content), "contacts.csv")
		require.NoError(t, err)
		assert.Equal(t, []id.CanonicalNumber{"2348012345678", "14155550123", "442079460958"}, got)
	})

	t.Run("duplicates across rows collapse", func(t *testing.T) {
		content := "+2348012345678\n+2348012345678\n08012345678\n"
		got, err := ExtractFile(strings.NewReader(content), "dupes.csv")
		require.NoError(t, err)
		assert.Equal(t, []id.CanonicalNumber{"2348012345678", "8012345678"}, got)
	})
}

func TestExtractFileXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "phone"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "+2348012345678"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "+14155550123"))
	require.NoError(t, f.SetCellValue("Sheet1", "A3", "08012345678"))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	got, err := ExtractFile(&buf, "upload.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []id.CanonicalNumber{"2348012345678", "14155550123", "8012345678"}, got)
}

func TestExtractFileUnsupportedType(t *testing.T) {
	_, err := ExtractFile(strings.NewReader("data"), "numbers.pdf")
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeInvalidInput))
}

func TestExtractFileCorruptXLSX(t *testing.T) {
	_, err := ExtractFile(strings.NewReader("this is not a zip"), "broken.xlsx")
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeInvalidInput))
}

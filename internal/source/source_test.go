package source

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

// writeXlsxFixture writes a one-sheet workbook with a header row and a data
// row containing an empty middle cell.
func writeXlsxFixture(t *testing.T, path string) {
	t.Helper()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Summary")
	require.NoError(t, err)

	header := sheet.AddRow()
	header.AddCell().Value = "Round"
	header.AddCell().Value = "Series A"

	data := sheet.AddRow()
	data.AddCell().Value = "Investment"
	data.AddCell().Value = ""
	data.AddCell().Value = "$5,000,000"

	require.NoError(t, f.Save(path))
}

// writeDocxFixture writes a minimal .docx: a zip whose word/document.xml
// holds the given paragraphs.
func writeDocxFixture(t *testing.T, path string, paragraphs ...string) {
	t.Helper()

	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close() //nolint:errcheck

	zw := zip.NewWriter(out)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)

	body := `<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	for _, p := range paragraphs {
		body += `<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`
	}
	body += `</w:body></w:document>`

	_, err = w.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
}

// writeZipFixture writes a zip archive with the given name→content entries.
func writeZipFixture(t *testing.T, path string, entries map[string]string) {
	t.Helper()

	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close() //nolint:errcheck

	zw := zip.NewWriter(out)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestParseExcel(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "Model.xlsx")
	writeXlsxFixture(t, path)

	text, err := ParseExcel(path)
	require.NoError(t, err)

	assert.Contains(t, text, "=== Sheet: Summary ===")
	assert.Contains(t, text, "A1: Round | B1: Series A")
	// Empty B2 is skipped so the data row jumps from A2 to C2.
	assert.Contains(t, text, "A2: Investment | C2: $5,000,000")
}

func TestParseExcelMissingFile(t *testing.T) {
	t.Parallel()

	_, err := ParseExcel(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}

func TestColumnLetter(t *testing.T) {
	t.Parallel()

	cases := map[int]string{1: "A", 2: "B", 26: "Z", 27: "AA", 28: "AB", 52: "AZ", 53: "BA"}
	for col, want := range cases {
		assert.Equal(t, want, columnLetter(col), "column %d", col)
	}
}

func TestParseDocx(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sheet.docx")
	writeDocxFixture(t, path, "TERM SHEET", "Investment Amount: $5,000,000")

	text, err := ParseDocx(path)
	require.NoError(t, err)
	assert.Equal(t, "TERM SHEET\n\nInvestment Amount: $5,000,000", text)
}

func TestParseDocxMissingDocumentXML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.docx")
	writeZipFixture(t, path, map[string]string{"other.xml": "<x/>"})

	_, err := ParseDocx(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "word/document.xml")
}

func TestScanPrintable(t *testing.T) {
	t.Parallel()

	long := "This sentence is comfortably longer than the run threshold."
	raw := append([]byte{0x00, 0x01, 0xFF}, []byte(long)...)
	raw = append(raw, 0x00, 0x02)
	raw = append(raw, []byte("short")...) // under the threshold, dropped
	raw = append(raw, 0x00)

	path := filepath.Join(t.TempDir(), "legacy.doc")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	text, err := ScanPrintable(path)
	require.NoError(t, err)
	assert.Equal(t, long, text)
}

func TestExtractZip(t *testing.T) {
	t.Parallel()

	t.Run("extracts entries", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		zipPath := filepath.Join(dir, "docs.zip")
		writeZipFixture(t, zipPath, map[string]string{
			"note.txt":        "hello",
			"nested/deep.txt": "world",
		})

		destDir := filepath.Join(dir, "out")
		require.NoError(t, os.MkdirAll(destDir, 0o755))

		paths, err := ExtractZip(zipPath, destDir)
		require.NoError(t, err)
		assert.Len(t, paths, 2)

		content, err := os.ReadFile(filepath.Join(destDir, "note.txt"))
		require.NoError(t, err)
		assert.Equal(t, "hello", string(content))
	})

	t.Run("rejects zip slip", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		zipPath := filepath.Join(dir, "evil.zip")
		writeZipFixture(t, zipPath, map[string]string{"../escape.txt": "nope"})

		destDir := filepath.Join(dir, "out")
		require.NoError(t, os.MkdirAll(destDir, 0o755))

		_, err := ExtractZip(zipPath, destDir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "zip slip")
	})
}

func TestReadTextFile(t *testing.T) {
	t.Parallel()

	t.Run("utf-8", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "a.txt")
		require.NoError(t, os.WriteFile(path, []byte("résumé"), 0o644))

		text, err := readTextFile(path)
		require.NoError(t, err)
		assert.Equal(t, "résumé", text)
	})

	t.Run("latin-1 fallback", func(t *testing.T) {
		t.Parallel()

		// 0xE9 is é in Latin-1 and invalid as standalone UTF-8.
		path := filepath.Join(t.TempDir(), "b.txt")
		require.NoError(t, os.WriteFile(path, []byte{'c', 'a', 'f', 0xE9}, 0o644))

		text, err := readTextFile(path)
		require.NoError(t, err)
		assert.Equal(t, "café", text)
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("full data directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeXlsxFixture(t, filepath.Join(dir, "Model.xlsx"))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "firm_policy.md"), []byte("# Policy"), 0o644))
		writeZipFixture(t, filepath.Join(dir, "Termsheets.zip"), map[string]string{
			"sheet_a.txt":    "Series A terms",
			".DS_Store":      "junk",
			"__MACOSX/x.txt": "junk",
		})

		sources, err := Load(dir)
		require.NoError(t, err)

		assert.Contains(t, sources, KeyDealModel)
		assert.Equal(t, "# Policy", sources[KeyFirmPolicy])
		assert.Equal(t, "Series A terms", sources["Termsheets/sheet_a.txt"])
		assert.NotContains(t, sources, "Termsheets/.DS_Store")
		assert.NotContains(t, sources, "Termsheets/x.txt")
	})

	t.Run("pre-extracted termsheets directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		tsDir := filepath.Join(dir, "Termsheets")
		require.NoError(t, os.MkdirAll(tsDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(tsDir, "offer.md"), []byte("## Offer"), 0o644))

		sources, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, "## Offer", sources["Termsheets/offer.md"])
	})

	t.Run("empty directory", func(t *testing.T) {
		t.Parallel()

		_, err := Load(t.TempDir())
		assert.ErrorIs(t, err, ErrNoSources)
	})

	t.Run("missing directory", func(t *testing.T) {
		t.Parallel()

		_, err := Load(filepath.Join(t.TempDir(), "absent"))
		assert.Error(t, err)
	})

	t.Run("unparseable file skipped", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "firm_policy.md"), []byte("# P"), 0o644))
		// Corrupt zip entry name is fatal for the archive but not the run.
		require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.zip"), []byte("not a zip"), 0o644))

		sources, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, "# P", sources[KeyFirmPolicy])
	})
}

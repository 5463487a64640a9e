package source

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ParseExcel renders a workbook into cell-addressed text, one line per
// non-empty row:
//
//	=== Sheet: Summary ===
//	A1: Round | B1: Series A
//
// The addresses let the extractor cite exact provenance (e.g. "Summary!B1").
func ParseExcel(path string) (string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return "", eris.Wrap(err, "excel: open file")
	}

	var b strings.Builder
	for _, sheet := range f.Sheets {
		fmt.Fprintf(&b, "\n=== Sheet: %s ===\n", sheet.Name)

		for rowIdx, row := range sheet.Rows {
			var cells []string
			for colIdx, cell := range row.Cells {
				text := strings.TrimSpace(cell.String())
				if text == "" {
					continue
				}
				cells = append(cells, fmt.Sprintf("%s%d: %s", columnLetter(colIdx+1), rowIdx+1, text))
			}
			if len(cells) > 0 {
				b.WriteString(strings.Join(cells, " | "))
				b.WriteString("\n")
			}
		}
	}

	return b.String(), nil
}

// columnLetter converts a 1-based column number to its spreadsheet letter
// (1=A, 26=Z, 27=AA).
func columnLetter(col int) string {
	var out []byte
	for col > 0 {
		col--
		out = append([]byte{byte('A' + col%26)}, out...)
		col /= 26
	}
	return string(out)
}

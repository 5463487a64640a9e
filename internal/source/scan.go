package source

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// minRunLength filters out the short printable fragments that binary
// formats hold in their framing structures.
const minRunLength = 20

// ScanPrintable is a best-effort text extractor for binary document formats
// we have no structured parser for (legacy .doc, unprocessed .pdf). It keeps
// runs of printable ASCII longer than minRunLength and discards the rest.
// Accuracy is not guaranteed; the result is reference material only.
func ScanPrintable(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrap(err, "scan: read file")
	}

	var (
		parts []string
		run   strings.Builder
	)

	flush := func() {
		if run.Len() > minRunLength {
			parts = append(parts, run.String())
		}
		run.Reset()
	}

	for _, c := range content {
		if (c >= 32 && c <= 126) || c == '\t' || c == '\n' || c == '\r' {
			run.WriteByte(c)
		} else {
			flush()
		}
	}
	flush()

	return strings.Join(parts, "\n"), nil
}

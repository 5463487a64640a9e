package review

import (
	"fmt"

	"github.com/crestline-vc/termsheet-cli/internal/model"
)

// CanFinalize reports whether the term sheet is ready for completion. Every
// field must sit at full confidence; anything below 1.0 blocks. The blocking
// list holds qualified "section.field" names in schema order. The scan never
// mutates the term sheet.
func CanFinalize(ts *model.TermSheet) (bool, []string) {
	var blocking []string
	ts.EachField(func(section, field string, rec *model.FieldRecord) {
		if rec.Confidence < 1.0 {
			blocking = append(blocking, fmt.Sprintf("%s.%s", section, field))
		}
	})
	return len(blocking) == 0, blocking
}

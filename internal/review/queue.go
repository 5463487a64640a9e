package review

import (
	"github.com/crestline-vc/termsheet-cli/internal/model"
)

// QueueItem is one field's position in the review queue.
type QueueItem struct {
	Section  string               `json:"section"`
	Field    string               `json:"field"`
	Priority model.ReviewPriority `json:"priority"`
}

// Queue classifies every field in the term sheet against its review
// priority, in schema order. Required fields are treated as high stakes,
// so even a fully confident extraction of one asks for confirmation.
func Queue(ts *model.TermSheet) []QueueItem {
	items := make([]QueueItem, 0, 48)
	ts.EachField(func(section, field string, rec *model.FieldRecord) {
		items = append(items, QueueItem{
			Section:  section,
			Field:    field,
			Priority: rec.ReviewPriority(highStakes(section, field)),
		})
	})
	return items
}

func highStakes(section, field string) bool {
	for _, ref := range model.RequiredFields {
		if ref.Section == section && ref.Field == field {
			return true
		}
	}
	return false
}

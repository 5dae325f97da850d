package contentstore

import (
	"encoding/json"
	"fmt"

	"github.com/starford/oikos/internal/models"
)

// lessonShape accepts both the canonical paginated lesson and the legacy flat
// shape (opaque numeric "id" plus "content.sections" directly on the lesson).
type lessonShape struct {
	UnitNumber *int          `json:"unit_number"`
	ID         *int          `json:"id"`
	Title      string        `json:"title"`
	Pages      []models.Page `json:"pages"`
	Content    *struct {
		Sections []models.Section `json:"sections"`
	} `json:"content"`
}

// DecodeLessons interprets a raw JSON lesson array, migrating legacy flat
// lessons into the canonical paginated shape: the id becomes the unit number
// and the flattened sections become a single page numbered 1. The canonical
// shape is the only one ever written back out.
func DecodeLessons(raw json.RawMessage) ([]models.Lesson, error) {
	var shapes []lessonShape
	if err := json.Unmarshal(raw, &shapes); err != nil {
		return nil, fmt.Errorf("contentstore: lessons: %w", err)
	}

	out := make([]models.Lesson, 0, len(shapes))
	for i, sh := range shapes {
		unit := 0
		switch {
		case sh.UnitNumber != nil:
			unit = *sh.UnitNumber
		case sh.ID != nil:
			unit = *sh.ID
		default:
			return nil, fmt.Errorf("contentstore: lesson %d: missing unit_number and id", i)
		}

		pages := sh.Pages
		if len(pages) == 0 && sh.Content != nil {
			pages = []models.Page{{PageNumber: 1, Sections: sh.Content.Sections}}
		}
		sortPages(pages)

		out = append(out, models.Lesson{
			UnitNumber: unit,
			Title:      sh.Title,
			Pages:      pages,
		})
	}
	return out, nil
}

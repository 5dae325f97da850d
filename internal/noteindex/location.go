// Package noteindex maintains the ordered note lists attached to section
// locations.
package noteindex

import (
	"fmt"
	"strconv"
	"strings"
)

// locationSep joins the key fields in the serialized form. Section ids are
// short slugs ("s1", "s2") and unit/page parts are numeric, so the separator
// can never occur inside a field.
const locationSep = "-"

// Location identifies exactly one section for note attachment. It is a real
// composite key: equality and map hashing work field-wise, and the string
// form exists only at the JSON boundary.
type Location struct {
	Unit    int
	Page    int
	Section string
}

// String returns the serialized "unit-page-section" form.
func (l Location) String() string {
	return strconv.Itoa(l.Unit) + locationSep + strconv.Itoa(l.Page) + locationSep + l.Section
}

// MarshalText serializes the location for use as a JSON map key.
func (l Location) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText parses a serialized location. Two-part keys from the earliest
// snapshot format ("unit-section", written before pages existed) are accepted
// with the page defaulting to 1.
func (l *Location) UnmarshalText(text []byte) error {
	loc, err := ParseLocation(string(text))
	if err != nil {
		return err
	}
	*l = loc
	return nil
}

// ParseLocation parses "unit-page-section" or the legacy "unit-section" form.
// Parsing the output of String always recovers the same triple.
func ParseLocation(s string) (Location, error) {
	parts := strings.SplitN(s, locationSep, 3)
	if len(parts) < 2 {
		return Location{}, fmt.Errorf("noteindex: malformed location %q", s)
	}
	unit, err := strconv.Atoi(parts[0])
	if err != nil {
		return Location{}, fmt.Errorf("noteindex: location %q: unit: %w", s, err)
	}
	if len(parts) == 2 {
		return Location{Unit: unit, Page: 1, Section: parts[1]}, nil
	}
	page, err := strconv.Atoi(parts[1])
	if err != nil {
		return Location{}, fmt.Errorf("noteindex: location %q: page: %w", s, err)
	}
	if parts[2] == "" {
		return Location{}, fmt.Errorf("noteindex: malformed location %q: empty section", s)
	}
	return Location{Unit: unit, Page: page, Section: parts[2]}, nil
}

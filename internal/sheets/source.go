package sheets

import (
	"fmt"
	"regexp"
)

var (
	sheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)
	gidPattern     = regexp.MustCompile(`gid=(\d+)`)
)

// Source identifies one spreadsheet tab: the document ID plus the numeric
// sub-sheet selector. Derived once from a user-supplied URL and immutable
// afterwards.
type Source struct {
	SheetID string
	GID     string
}

// ParseSheetURL extracts a Source from an arbitrary link. The document ID is
// the path token following /spreadsheets/d/; the selector is an optional
// gid=N anywhere in the URL, defaulting to "0". Match-or-fail: there are no
// partial results. Pure, no network access.
func ParseSheetURL(raw string) (Source, error) {
	m := sheetIDPattern.FindStringSubmatch(raw)
	if m == nil {
		return Source{}, ErrInvalidSheetURL
	}
	src := Source{SheetID: m[1], GID: "0"}
	if gm := gidPattern.FindStringSubmatch(raw); gm != nil {
		src.GID = gm[1]
	}
	return src, nil
}

// CSVURL returns the public CSV export endpoint for the source.
func (s Source) CSVURL() string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv&gid=%s", s.SheetID, s.GID)
}

// Key returns a stable identity for maps and request coalescing.
func (s Source) Key() string {
	return s.SheetID + "#" + s.GID
}

// IsZero reports whether the source has not been set.
func (s Source) IsZero() bool {
	return s.SheetID == ""
}

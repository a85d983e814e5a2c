package checkpoint

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key identifies one resumable activity listing.
type Key struct {
	// ProfileID is the Wise profile whose activities are listed.
	ProfileID string

	// Filters are the listing's query parameters, nextCursor excluded.
	Filters url.Values
}

// String generates a deterministic Redis key.
// Format: wise:activities:<profile>:filter1=val1:filter2=val2
//
// Profile, names and values are query-escaped, so separators inside them
// cannot make two filter sets share a key.
//
// Example:
//
//	wise:activities:12345:since=2024-01-01T00%3A00%3A00Z:status=COMPLETED
func (k Key) String() string {
	parts := []string{"wise", "activities", url.QueryEscape(k.ProfileID)}

	if len(k.Filters) > 0 {
		names := make([]string, 0, len(k.Filters))
		for name := range k.Filters {
			if name == "nextCursor" {
				continue
			}
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			values := make([]string, 0, len(k.Filters[name]))
			for _, v := range k.Filters[name] {
				values = append(values, url.QueryEscape(v))
			}
			sort.Strings(values)
			parts = append(parts, fmt.Sprintf("%s=%s", url.QueryEscape(name), strings.Join(values, ",")))
		}
	}

	return strings.Join(parts, ":")
}

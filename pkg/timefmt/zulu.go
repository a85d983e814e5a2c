// Package timefmt formats timestamps the way the Wise API expects them in
// query parameters.
package timefmt

import "time"

// ZuluLayout is extended ISO-8601 in UTC with second precision and a literal Z.
const ZuluLayout = "2006-01-02T15:04:05Z"

// Zulu converts t to UTC and formats it with ZuluLayout.
// Sub-second precision is truncated, not rounded.
func Zulu(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(ZuluLayout)
}

package filter

import "regexp"

var (
	timestampPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`)
	uuidPattern     = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

// IsDynamic reports whether s looks generated per request: an ISO-8601
// timestamp (by its YYYY-MM-DDTHH:MM:SS prefix) or a UUID.
func IsDynamic(s string) bool {
	return timestampPrefix.MatchString(s) || uuidPattern.MatchString(s)
}

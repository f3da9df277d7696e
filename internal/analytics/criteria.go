package analytics

import (
	"net/url"
	"time"
)

// Criteria is the normalized set of restrictions shared by every analytics
// view. Empty string fields and nil pointers mean "no restriction on this
// dimension".
type Criteria struct {
	Project  string
	Employee string
	Status   string
	Billable *bool
	Start    *time.Time
	End      *time.Time
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
}

func parseDate(value string) *time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

func normalizeID(value string) string {
	if value == "all" {
		return ""
	}
	return value
}

// ParseCriteria builds Criteria from raw query parameters. It never fails:
// the literal "all", absent values, and anything unparseable all collapse to
// "no restriction", so garbage input widens the result set instead of
// producing an error.
func ParseCriteria(values url.Values) Criteria {
	c := Criteria{
		Project:  normalizeID(values.Get("project")),
		Employee: normalizeID(values.Get("employee")),
		Status:   normalizeID(values.Get("status")),
	}

	switch values.Get("billable") {
	case "true":
		b := true
		c.Billable = &b
	case "false":
		b := false
		c.Billable = &b
	}

	if start := values.Get("start"); start != "" {
		c.Start = parseDate(start)
	}
	if end := values.Get("end"); end != "" {
		c.End = parseDate(end)
	}
	return c
}

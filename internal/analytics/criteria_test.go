package analytics

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCriteria(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Criteria
	}{
		{
			name:  "empty query means no restrictions",
			query: "",
			want:  Criteria{},
		},
		{
			name:  "all collapses to no restriction",
			query: "project=all&employee=all&status=all&billable=all",
			want:  Criteria{},
		},
		{
			name:  "concrete ids pass through",
			query: "project=p1&employee=u2&status=In+Progress",
			want:  Criteria{Project: "p1", Employee: "u2", Status: "In Progress"},
		},
		{
			name:  "unrecognized billable value is ignored",
			query: "billable=maybe",
			want:  Criteria{},
		},
		{
			name:  "garbage dates impose no bound",
			query: "start=not-a-date&end=also-not",
			want:  Criteria{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ParseCriteria(values))
		})
	}
}

func TestParseCriteriaBillable(t *testing.T) {
	c := ParseCriteria(url.Values{"billable": {"true"}})
	require.NotNil(t, c.Billable)
	assert.True(t, *c.Billable)

	c = ParseCriteria(url.Values{"billable": {"false"}})
	require.NotNil(t, c.Billable)
	assert.False(t, *c.Billable)
}

func TestParseCriteriaDates(t *testing.T) {
	c := ParseCriteria(url.Values{"start": {"2024-03-01"}, "end": {"2024-03-31"}})
	require.NotNil(t, c.Start)
	require.NotNil(t, c.End)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *c.Start)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), *c.End)

	c = ParseCriteria(url.Values{"start": {"2024-03-01T12:30:00Z"}})
	require.NotNil(t, c.Start)
	assert.Equal(t, 12, c.Start.Hour())
}

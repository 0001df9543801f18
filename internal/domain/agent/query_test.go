package agent_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/alanyang/agentpages/internal/domain/agent"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Query
	}{
		{
			name: "empty uses defaults",
			raw:  "",
			want: Query{Sort: SortDefault, Limit: 20},
		},
		{
			name: "all params",
			raw:  "q=weather&platform=langchain&tag=ai&type=service&sort=newest&limit=5&offset=10",
			want: Query{Q: "weather", Platform: "langchain", Tag: "ai", Type: TypeService, Sort: SortNewest, Limit: 5, Offset: 10},
		},
		{
			name: "non-numeric limit falls back",
			raw:  "limit=abc&offset=xyz",
			want: Query{Sort: SortDefault, Limit: 20},
		},
		{
			name: "limit clamped to max",
			raw:  "limit=5000",
			want: Query{Sort: SortDefault, Limit: MaxLimit},
		},
		{
			name: "negative limit clamps to one",
			raw:  "limit=-3&offset=-7",
			want: Query{Sort: SortDefault, Limit: 1},
		},
		{
			name: "unknown sort is default",
			raw:  "sort=random",
			want: Query{Sort: SortDefault, Limit: 20},
		},
		{
			name: "whitespace trimmed",
			raw:  "q=%20%20bot%20&sort=%20name",
			want: Query{Q: "bot", Sort: SortName, Limit: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := url.ParseQuery(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ParseQuery(v))
		})
	}
}

func TestQueryOrder(t *testing.T) {
	assert.Equal(t, []OrderTerm{{Field: FieldCreatedAt, Desc: true}}, Query{Sort: SortNewest}.Order())
	assert.Equal(t, []OrderTerm{{Field: FieldName}}, Query{Sort: SortName}.Order())

	def := Query{Sort: SortDefault}.Order()
	require.Len(t, def, 4)
	assert.Equal(t, FieldFeatured, def[0].Field)
	assert.Equal(t, FieldMessageCount, def[1].Field)
	assert.True(t, def[1].NullsLast)
	assert.Equal(t, FieldRating, def[2].Field)
	assert.Equal(t, FieldCreatedAt, def[3].Field)

	override := []OrderTerm{{Field: FieldLastSeenAt, Desc: true}}
	assert.Equal(t, override, Query{Sort: SortName, OrderBy: override}.Order())
}

func TestQueryMatches(t *testing.T) {
	l := Listing{
		Name:        "Weather Bot",
		Description: "Forecasts for anywhere",
		Platform:    "langchain",
		Tags:        []string{"weather", "ai"},
		Type:        TypeAgent,
	}

	tests := []struct {
		name string
		q    Query
		want bool
	}{
		{"no filters", Query{}, true},
		{"platform match", Query{Platform: "langchain"}, true},
		{"platform mismatch", Query{Platform: "crewai"}, false},
		{"tag contained", Query{Tag: "ai"}, true},
		{"tag missing", Query{Tag: "finance"}, false},
		{"type match", Query{Type: TypeAgent}, true},
		{"type mismatch", Query{Type: TypeService}, false},
		{"q matches name case-insensitively", Query{Q: "WEATHER"}, true},
		{"q matches description", Query{Q: "anywhere"}, true},
		{"q misses", Query{Q: "stocks"}, false},
		{"featured only excludes", Query{FeaturedOnly: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.q.Matches(l))
		})
	}
}

func ptrF(f float64) *float64 { return &f }

func TestQueryApply_DefaultOrdering(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	all := []Listing{
		{Name: "plain-old", CreatedAt: base},
		{Name: "plain-new", CreatedAt: base.Add(time.Hour)},
		{Name: "busy", MessageCount: 50, CreatedAt: base},
		{Name: "rated", Rating: ptrF(4.9), CreatedAt: base},
		{Name: "featured", Featured: true, CreatedAt: base},
	}

	got := Query{Sort: SortDefault}.Apply(all)
	names := make([]string, len(got))
	for i, l := range got {
		names[i] = l.Name
	}
	// Unrated listings sort after rated ones (NULLS LAST).
	assert.Equal(t, []string{"featured", "busy", "rated", "plain-new", "plain-old"}, names)
}

func TestQueryApply_Pagination(t *testing.T) {
	var all []Listing
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		all = append(all, Listing{Name: n})
	}

	got := Query{Sort: SortName, Limit: 2, Offset: 1}.Apply(all)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Name)
	assert.Equal(t, "c", got[1].Name)

	assert.Empty(t, Query{Sort: SortName, Offset: 10}.Apply(all))
}

func TestActiveAgentsQuery_NullLastSeenSortsLast(t *testing.T) {
	seen := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	all := []Listing{
		{Name: "never", Type: TypeAgent, MessageCount: 500},
		{Name: "seen", Type: TypeAgent, LastSeenAt: &seen},
		{Name: "svc", Type: TypeService, LastSeenAt: &seen},
	}

	got := ActiveAgentsQuery(5).Apply(all)
	require.Len(t, got, 2)
	assert.Equal(t, "seen", got[0].Name)
	assert.Equal(t, "never", got[1].Name)
}

func TestFeaturedQuery(t *testing.T) {
	all := []Listing{
		{Name: "x", Featured: true, MessageCount: 1},
		{Name: "y"},
		{Name: "z", Featured: true, MessageCount: 9},
	}
	got := FeaturedQuery().Apply(all)
	require.Len(t, got, 2)
	assert.Equal(t, "z", got[0].Name)
}

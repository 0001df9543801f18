package agent

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	domainagent "github.com/alanyang/agentpages/internal/domain/agent"
)

func orderClause(sql string) string {
	i := strings.Index(sql, " ORDER BY ")
	j := strings.Index(sql, " LIMIT ")
	return sql[i+len(" ORDER BY ") : j]
}

func TestBuildListQuery_Defaults(t *testing.T) {
	sql, args := buildListQuery(domainagent.ParseQuery(url.Values{}))

	assert.Equal(t, "featured DESC, message_count DESC NULLS LAST, rating DESC NULLS LAST, created_at DESC, id", orderClause(sql))
	assert.True(t, strings.HasSuffix(sql, "LIMIT $1 OFFSET $2"))
	assert.Equal(t, []interface{}{20, 0}, args)
	assert.NotContains(t, sql, " AND ")
}

func TestBuildListQuery_Filters(t *testing.T) {
	q := domainagent.ParseQuery(url.Values{
		"q":        {"50%_off"},
		"platform": {"crewai"},
		"tag":      {"search"},
		"type":     {"service"},
		"sort":     {"name"},
		"limit":    {"500"},
		"offset":   {"10"},
	})
	sql, args := buildListQuery(q)

	assert.Contains(t, sql, "AND platform = $1")
	assert.Contains(t, sql, "AND $2 = ANY(tags)")
	assert.Contains(t, sql, "AND type = $3")
	assert.Contains(t, sql, "AND (name ILIKE $4 OR description ILIKE $4)")
	assert.Equal(t, "name, id", orderClause(sql))
	assert.Equal(t, []interface{}{"crewai", "search", "service", `%50\%\_off%`, 100, 10}, args)
}

func TestBuildListQuery_Newest(t *testing.T) {
	sql, _ := buildListQuery(domainagent.Query{Sort: domainagent.SortNewest})
	assert.Equal(t, "created_at DESC, id", orderClause(sql))
}

func TestBuildListQuery_Highlights(t *testing.T) {
	sql, args := buildListQuery(domainagent.FeaturedQuery())
	assert.Contains(t, sql, "WHERE 1=1 AND featured ORDER BY")
	assert.Equal(t, "message_count DESC NULLS LAST, id", orderClause(sql))
	assert.Equal(t, []interface{}{5, 0}, args)

	sql, _ = buildListQuery(domainagent.ActiveAgentsQuery(5))
	assert.Contains(t, sql, "AND type = $1")
	assert.Equal(t, "last_seen_at DESC NULLS LAST, message_count DESC NULLS LAST, id", orderClause(sql))
}

func TestBuildListQuery_UnknownFieldIgnored(t *testing.T) {
	q := domainagent.Query{OrderBy: []domainagent.OrderTerm{{Field: "name; DROP TABLE agent_cards"}, {Field: domainagent.FieldName}}}
	sql, _ := buildListQuery(q)
	assert.Equal(t, "name, id", orderClause(sql))
}

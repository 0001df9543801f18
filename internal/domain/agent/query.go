package agent

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

type Sort string

const (
	SortDefault Sort = "default"
	SortNewest  Sort = "newest"
	SortName    Sort = "name"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Field is a sortable column. Only these values ever reach an ORDER BY clause.
type Field string

const (
	FieldFeatured     Field = "featured"
	FieldMessageCount Field = "message_count"
	FieldRating       Field = "rating"
	FieldCreatedAt    Field = "created_at"
	FieldLastSeenAt   Field = "last_seen_at"
	FieldName         Field = "name"
)

type OrderTerm struct {
	Field     Field
	Desc      bool
	NullsLast bool
}

// Query describes a filtered, ordered, paginated listing read.
type Query struct {
	Q        string
	Platform string
	Tag      string
	Type     Type
	Sort     Sort
	Limit    int
	Offset   int

	// FeaturedOnly and OrderBy are set by highlight queries, never parsed from input.
	FeaturedOnly bool
	OrderBy      []OrderTerm
}

// ParseQuery reads the public search parameters and clamps pagination. A
// missing or zero limit takes the default and a negative one becomes 1.
func ParseQuery(v url.Values) Query {
	q := Query{
		Q:        strings.TrimSpace(v.Get("q")),
		Platform: strings.TrimSpace(v.Get("platform")),
		Tag:      strings.TrimSpace(v.Get("tag")),
		Type:     Type(strings.TrimSpace(v.Get("type"))),
		Sort:     parseSort(v.Get("sort")),
		Limit:    DefaultLimit,
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v.Get("limit"))); err == nil && n != 0 {
		q.Limit = max(n, 1)
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v.Get("offset"))); err == nil {
		q.Offset = n
	}
	return q.Normalized()
}

func parseSort(s string) Sort {
	switch Sort(strings.TrimSpace(s)) {
	case SortNewest:
		return SortNewest
	case SortName:
		return SortName
	}
	return SortDefault
}

// Normalized clamps limit to [1, MaxLimit] and offset to >= 0.
func (q Query) Normalized() Query {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.Sort == "" {
		q.Sort = SortDefault
	}
	return q
}

// Order returns the effective ordering: OrderBy when set, otherwise the Sort preset.
func (q Query) Order() []OrderTerm {
	if len(q.OrderBy) > 0 {
		return q.OrderBy
	}
	switch q.Sort {
	case SortNewest:
		return []OrderTerm{{Field: FieldCreatedAt, Desc: true}}
	case SortName:
		return []OrderTerm{{Field: FieldName}}
	}
	return []OrderTerm{
		{Field: FieldFeatured, Desc: true},
		{Field: FieldMessageCount, Desc: true, NullsLast: true},
		{Field: FieldRating, Desc: true, NullsLast: true},
		{Field: FieldCreatedAt, Desc: true},
	}
}

// Matches is the filter predicate for stores that evaluate queries in process.
func (q Query) Matches(l Listing) bool {
	if q.FeaturedOnly && !l.Featured {
		return false
	}
	if q.Platform != "" && l.Platform != q.Platform {
		return false
	}
	if q.Tag != "" && !l.HasTag(q.Tag) {
		return false
	}
	if q.Type != "" && l.Type != q.Type {
		return false
	}
	if q.Q != "" {
		needle := strings.ToLower(q.Q)
		if !strings.Contains(strings.ToLower(l.Name), needle) &&
			!strings.Contains(strings.ToLower(l.Description), needle) {
			return false
		}
	}
	return true
}

// Apply filters, orders and paginates listings in process.
func (q Query) Apply(all []Listing) []Listing {
	q = q.Normalized()
	out := make([]Listing, 0, len(all))
	for _, l := range all {
		if q.Matches(l) {
			out = append(out, l)
		}
	}
	SortListings(out, q.Order())

	if q.Offset >= len(out) {
		return []Listing{}
	}
	out = out[q.Offset:]
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// SortListings orders listings by terms with Postgres NULL semantics:
// NULLs sort first on DESC and last on ASC unless NullsLast is set.
func SortListings(ls []Listing, terms []OrderTerm) {
	sort.SliceStable(ls, func(i, j int) bool {
		for _, t := range terms {
			if c := compareField(ls[i], ls[j], t); c != 0 {
				return c < 0
			}
		}
		return false
	})
}

// compareField returns <0 when a sorts before b under term t.
func compareField(a, b Listing, t OrderTerm) int {
	switch t.Field {
	case FieldFeatured:
		return directed(compareBool(a.Featured, b.Featured), t.Desc)
	case FieldMessageCount:
		return directed(compareInt(a.MessageCount, b.MessageCount), t.Desc)
	case FieldName:
		return directed(strings.Compare(a.Name, b.Name), t.Desc)
	case FieldCreatedAt:
		return directed(compareTime(a.CreatedAt, b.CreatedAt), t.Desc)
	case FieldRating:
		if c, done := compareNulls(a.Rating == nil, b.Rating == nil, t); done {
			return c
		}
		return directed(compareFloat(*a.Rating, *b.Rating), t.Desc)
	case FieldLastSeenAt:
		if c, done := compareNulls(a.LastSeenAt == nil, b.LastSeenAt == nil, t); done {
			return c
		}
		return directed(compareTime(*a.LastSeenAt, *b.LastSeenAt), t.Desc)
	}
	return 0
}

func compareNulls(aNull, bNull bool, t OrderTerm) (int, bool) {
	if !aNull && !bNull {
		return 0, false
	}
	if aNull && bNull {
		return 0, true
	}
	nullsFirst := t.Desc && !t.NullsLast
	if aNull == nullsFirst {
		return -1, true
	}
	return 1, true
}

func directed(c int, desc bool) int {
	if desc {
		return -c
	}
	return c
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareTime(a, b time.Time) int { return a.Compare(b) }

// ── Highlight queries ───────────────────────────────────────────────────────

const HighlightLimit = 5

func FeaturedQuery() Query {
	return Query{
		FeaturedOnly: true,
		Limit:        HighlightLimit,
		OrderBy:      []OrderTerm{{Field: FieldMessageCount, Desc: true, NullsLast: true}},
	}
}

func PopularServicesQuery(limit int) Query {
	return Query{
		Type:  TypeService,
		Limit: limit,
		OrderBy: []OrderTerm{
			{Field: FieldMessageCount, Desc: true, NullsLast: true},
			{Field: FieldRating, Desc: true, NullsLast: true},
		},
	}
}

func ActiveAgentsQuery(limit int) Query {
	return Query{
		Type:  TypeAgent,
		Limit: limit,
		OrderBy: []OrderTerm{
			{Field: FieldLastSeenAt, Desc: true, NullsLast: true},
			{Field: FieldMessageCount, Desc: true, NullsLast: true},
		},
	}
}

func RecentQuery(limit int) Query {
	return Query{
		Limit:   limit,
		OrderBy: []OrderTerm{{Field: FieldCreatedAt, Desc: true}},
	}
}

package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainagent "github.com/alanyang/agentpages/internal/domain/agent"
)

const columns = `id, name, description, url, agent_card_url, provider_org, provider_url,
	skills, tags, platform, version, protocol_version, capabilities, input_modes,
	output_modes, contact, likes, avatar_url, type, openness, message_count, rating,
	featured, verified, last_seen_at, created_at, updated_at`

// orderColumns whitelists the columns that may appear in ORDER BY.
var orderColumns = map[domainagent.Field]string{
	domainagent.FieldFeatured:     "featured",
	domainagent.FieldMessageCount: "message_count",
	domainagent.FieldRating:       "rating",
	domainagent.FieldCreatedAt:    "created_at",
	domainagent.FieldLastSeenAt:   "last_seen_at",
	domainagent.FieldName:         "name",
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) List(ctx context.Context, q domainagent.Query) ([]domainagent.Listing, error) {
	query, args := buildListQuery(q)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing agents: %w", err)
	}
	defer rows.Close()

	return scanListings(rows)
}

func (r *Repository) All(ctx context.Context) ([]domainagent.Listing, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM agent_cards`)
	if err != nil {
		return nil, fmt.Errorf("listing all agents: %w", err)
	}
	defer rows.Close()

	return scanListings(rows)
}

func (r *Repository) GetByName(ctx context.Context, name string) (domainagent.Listing, error) {
	return r.scanOne(ctx, `SELECT `+columns+` FROM agent_cards WHERE name = $1`, name)
}

func (r *Repository) FindByNameFold(ctx context.Context, name string) (domainagent.Listing, error) {
	return r.scanOne(ctx,
		`SELECT `+columns+` FROM agent_cards WHERE LOWER(name) = LOWER($1) ORDER BY created_at LIMIT 1`, name)
}

// Upsert keeps id, created_at and the popularity columns of an existing row.
// verified only ever turns on and last_seen_at only moves forward.
func (r *Repository) Upsert(ctx context.Context, l domainagent.Listing) (domainagent.Listing, bool, error) {
	skillsJSON, err := json.Marshal(l.Skills)
	if err != nil {
		return domainagent.Listing{}, false, fmt.Errorf("marshaling skills: %w", err)
	}
	capsJSON, err := json.Marshal(l.Capabilities)
	if err != nil {
		return domainagent.Listing{}, false, fmt.Errorf("marshaling capabilities: %w", err)
	}

	query := `
		INSERT INTO agent_cards (` + columns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27)
		ON CONFLICT (name) DO UPDATE SET
			description      = EXCLUDED.description,
			url              = EXCLUDED.url,
			agent_card_url   = EXCLUDED.agent_card_url,
			provider_org     = EXCLUDED.provider_org,
			provider_url     = EXCLUDED.provider_url,
			skills           = EXCLUDED.skills,
			tags             = EXCLUDED.tags,
			platform         = EXCLUDED.platform,
			version          = EXCLUDED.version,
			protocol_version = EXCLUDED.protocol_version,
			capabilities     = EXCLUDED.capabilities,
			input_modes      = EXCLUDED.input_modes,
			output_modes     = EXCLUDED.output_modes,
			contact          = EXCLUDED.contact,
			likes            = EXCLUDED.likes,
			avatar_url       = EXCLUDED.avatar_url,
			type             = EXCLUDED.type,
			openness         = EXCLUDED.openness,
			verified         = agent_cards.verified OR EXCLUDED.verified,
			last_seen_at     = GREATEST(agent_cards.last_seen_at, EXCLUDED.last_seen_at),
			updated_at       = EXCLUDED.updated_at
		RETURNING ` + columns + `, (xmax = 0) AS inserted`

	var saved domainagent.Listing
	var skillsBytes, capsBytes []byte
	var inserted bool
	dest := append(scanDest(&saved, &skillsBytes, &capsBytes), &inserted)

	err = r.pool.QueryRow(ctx, query,
		l.ID, l.Name, l.Description, l.URL, l.AgentCardURL, l.ProviderOrg, l.ProviderURL,
		skillsJSON, l.Tags, l.Platform, l.Version, l.ProtocolVersion, capsJSON, l.InputModes,
		l.OutputModes, l.Contact, l.Likes, l.AvatarURL, l.Type, l.Openness, l.MessageCount, l.Rating,
		l.Featured, l.Verified, l.LastSeenAt, l.CreatedAt, l.UpdatedAt,
	).Scan(dest...)
	if err != nil {
		return domainagent.Listing{}, false, fmt.Errorf("upserting agent %q: %w", l.Name, err)
	}
	if err := unmarshalJSONFields(skillsBytes, capsBytes, &saved); err != nil {
		return domainagent.Listing{}, false, err
	}
	return saved, inserted, nil
}

func (r *Repository) DeleteByName(ctx context.Context, name string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM agent_cards WHERE name = $1`, name)
	if err != nil {
		return false, fmt.Errorf("deleting agent %q: %w", name, err)
	}
	return tag.RowsAffected() > 0, nil
}

// buildListQuery renders q as a parameterised SELECT. Only whitelisted
// column names are interpolated; every value is a bind parameter.
func buildListQuery(q domainagent.Query) (string, []interface{}) {
	q = q.Normalized()

	var sb strings.Builder
	sb.WriteString(`SELECT ` + columns + ` FROM agent_cards WHERE 1=1`)

	args := []interface{}{}
	argIdx := 1
	next := func(v interface{}) string {
		args = append(args, v)
		p := fmt.Sprintf("$%d", argIdx)
		argIdx++
		return p
	}

	if q.FeaturedOnly {
		sb.WriteString(" AND featured")
	}
	if q.Platform != "" {
		sb.WriteString(" AND platform = " + next(q.Platform))
	}
	if q.Tag != "" {
		sb.WriteString(" AND " + next(q.Tag) + " = ANY(tags)")
	}
	if q.Type != "" {
		sb.WriteString(" AND type = " + next(string(q.Type)))
	}
	if q.Q != "" {
		p := next("%" + escapeLike(q.Q) + "%")
		sb.WriteString(" AND (name ILIKE " + p + " OR description ILIKE " + p + ")")
	}

	var order []string
	for _, t := range q.Order() {
		col, ok := orderColumns[t.Field]
		if !ok {
			continue
		}
		if t.Desc {
			col += " DESC"
		}
		if t.NullsLast {
			col += " NULLS LAST"
		}
		order = append(order, col)
	}
	// id breaks ties so pages never overlap.
	order = append(order, "id")
	sb.WriteString(" ORDER BY " + strings.Join(order, ", "))

	sb.WriteString(" LIMIT " + next(q.Limit))
	sb.WriteString(" OFFSET " + next(q.Offset))

	return sb.String(), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func (r *Repository) scanOne(ctx context.Context, query string, args ...interface{}) (domainagent.Listing, error) {
	var l domainagent.Listing
	var skillsBytes, capsBytes []byte

	err := r.pool.QueryRow(ctx, query, args...).Scan(scanDest(&l, &skillsBytes, &capsBytes)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainagent.Listing{}, domainagent.ErrNotFound
		}
		return domainagent.Listing{}, fmt.Errorf("querying agent: %w", err)
	}

	if err := unmarshalJSONFields(skillsBytes, capsBytes, &l); err != nil {
		return domainagent.Listing{}, err
	}
	return l, nil
}

func scanListings(rows pgx.Rows) ([]domainagent.Listing, error) {
	listings := []domainagent.Listing{}
	for rows.Next() {
		var l domainagent.Listing
		var skillsBytes, capsBytes []byte
		if err := rows.Scan(scanDest(&l, &skillsBytes, &capsBytes)...); err != nil {
			return nil, fmt.Errorf("scanning agent row: %w", err)
		}
		if err := unmarshalJSONFields(skillsBytes, capsBytes, &l); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// scanDest lists destinations in columns order. JSONB columns land in the raw byte slices.
func scanDest(l *domainagent.Listing, skills, caps *[]byte) []interface{} {
	return []interface{}{
		&l.ID, &l.Name, &l.Description, &l.URL, &l.AgentCardURL, &l.ProviderOrg, &l.ProviderURL,
		skills, &l.Tags, &l.Platform, &l.Version, &l.ProtocolVersion, caps, &l.InputModes,
		&l.OutputModes, &l.Contact, &l.Likes, &l.AvatarURL, &l.Type, &l.Openness, &l.MessageCount, &l.Rating,
		&l.Featured, &l.Verified, &l.LastSeenAt, &l.CreatedAt, &l.UpdatedAt,
	}
}

func unmarshalJSONFields(skillsBytes, capsBytes []byte, l *domainagent.Listing) error {
	if len(skillsBytes) > 0 {
		if err := json.Unmarshal(skillsBytes, &l.Skills); err != nil {
			return fmt.Errorf("unmarshaling skills: %w", err)
		}
	}
	if len(capsBytes) > 0 {
		if err := json.Unmarshal(capsBytes, &l.Capabilities); err != nil {
			return fmt.Errorf("unmarshaling capabilities: %w", err)
		}
	}
	l.EnsureSlices()
	return nil
}

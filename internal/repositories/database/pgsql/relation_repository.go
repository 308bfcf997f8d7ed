package pgsql

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
)

// PgxRelationRepository stores relations, boxes and distribution channels.
type PgxRelationRepository struct {
	BaseRepository
}

func newPgxRelationRepository(pool *pgxpool.Pool) *PgxRelationRepository {
	return &PgxRelationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var (
	_ portsrepo.RelationRepository = (*PgxRelationRepository)(nil)
	_ portsrepo.BoxRepository      = (*PgxRelationRepository)(nil)
	_ portsrepo.ChannelRepository  = (*PgxRelationRepository)(nil)
)

const selectRelationFields = `
	relation_id, code, name, kind, phone, email, address, currency_code, opening_balance,
	notes, is_active, created_at, created_by, last_updated_at, last_updated_by
`

func scanRelation(row pgx.Row) (*domain.Relation, error) {
	var rel domain.Relation
	if err := row.Scan(
		&rel.RelationID,
		&rel.Code,
		&rel.Name,
		&rel.Kind,
		&rel.Phone,
		&rel.Email,
		&rel.Address,
		&rel.CurrencyCode,
		&rel.OpeningBalance,
		&rel.Notes,
		&rel.IsActive,
		&rel.CreatedAt,
		&rel.CreatedBy,
		&rel.LastUpdatedAt,
		&rel.LastUpdatedBy,
	); err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *PgxRelationRepository) SaveRelation(ctx context.Context, rel domain.Relation) error {
	query := `
		INSERT INTO relations (relation_id, code, name, kind, phone, email, address, currency_code,
			opening_balance, notes, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		rel.RelationID, rel.Code, rel.Name, rel.Kind, rel.Phone, rel.Email, rel.Address, rel.CurrencyCode,
		rel.OpeningBalance, rel.Notes, rel.IsActive, rel.CreatedAt, rel.CreatedBy, rel.LastUpdatedAt, rel.LastUpdatedBy,
	)
	return mapError(err, "failed to save relation")
}

func (r *PgxRelationRepository) UpdateRelation(ctx context.Context, rel domain.Relation) error {
	query := `
		UPDATE relations
		SET code = $2, name = $3, kind = $4, phone = $5, email = $6, address = $7, currency_code = $8,
			opening_balance = $9, notes = $10, is_active = $11, last_updated_at = $12, last_updated_by = $13
		WHERE relation_id = $1;
	`
	tag, err := r.db(ctx).Exec(ctx, query,
		rel.RelationID, rel.Code, rel.Name, rel.Kind, rel.Phone, rel.Email, rel.Address, rel.CurrencyCode,
		rel.OpeningBalance, rel.Notes, rel.IsActive, rel.LastUpdatedAt, rel.LastUpdatedBy,
	)
	return expectOne(tag, err, "failed to update relation")
}

func (r *PgxRelationRepository) FindRelationByID(ctx context.Context, relationID string) (*domain.Relation, error) {
	query := `SELECT ` + selectRelationFields + ` FROM relations WHERE relation_id = $1;`
	rel, err := scanRelation(r.db(ctx).QueryRow(ctx, query, relationID))
	if err != nil {
		return nil, mapError(err, "failed to find relation "+relationID)
	}
	return rel, nil
}

// ListRelations filters by kind (BOTH matches either side), a name/code search and activity.
func (r *PgxRelationRepository) ListRelations(ctx context.Context, filter domain.RelationFilter) ([]domain.Relation, int, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Kind != nil {
		if *filter.Kind == domain.RelationBoth {
			where = append(where, "kind = "+arg(domain.RelationBoth))
		} else {
			where = append(where, "kind IN ("+arg(*filter.Kind)+", 'BOTH')")
		}
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		p := arg("%" + strings.ToLower(s) + "%")
		where = append(where, "(lower(name) LIKE "+p+" OR lower(COALESCE(code, '')) LIKE "+p+")")
	}
	if !filter.IncludeInactive {
		where = append(where, "is_active")
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db(ctx).QueryRow(ctx, `SELECT count(*) FROM relations`+clause, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err, "failed to count relations")
	}

	query := `SELECT ` + selectRelationFields + ` FROM relations` + clause +
		` ORDER BY lower(name), relation_id LIMIT ` + arg(filter.Limit) + ` OFFSET ` + arg(filter.Offset)
	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError(err, "failed to query relations")
	}
	defer rows.Close()

	relations := []domain.Relation{}
	for rows.Next() {
		rel, err := scanRelation(rows)
		if err != nil {
			return nil, 0, mapError(err, "failed to scan relation")
		}
		relations = append(relations, *rel)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err, "error iterating relations")
	}
	return relations, total, nil
}

func (r *PgxRelationRepository) DeleteRelation(ctx context.Context, relationID string) error {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM relations WHERE relation_id = $1;`, relationID)
	return expectOne(tag, err, "failed to delete relation")
}

// --- boxes ---

const selectBoxFields = `
	box_id, name, currency_code, opening_balance, is_active,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanBox(row pgx.Row) (*domain.Box, error) {
	var b domain.Box
	if err := row.Scan(
		&b.BoxID, &b.Name, &b.CurrencyCode, &b.OpeningBalance, &b.IsActive,
		&b.CreatedAt, &b.CreatedBy, &b.LastUpdatedAt, &b.LastUpdatedBy,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PgxRelationRepository) SaveBox(ctx context.Context, box domain.Box) error {
	query := `
		INSERT INTO boxes (box_id, name, currency_code, opening_balance, is_active,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		box.BoxID, box.Name, box.CurrencyCode, box.OpeningBalance, box.IsActive,
		box.CreatedAt, box.CreatedBy, box.LastUpdatedAt, box.LastUpdatedBy,
	)
	return mapError(err, "failed to save box")
}

func (r *PgxRelationRepository) UpdateBox(ctx context.Context, box domain.Box) error {
	query := `
		UPDATE boxes
		SET name = $2, currency_code = $3, opening_balance = $4, is_active = $5,
			last_updated_at = $6, last_updated_by = $7
		WHERE box_id = $1;
	`
	tag, err := r.db(ctx).Exec(ctx, query,
		box.BoxID, box.Name, box.CurrencyCode, box.OpeningBalance, box.IsActive, box.LastUpdatedAt, box.LastUpdatedBy,
	)
	return expectOne(tag, err, "failed to update box")
}

func (r *PgxRelationRepository) FindBoxByID(ctx context.Context, boxID string) (*domain.Box, error) {
	box, err := scanBox(r.db(ctx).QueryRow(ctx, `SELECT `+selectBoxFields+` FROM boxes WHERE box_id = $1;`, boxID))
	if err != nil {
		return nil, mapError(err, "failed to find box "+boxID)
	}
	return box, nil
}

func (r *PgxRelationRepository) ListBoxes(ctx context.Context, includeInactive bool) ([]domain.Box, error) {
	query := `SELECT ` + selectBoxFields + ` FROM boxes WHERE $1 OR is_active ORDER BY name;`
	rows, err := r.db(ctx).Query(ctx, query, includeInactive)
	if err != nil {
		return nil, mapError(err, "failed to query boxes")
	}
	defer rows.Close()

	boxes := []domain.Box{}
	for rows.Next() {
		b, err := scanBox(rows)
		if err != nil {
			return nil, mapError(err, "failed to scan box")
		}
		boxes = append(boxes, *b)
	}
	return boxes, mapError(rows.Err(), "error iterating boxes")
}

func (r *PgxRelationRepository) DeleteBox(ctx context.Context, boxID string) error {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM boxes WHERE box_id = $1;`, boxID)
	return expectOne(tag, err, "failed to delete box")
}

// --- distribution channels ---

const selectChannelFields = `
	channel_id, name, description, is_active,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanChannel(row pgx.Row) (*domain.DistributionChannel, error) {
	var c domain.DistributionChannel
	if err := row.Scan(
		&c.ChannelID, &c.Name, &c.Description, &c.IsActive,
		&c.CreatedAt, &c.CreatedBy, &c.LastUpdatedAt, &c.LastUpdatedBy,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgxRelationRepository) SaveChannel(ctx context.Context, ch domain.DistributionChannel) error {
	query := `
		INSERT INTO distribution_channels (channel_id, name, description, is_active,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		ch.ChannelID, ch.Name, ch.Description, ch.IsActive,
		ch.CreatedAt, ch.CreatedBy, ch.LastUpdatedAt, ch.LastUpdatedBy,
	)
	return mapError(err, "failed to save channel")
}

func (r *PgxRelationRepository) UpdateChannel(ctx context.Context, ch domain.DistributionChannel) error {
	query := `
		UPDATE distribution_channels
		SET name = $2, description = $3, is_active = $4, last_updated_at = $5, last_updated_by = $6
		WHERE channel_id = $1;
	`
	tag, err := r.db(ctx).Exec(ctx, query, ch.ChannelID, ch.Name, ch.Description, ch.IsActive, ch.LastUpdatedAt, ch.LastUpdatedBy)
	return expectOne(tag, err, "failed to update channel")
}

func (r *PgxRelationRepository) FindChannelByID(ctx context.Context, channelID string) (*domain.DistributionChannel, error) {
	query := `SELECT ` + selectChannelFields + ` FROM distribution_channels WHERE channel_id = $1;`
	ch, err := scanChannel(r.db(ctx).QueryRow(ctx, query, channelID))
	if err != nil {
		return nil, mapError(err, "failed to find channel "+channelID)
	}
	return ch, nil
}

func (r *PgxRelationRepository) ListChannels(ctx context.Context, includeInactive bool) ([]domain.DistributionChannel, error) {
	query := `SELECT ` + selectChannelFields + ` FROM distribution_channels WHERE $1 OR is_active ORDER BY name;`
	rows, err := r.db(ctx).Query(ctx, query, includeInactive)
	if err != nil {
		return nil, mapError(err, "failed to query channels")
	}
	defer rows.Close()

	channels := []domain.DistributionChannel{}
	for rows.Next() {
		c, err := scanChannel(rows)
		if err != nil {
			return nil, mapError(err, "failed to scan channel")
		}
		channels = append(channels, *c)
	}
	return channels, mapError(rows.Err(), "error iterating channels")
}

func (r *PgxRelationRepository) DeleteChannel(ctx context.Context, channelID string) error {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM distribution_channels WHERE channel_id = $1;`, channelID)
	return expectOne(tag, err, "failed to delete channel")
}

// Package tags provides PostgreSQL-backed storage for visual tags and their
// asset links.
package tags

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/assetcatalog/internal/common"
	"github.com/dmitrijs2005/assetcatalog/internal/dbx"
	"github.com/dmitrijs2005/assetcatalog/internal/server/models"
	"github.com/google/uuid"
)

const tagColumns = `t.id, t.name, t.color, t.user_id, t.company_id, t.created_at`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, tag *models.Tag) error {
	var company any
	if tag.CompanyID != nil {
		company = tag.CompanyID.String()
	}
	query := `INSERT INTO tags (id, name, color, user_id, company_id, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query,
		tag.ID.String(), tag.Name, tag.Color, tag.UserID, company, tag.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, companyID *uuid.UUID) ([]*models.Tag, error) {
	tenant, args := dbx.TenantClause("t.company_id", companyID, 1)
	query := `SELECT ` + tagColumns + `, COUNT(x.asset_id)
		FROM tags t LEFT JOIN asset_tags x ON x.tag_id = t.id
		WHERE ` + tenant + `
		GROUP BY t.id
		ORDER BY lower(t.name), t.id`
	return r.selectTags(ctx, true, query, args...)
}

func (r *PostgresRepository) ListByIDs(ctx context.Context, companyID *uuid.UUID, ids []uuid.UUID) ([]*models.Tag, error) {
	if len(ids) == 0 {
		return []*models.Tag{}, nil
	}
	in, args := dbx.UUIDList(ids, 1)
	tenant, targs := dbx.TenantClause("t.company_id", companyID, len(args)+1)
	query := `SELECT ` + tagColumns + ` FROM tags t WHERE t.id IN ` + in + ` AND ` + tenant + ` ORDER BY t.id`
	return r.selectTags(ctx, false, query, append(args, targs...)...)
}

func (r *PostgresRepository) ForAsset(ctx context.Context, assetID uuid.UUID) ([]*models.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags t JOIN asset_tags x ON x.tag_id = t.id
		WHERE x.asset_id = $1 ORDER BY lower(t.name), t.id`
	return r.selectTags(ctx, false, query, assetID.String())
}

func (r *PostgresRepository) selectTags(ctx context.Context, withCount bool, query string, args ...any) ([]*models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select tags: %w", err)
	}
	defer rows.Close()

	result := []*models.Tag{}
	for rows.Next() {
		var (
			tag     models.Tag
			company uuid.NullUUID
		)
		dest := []any{&tag.ID, &tag.Name, &tag.Color, &tag.UserID, &company, &tag.CreatedAt}
		if withCount {
			dest = append(dest, &tag.AssetCount)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if company.Valid {
			tag.CompanyID = &company.UUID
		}
		result = append(result, &tag)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a tag of the tenant; its asset links go with it.
func (r *PostgresRepository) Delete(ctx context.Context, companyID *uuid.UUID, id uuid.UUID) error {
	tenant, targs := dbx.TenantClause("company_id", companyID, 2)
	res, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1 AND `+tenant, append([]any{id.String()}, targs...)...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Assign(ctx context.Context, assetIDs, tagIDs []uuid.UUID) (int, error) {
	if len(assetIDs) == 0 || len(tagIDs) == 0 {
		return 0, nil
	}

	values := make([]string, 0, len(assetIDs)*len(tagIDs))
	args := make([]any, 0, 2*cap(values))
	for _, a := range assetIDs {
		for _, t := range tagIDs {
			n := len(args)
			values = append(values, "($"+strconv.Itoa(n+1)+", $"+strconv.Itoa(n+2)+")")
			args = append(args, a.String(), t.String())
		}
	}

	query := `INSERT INTO asset_tags (asset_id, tag_id) VALUES ` + strings.Join(values, ", ") +
		` ON CONFLICT (asset_id, tag_id) DO NOTHING`
	return r.exec(ctx, query, args...)
}

func (r *PostgresRepository) Remove(ctx context.Context, assetIDs, tagIDs []uuid.UUID) (int, error) {
	if len(assetIDs) == 0 || len(tagIDs) == 0 {
		return 0, nil
	}
	assetList, args := dbx.UUIDList(assetIDs, 1)
	tagList, targs := dbx.UUIDList(tagIDs, len(args)+1)

	query := `DELETE FROM asset_tags WHERE asset_id IN ` + assetList + ` AND tag_id IN ` + tagList
	return r.exec(ctx, query, append(args, targs...)...)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (int, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return int(n), nil
}

var _ Repository = (*PostgresRepository)(nil)

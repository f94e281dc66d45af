// Package assets provides the PostgreSQL-backed asset repository, including
// the search DataSource that runs compiled predicates as SQL.
package assets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dmitrijs2005/assetcatalog/internal/common"
	"github.com/dmitrijs2005/assetcatalog/internal/dbx"
	"github.com/dmitrijs2005/assetcatalog/internal/server/models"
	"github.com/dmitrijs2005/assetcatalog/internal/server/search"
	"github.com/google/uuid"
)

const selectColumns = `SELECT a.id, a.file_name, a.file_type, a.mime_type, a.file_size, a.checksum,
	a.storage_key, a.folder_id, a.user_id, a.company_id, COALESCE(a.user_metadata, ''),
	a.created_at, a.updated_at, a.is_deleted, a.deleted_at
	FROM assets a`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Repository = (*PostgresRepository)(nil)

type scanner interface {
	Scan(dest ...any) error
}

func scanAsset(row scanner) (*models.Asset, error) {
	var (
		a               models.Asset
		folder, company uuid.NullUUID
		deletedAt       sql.NullTime
	)
	if err := row.Scan(
		&a.ID, &a.FileName, &a.FileType, &a.MimeType, &a.FileSize, &a.Checksum,
		&a.StorageKey, &folder, &a.UserID, &company, &a.UserMetadata,
		&a.CreatedAt, &a.UpdatedAt, &a.IsDeleted, &deletedAt,
	); err != nil {
		return nil, err
	}
	if folder.Valid {
		a.FolderID = &folder.UUID
	}
	if company.Valid {
		a.CompanyID = &company.UUID
	}
	if deletedAt.Valid {
		a.DeletedAt = &deletedAt.Time
	}
	return &a, nil
}

func (r *PostgresRepository) selectAssets(ctx context.Context, query string, args ...any) ([]*models.Asset, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select assets: %w", err)
	}
	defer rows.Close()

	result := []*models.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadTags(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// loadTags fills TagIDs of the given assets.
func (r *PostgresRepository) loadTags(ctx context.Context, list []*models.Asset) error {
	if len(list) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*models.Asset, len(list))
	ids := make([]uuid.UUID, len(list))
	for i, a := range list {
		byID[a.ID] = a
		ids[i] = a.ID
	}

	in, args := dbx.UUIDList(ids, 1)
	rows, err := r.db.QueryContext(ctx,
		`SELECT asset_id, tag_id FROM asset_tags WHERE asset_id IN `+in+` ORDER BY asset_id, tag_id`, args...)
	if err != nil {
		return fmt.Errorf("failed to select asset tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var assetID, tagID uuid.UUID
		if err := rows.Scan(&assetID, &tagID); err != nil {
			return err
		}
		if a, ok := byID[assetID]; ok {
			a.TagIDs = append(a.TagIDs, tagID)
		}
	}
	return rows.Err()
}

// Query runs a compiled search. The count and the page are two statements;
// callers wanting a consistent pair run the repository inside a
// repeatable-read transaction.
func (r *PostgresRepository) Query(ctx context.Context, q search.Query) (*search.Page, error) {
	b := search.NewSQLBuilder()
	where, err := b.Where(q.Predicate)
	if err != nil {
		return nil, fmt.Errorf("render predicate: %w", err)
	}

	page := &search.Page{Assets: []*models.Asset{}}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets a WHERE `+where, b.Args()...).Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("failed to count assets: %w", err)
	}
	if page.Total == 0 || q.Offset < 0 || q.Offset >= page.Total {
		return page, nil
	}

	query := selectColumns + ` WHERE ` + where + ` ORDER BY ` + b.OrderBy(q.Sort)
	if q.Limit > 0 {
		query += ` LIMIT ` + b.Bind(q.Limit)
	}
	if q.Offset > 0 {
		query += ` OFFSET ` + b.Bind(q.Offset)
	}

	page.Assets, err = r.selectAssets(ctx, query, b.Args()...)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Get returns one asset of the tenant, deleted or not.
func (r *PostgresRepository) Get(ctx context.Context, companyID *uuid.UUID, id uuid.UUID) (*models.Asset, error) {
	tenant, targs := dbx.TenantClause("a.company_id", companyID, 2)
	query := selectColumns + ` WHERE a.id = $1 AND ` + tenant

	a, err := scanAsset(r.db.QueryRowContext(ctx, query, append([]any{id.String()}, targs...)...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := r.loadTags(ctx, []*models.Asset{a}); err != nil {
		return nil, err
	}
	return a, nil
}

// ListByIDs returns the assets of the tenant among ids, in id order.
// Unknown ids are skipped.
func (r *PostgresRepository) ListByIDs(ctx context.Context, companyID *uuid.UUID, ids []uuid.UUID) ([]*models.Asset, error) {
	if len(ids) == 0 {
		return []*models.Asset{}, nil
	}
	in, args := dbx.UUIDList(ids, 1)
	tenant, targs := dbx.TenantClause("a.company_id", companyID, len(args)+1)

	query := selectColumns + ` WHERE a.id IN ` + in + ` AND ` + tenant + ` ORDER BY a.id`
	return r.selectAssets(ctx, query, append(args, targs...)...)
}

// SetMetadata replaces the serialized metadata blob of one asset.
func (r *PostgresRepository) SetMetadata(ctx context.Context, id uuid.UUID, blob string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE assets SET user_metadata = $1, updated_at = $2 WHERE id = $3`, blob, at, id.String())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

// Move places a live asset in folderID (nil is the root).
func (r *PostgresRepository) Move(ctx context.Context, companyID *uuid.UUID, id uuid.UUID, folderID *uuid.UUID, at time.Time) error {
	var folder any
	if folderID != nil {
		folder = folderID.String()
	}
	tenant, targs := dbx.TenantClause("a.company_id", companyID, 4)

	res, err := r.db.ExecContext(ctx,
		`UPDATE assets a SET folder_id = $1, updated_at = $2 WHERE a.id = $3 AND a.is_deleted = FALSE AND `+tenant,
		append([]any{folder, at, id.String()}, targs...)...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

// SoftDelete flags live assets among ids as deleted at the given time.
func (r *PostgresRepository) SoftDelete(ctx context.Context, companyID *uuid.UUID, ids []uuid.UUID, at time.Time) (int, error) {
	return r.updateMany(ctx,
		`UPDATE assets a SET is_deleted = TRUE, deleted_at = $1, updated_at = $1 WHERE a.is_deleted = FALSE`,
		companyID, ids, at)
}

// Restore clears the deleted flag of deleted assets among ids.
func (r *PostgresRepository) Restore(ctx context.Context, companyID *uuid.UUID, ids []uuid.UUID, at time.Time) (int, error) {
	return r.updateMany(ctx,
		`UPDATE assets a SET is_deleted = FALSE, deleted_at = NULL, updated_at = $1 WHERE a.is_deleted = TRUE`,
		companyID, ids, at)
}

// updateMany runs stmt (which binds at as $1) restricted to ids and the tenant.
func (r *PostgresRepository) updateMany(ctx context.Context, stmt string, companyID *uuid.UUID, ids []uuid.UUID, at time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	in, args := dbx.UUIDList(ids, 2)
	tenant, targs := dbx.TenantClause("a.company_id", companyID, len(args)+2)

	query := stmt + ` AND a.id IN ` + in + ` AND ` + tenant
	res, err := r.db.ExecContext(ctx, query, slices.Concat([]any{at}, args, targs)...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return int(n), nil
}

func (r *PostgresRepository) PurgeDeleted(ctx context.Context, companyID *uuid.UUID, ids []uuid.UUID) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}
	in, args := dbx.UUIDList(ids, 1)
	tenant, targs := dbx.TenantClause("a.company_id", companyID, len(args)+1)

	query := `DELETE FROM assets a WHERE a.is_deleted = TRUE AND a.id IN ` + in + ` AND ` + tenant + ` RETURNING a.storage_key`
	return r.deleteReturningKeys(ctx, query, append(args, targs...)...)
}

func (r *PostgresRepository) PurgeExpired(ctx context.Context, cutoff time.Time) ([]string, error) {
	query := `DELETE FROM assets a WHERE a.is_deleted = TRUE AND a.deleted_at < $1 RETURNING a.storage_key`
	return r.deleteReturningKeys(ctx, query, cutoff)
}

func (r *PostgresRepository) deleteReturningKeys(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to delete assets: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

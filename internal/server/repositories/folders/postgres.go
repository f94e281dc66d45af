// Package folders provides read access to the folder hierarchy.
package folders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/assetcatalog/internal/common"
	"github.com/dmitrijs2005/assetcatalog/internal/dbx"
	"github.com/dmitrijs2005/assetcatalog/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns a folder of the tenant.
func (r *PostgresRepository) Get(ctx context.Context, companyID *uuid.UUID, id uuid.UUID) (*models.Folder, error) {
	tenant, targs := dbx.TenantClause("company_id", companyID, 2)
	query := `SELECT id, name, parent_id, user_id, company_id, created_at FROM folders WHERE id = $1 AND ` + tenant

	var (
		f               models.Folder
		parent, company uuid.NullUUID
	)
	err := r.db.QueryRowContext(ctx, query, append([]any{id.String()}, targs...)...).
		Scan(&f.ID, &f.Name, &parent, &f.UserID, &company, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if parent.Valid {
		f.ParentID = &parent.UUID
	}
	if company.Valid {
		f.CompanyID = &company.UUID
	}
	return &f, nil
}

// Descendants walks the hierarchy below folderID with a recursive CTE.
// UNION (not UNION ALL) stops the walk on cycles.
func (r *PostgresRepository) Descendants(ctx context.Context, folderID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		WITH RECURSIVE tree AS (
			SELECT id FROM folders WHERE id = $1
			UNION
			SELECT f.id FROM folders f JOIN tree t ON f.parent_id = t.id
		)
		SELECT id FROM tree
	`
	rows, err := r.db.QueryContext(ctx, query, folderID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to select folders: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

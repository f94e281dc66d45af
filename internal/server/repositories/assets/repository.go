package assets

import (
	"context"
	"time"

	"github.com/dmitrijs2005/assetcatalog/internal/server/models"
	"github.com/dmitrijs2005/assetcatalog/internal/server/search"
	"github.com/google/uuid"
)

// Repository is the asset store. Every method that takes a companyID only
// touches rows of that tenant (nil is the root tenant).
type Repository interface {
	search.DataSource

	Get(ctx context.Context, companyID *uuid.UUID, id uuid.UUID) (*models.Asset, error)
	ListByIDs(ctx context.Context, companyID *uuid.UUID, ids []uuid.UUID) ([]*models.Asset, error)
	SetMetadata(ctx context.Context, id uuid.UUID, blob string, at time.Time) error
	Move(ctx context.Context, companyID *uuid.UUID, id uuid.UUID, folderID *uuid.UUID, at time.Time) error
	SoftDelete(ctx context.Context, companyID *uuid.UUID, ids []uuid.UUID, at time.Time) (int, error)
	Restore(ctx context.Context, companyID *uuid.UUID, ids []uuid.UUID, at time.Time) (int, error)
	// PurgeDeleted removes soft-deleted assets among ids and returns their storage keys.
	PurgeDeleted(ctx context.Context, companyID *uuid.UUID, ids []uuid.UUID) ([]string, error)
	// PurgeExpired removes assets soft-deleted before cutoff, in every tenant.
	PurgeExpired(ctx context.Context, cutoff time.Time) ([]string, error)
}

package tags

import (
	"context"

	"github.com/dmitrijs2005/assetcatalog/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, tag *models.Tag) error
	// List returns the tenant's tags with the number of assets carrying each.
	List(ctx context.Context, companyID *uuid.UUID) ([]*models.Tag, error)
	ListByIDs(ctx context.Context, companyID *uuid.UUID, ids []uuid.UUID) ([]*models.Tag, error)
	Delete(ctx context.Context, companyID *uuid.UUID, id uuid.UUID) error
	// Assign links every asset to every tag; existing links are kept.
	// Returns the number of new links.
	Assign(ctx context.Context, assetIDs, tagIDs []uuid.UUID) (int, error)
	Remove(ctx context.Context, assetIDs, tagIDs []uuid.UUID) (int, error)
	ForAsset(ctx context.Context, assetID uuid.UUID) ([]*models.Tag, error)
}

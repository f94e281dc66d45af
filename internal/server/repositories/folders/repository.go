package folders

import (
	"context"

	"github.com/dmitrijs2005/assetcatalog/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	Get(ctx context.Context, companyID *uuid.UUID, id uuid.UUID) (*models.Folder, error)
	// Descendants returns folderID followed by every folder below it.
	Descendants(ctx context.Context, folderID uuid.UUID) ([]uuid.UUID, error)
}

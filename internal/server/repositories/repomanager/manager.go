package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/assetcatalog/internal/dbx"
	"github.com/dmitrijs2005/assetcatalog/internal/server/repositories/assets"
	"github.com/dmitrijs2005/assetcatalog/internal/server/repositories/folders"
	"github.com/dmitrijs2005/assetcatalog/internal/server/repositories/tags"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Assets(db dbx.DBTX) assets.Repository
	Folders(db dbx.DBTX) folders.Repository
	Tags(db dbx.DBTX) tags.Repository
}

// Package services holds the catalog use cases: asset search and lifecycle,
// and visual tags. Services own transactions; repositories are bound to the
// transaction handle per call.
package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/assetcatalog/internal/common"
	"github.com/dmitrijs2005/assetcatalog/internal/dbx"
	"github.com/dmitrijs2005/assetcatalog/internal/logging"
	sc "github.com/dmitrijs2005/assetcatalog/internal/server/config"
	"github.com/dmitrijs2005/assetcatalog/internal/server/models"
	"github.com/dmitrijs2005/assetcatalog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/assetcatalog/internal/server/search"
	"github.com/google/uuid"
)

type AssetService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	store       ObjectStore
	logger      logging.Logger
	searchOpts  []search.Option
	now         func() time.Time
}

func NewAssetService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config,
	store ObjectStore, logger logging.Logger, observer search.Observer) *AssetService {
	opts := []search.Option{search.WithLogger(logger), search.WithStrictEmptyAnd(config.StrictEmptyAnd)}
	if observer != nil {
		opts = append(opts, search.WithObserver(observer))
	}
	return &AssetService{
		db:          db,
		repomanager: repomanager,
		config:      config,
		store:       store,
		logger:      logger.With("module", "assets"),
		searchOpts:  opts,
		now:         time.Now,
	}
}

func (s *AssetService) run(ctx context.Context, scope search.Scope, req search.Request) (*search.Result, error) {
	return dbx.ReadTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*search.Result, error) {
		e := search.NewExecutor(s.repomanager.Assets(tx), s.repomanager.Folders(tx), s.searchOpts...)
		return e.Search(ctx, scope, req)
	})
}

// Search runs an advanced search over the caller's live assets.
func (s *AssetService) Search(ctx context.Context, scope models.Scope, req search.Request) (*search.Result, error) {
	return s.run(ctx, search.ScopeFor(scope, false), req)
}

// List browses a folder (and its subfolders); a nil folder lists everything.
func (s *AssetService) List(ctx context.Context, scope models.Scope, folderID *uuid.UUID, sortBy, sortDir string, page, pageSize int) (*search.Result, error) {
	return s.run(ctx, search.ScopeFor(scope, false), search.Request{
		FolderID: folderID,
		SortBy:   sortBy,
		SortDir:  sortDir,
		Page:     page,
		PageSize: pageSize,
	})
}

// RecycleBin lists soft-deleted assets, most recently deleted first by default.
func (s *AssetService) RecycleBin(ctx context.Context, scope models.Scope, sortBy, sortDir string, page, pageSize int) (*search.Result, error) {
	if strings.TrimSpace(sortBy) == "" {
		sortBy = search.SortDeletedAt.String()
	}
	return s.run(ctx, search.ScopeFor(scope, true), search.Request{
		SortBy:   sortBy,
		SortDir:  sortDir,
		Page:     page,
		PageSize: pageSize,
	})
}

func (s *AssetService) Get(ctx context.Context, scope models.Scope, id uuid.UUID) (*models.Asset, error) {
	return s.repomanager.Assets(s.db).Get(ctx, scope.CompanyID, id)
}

// SetMetadataValue returns blob with key set to value, or removed when value
// is empty. A blob that is not a JSON object is replaced by a fresh one.
func SetMetadataValue(blob, key, value string) (string, error) {
	fields := map[string]any{}
	if strings.TrimSpace(blob) != "" {
		if err := json.Unmarshal([]byte(blob), &fields); err != nil || fields == nil {
			fields = map[string]any{}
		}
	}

	if value == "" {
		delete(fields, key)
	} else {
		fields[key] = value
	}
	if len(fields) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(fields); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// UpdateMetadata sets (or, with an empty value, removes) one metadata key
// on every live asset among ids. Returns the number of assets updated.
func (s *AssetService) UpdateMetadata(ctx context.Context, scope models.Scope, ids []uuid.UUID, key, value string) (int, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return 0, fmt.Errorf("%w: metadata key is required", common.ErrorValidation)
	}
	value = strings.TrimSpace(value)
	ids = uniqueIDs(ids)

	updated := 0
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Assets(tx)

		list, err := repo.ListByIDs(ctx, scope.CompanyID, ids)
		if err != nil {
			return err
		}

		now := s.now()
		for _, a := range list {
			if a.IsDeleted {
				continue
			}
			blob, err := SetMetadataValue(a.UserMetadata, key, value)
			if err != nil {
				return err
			}
			if err := repo.SetMetadata(ctx, a.ID, blob, now); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("error updating metadata: %w", err)
	}

	s.logger.Info(ctx, "metadata updated", "key", key, "requested", len(ids), "updated", updated)
	return updated, nil
}

// Move places a live asset into folderID; nil moves it to the root.
func (s *AssetService) Move(ctx context.Context, scope models.Scope, id uuid.UUID, folderID *uuid.UUID) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if folderID != nil {
			if _, err := s.repomanager.Folders(tx).Get(ctx, scope.CompanyID, *folderID); err != nil {
				return fmt.Errorf("folder %s: %w", folderID, err)
			}
		}
		return s.repomanager.Assets(tx).Move(ctx, scope.CompanyID, id, folderID, s.now())
	})
}

// Delete moves live assets to the recycle bin.
func (s *AssetService) Delete(ctx context.Context, scope models.Scope, ids []uuid.UUID) (int, error) {
	n, err := s.repomanager.Assets(s.db).SoftDelete(ctx, scope.CompanyID, uniqueIDs(ids), s.now())
	if err != nil {
		return 0, err
	}
	s.logger.Info(ctx, "assets deleted", "count", n)
	return n, nil
}

// Restore brings assets back from the recycle bin.
func (s *AssetService) Restore(ctx context.Context, scope models.Scope, ids []uuid.UUID) (int, error) {
	n, err := s.repomanager.Assets(s.db).Restore(ctx, scope.CompanyID, uniqueIDs(ids), s.now())
	if err != nil {
		return 0, err
	}
	s.logger.Info(ctx, "assets restored", "count", n)
	return n, nil
}

// PermanentlyDelete removes assets from the recycle bin together with their
// stored files. Live assets among ids are left untouched.
func (s *AssetService) PermanentlyDelete(ctx context.Context, scope models.Scope, ids []uuid.UUID) (int, error) {
	keys, err := s.repomanager.Assets(s.db).PurgeDeleted(ctx, scope.CompanyID, uniqueIDs(ids))
	if err != nil {
		return 0, err
	}
	s.removeObjects(ctx, keys)
	s.logger.Info(ctx, "assets purged", "count", len(keys))
	return len(keys), nil
}

// PurgeExpired removes every asset that has been in the recycle bin longer
// than the retention period.
func (s *AssetService) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-s.config.RetentionPeriod)
	keys, err := s.repomanager.Assets(s.db).PurgeExpired(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.removeObjects(ctx, keys)
	if len(keys) > 0 {
		s.logger.Info(ctx, "expired assets purged", "count", len(keys), "cutoff", cutoff)
	}
	return len(keys), nil
}

// removeObjects deletes stored files of purged rows. The rows are already
// gone, so failures are logged only.
func (s *AssetService) removeObjects(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	err := s.store.Delete(ctx, keys)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrorStorageDisabled):
		s.logger.Debug(ctx, "object storage disabled, files kept", "count", len(keys))
	default:
		s.logger.Warn(ctx, "failed to remove stored files", "error", err)
	}
}

// DownloadURL returns a presigned URL for a live asset's file.
func (s *AssetService) DownloadURL(ctx context.Context, scope models.Scope, id uuid.UUID) (string, error) {
	a, err := s.repomanager.Assets(s.db).Get(ctx, scope.CompanyID, id)
	if err != nil {
		return "", err
	}
	if a.IsDeleted || a.StorageKey == "" {
		return "", common.ErrorNotFound
	}
	return s.store.PresignGet(ctx, a.StorageKey)
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

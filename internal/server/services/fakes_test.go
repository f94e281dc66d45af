package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/assetcatalog/internal/common"
	"github.com/dmitrijs2005/assetcatalog/internal/dbx"
	"github.com/dmitrijs2005/assetcatalog/internal/logging"
	"github.com/dmitrijs2005/assetcatalog/internal/server/config"
	"github.com/dmitrijs2005/assetcatalog/internal/server/models"
	"github.com/dmitrijs2005/assetcatalog/internal/server/repositories/assets"
	"github.com/dmitrijs2005/assetcatalog/internal/server/repositories/folders"
	"github.com/dmitrijs2005/assetcatalog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/assetcatalog/internal/server/repositories/tags"
	"github.com/dmitrijs2005/assetcatalog/internal/server/search"
	"github.com/google/uuid"
)

// -------- test fakes --------

func sameTenant(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type fakeAssetsRepo struct {
	assets.Repository
	byID     map[uuid.UUID]*models.Asset
	queryErr error
	err      error
	cutoff   time.Time
}

func newFakeAssets(list ...*models.Asset) *fakeAssetsRepo {
	f := &fakeAssetsRepo{byID: map[uuid.UUID]*models.Asset{}}
	for _, a := range list {
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeAssetsRepo) Query(ctx context.Context, q search.Query) (*search.Page, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	mem := search.NewMemorySource()
	for _, a := range f.byID {
		mem.Put(a)
	}
	return mem.Query(ctx, q)
}

func (f *fakeAssetsRepo) Get(ctx context.Context, companyID *uuid.UUID, id uuid.UUID) (*models.Asset, error) {
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.byID[id]
	if !ok || !sameTenant(a.CompanyID, companyID) {
		return nil, common.ErrorNotFound
	}
	c := *a
	return &c, nil
}

func (f *fakeAssetsRepo) ListByIDs(ctx context.Context, companyID *uuid.UUID, ids []uuid.UUID) ([]*models.Asset, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Asset
	for _, id := range ids {
		if a, ok := f.byID[id]; ok && sameTenant(a.CompanyID, companyID) {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeAssetsRepo) SetMetadata(ctx context.Context, id uuid.UUID, blob string, at time.Time) error {
	f.byID[id].UserMetadata = blob
	f.byID[id].UpdatedAt = at
	return nil
}

func (f *fakeAssetsRepo) Move(ctx context.Context, companyID *uuid.UUID, id uuid.UUID, folderID *uuid.UUID, at time.Time) error {
	a, ok := f.byID[id]
	if !ok || a.IsDeleted || !sameTenant(a.CompanyID, companyID) {
		return common.ErrorNotFound
	}
	a.FolderID = folderID
	return nil
}

func (f *fakeAssetsRepo) flip(companyID *uuid.UUID, ids []uuid.UUID, deleted bool, at time.Time) int {
	n := 0
	for _, id := range ids {
		a, ok := f.byID[id]
		if !ok || a.IsDeleted == deleted || !sameTenant(a.CompanyID, companyID) {
			continue
		}
		a.IsDeleted = deleted
		a.DeletedAt = nil
		if deleted {
			ts := at
			a.DeletedAt = &ts
		}
		n++
	}
	return n
}

func (f *fakeAssetsRepo) SoftDelete(ctx context.Context, companyID *uuid.UUID, ids []uuid.UUID, at time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.flip(companyID, ids, true, at), nil
}

func (f *fakeAssetsRepo) Restore(ctx context.Context, companyID *uuid.UUID, ids []uuid.UUID, at time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.flip(companyID, ids, false, at), nil
}

func (f *fakeAssetsRepo) PurgeDeleted(ctx context.Context, companyID *uuid.UUID, ids []uuid.UUID) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	keys := []string{}
	for _, id := range ids {
		a, ok := f.byID[id]
		if ok && a.IsDeleted && sameTenant(a.CompanyID, companyID) {
			keys = append(keys, a.StorageKey)
			delete(f.byID, id)
		}
	}
	return keys, nil
}

func (f *fakeAssetsRepo) PurgeExpired(ctx context.Context, cutoff time.Time) ([]string, error) {
	f.cutoff = cutoff
	keys := []string{}
	for id, a := range f.byID {
		if a.IsDeleted && a.DeletedAt != nil && a.DeletedAt.Before(cutoff) {
			keys = append(keys, a.StorageKey)
			delete(f.byID, id)
		}
	}
	return keys, nil
}

type fakeFoldersRepo struct {
	folders.Repository
	tree *search.MemoryFolders
	byID map[uuid.UUID]*models.Folder
}

func newFakeFolders(list ...*models.Folder) *fakeFoldersRepo {
	f := &fakeFoldersRepo{tree: search.NewMemoryFolders(), byID: map[uuid.UUID]*models.Folder{}}
	for _, folder := range list {
		f.byID[folder.ID] = folder
		f.tree.Add(folder.ID, folder.ParentID)
	}
	return f
}

func (f *fakeFoldersRepo) Get(ctx context.Context, companyID *uuid.UUID, id uuid.UUID) (*models.Folder, error) {
	folder, ok := f.byID[id]
	if !ok || !sameTenant(folder.CompanyID, companyID) {
		return nil, common.ErrorNotFound
	}
	return folder, nil
}

func (f *fakeFoldersRepo) Descendants(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	return f.tree.Descendants(ctx, id)
}

type fakeTagsRepo struct {
	tags.Repository
	byID      map[uuid.UUID]*models.Tag
	links     map[[2]uuid.UUID]bool
	createErr error
}

func newFakeTags(list ...*models.Tag) *fakeTagsRepo {
	f := &fakeTagsRepo{byID: map[uuid.UUID]*models.Tag{}, links: map[[2]uuid.UUID]bool{}}
	for _, t := range list {
		f.byID[t.ID] = t
	}
	return f
}

func (f *fakeTagsRepo) Create(ctx context.Context, tag *models.Tag) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.byID[tag.ID] = tag
	return nil
}

func (f *fakeTagsRepo) List(ctx context.Context, companyID *uuid.UUID) ([]*models.Tag, error) {
	var out []*models.Tag
	for _, t := range f.byID {
		if sameTenant(t.CompanyID, companyID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTagsRepo) ListByIDs(ctx context.Context, companyID *uuid.UUID, ids []uuid.UUID) ([]*models.Tag, error) {
	var out []*models.Tag
	for _, id := range ids {
		if t, ok := f.byID[id]; ok && sameTenant(t.CompanyID, companyID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTagsRepo) Delete(ctx context.Context, companyID *uuid.UUID, id uuid.UUID) error {
	t, ok := f.byID[id]
	if !ok || !sameTenant(t.CompanyID, companyID) {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeTagsRepo) Assign(ctx context.Context, assetIDs, tagIDs []uuid.UUID) (int, error) {
	n := 0
	for _, a := range assetIDs {
		for _, t := range tagIDs {
			if !f.links[[2]uuid.UUID{a, t}] {
				f.links[[2]uuid.UUID{a, t}] = true
				n++
			}
		}
	}
	return n, nil
}

func (f *fakeTagsRepo) Remove(ctx context.Context, assetIDs, tagIDs []uuid.UUID) (int, error) {
	n := 0
	for _, a := range assetIDs {
		for _, t := range tagIDs {
			if f.links[[2]uuid.UUID{a, t}] {
				delete(f.links, [2]uuid.UUID{a, t})
				n++
			}
		}
	}
	return n, nil
}

func (f *fakeTagsRepo) ForAsset(ctx context.Context, assetID uuid.UUID) ([]*models.Tag, error) {
	var out []*models.Tag
	for link := range f.links {
		if link[0] == assetID {
			out = append(out, f.byID[link[1]])
		}
	}
	return out, nil
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	a *fakeAssetsRepo
	f *fakeFoldersRepo
	t *fakeTagsRepo
}

func (m *fakeRepoManager) Assets(dbx.DBTX) assets.Repository   { return m.a }
func (m *fakeRepoManager) Folders(dbx.DBTX) folders.Repository { return m.f }
func (m *fakeRepoManager) Tags(dbx.DBTX) tags.Repository       { return m.t }

type fakeStore struct {
	url     string
	err     error
	deleted []string
	delErr  error
}

func (s *fakeStore) PresignGet(ctx context.Context, key string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.url + key, nil
}

func (s *fakeStore) Delete(ctx context.Context, keys []string) error {
	s.deleted = append(s.deleted, keys...)
	return s.delErr
}

// -------- helpers --------

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		S3Region:        "us-east-1",
		S3RootUser:      "x",
		S3RootPassword:  "y",
		S3BaseEndpoint:  "http://127.0.0.1:9000",
		S3Bucket:        "bucket",
		SecretKey:       "k",
		PresignValidity: 15 * time.Minute,
		RetentionPeriod: 30 * 24 * time.Hour,
	}
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newAssetService(t *testing.T, m *fakeRepoManager, store ObjectStore) (*AssetService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newSQLMockDB(t)
	svc := NewAssetService(db, m, testConfig(), store, logging.Nop(), nil)
	svc.now = func() time.Time { return fixedNow }
	return svc, mock
}

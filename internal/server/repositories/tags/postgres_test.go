package tags

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/assetcatalog/internal/common"
	"github.com/dmitrijs2005/assetcatalog/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	company = uuid.MustParse("6a3e2e4c-7b1f-4a5c-9d2e-000000000001")
	tagA    = uuid.MustParse("6a3e2e4c-7b1f-4a5c-9d2e-0000000000a1")
	tagB    = uuid.MustParse("6a3e2e4c-7b1f-4a5c-9d2e-0000000000a2")
	asset1  = uuid.MustParse("6a3e2e4c-7b1f-4a5c-9d2e-0000000000b1")
	asset2  = uuid.MustParse("6a3e2e4c-7b1f-4a5c-9d2e-0000000000b2")
	now     = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := regexp.QuoteMeta(`INSERT INTO tags (id, name, color, user_id, company_id, created_at) VALUES ($1, $2, $3, $4, $5, $6)`)
	mock.ExpectExec(q).
		WithArgs(tagA.String(), "Approved", "#00FF00", "u1", company.String(), now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(context.Background(),
		&models.Tag{ID: tagA, Name: "Approved", Color: "#00FF00", UserID: "u1", CompanyID: &company, CreatedAt: now}))

	mock.ExpectExec(q).
		WithArgs(tagB.String(), "Root", "#000000", "admin", nil, now).
		WillReturnError(errors.New("boom"))
	err := repo.Create(context.Background(), &models.Tag{ID: tagB, Name: "Root", Color: "#000000", UserID: "admin", CreatedAt: now})
	assert.ErrorContains(t, err, "db error")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_WithCounts(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT t\.id, .*, COUNT\(x\.asset_id\) FROM tags t LEFT JOIN asset_tags x ON x\.tag_id = t\.id WHERE t\.company_id = \$1 GROUP BY t\.id`).
		WithArgs(company.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "color", "user_id", "company_id", "created_at", "count"}).
			AddRow(tagA.String(), "Approved", "#00FF00", "u1", company.String(), now, 3).
			AddRow(tagB.String(), "Draft", "#FF0000", "u1", company.String(), now, 0))

	list, err := repo.List(context.Background(), &company)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 3, list[0].AssetCount)
	assert.Equal(t, "Draft", list[1].Name)
	require.NotNil(t, list[1].CompanyID)
	assert.Equal(t, company, *list[1].CompanyID)

	mock.ExpectQuery(`WHERE t\.company_id IS NULL`).WillReturnError(errors.New("boom"))
	_, err = repo.List(context.Background(), nil)
	assert.ErrorContains(t, err, "failed to select tags")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByIDsAndForAsset(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	cols := []string{"id", "name", "color", "user_id", "company_id", "created_at"}

	mock.ExpectQuery(regexp.QuoteMeta(`FROM tags t WHERE t.id IN ($1, $2) AND t.company_id IS NULL ORDER BY t.id`)).
		WithArgs(tagA.String(), tagB.String()).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(tagA.String(), "Approved", "#00FF00", "admin", nil, now))
	list, err := repo.ListByIDs(context.Background(), nil, []uuid.UUID{tagA, tagB})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].CompanyID)

	mock.ExpectQuery(`FROM tags t JOIN asset_tags x ON x\.tag_id = t\.id WHERE x\.asset_id = \$1`).
		WithArgs(asset1.String()).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(tagB.String(), "Draft", "#FF0000", "u1", company.String(), now))
	list, err = repo.ForAsset(context.Background(), asset1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, tagB, list[0].ID)

	list, err = repo.ListByIDs(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := regexp.QuoteMeta(`DELETE FROM tags WHERE id = $1 AND company_id = $2`)
	mock.ExpectExec(q).WithArgs(tagA.String(), company.String()).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), &company, tagA))

	mock.ExpectExec(q).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), &company, tagA), common.ErrorNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssign(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	n, err := repo.Assign(context.Background(), nil, []uuid.UUID{tagA})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO asset_tags (asset_id, tag_id) VALUES ($1, $2), ($3, $4), ($5, $6), ($7, $8) ON CONFLICT (asset_id, tag_id) DO NOTHING`)).
		WithArgs(asset1.String(), tagA.String(), asset1.String(), tagB.String(),
			asset2.String(), tagA.String(), asset2.String(), tagB.String()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err = repo.Assign(context.Background(), []uuid.UUID{asset1, asset2}, []uuid.UUID{tagA, tagB})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemove(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM asset_tags WHERE asset_id IN ($1, $2) AND tag_id IN ($3)`)).
		WithArgs(asset1.String(), asset2.String(), tagA.String()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	n, err := repo.Remove(context.Background(), []uuid.UUID{asset1, asset2}, []uuid.UUID{tagA})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	mock.ExpectExec(`DELETE FROM asset_tags`).WillReturnError(errors.New("boom"))
	_, err = repo.Remove(context.Background(), []uuid.UUID{asset1}, []uuid.UUID{tagA})
	assert.ErrorContains(t, err, "db error")

	require.NoError(t, mock.ExpectationsWereMet())
}

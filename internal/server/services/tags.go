package services

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/assetcatalog/internal/common"
	"github.com/dmitrijs2005/assetcatalog/internal/dbx"
	"github.com/dmitrijs2005/assetcatalog/internal/logging"
	"github.com/dmitrijs2005/assetcatalog/internal/server/models"
	"github.com/dmitrijs2005/assetcatalog/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const maxTagNameLength = 100

var tagColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type TagService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewTagService(db *sql.DB, repomanager repomanager.RepositoryManager, logger logging.Logger) *TagService {
	return &TagService{
		db:          db,
		repomanager: repomanager,
		logger:      logger.With("module", "tags"),
		now:         time.Now,
	}
}

// Create adds a tag to the caller's tenant. Colors are stored upper-case.
func (s *TagService) Create(ctx context.Context, scope models.Scope, name, color string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: tag name is required", common.ErrorValidation)
	}
	if utf8.RuneCountInString(name) > maxTagNameLength {
		return nil, fmt.Errorf("%w: tag name is longer than %d characters", common.ErrorValidation, maxTagNameLength)
	}
	color = strings.TrimSpace(color)
	if !tagColor.MatchString(color) {
		return nil, fmt.Errorf("%w: color must look like #RRGGBB", common.ErrorValidation)
	}

	tag := &models.Tag{
		ID:        uuid.New(),
		Name:      name,
		Color:     strings.ToUpper(color),
		UserID:    scope.UserID,
		CompanyID: scope.CompanyID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repomanager.Tags(s.db).Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *TagService) List(ctx context.Context, scope models.Scope) ([]*models.Tag, error) {
	return s.repomanager.Tags(s.db).List(ctx, scope.CompanyID)
}

func (s *TagService) Delete(ctx context.Context, scope models.Scope, id uuid.UUID) error {
	return s.repomanager.Tags(s.db).Delete(ctx, scope.CompanyID, id)
}

// Assign attaches every tag to every asset. All assets and tags must belong
// to the caller's tenant. Returns the number of new links.
func (s *TagService) Assign(ctx context.Context, scope models.Scope, assetIDs, tagIDs []uuid.UUID) (int, error) {
	var n int
	err := s.withOwned(ctx, scope, assetIDs, tagIDs, func(ctx context.Context, tx dbx.DBTX, assets, tags []uuid.UUID) error {
		var err error
		n, err = s.repomanager.Tags(tx).Assign(ctx, assets, tags)
		return err
	})
	return n, err
}

// Remove detaches the tags from the assets. Returns the number of removed links.
func (s *TagService) Remove(ctx context.Context, scope models.Scope, assetIDs, tagIDs []uuid.UUID) (int, error) {
	var n int
	err := s.withOwned(ctx, scope, assetIDs, tagIDs, func(ctx context.Context, tx dbx.DBTX, assets, tags []uuid.UUID) error {
		var err error
		n, err = s.repomanager.Tags(tx).Remove(ctx, assets, tags)
		return err
	})
	return n, err
}

// withOwned checks tenant ownership of the ids and runs fn in the same
// transaction.
func (s *TagService) withOwned(ctx context.Context, scope models.Scope, assetIDs, tagIDs []uuid.UUID,
	fn func(ctx context.Context, tx dbx.DBTX, assets, tags []uuid.UUID) error) error {
	assetIDs, tagIDs = uniqueIDs(assetIDs), uniqueIDs(tagIDs)
	if len(assetIDs) == 0 || len(tagIDs) == 0 {
		return fmt.Errorf("%w: asset and tag ids are required", common.ErrorValidation)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		assets, err := s.repomanager.Assets(tx).ListByIDs(ctx, scope.CompanyID, assetIDs)
		if err != nil {
			return err
		}
		if len(assets) != len(assetIDs) {
			return fmt.Errorf("assets: %w", common.ErrorNotFound)
		}

		tags, err := s.repomanager.Tags(tx).ListByIDs(ctx, scope.CompanyID, tagIDs)
		if err != nil {
			return err
		}
		if len(tags) != len(tagIDs) {
			return fmt.Errorf("tags: %w", common.ErrorNotFound)
		}

		return fn(ctx, tx, assetIDs, tagIDs)
	})
}

// ForAsset lists the tags of one asset of the caller's tenant.
func (s *TagService) ForAsset(ctx context.Context, scope models.Scope, assetID uuid.UUID) ([]*models.Tag, error) {
	if _, err := s.repomanager.Assets(s.db).Get(ctx, scope.CompanyID, assetID); err != nil {
		return nil, err
	}
	return s.repomanager.Tags(s.db).ForAsset(ctx, assetID)
}

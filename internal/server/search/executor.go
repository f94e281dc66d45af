package search

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/assetcatalog/internal/logging"
	"github.com/dmitrijs2005/assetcatalog/internal/server/models"
	"github.com/google/uuid"
)

// Query is what a DataSource runs: one predicate (already scoped), an
// ordering and a window. Limit 0 means no limit.
type Query struct {
	Predicate Predicate
	Sort      Sort
	Offset    int
	Limit     int
}

// Page is a window of matches plus the number of matches before paging.
type Page struct {
	Assets []*models.Asset
	Total  int
}

// DataSource evaluates queries against stored assets.
type DataSource interface {
	Query(ctx context.Context, q Query) (*Page, error)
}

// FolderResolver expands a folder into itself plus all descendants.
type FolderResolver interface {
	Descendants(ctx context.Context, folderID uuid.UUID) ([]uuid.UUID, error)
}

// Observer receives search telemetry.
type Observer interface {
	ConditionDropped(field string)
	SearchCompleted(logic string, total int, elapsed time.Duration, err error)
}

// Scope is the mandatory filter every search runs under.
type Scope struct {
	CompanyID *uuid.UUID
	// Deleted selects the recycle bin instead of live assets.
	Deleted bool
}

// ScopeFor builds the search scope of a caller.
func ScopeFor(s models.Scope, deleted bool) Scope {
	return Scope{CompanyID: s.CompanyID, Deleted: deleted}
}

type Executor struct {
	source         DataSource
	folders        FolderResolver
	logger         logging.Logger
	observer       Observer
	strictEmptyAnd bool
}

type Option func(*Executor)

func WithLogger(l logging.Logger) Option {
	return func(e *Executor) { e.logger = l.With("module", "search") }
}

func WithObserver(o Observer) Option {
	return func(e *Executor) { e.observer = o }
}

// WithStrictEmptyAnd makes AND requests whose conditions were all dropped
// return nothing.
func WithStrictEmptyAnd(strict bool) Option {
	return func(e *Executor) { e.strictEmptyAnd = strict }
}

func NewExecutor(source DataSource, folders FolderResolver, opts ...Option) *Executor {
	e := &Executor{source: source, folders: folders, logger: logging.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search runs req within scope and returns one page of results.
func (e *Executor) Search(ctx context.Context, scope Scope, req Request) (res *Result, err error) {
	start := time.Now()
	plan := Compile(req, e.strictEmptyAnd)

	if e.observer != nil {
		for _, f := range plan.Dropped {
			e.observer.ConditionDropped(f)
		}
		defer func() {
			total := 0
			if res != nil {
				total = res.Total
			}
			e.observer.SearchCompleted(plan.Logic, total, time.Since(start), err)
		}()
	}

	e.logger.Info(ctx, "advanced search",
		"conditions", plan.Requested, "logic", plan.Logic, "predicates", plan.Built)
	if len(plan.Dropped) > 0 {
		e.logger.Debug(ctx, "conditions dropped", "fields", plan.Dropped)
	}
	if plan.EmptyAnd() {
		e.logger.Warn(ctx, "no usable conditions under AND",
			"conditions", plan.Requested, "strict", e.strictEmptyAnd)
	}

	scoped, err := e.scope(ctx, scope, plan)
	if err != nil {
		return nil, err
	}

	page, err := e.source.Query(ctx, Query{
		Predicate: scoped,
		Sort:      plan.Sort,
		Offset:    plan.Offset(),
		Limit:     plan.PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}

	return &Result{
		Assets:  page.Assets,
		Total:   page.Total,
		Page:    plan.Page,
		HasMore: plan.HasMore(page.Total),
	}, nil
}

func (e *Executor) scope(ctx context.Context, scope Scope, plan Plan) (Predicate, error) {
	tenant := Compare{Field: FieldCompanyID, Op: OpIsNull}
	if scope.CompanyID != nil {
		tenant = Compare{Field: FieldCompanyID, Op: OpEq, Value: *scope.CompanyID}
	}

	preds := And{tenant, Compare{Field: FieldDeleted, Op: OpEq, Value: scope.Deleted}}

	if plan.FolderID != nil {
		ids := []uuid.UUID{*plan.FolderID}
		if e.folders != nil {
			descendants, err := e.folders.Descendants(ctx, *plan.FolderID)
			if err != nil {
				return nil, fmt.Errorf("resolve folder %s: %w", plan.FolderID, err)
			}
			for _, id := range descendants {
				if id != *plan.FolderID {
					ids = append(ids, id)
				}
			}
		}
		preds = append(preds, Compare{Field: FieldFolderID, Op: OpIn, Value: ids})
	}

	if c, ok := plan.Predicate.(Const); !ok || !bool(c) {
		preds = append(preds, plan.Predicate)
	}
	return preds, nil
}

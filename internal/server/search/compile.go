package search

import (
	"math"

	"github.com/google/uuid"
)

// Plan is a compiled request, before tenant and folder scoping.
type Plan struct {
	Predicate Predicate
	Logic     string
	// Requested is the number of conditions in the request; Built the
	// number that produced a predicate.
	Requested int
	Built     int
	// Dropped lists the canonical field names of unusable conditions.
	Dropped  []string
	Sort     Sort
	Page     int
	PageSize int
	// PastEnd is set when the page starts beyond any representable offset.
	PastEnd  bool
	FolderID *uuid.UUID
}

// EmptyAnd reports an AND request whose conditions all were dropped.
func (p Plan) EmptyAnd() bool {
	return p.Logic == LogicAnd && p.Requested > 0 && p.Built == 0
}

// Compile builds the predicate, sort and paging plan of a request. With
// strictEmptyAnd set, an AND request whose conditions were all dropped
// matches nothing instead of everything.
func Compile(req Request, strictEmptyAnd bool) Plan {
	plan := Plan{
		Logic:     NormalizeLogic(req.Logic),
		Requested: len(req.Conditions),
		Sort:      ResolveSort(req.SortBy, req.SortDir),
		Page:      max(req.Page, 1),
		PageSize:  max(req.PageSize, 0),
		FolderID:  req.FolderID,
	}
	if plan.PageSize > 0 && plan.Page > math.MaxInt/plan.PageSize {
		plan.PastEnd = true
	}

	preds := make([]Predicate, 0, len(req.Conditions))
	for _, c := range req.Conditions {
		p := BuildCondition(c)
		if p == nil {
			plan.Dropped = append(plan.Dropped, NormalizeField(c.Field))
			continue
		}
		preds = append(preds, p)
	}
	plan.Built = len(preds)

	if strictEmptyAnd && plan.EmptyAnd() {
		plan.Predicate = Const(false)
		return plan
	}

	plan.Predicate = Combine(preds, plan.Logic)
	return plan
}

// Offset is the number of matches to skip.
func (p Plan) Offset() int {
	if p.PageSize == 0 {
		return 0
	}
	if p.PastEnd {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PageSize
}

// HasMore reports whether matches remain past the current page.
func (p Plan) HasMore(total int) bool {
	return p.PageSize > 0 && !p.PastEnd && p.Page*p.PageSize < total
}

package search

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/assetcatalog/internal/server/models"
	"github.com/google/uuid"
	"github.com/tidwall/btree"
)

// MemorySource is an in-process DataSource keyed by asset id.
type MemorySource struct {
	mu     sync.RWMutex
	assets *btree.Map[string, *models.Asset]
}

func NewMemorySource(assets ...*models.Asset) *MemorySource {
	m := &MemorySource{assets: btree.NewMap[string, *models.Asset](0)}
	for _, a := range assets {
		m.Put(a)
	}
	return m
}

// Put stores a copy of a, replacing any asset with the same id.
func (m *MemorySource) Put(a *models.Asset) {
	c := *a
	c.TagIDs = slices.Clone(a.TagIDs)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets.Set(a.ID.String(), &c)
}

func (m *MemorySource) Delete(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets.Delete(id.String())
}

func (m *MemorySource) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.assets.Len()
}

func (m *MemorySource) Query(ctx context.Context, q Query) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	var matches []*models.Asset
	m.assets.Scan(func(_ string, a *models.Asset) bool {
		if q.Predicate == nil || q.Predicate.Eval(a) {
			matches = append(matches, a)
		}
		return true
	})
	m.mu.RUnlock()

	slices.SortStableFunc(matches, q.Sort.Compare)

	page := &Page{Total: len(matches), Assets: []*models.Asset{}}
	if q.Offset < 0 || q.Offset >= len(matches) {
		return page, nil
	}
	matches = matches[q.Offset:]
	if q.Limit > 0 && q.Limit < len(matches) {
		matches = matches[:q.Limit]
	}

	for _, a := range matches {
		c := *a
		c.TagIDs = slices.Clone(a.TagIDs)
		page.Assets = append(page.Assets, &c)
	}
	return page, nil
}

// MemoryFolders is a FolderResolver over an in-process parent map.
type MemoryFolders struct {
	mu       sync.RWMutex
	children map[uuid.UUID][]uuid.UUID
}

func NewMemoryFolders() *MemoryFolders {
	return &MemoryFolders{children: make(map[uuid.UUID][]uuid.UUID)}
}

// Add registers id under parent; a nil parent makes it a root folder.
func (m *MemoryFolders) Add(id uuid.UUID, parent *uuid.UUID) {
	if parent == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.children[*parent] = append(m.children[*parent], id)
}

func (m *MemoryFolders) Descendants(ctx context.Context, folderID uuid.UUID) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := map[uuid.UUID]struct{}{folderID: {}}
	out := []uuid.UUID{folderID}
	for i := 0; i < len(out); i++ {
		for _, child := range m.children[out[i]] {
			if _, ok := seen[child]; ok {
				continue
			}
			seen[child] = struct{}{}
			out = append(out, child)
		}
	}
	return out, nil
}

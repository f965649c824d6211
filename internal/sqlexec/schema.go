// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// TableLister is the part of a Backend the catalog needs.
type TableLister interface {
	Tables(ctx context.Context) ([]string, error)
}

// Catalog caches table names so the prompt can complete them without a
// round-trip per keystroke.
type Catalog struct {
	src TableLister

	mu     sync.RWMutex
	tables []string
	loaded bool
}

// NewCatalog creates a Catalog backed by src.
func NewCatalog(src TableLister) *Catalog {
	return &Catalog{src: src}
}

// Load fetches table names unless they are cached already.
func (c *Catalog) Load(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	if c.loaded {
		tables := c.tables
		c.mu.RUnlock()
		return tables, nil
	}
	c.mu.RUnlock()

	tables, err := c.src.Tables(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(tables)

	c.mu.Lock()
	c.tables = tables
	c.loaded = true
	c.mu.Unlock()
	return tables, nil
}

// Clear drops cached names; the next Load queries the database again.
func (c *Catalog) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables = nil
	c.loaded = false
}

// Refresh drops the cache and loads the names again. When the reload fails
// nothing completes until the next successful Load.
func (c *Catalog) Refresh(ctx context.Context) ([]string, error) {
	c.Clear()
	return c.Load(ctx)
}

// Complete returns cached table names starting with prefix, ignoring case.
// It never touches the database.
func (c *Catalog) Complete(prefix string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	lower := strings.ToLower(prefix)
	var out []string
	for _, t := range c.tables {
		if strings.HasPrefix(strings.ToLower(t), lower) {
			out = append(out, t)
		}
	}
	return out
}

// Package table serves a roster view over HTTP: the cached projection, filtered and sorted queries,
// single cell edits and document exports.
package table

import (
	"context"

	"github.com/nuptial-ops/wedding-manager/pkg/roster"
)

// Loader reads the projection of a view from the store.
type Loader interface {
	Load(ctx context.Context, weddingID uint) (roster.Schema, []roster.Row, error)
}

func NewService(view string, loader Loader, cache *roster.Cache, mutator *roster.Mutator) *Service {
	return &Service{
		view:    view,
		loader:  loader,
		cache:   cache,
		mutator: mutator,
	}
}

type Service struct {
	view    string
	loader  Loader
	cache   *roster.Cache
	mutator *roster.Mutator
}

func (s *Service) View() string {
	return s.view
}

func (s *Service) key(weddingID uint) roster.CacheKey {
	return roster.CacheKey{WeddingID: weddingID, View: s.view}
}

func (s *Service) load(weddingID uint) roster.LoadFunc {
	return func(ctx context.Context) (roster.Schema, []roster.Row, error) {
		return s.loader.Load(ctx, weddingID)
	}
}

// Find returns the cached projection of the wedding, loading it on a miss.
func (s *Service) Find(ctx context.Context, weddingID uint) (roster.Projection, error) {
	return s.cache.Load(ctx, s.key(weddingID), s.load(weddingID))
}

// Query filters and sorts the projection. The cached rows are left untouched.
func (s *Service) Query(ctx context.Context, weddingID uint, query roster.Query) (roster.Projection, error) {
	projection, err := s.Find(ctx, weddingID)
	if err != nil {
		return roster.Projection{}, err
	}

	rows, err := roster.Apply(projection.Schema, projection.Rows, query)
	if err != nil {
		return roster.Projection{}, err
	}
	return roster.Projection{Schema: projection.Schema, Rows: rows}, nil
}

func (s *Service) EditCell(ctx context.Context, weddingID uint, edit roster.Edit) error {
	return s.mutator.Edit(ctx, s.key(weddingID), s.load(weddingID), edit)
}

// Export lays out the queried rows for a document.
func (s *Service) Export(ctx context.Context, weddingID uint, query roster.Query) (roster.Export, error) {
	projection, err := s.Query(ctx, weddingID, query)
	if err != nil {
		return roster.Export{}, err
	}
	return roster.BuildExport(projection.Schema, projection.Rows), nil
}

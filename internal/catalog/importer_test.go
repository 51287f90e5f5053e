package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu       sync.Mutex
	products map[string]model.Product
	failOn   string
}

func (s *memoryStore) Upsert(_ context.Context, p *model.Product) error {
	if p.ID == s.failOn {
		return errors.New("connection reset")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.products == nil {
		s.products = make(map[string]model.Product)
	}
	s.products[p.ID] = *p
	return nil
}

func filesLoader(files map[string][]model.Product) Loader {
	return &mockLoader{loadFunc: func(_ context.Context, path string) ([]model.Product, error) {
		products, ok := files[path]
		if !ok {
			return nil, errors.New("no such file")
		}
		return products, nil
	}}
}

func TestImporter_Import(t *testing.T) {
	loader := filesLoader(map[string][]model.Product{
		"a.gz": {{ID: "P001", Stock: 1}, {ID: "P002", Stock: 5}},
		"b.gz": {{ID: "P001", Stock: 9}, {ID: "P003", Stock: 2}},
	})
	store := &memoryStore{}

	res, err := NewImporter(loader, store, 4, zerolog.Nop()).Import(context.Background(), []string{"a.gz", "b.gz"})

	require.NoError(t, err)
	assert.Equal(t, Result{Files: 2, Products: 3}, res)
	assert.Len(t, store.products, 3)
	assert.Equal(t, 9, store.products["P001"].Stock, "later file wins")
}

func TestImporter_Import_Failures(t *testing.T) {
	loader := filesLoader(map[string][]model.Product{
		"a.gz": {{ID: "P001"}, {ID: "P002"}},
	})

	t.Run("Load failure writes nothing", func(t *testing.T) {
		store := &memoryStore{}
		_, err := NewImporter(loader, store, 1, zerolog.Nop()).Import(context.Background(), []string{"a.gz", "missing.gz"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing.gz")
		assert.Empty(t, store.products)
	})

	t.Run("Upsert failure", func(t *testing.T) {
		store := &memoryStore{failOn: "P002"}
		_, err := NewImporter(loader, store, 1, zerolog.Nop()).Import(context.Background(), []string{"a.gz"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "P002")
	})
}

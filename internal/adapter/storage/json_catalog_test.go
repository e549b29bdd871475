package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

func TestJSONCatalog_EmbeddedIsValid(t *testing.T) {
	products, err := NewJSONCatalog("").LoadProducts(context.Background())
	require.NoError(t, err)

	catalog, err := service.NewCatalog(products)
	require.NoError(t, err)

	for _, shelf := range catalog.Featured(service.DefaultFeaturedLimit) {
		assert.NotEmpty(t, shelf.Products, shelf.Category)
	}
	assert.Len(t, catalog.Featured(service.DefaultFeaturedLimit), len(domain.Categories))
}

func TestJSONCatalog_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":1,"name":"Tee","category":"Kids","price":"499","image":"/t.jpg","sizes":["4Y"],"colors":[],"inStock":true}]`), 0o644))

	products, err := NewJSONCatalog(path).LoadProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, []string{"4Y"}, products[0].Sizes)
	assert.Nil(t, products[0].OriginalPrice)
}

func TestJSONCatalog_RejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":1,"nmae":"typo"}]`), 0o644))

	_, err := NewJSONCatalog(path).LoadProducts(context.Background())
	assert.Error(t, err)
}

func TestJSONCatalog_MissingFile(t *testing.T) {
	_, err := NewJSONCatalog(filepath.Join(t.TempDir(), "nope.json")).LoadProducts(context.Background())
	assert.Error(t, err)
}

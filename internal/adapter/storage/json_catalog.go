package storage

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rl1809/storefront/internal/core/domain"
)

//go:embed catalog.json
var embeddedCatalog []byte

// JSONCatalog reads products from a JSON array, either a file on disk or the
// catalog compiled into the binary when path is empty.
type JSONCatalog struct {
	path string
}

func NewJSONCatalog(path string) *JSONCatalog {
	return &JSONCatalog{path: path}
}

func (c *JSONCatalog) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	data := embeddedCatalog
	if c.path != "" {
		var err error
		data, err = os.ReadFile(c.path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var products []domain.Product
	if err := dec.Decode(&products); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return products, nil
}

package ports

import (
	"context"

	"product-search/domain/product"
)

// RecordRepository reads product records from the backing store.
type RecordRepository interface {
	// QueryByProduct returns every record whose product attribute equals
	// productName, across all pages, in page order.
	QueryByProduct(ctx context.Context, productName string) ([]product.Record, error)

	// Strategy names the access path, e.g. "query" or "scan".
	Strategy() string
}

package dynamodb

import (
	"context"

	"product-search/domain/product"
	appErrors "product-search/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// FullScanRepository reads the whole table and keeps items whose product
// attribute matches. Cost is linear in table size regardless of matches.
type FullScanRepository struct {
	client dynamodb.ScanAPIClient
	opts   Options
	logger *zap.Logger
}

// NewFullScanRepository creates a repository that scans opts.TableName.
func NewFullScanRepository(client dynamodb.ScanAPIClient, opts Options, logger *zap.Logger) *FullScanRepository {
	return &FullScanRepository{
		client: client,
		opts:   opts,
		logger: logger,
	}
}

// Strategy implements ports.RecordRepository.
func (r *FullScanRepository) Strategy() string {
	return StrategyScan
}

// QueryByProduct scans with a product filter. A page may come back empty
// while LastEvaluatedKey is still set, so paging continues until the key
// is absent.
func (r *FullScanRepository) QueryByProduct(ctx context.Context, productName string) ([]product.Record, error) {
	filter := expression.Name(r.opts.Attribute).Equal(expression.Value(productName))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to build filter expression")
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(r.opts.TableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	if r.opts.PageSize > 0 {
		input.Limit = aws.Int32(r.opts.PageSize)
	}

	records := make([]product.Record, 0)
	pages := 0
	scanned := int32(0)
	paginator := dynamodb.NewScanPaginator(r.client, input)

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			wrapped := wrapDynamoError("Scan", err)
			r.logger.Error("Failed to scan table",
				append(errorFields(wrapped),
					zap.String("product", productName),
					zap.String("table", r.opts.TableName),
					zap.Int("page", pages+1),
				)...,
			)
			return nil, wrapped
		}
		pages++
		scanned += page.ScannedCount

		items, err := unmarshalPage(page.Items)
		if err != nil {
			return nil, appErrors.Wrapf(err, "failed to unmarshal scan page %d", pages)
		}
		records = append(records, items...)
	}

	r.logger.Debug("Table scan complete",
		zap.String("product", productName),
		zap.Int("pages", pages),
		zap.Int32("scanned", scanned),
		zap.Int("count", len(records)),
	)

	return records, nil
}

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

// IndexedQueryRepository looks records up through a secondary index keyed
// by the product attribute. Only matching items are read.
type IndexedQueryRepository struct {
	client dynamodb.QueryAPIClient
	opts   Options
	logger *zap.Logger
}

// NewIndexedQueryRepository creates a repository that queries opts.IndexName.
func NewIndexedQueryRepository(client dynamodb.QueryAPIClient, opts Options, logger *zap.Logger) *IndexedQueryRepository {
	return &IndexedQueryRepository{
		client: client,
		opts:   opts,
		logger: logger,
	}
}

// Strategy implements ports.RecordRepository.
func (r *IndexedQueryRepository) Strategy() string {
	return StrategyQuery
}

// QueryByProduct queries the index for productName and follows
// LastEvaluatedKey until the last page.
func (r *IndexedQueryRepository) QueryByProduct(ctx context.Context, productName string) ([]product.Record, error) {
	keyCond := expression.Key(r.opts.Attribute).Equal(expression.Value(productName))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to build key condition")
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.opts.TableName),
		IndexName:                 aws.String(r.opts.IndexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	if r.opts.PageSize > 0 {
		input.Limit = aws.Int32(r.opts.PageSize)
	}

	records := make([]product.Record, 0)
	pages := 0
	paginator := dynamodb.NewQueryPaginator(r.client, input)

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			wrapped := wrapDynamoError("Query", err)
			r.logger.Error("Failed to query product index",
				append(errorFields(wrapped),
					zap.String("product", productName),
					zap.String("index", r.opts.IndexName),
					zap.Int("page", pages+1),
				)...,
			)
			return nil, wrapped
		}
		pages++

		items, err := unmarshalPage(page.Items)
		if err != nil {
			return nil, appErrors.Wrapf(err, "failed to unmarshal query page %d", pages)
		}
		records = append(records, items...)
	}

	r.logger.Debug("Index query complete",
		zap.String("product", productName),
		zap.Int("pages", pages),
		zap.Int("count", len(records)),
	)

	return records, nil
}

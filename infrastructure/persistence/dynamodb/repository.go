// Package dynamodb implements the record repository on AWS DynamoDB.
// Two access paths exist: an equality Query on a secondary index, and a
// filtered Scan of the whole table. The path is chosen once, when the
// repository is constructed.
package dynamodb

import (
	"encoding/json"
	"errors"
	"math"

	"product-search/application/ports"
	"product-search/domain/product"
	"product-search/infrastructure/config"
	appErrors "product-search/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

const (
	StrategyQuery = "query"
	StrategyScan  = "scan"
)

// Client is the subset of the DynamoDB API the repositories page through.
// *dynamodb.Client satisfies it.
type Client interface {
	dynamodb.QueryAPIClient
	dynamodb.ScanAPIClient
}

// Options configures a repository.
type Options struct {
	TableName string
	IndexName string
	Attribute string
	PageSize  int32
}

// OptionsFromConfig maps application configuration onto repository options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		TableName: cfg.DynamoDBTable,
		IndexName: cfg.ProductIndex,
		Attribute: cfg.ProductAttribute,
		PageSize:  clampPageSize(cfg.PageSize),
	}
}

// clampPageSize bounds a configured page size to the int32 Limit field.
func clampPageSize(size int) int32 {
	switch {
	case size <= 0:
		return 0
	case size > math.MaxInt32:
		return math.MaxInt32
	}
	return int32(size)
}

// NewRecordRepository selects the access path from opts: an index name
// yields an IndexedQueryRepository, otherwise a FullScanRepository.
func NewRecordRepository(client Client, opts Options, logger *zap.Logger) ports.RecordRepository {
	if opts.Attribute == "" {
		opts.Attribute = "product"
	}

	if opts.IndexName != "" {
		logger.Info("Using indexed query strategy",
			zap.String("table", opts.TableName),
			zap.String("index", opts.IndexName),
		)
		return NewIndexedQueryRepository(client, opts, logger)
	}

	logger.Warn("No product index configured, falling back to full table scan",
		zap.String("table", opts.TableName),
	)
	return NewFullScanRepository(client, opts, logger)
}

// unmarshalPage converts one page of raw items into records. Numbers are
// kept as their decimal text so large values are returned as stored.
func unmarshalPage(items []map[string]types.AttributeValue) ([]product.Record, error) {
	records := make([]product.Record, 0, len(items))
	err := attributevalue.UnmarshalListOfMapsWithOptions(items, &records, func(o *attributevalue.DecoderOptions) {
		o.UseNumber = true
	})
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		for name, value := range record {
			record[name] = exactNumbers(value)
		}
	}
	return records, nil
}

// exactNumbers replaces attributevalue.Number values, at any depth, with
// json.Number so they serialize verbatim.
func exactNumbers(value interface{}) interface{} {
	switch v := value.(type) {
	case attributevalue.Number:
		return json.Number(v)
	case []attributevalue.Number:
		numbers := make([]json.Number, len(v))
		for i, n := range v {
			numbers[i] = json.Number(n)
		}
		return numbers
	case map[string]interface{}:
		for name, elem := range v {
			v[name] = exactNumbers(elem)
		}
		return v
	case []interface{}:
		for i, elem := range v {
			v[i] = exactNumbers(elem)
		}
		return v
	}
	return value
}

// wrapDynamoError turns an SDK failure into a DATABASE error, carrying the
// service error code when DynamoDB supplied one.
func wrapDynamoError(operation string, err error) error {
	appErr := appErrors.NewDatabaseError(operation, err)

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		appErr = appErr.WithCode(apiErr.ErrorCode())
	}
	return appErr
}

func errorFields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}
	if appErr := appErrors.GetAppError(err); appErr != nil && appErr.Code != "" {
		fields = append(fields, zap.String("error_code", appErr.Code))
	}
	return fields
}

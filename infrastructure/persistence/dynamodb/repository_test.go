package dynamodb

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"product-search/domain/product"
	"product-search/infrastructure/config"
	appErrors "product-search/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// page is one scripted response from the fake client.
type page struct {
	items   []map[string]types.AttributeValue
	lastKey map[string]types.AttributeValue
	err     error
}

// fakeClient replays pages in order and records every request it receives.
type fakeClient struct {
	pages   []page
	queries []*dynamodb.QueryInput
	scans   []*dynamodb.ScanInput
}

func (f *fakeClient) next() page {
	calls := len(f.queries) + len(f.scans)
	if calls > len(f.pages) {
		return page{}
	}
	return f.pages[calls-1]
}

func (f *fakeClient) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queries = append(f.queries, in)
	p := f.next()
	if p.err != nil {
		return nil, p.err
	}
	return &dynamodb.QueryOutput{Items: p.items, LastEvaluatedKey: p.lastKey, Count: int32(len(p.items))}, nil
}

func (f *fakeClient) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scans = append(f.scans, in)
	p := f.next()
	if p.err != nil {
		return nil, p.err
	}
	return &dynamodb.ScanOutput{Items: p.items, LastEvaluatedKey: p.lastKey, Count: int32(len(p.items)), ScannedCount: 10}, nil
}

func item(id, productName string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id":      &types.AttributeValueMemberS{Value: id},
		"product": &types.AttributeValueMemberS{Value: productName},
	}
}

func key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}}
}

func TestNewRecordRepository_SelectsStrategy(t *testing.T) {
	client := &fakeClient{}
	logger := zap.NewNop()

	indexed := NewRecordRepository(client, Options{TableName: "Tickets", IndexName: "product-index"}, logger)
	assert.IsType(t, &IndexedQueryRepository{}, indexed)
	assert.Equal(t, StrategyQuery, indexed.Strategy())

	scan := NewRecordRepository(client, Options{TableName: "Tickets"}, logger)
	assert.IsType(t, &FullScanRepository{}, scan)
	assert.Equal(t, StrategyScan, scan.Strategy())
}

func TestIndexedQuery_AccumulatesAllPages(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{pages: []page{
		{items: []map[string]types.AttributeValue{item("1", "widget")}, lastKey: key("1")},
		{items: []map[string]types.AttributeValue{item("2", "widget")}},
	}}
	repo := NewIndexedQueryRepository(client, Options{
		TableName: "Tickets",
		IndexName: "product-index",
		Attribute: "product",
		PageSize:  1,
	}, zap.NewNop())

	records, err := repo.QueryByProduct(ctx, "widget")

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0]["id"])
	assert.Equal(t, "2", records[1]["id"])

	// Continuation goes back through Query, never Scan.
	require.Len(t, client.queries, 2)
	assert.Empty(t, client.scans)

	first := client.queries[0]
	assert.Equal(t, "Tickets", aws.ToString(first.TableName))
	assert.Equal(t, "product-index", aws.ToString(first.IndexName))
	assert.Equal(t, int32(1), aws.ToInt32(first.Limit))
	assert.Nil(t, first.ExclusiveStartKey)
	assert.Contains(t, mapValues(first.ExpressionAttributeNames), "product")
	assertHasStringValue(t, first.ExpressionAttributeValues, "widget")

	assert.Equal(t, key("1"), client.queries[1].ExclusiveStartKey)
}

func TestFullScan_AccumulatesAllPagesIncludingEmptyOnes(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{pages: []page{
		{items: []map[string]types.AttributeValue{item("1", "widget")}, lastKey: key("1")},
		{items: nil, lastKey: key("7")},
		{items: []map[string]types.AttributeValue{item("9", "widget")}},
	}}
	repo := NewFullScanRepository(client, Options{TableName: "Tickets", Attribute: "product"}, zap.NewNop())

	records, err := repo.QueryByProduct(ctx, "widget")

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0]["id"])
	assert.Equal(t, "9", records[1]["id"])

	require.Len(t, client.scans, 3)
	assert.Empty(t, client.queries)

	first := client.scans[0]
	assert.NotNil(t, first.FilterExpression)
	assert.Nil(t, first.Limit)
	assert.Contains(t, mapValues(first.ExpressionAttributeNames), "product")
	assertHasStringValue(t, first.ExpressionAttributeValues, "widget")

	assert.Equal(t, key("1"), client.scans[1].ExclusiveStartKey)
	assert.Equal(t, key("7"), client.scans[2].ExclusiveStartKey)
}

func TestFullScan_NoMatches(t *testing.T) {
	client := &fakeClient{pages: []page{{}}}
	repo := NewFullScanRepository(client, Options{TableName: "Tickets", Attribute: "product"}, zap.NewNop())

	records, err := repo.QueryByProduct(context.Background(), "nothing")

	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestRepositories_CustomAttribute(t *testing.T) {
	client := &fakeClient{pages: []page{{}}}
	repo := NewFullScanRepository(client, Options{TableName: "Tickets", Attribute: "sku"}, zap.NewNop())

	_, err := repo.QueryByProduct(context.Background(), "A-1")

	require.NoError(t, err)
	assert.Contains(t, mapValues(client.scans[0].ExpressionAttributeNames), "sku")
}

func TestRepositories_ErrorMidPaginationFailsWholeRequest(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "ProvisionedThroughputExceededException", Message: "slow down"}
	client := &fakeClient{pages: []page{
		{items: []map[string]types.AttributeValue{item("1", "widget")}, lastKey: key("1")},
		{err: apiErr},
	}}
	repo := NewIndexedQueryRepository(client, Options{TableName: "Tickets", IndexName: "idx", Attribute: "product"}, zap.NewNop())

	records, err := repo.QueryByProduct(context.Background(), "widget")

	require.Error(t, err)
	assert.Nil(t, records)
	assert.True(t, appErrors.IsDatabase(err))
	assert.Equal(t, "ProvisionedThroughputExceededException", appErrors.GetAppError(err).Code)
	assert.ErrorIs(t, err, apiErr)
	// Exactly two calls: no retry after the failure.
	assert.Len(t, client.queries, 2)
}

func TestUnmarshalPage_ConvertsAttributeTypes(t *testing.T) {
	records, err := unmarshalPage([]map[string]types.AttributeValue{{
		"product": &types.AttributeValueMemberS{Value: "widget"},
		"qty":     &types.AttributeValueMemberN{Value: "3"},
		"active":  &types.AttributeValueMemberBOOL{Value: true},
		"tags":    &types.AttributeValueMemberL{Value: []types.AttributeValue{&types.AttributeValueMemberS{Value: "a"}}},
	}})

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, product.Record{
		"product": "widget",
		"qty":     json.Number("3"),
		"active":  true,
		"tags":    []interface{}{"a"},
	}, records[0])
}

func TestFullScan_PreservesLargeNumbers(t *testing.T) {
	client := &fakeClient{pages: []page{{items: []map[string]types.AttributeValue{{
		"id":      &types.AttributeValueMemberN{Value: "12345678901234567891"},
		"price":   &types.AttributeValueMemberN{Value: "0.1"},
		"product": &types.AttributeValueMemberS{Value: "widget"},
		"dims": &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
			"serial": &types.AttributeValueMemberN{Value: "98765432109876543210"},
		}},
		"batches": &types.AttributeValueMemberL{Value: []types.AttributeValue{
			&types.AttributeValueMemberN{Value: "10000000000000000001"},
		}},
	}}}}}
	repo := NewRecordRepository(client, Options{TableName: "Tickets"}, zap.NewNop())

	records, err := repo.QueryByProduct(context.Background(), "widget")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, json.Number("12345678901234567891"), records[0]["id"])

	body, err := json.Marshal(records)
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"id": 12345678901234567891,
		"price": 0.1,
		"product": "widget",
		"dims": {"serial": 98765432109876543210},
		"batches": [10000000000000000001]
	}]`, string(body))
	assert.Contains(t, string(body), `"id":12345678901234567891`)
	assert.Contains(t, string(body), `"serial":98765432109876543210`)
}

func TestOptionsFromConfig_ClampsPageSize(t *testing.T) {
	tests := []struct {
		name string
		size int
		want int32
	}{
		{"unset", 0, 0},
		{"negative", -5, 0},
		{"in range", 25, 25},
		{"above int32", 4294967297, math.MaxInt32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := OptionsFromConfig(&config.Config{DynamoDBTable: "Tickets", PageSize: tt.size})
			assert.Equal(t, tt.want, opts.PageSize)
		})
	}
}

// stubRepository returns a fixed outcome and counts calls.
type stubRepository struct {
	records []product.Record
	err     error
	calls   int
}

func (s *stubRepository) QueryByProduct(context.Context, string) ([]product.Record, error) {
	s.calls++
	return s.records, s.err
}

func (s *stubRepository) Strategy() string { return StrategyScan }

func TestBreakerRepository_PassesThrough(t *testing.T) {
	inner := &stubRepository{records: []product.Record{{"id": "1"}}}
	repo := NewBreakerRepository(inner, DefaultBreakerSettings("test"), zap.NewNop())

	records, err := repo.QueryByProduct(context.Background(), "widget")

	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, StrategyScan, repo.Strategy())
	assert.Equal(t, gobreaker.StateClosed, repo.State())
}

func TestBreakerRepository_OpensAfterFailures(t *testing.T) {
	dbErr := appErrors.NewDatabaseError("Scan", errors.New("unreachable"))
	inner := &stubRepository{err: dbErr}
	settings := BreakerSettings{
		Name:             "test",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      2,
	}
	repo := NewBreakerRepository(inner, settings, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := repo.QueryByProduct(ctx, "widget")
		require.Error(t, err)
		assert.True(t, appErrors.IsDatabase(err))
	}
	assert.Equal(t, gobreaker.StateOpen, repo.State())

	_, err := repo.QueryByProduct(ctx, "widget")
	require.Error(t, err)
	assert.True(t, appErrors.IsUnavailable(err))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, "open", appErrors.GetAppError(err).Details["state"])
	assert.Equal(t, "test", appErrors.GetAppError(err).Details["breaker"])
	assert.Equal(t, 2, inner.calls)
}

func TestBreakerRepository_IgnoresNonStoreErrors(t *testing.T) {
	inner := &stubRepository{err: appErrors.NewInternalError("bad page")}
	settings := DefaultBreakerSettings("test")
	settings.MinRequests = 1
	repo := NewBreakerRepository(inner, settings, zap.NewNop())

	for i := 0; i < 3; i++ {
		_, err := repo.QueryByProduct(context.Background(), "widget")
		require.Error(t, err)
		assert.False(t, appErrors.IsUnavailable(err))
	}
	assert.Equal(t, gobreaker.StateClosed, repo.State())
	assert.Equal(t, 3, inner.calls)
}

func mapValues(m map[string]string) []string {
	values := make([]string, 0, len(m))
	for _, v := range m {
		values = append(values, v)
	}
	return values
}

func assertHasStringValue(t *testing.T, values map[string]types.AttributeValue, want string) {
	t.Helper()
	for _, v := range values {
		if s, ok := v.(*types.AttributeValueMemberS); ok && s.Value == want {
			return
		}
	}
	t.Errorf("expression values %v do not contain %q", values, want)
}

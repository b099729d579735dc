package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// MetricPublisher is the CloudWatch call Metrics depends on.
// *cloudwatch.Client satisfies it.
type MetricPublisher interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Metrics publishes search metrics to CloudWatch
type Metrics struct {
	namespace string
	client    MetricPublisher
	logger    *zap.Logger
}

// NewMetrics creates a new metrics instance. A nil client disables publishing.
func NewMetrics(namespace string, client MetricPublisher, logger *zap.Logger) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
	}
}

// RecordSearch records duration, outcome and result size of one search.
// Publishing failures are logged and never affect the response.
func (m *Metrics) RecordSearch(ctx context.Context, strategy string, items int, duration time.Duration, err error) {
	if m == nil || m.client == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}

	dimensions := []types.Dimension{
		{Name: aws.String("Strategy"), Value: aws.String(strategy)},
		{Name: aws.String("Status"), Value: aws.String(status)},
	}
	now := aws.Time(time.Now())

	metricData := []types.MetricDatum{
		{
			MetricName: aws.String("SearchDuration"),
			Dimensions: dimensions,
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       types.StandardUnitMilliseconds,
			Timestamp:  now,
		},
		{
			MetricName: aws.String("SearchCount"),
			Dimensions: dimensions,
			Value:      aws.Float64(1),
			Unit:       types.StandardUnitCount,
			Timestamp:  now,
		},
	}
	if err == nil {
		metricData = append(metricData, types.MetricDatum{
			MetricName: aws.String("ItemsReturned"),
			Dimensions: dimensions[:1],
			Value:      aws.Float64(float64(items)),
			Unit:       types.StandardUnitCount,
			Timestamp:  now,
		})
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: metricData,
	}

	if _, putErr := m.client.PutMetricData(ctx, input); putErr != nil && m.logger != nil {
		m.logger.Warn("Failed to publish metrics", zap.Error(putErr))
	}
}

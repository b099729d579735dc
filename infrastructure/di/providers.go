package di

import (
	"context"
	"fmt"

	"product-search/application/ports"
	"product-search/application/queries"
	querybus "product-search/application/queries/bus"
	"product-search/infrastructure/config"
	"product-search/infrastructure/persistence/dynamodb"
	"product-search/interfaces/gateway"
	"product-search/interfaces/http/rest"
	"product-search/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"go.uber.org/zap"
)

// ServiceName identifies the service in traces and metric namespaces.
const ServiceName = "product-search"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config

	if cfg.IsProduction() {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	switch cfg.LogLevel {
	case "debug":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	return logger.With(zap.String("service", ServiceName)), nil
}

// ProvideAWSConfig creates AWS configuration. SDK retries are disabled: a
// failed store call fails the request.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithRetryer(func() aws.Retryer {
			return aws.NopRetryer{}
		}),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if cfg.EnableTracing {
		awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
	}

	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})
}

// ProvideCloudWatchClient creates a CloudWatch client, or nil when metrics
// are disabled.
func ProvideCloudWatchClient(awsCfg aws.Config, cfg *config.Config) observability.MetricPublisher {
	if !cfg.EnableMetrics {
		return nil
	}
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideMetrics creates metrics instance
func ProvideMetrics(client observability.MetricPublisher, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	namespace := fmt.Sprintf("ProductSearch/%s", cfg.Environment)
	return observability.NewMetrics(namespace, client, logger)
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer(ServiceName, cfg.EnableTracing)
}

// ProvideCollector creates the Prometheus collector, or nil when metrics
// are disabled.
func ProvideCollector(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector("product_search")
}

// ProvideRecordRepository creates the record repository for the configured
// strategy, behind a circuit breaker when enabled.
func ProvideRecordRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.RecordRepository {
	repo := dynamodb.NewRecordRepository(client, dynamodb.OptionsFromConfig(cfg), logger)

	logger.Info("Record repository configured",
		zap.String("table", cfg.DynamoDBTable),
		zap.String("index", cfg.ProductIndex),
		zap.String("strategy", repo.Strategy()),
		zap.Bool("circuit_breaker", cfg.EnableCircuitBreaker),
	)

	if !cfg.EnableCircuitBreaker {
		return repo
	}

	settings := dynamodb.DefaultBreakerSettings("dynamodb-" + cfg.DynamoDBTable)
	settings.MinRequests = uint32(cfg.BreakerMinRequests)
	settings.FailureThreshold = cfg.BreakerFailureRatio
	settings.Timeout = cfg.BreakerTimeout
	return dynamodb.NewBreakerRepository(repo, settings, logger)
}

// ProvideSearchHandler creates the search query handler
func ProvideSearchHandler(
	repo ports.RecordRepository,
	tracer *observability.Tracer,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *queries.SearchByProductHandler {
	return queries.NewSearchByProductHandler(repo, tracer, metrics, logger)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	searchHandler *queries.SearchByProductHandler,
	collector *observability.Collector,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()

	var handler querybus.QueryHandler = searchHandler
	if collector != nil {
		handler = querybus.NewMetricsMiddleware(collector).Wrap(handler)
	}

	if err := queryBus.Register(queries.SearchByProductQuery{}, handler); err != nil {
		return nil, fmt.Errorf("failed to register search handler: %w", err)
	}

	return queryBus, nil
}

// ProvideGatewayHandler creates the API Gateway request handler
func ProvideGatewayHandler(queryBus *querybus.QueryBus, logger *zap.Logger) *gateway.Handler {
	return gateway.NewHandler(queryBus, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	handler *gateway.Handler,
	collector *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(handler, collector, logger, cfg.EnableCORS)
}

//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"product-search/application/ports"
	querybus "product-search/application/queries/bus"
	"product-search/infrastructure/config"
	"product-search/interfaces/gateway"
	"product-search/interfaces/http/rest"
	"product-search/pkg/observability"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Repository ports.RecordRepository
	QueryBus   *querybus.QueryBus
	Handler    *gateway.Handler
	Router     *rest.Router
	Collector  *observability.Collector
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideCloudWatchClient,
	ProvideMetrics,
	ProvideTracer,
	ProvideCollector,
	ProvideRecordRepository,
	ProvideSearchHandler,
	ProvideQueryBus,
	ProvideGatewayHandler,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}

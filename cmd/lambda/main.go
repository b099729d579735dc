// Command lambda serves product searches as an API Gateway proxy Lambda.
package main

import (
	"context"
	"log"
	"time"

	"product-search/infrastructure/config"
	"product-search/infrastructure/di"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

// container is built once per execution environment and reused across
// invocations.
var container *di.Container

// init runs during cold start
func init() {
	coldStartTime := time.Now()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	container.Logger.Info("Lambda cold start completed",
		zap.Duration("duration", time.Since(coldStartTime)),
		zap.String("table", cfg.DynamoDBTable),
		zap.String("strategy", container.Repository.Strategy()),
	)
}

func main() {
	lambda.Start(container.Handler.HandleEvent)
}

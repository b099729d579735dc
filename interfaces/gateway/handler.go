// Package gateway adapts API Gateway proxy events to the product search.
// It owns parameter extraction and the response envelope; the Lambda and
// HTTP entry points both go through Handler.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"product-search/application/queries"
	"product-search/application/queries/bus"
	"product-search/domain/product"
	appErrors "product-search/pkg/errors"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ParamProduct is the parameter name read from the query string and body.
const ParamProduct = "product"

// QueryDispatcher dispatches queries; *bus.QueryBus satisfies it.
type QueryDispatcher interface {
	Ask(ctx context.Context, query bus.Query) (interface{}, error)
}

// Handler answers search requests. It is built once per process and holds
// no mutable state.
type Handler struct {
	queries QueryDispatcher
	logger  *zap.Logger
}

// NewHandler creates a new gateway handler
func NewHandler(queries QueryDispatcher, logger *zap.Logger) *Handler {
	return &Handler{
		queries: queries,
		logger:  logger,
	}
}

// Handle runs one search. The returned error is always nil: every failure
// is reported through the response status so the gateway never sees an
// invocation error.
func (h *Handler) Handle(ctx context.Context, req Request) (resp events.APIGatewayProxyResponse, err error) {
	logger := h.logger.With(zap.String("request_id", requestID(ctx, req)))

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Recovered from panic while handling search",
				zap.String("panic", fmt.Sprint(rec)),
				zap.Stack("stack"),
			)
			resp, err = Message(http.StatusInternalServerError, InternalErrorMessage), nil
		}
	}()

	logger.Info("Received event",
		zap.Any("queryStringParameters", req.QueryStringParameters),
		zap.Int("body_bytes", len(req.Body)),
		zap.Bool("base64", req.IsBase64Encoded),
	)

	productName := req.ProductParam()

	result, err := h.queries.Ask(ctx, queries.SearchByProductQuery{Product: productName})
	if err != nil {
		if appErrors.IsValidation(err) {
			logger.Warn("Rejected search without product", zap.Error(err))
			return Message(http.StatusBadRequest, queries.MissingProductMessage), nil
		}

		if appErrors.IsUnavailable(err) {
			logger.Warn("Search rejected, store unavailable",
				zap.String("product", productName),
				zap.Error(err),
			)
			return Message(http.StatusInternalServerError, InternalErrorMessage), nil
		}

		logger.Error("Search failed",
			zap.String("product", productName),
			zap.Error(err),
		)
		return Message(http.StatusInternalServerError, InternalErrorMessage), nil
	}

	searchResult, ok := result.(*product.SearchResult)
	if !ok {
		err := appErrors.NewInternalError(fmt.Sprintf("unexpected search result type %T", result))
		logger.Error("Search returned an unusable result", zap.Error(err))
		return Message(http.StatusInternalServerError, InternalErrorMessage), nil
	}

	return BuildResponse(http.StatusOK, searchResult), nil
}

// HandleEvent decodes a raw proxy event and runs it through Handle. An event
// that does not decode still gets the JSON envelope.
func (h *Handler) HandleEvent(ctx context.Context, event json.RawMessage) (events.APIGatewayProxyResponse, error) {
	req, err := DecodeRequest(event)
	if err != nil {
		h.logger.Error("Failed to decode proxy event",
			zap.Int("event_bytes", len(event)),
			zap.Error(err),
		)
		return Message(http.StatusInternalServerError, InternalErrorMessage), nil
	}
	return h.Handle(ctx, req)
}

// requestID prefers the gateway's id, then the Lambda invocation id, and
// generates one otherwise.
func requestID(ctx context.Context, req Request) string {
	if req.RequestContext.RequestID != "" {
		return req.RequestContext.RequestID
	}
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.NewString()
}

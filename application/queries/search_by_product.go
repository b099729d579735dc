package queries

import (
	"context"
	"fmt"
	"time"

	"product-search/application/ports"
	"product-search/application/queries/bus"
	"product-search/domain/product"
	appErrors "product-search/pkg/errors"
	"product-search/pkg/observability"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// MissingProductMessage is reported when no product was supplied.
const MissingProductMessage = "Missing required parameter 'product'"

var validate = validator.New()

// SearchByProductQuery asks for every record of one product.
type SearchByProductQuery struct {
	Product string `validate:"required"`
}

// Validate implements bus.Query.
func (q SearchByProductQuery) Validate() error {
	if err := validate.Struct(q); err != nil {
		return appErrors.NewValidationError(MissingProductMessage).WithCause(err)
	}
	return nil
}

// SearchMetrics records the outcome of a search.
type SearchMetrics interface {
	RecordSearch(ctx context.Context, strategy string, items int, duration time.Duration, err error)
}

// SearchByProductHandler runs product searches against the record repository.
type SearchByProductHandler struct {
	repo    ports.RecordRepository
	tracer  *observability.Tracer
	metrics SearchMetrics
	logger  *zap.Logger
}

// NewSearchByProductHandler creates a new handler
func NewSearchByProductHandler(
	repo ports.RecordRepository,
	tracer *observability.Tracer,
	metrics SearchMetrics,
	logger *zap.Logger,
) *SearchByProductHandler {
	return &SearchByProductHandler{
		repo:    repo,
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Handle implements bus.QueryHandler.
func (h *SearchByProductHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(SearchByProductQuery)
	if !ok {
		return nil, appErrors.NewInternalError(fmt.Sprintf("unexpected query type %T", q))
	}
	return h.Search(ctx, query)
}

// Search fetches every matching record, following pagination to the end.
func (h *SearchByProductHandler) Search(ctx context.Context, query SearchByProductQuery) (*product.SearchResult, error) {
	start := time.Now()
	strategy := h.repo.Strategy()

	var records []product.Record
	err := h.tracer.TraceFunction(ctx, "QueryByProduct", func(ctx context.Context) error {
		h.tracer.AddAnnotation(ctx, "strategy", strategy)
		var err error
		records, err = h.repo.QueryByProduct(ctx, query.Product)
		return err
	})

	duration := time.Since(start)
	if h.metrics != nil {
		h.metrics.RecordSearch(ctx, strategy, len(records), duration, err)
	}

	if err != nil {
		h.logger.Error("Product search failed",
			zap.String("product", query.Product),
			zap.String("strategy", strategy),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	result := product.NewSearchResult(query.Product, records)

	h.logger.Info("Product search completed",
		zap.String("product", query.Product),
		zap.String("strategy", strategy),
		zap.Int("count", result.Count),
		zap.Duration("duration", duration),
	)

	return result, nil
}

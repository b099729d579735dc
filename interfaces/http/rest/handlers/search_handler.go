package handlers

import (
	"context"
	"io"
	"net/http"

	"product-search/interfaces/gateway"

	"github.com/aws/aws-lambda-go/events"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// MaxBodyBytes bounds the request body read for a search.
const MaxBodyBytes = 1 << 20

// Searcher runs one search; *gateway.Handler satisfies it.
type Searcher interface {
	Handle(ctx context.Context, req gateway.Request) (events.APIGatewayProxyResponse, error)
}

// SearchHandler serves product searches over plain HTTP by translating
// requests into gateway events and writing the envelope back out.
type SearchHandler struct {
	searcher Searcher
	logger   *zap.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searcher Searcher, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		searcher: searcher,
		logger:   logger,
	}
}

// Search handles GET /search?product=... and POST /search.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var body string
	if r.Body != nil {
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
		if err != nil {
			// An unreadable body is treated like a missing one.
			h.logger.Warn("Failed to read request body", zap.Error(err))
		} else {
			body = string(data)
		}
	}

	req := gateway.NewRequest(firstValues(r), body)
	req.RequestContext.RequestID = chimiddleware.GetReqID(r.Context())

	resp, err := h.searcher.Handle(r.Context(), req)
	if err != nil {
		h.logger.Error("Search handler returned error", zap.Error(err))
		resp = gateway.Message(http.StatusInternalServerError, gateway.InternalErrorMessage)
	}

	writeProxyResponse(w, resp)
}

func firstValues(r *http.Request) map[string]string {
	query := r.URL.Query()
	if len(query) == 0 {
		return nil
	}
	params := make(map[string]string, len(query))
	for key := range query {
		params[key] = query.Get(key)
	}
	return params
}

func writeProxyResponse(w http.ResponseWriter, resp events.APIGatewayProxyResponse) {
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.WriteString(w, resp.Body)
}

package clients

import (
	"context"
	"net/http"
	"net/url"
)

// PredictionClient forwards prediction and analytics queries to the ML service.
type PredictionClient struct {
	base *BaseClient
}

// NewPredictionClient returns client.
func NewPredictionClient(baseURL string, httpClient HTTPDoer) *PredictionClient {
	return &PredictionClient{base: NewBaseClient(baseURL, httpClient)}
}

// Get forwards a GET and returns the upstream status and body unchanged.
func (c *PredictionClient) Get(ctx context.Context, path string, query url.Values) (int, []byte, error) {
	return c.base.Do(ctx, http.MethodGet, path, query)
}

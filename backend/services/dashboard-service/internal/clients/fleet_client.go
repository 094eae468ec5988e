package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"evdash/backend/services/dashboard-service/internal/models"
)

// FleetClient reads charge point, transaction and forecast data from the fleet API.
type FleetClient struct {
	base   *BaseClient
	logger *zap.Logger
}

// NewFleetClient returns client. Each call is bounded by fetchTimeout.
func NewFleetClient(baseURL string, httpClient HTTPDoer, fetchTimeout time.Duration, logger *zap.Logger) *FleetClient {
	return &FleetClient{base: NewBaseClient(baseURL, httpClient, fetchTimeout), logger: logger}
}

// ChargePoints fetches all charge points with nested connectors.
func (c *FleetClient) ChargePoints(ctx context.Context) ([]models.ChargePoint, error) {
	body, err := c.base.Get(ctx, "/cps", nil)
	if err != nil {
		return nil, err
	}
	var cps []models.ChargePoint
	if err := json.Unmarshal(body, &cps); err != nil {
		return nil, fmt.Errorf("decode charge points: %w", err)
	}
	for i := range cps {
		c.logDropped("/cps", cps[i].DropInvalid())
	}
	return cps, nil
}

// Transactions fetches one page of transactions, most recent first.
func (c *FleetClient) Transactions(ctx context.Context, page, limit int) ([]models.Transaction, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	body, err := c.base.Get(ctx, "/transactions", query)
	if err != nil {
		return nil, err
	}
	var txs []models.Transaction
	if err := json.Unmarshal(body, &txs); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	for i := range txs {
		c.logDropped("/transactions", txs[i].DropInvalid())
	}
	return txs, nil
}

func (c *FleetClient) logDropped(path string, fields []string) {
	for _, f := range fields {
		c.logger.Warn("ignoring malformed field", zap.String("path", path), zap.String("field", f))
	}
}

type forecastEnvelope struct {
	Forecast []float64 `json:"forecast"`
	Error    *string   `json:"error"`
}

// AvailabilityForecast fetches hourly availability values for the next hours.
// The body may be a bare array or an object with a "forecast" field.
func (c *FleetClient) AvailabilityForecast(ctx context.Context, hours int) ([]float64, error) {
	query := url.Values{}
	query.Set("hours", strconv.Itoa(hours))

	body, err := c.base.Get(ctx, "/predict/availability", query)
	if err != nil {
		return nil, err
	}
	return decodeForecast(body)
}

func decodeForecast(body []byte) ([]float64, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("decode forecast: empty body")
	}

	if trimmed[0] == '[' {
		var values []float64
		if err := json.Unmarshal(trimmed, &values); err != nil {
			return nil, fmt.Errorf("decode forecast: %w", err)
		}
		return values, nil
	}

	var env forecastEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}
	if env.Error != nil {
		return nil, fmt.Errorf("forecast service: %s", *env.Error)
	}
	if env.Forecast == nil {
		return nil, errors.New("decode forecast: missing forecast field")
	}
	return env.Forecast, nil
}

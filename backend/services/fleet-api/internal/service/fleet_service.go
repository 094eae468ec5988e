package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"evdash/backend/services/fleet-api/internal/models"
)

// Pagination bounds for transaction listing.
const (
	DefaultPage  = 1
	DefaultLimit = 5
	MaxLimit     = 100
	// MaxPage keeps (page-1)*limit inside an int32 OFFSET.
	MaxPage = math.MaxInt32 / MaxLimit
)

// ErrInvalidPagination is returned for page outside [1, MaxPage] or limit outside [1, MaxLimit].
var ErrInvalidPagination = errors.New("invalid pagination")

// ChargePointReader reads charge points and connectors.
type ChargePointReader interface {
	ListWithConnectors(ctx context.Context) ([]models.ChargePoint, error)
	ListConnectors(ctx context.Context, cpID string) ([]models.Connector, error)
}

// TransactionReader reads transactions.
type TransactionReader interface {
	List(ctx context.Context, page, limit int) ([]models.Transaction, error)
}

// FleetService exposes read access to fleet state.
type FleetService struct {
	chargePoints ChargePointReader
	transactions TransactionReader
}

// NewFleetService builds service.
func NewFleetService(chargePoints ChargePointReader, transactions TransactionReader) *FleetService {
	return &FleetService{chargePoints: chargePoints, transactions: transactions}
}

// ChargePoints lists all charge points with connectors.
func (s *FleetService) ChargePoints(ctx context.Context) ([]models.ChargePoint, error) {
	return s.chargePoints.ListWithConnectors(ctx)
}

// Connectors lists connectors of one charge point.
func (s *FleetService) Connectors(ctx context.Context, cpID string) ([]models.Connector, error) {
	return s.chargePoints.ListConnectors(ctx, cpID)
}

// Transactions returns one page of transactions, newest first.
func (s *FleetService) Transactions(ctx context.Context, page, limit int) ([]models.Transaction, error) {
	if page < 1 || page > MaxPage {
		return nil, fmt.Errorf("%w: page must be between 1 and %d", ErrInvalidPagination, MaxPage)
	}
	if limit < 1 || limit > MaxLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidPagination, MaxLimit)
	}
	return s.transactions.List(ctx, page, limit)
}

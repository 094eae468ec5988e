package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"evdash/backend/services/fleet-api/internal/models"
)

type fakeTransactions struct {
	page, limit int
	calls       int
}

func (f *fakeTransactions) List(_ context.Context, page, limit int) ([]models.Transaction, error) {
	f.calls++
	f.page, f.limit = page, limit
	return []models.Transaction{{ID: 1}}, nil
}

func TestTransactionsPaginationBounds(t *testing.T) {
	tests := []struct {
		page, limit int
		valid       bool
	}{
		{page: 1, limit: 1, valid: true},
		{page: 3, limit: 100, valid: true},
		{page: MaxPage, limit: MaxLimit, valid: true},
		{page: MaxPage + 1, limit: 1},
		{page: math.MaxInt, limit: 100},
		{page: 0, limit: 5},
		{page: -1, limit: 5},
		{page: 1, limit: 0},
		{page: 1, limit: 101},
	}

	for _, tt := range tests {
		txs := &fakeTransactions{}
		svc := NewFleetService(nil, txs)
		_, err := svc.Transactions(context.Background(), tt.page, tt.limit)
		if tt.valid {
			if err != nil {
				t.Fatalf("page=%d limit=%d: unexpected error %v", tt.page, tt.limit, err)
			}
			if txs.page != tt.page || txs.limit != tt.limit {
				t.Fatalf("repository got page=%d limit=%d", txs.page, txs.limit)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidPagination) {
			t.Fatalf("page=%d limit=%d: expected ErrInvalidPagination, got %v", tt.page, tt.limit, err)
		}
		if txs.calls != 0 {
			t.Fatalf("repository must not be queried for invalid pagination")
		}
	}
}

package repository

import (
	"context"
	"database/sql"

	"evdash/backend/services/fleet-api/internal/models"
)

// TransactionRepository reads charging transactions.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository returns repository.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// List returns one page of transactions, newest id first. page starts at 1.
func (r *TransactionRepository) List(ctx context.Context, page, limit int) ([]models.Transaction, error) {
	const query = `
		SELECT id, cp_id, connector_id, id_tag, meter_start, meter_stop, start_ts, stop_ts
		FROM transactions
		ORDER BY id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := []models.Transaction{}
	for rows.Next() {
		var (
			tx              models.Transaction
			meterStop       sql.NullInt64
			startTS, stopTS sql.NullTime
		)
		if err := rows.Scan(&tx.ID, &tx.CPID, &tx.ConnectorID, &tx.IDTag, &tx.MeterStart, &meterStop, &startTS, &stopTS); err != nil {
			return nil, err
		}
		tx.MeterStop = int64Ptr(meterStop)
		tx.StartTS = timePtr(startTS)
		tx.StopTS = timePtr(stopTS)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

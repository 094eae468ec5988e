package repository

import (
	"context"
	"database/sql"

	"evdash/backend/services/fleet-api/internal/models"
)

// ChargePointRepository reads charge points and their connectors.
type ChargePointRepository struct {
	db *sql.DB
}

// NewChargePointRepository returns repository.
func NewChargePointRepository(db *sql.DB) *ChargePointRepository {
	return &ChargePointRepository{db: db}
}

// ListWithConnectors returns every charge point with total_kwh summed over stopped
// transactions and its connectors nested.
func (r *ChargePointRepository) ListWithConnectors(ctx context.Context) ([]models.ChargePoint, error) {
	const query = `
		SELECT cp.id, cp.vendor, cp.model, cp.firmware_version, cp.last_heartbeat, cp.connected,
		       COALESCE(SUM(t.meter_stop - t.meter_start), 0)::float8 / 1000 AS total_kwh
		FROM charge_points cp
		LEFT JOIN transactions t ON t.cp_id = cp.id AND t.meter_stop IS NOT NULL
		GROUP BY cp.id
		ORDER BY cp.id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cps := []models.ChargePoint{}
	index := map[string]int{}
	for rows.Next() {
		var (
			cp                      models.ChargePoint
			vendor, model, firmware sql.NullString
			heartbeat               sql.NullTime
		)
		if err := rows.Scan(&cp.ID, &vendor, &model, &firmware, &heartbeat, &cp.Connected, &cp.TotalKWh); err != nil {
			return nil, err
		}
		cp.Vendor = stringPtr(vendor)
		cp.Model = stringPtr(model)
		cp.FirmwareVersion = stringPtr(firmware)
		cp.LastHeartbeat = timePtr(heartbeat)
		cp.Connectors = []models.CPConnector{}
		index[cp.ID] = len(cps)
		cps = append(cps, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	connectors, err := r.listConnectors(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, c := range connectors {
		if i, ok := index[c.CPID]; ok {
			cps[i].Connectors = append(cps[i].Connectors, c.Nested())
		}
	}
	return cps, nil
}

// ListConnectors returns the connectors of one charge point.
func (r *ChargePointRepository) ListConnectors(ctx context.Context, cpID string) ([]models.Connector, error) {
	return r.listConnectors(ctx, cpID)
}

func (r *ChargePointRepository) listConnectors(ctx context.Context, cpID string) ([]models.Connector, error) {
	const query = `
		SELECT cp_id, connector_id, status, error_code, last_update
		FROM connectors
		WHERE $1::text = '' OR cp_id = $1::text
		ORDER BY cp_id, connector_id
	`
	rows, err := r.db.QueryContext(ctx, query, cpID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	connectors := []models.Connector{}
	for rows.Next() {
		var (
			c          models.Connector
			lastUpdate sql.NullTime
		)
		if err := rows.Scan(&c.CPID, &c.ConnectorID, &c.Status, &c.ErrorCode, &lastUpdate); err != nil {
			return nil, err
		}
		c.LastUpdate = timePtr(lastUpdate)
		connectors = append(connectors, c)
	}
	return connectors, rows.Err()
}

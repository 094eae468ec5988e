package service

import (
	"fmt"
	"math"
	"strconv"

	"evdash/backend/services/dashboard-service/internal/models"
)

const missing = "-"

var (
	energyReference = []models.EnergyPoint{
		{Day: "Mon", Demand: 245},
		{Day: "Tue", Demand: 312},
		{Day: "Wed", Demand: 289},
		{Day: "Thu", Demand: 356},
		{Day: "Fri", Demand: 423},
		{Day: "Sat", Demand: 198},
		{Day: "Sun", Demand: 167},
	}
	efficiencyReference = []models.EfficiencyPoint{
		{Station: "Alpha", Efficiency: 94},
		{Station: "Beta", Efficiency: 87},
		{Station: "Gamma", Efficiency: 91},
		{Station: "Delta", Efficiency: 89},
	}
	anomalyReference = []models.AnomalyPoint{
		{Time: "Week 1", Score: 0.2},
		{Time: "Week 2", Score: 0.1},
		{Time: "Week 3", Score: 0.3},
		{Time: "Week 4", Score: 0.15},
	}
)

// Derive computes KPIs, chart series and table rows from one poll. It never fails;
// absent optional fields render as "-".
func Derive(cps []models.ChargePoint, txs []models.Transaction, forecast []float64) models.DerivedMetrics {
	m := models.DerivedMetrics{
		TotalStations:   len(cps),
		ActiveSessions:  countActive(txs),
		SystemHealthPct: systemHealth(cps),
		AlertCount:      countAlerts(cps),
		Availability:    availabilitySeries(forecast),
		Energy: models.StaticSeries[models.EnergyPoint]{
			Source: models.SeriesSourceStatic,
			Points: append([]models.EnergyPoint(nil), energyReference...),
		},
		Efficiency: models.StaticSeries[models.EfficiencyPoint]{
			Source: models.SeriesSourceStatic,
			Points: append([]models.EfficiencyPoint(nil), efficiencyReference...),
		},
		Anomaly: models.StaticSeries[models.AnomalyPoint]{
			Source: models.SeriesSourceStatic,
			Points: append([]models.AnomalyPoint(nil), anomalyReference...),
		},
		ConnectorStatusCounts: make(map[string]int),
		ConnectorsByCP:        make([]models.ChargePointConnectors, 0, len(cps)),
		ChargePointRows:       make([]models.ChargePointRow, 0, len(cps)),
		ConnectorRows:         []models.ConnectorRow{},
		TransactionRows:       make([]models.TransactionRow, 0, len(txs)),
	}

	for _, cp := range cps {
		connectors := cp.Connectors
		if connectors == nil {
			connectors = []models.Connector{}
		}
		m.ConnectorsByCP = append(m.ConnectorsByCP, models.ChargePointConnectors{CPID: cp.ID, Connectors: connectors})
		m.ChargePointRows = append(m.ChargePointRows, chargePointRow(cp))
		for _, c := range connectors {
			m.ConnectorStatusCounts[c.Status]++
			m.ConnectorRows = append(m.ConnectorRows, connectorRow(cp.ID, c))
		}
	}
	for _, tx := range txs {
		m.TransactionRows = append(m.TransactionRows, transactionRow(tx))
	}
	return m
}

func countActive(txs []models.Transaction) int {
	n := 0
	for _, tx := range txs {
		if tx.Active() {
			n++
		}
	}
	return n
}

func systemHealth(cps []models.ChargePoint) int {
	if len(cps) == 0 {
		return 0
	}
	connected := 0
	for _, cp := range cps {
		if cp.Connected {
			connected++
		}
	}
	return int(math.Round(100 * float64(connected) / float64(len(cps))))
}

func countAlerts(cps []models.ChargePoint) int {
	n := 0
	for _, cp := range cps {
		if cp.HasAlert() {
			n++
		}
	}
	return n
}

func availabilitySeries(forecast []float64) []models.AvailabilityPoint {
	series := make([]models.AvailabilityPoint, 0, len(forecast))
	for i, v := range forecast {
		series = append(series, models.AvailabilityPoint{Time: fmt.Sprintf("%d:00", i), Availability: v})
	}
	return series
}

func chargePointRow(cp models.ChargePoint) models.ChargePointRow {
	row := models.ChargePointRow{
		ID:              cp.ID,
		Vendor:          orMissing(cp.Vendor),
		Model:           orMissing(cp.Model),
		FirmwareVersion: orMissing(cp.FirmwareVersion),
		Connection:      "Disconnected",
		TotalKWh:        "0.00",
	}
	if cp.Connected {
		row.Connection = "Connected"
	}
	if cp.TotalKWh != nil {
		row.TotalKWh = strconv.FormatFloat(*cp.TotalKWh, 'f', 2, 64)
	}
	return row
}

func connectorRow(cpID string, c models.Connector) models.ConnectorRow {
	row := models.ConnectorRow{
		CPID:          cpID,
		ConnectorID:   c.ConnectorID,
		Status:        c.Status,
		ErrorCode:     c.ErrorCode,
		LastHeartbeat: missing,
	}
	if c.LastHeartbeat != nil {
		row.LastHeartbeat = c.LastHeartbeat.Display()
	}
	return row
}

func transactionRow(tx models.Transaction) models.TransactionRow {
	row := models.TransactionRow{
		ID:          string(tx.ID),
		CPID:        tx.CPID,
		ConnectorID: tx.ConnectorID,
		IDTag:       tx.IDTag,
		MeterStart:  strconv.FormatInt(tx.MeterStart, 10),
		MeterStop:   missing,
		KWhUsed:     missing,
		StartTS:     missing,
		StopTS:      missing,
	}
	if tx.MeterStop != nil {
		row.MeterStop = strconv.FormatInt(*tx.MeterStop, 10)
		row.KWhUsed = strconv.FormatFloat(float64(*tx.MeterStop-tx.MeterStart)/1000, 'f', 2, 64)
	}
	if tx.StartTS != nil {
		row.StartTS = tx.StartTS.Display()
	}
	if tx.StopTS != nil {
		row.StopTS = tx.StopTS.Display()
	}
	return row
}

func orMissing(s *string) string {
	if s == nil || *s == "" {
		return missing
	}
	return *s
}

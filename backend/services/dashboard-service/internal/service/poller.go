package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"evdash/backend/services/dashboard-service/internal/models"
)

var (
	// ErrCycleInFlight is returned when a refresh is requested while another one is running.
	ErrCycleInFlight = errors.New("poll cycle already in flight")
	// ErrPollerStopped is returned once the poller has been torn down.
	ErrPollerStopped = errors.New("poller stopped")
)

// Cycle results reported to the Recorder.
const (
	ResultSuccess   = "success"
	ResultError     = "error"
	ResultSkipped   = "skipped"
	ResultDiscarded = "discarded"
)

// FleetSource is the backend the poller reads from.
type FleetSource interface {
	ChargePoints(ctx context.Context) ([]models.ChargePoint, error)
	Transactions(ctx context.Context, page, limit int) ([]models.Transaction, error)
	AvailabilityForecast(ctx context.Context, hours int) ([]float64, error)
}

// StatePublisher receives every committed state.
type StatePublisher interface {
	Broadcast(state models.DashboardState)
}

// Recorder observes poll outcomes.
type Recorder interface {
	CycleFinished(result string, elapsed time.Duration)
	ForecastFailed()
	FleetObserved(m models.DerivedMetrics)
}

// PollerOptions tunes the poll loop.
type PollerOptions struct {
	Interval         time.Duration
	TransactionLimit int
	ForecastHours    int
}

// Poller refreshes fleet data on a fixed interval and on demand, keeping the
// last good data when a cycle fails.
type Poller struct {
	source    FleetSource
	publisher StatePublisher
	recorder  Recorder
	logger    *zap.Logger
	opts      PollerOptions

	inFlight atomic.Bool
	closed   atomic.Bool

	mu       sync.RWMutex
	state    models.DashboardState
	forecast []float64
}

// NewPoller builds poller. publisher and recorder may be nil.
func NewPoller(source FleetSource, publisher StatePublisher, recorder Recorder, opts PollerOptions, logger *zap.Logger) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	if opts.TransactionLimit <= 0 {
		opts.TransactionLimit = 50
	}
	if opts.ForecastHours <= 0 {
		opts.ForecastHours = 24
	}
	return &Poller{
		source:    source,
		publisher: publisher,
		recorder:  recorder,
		logger:    logger,
		opts:      opts,
		state: models.DashboardState{
			Status:       models.StatusLoading,
			ChargePoints: []models.ChargePoint{},
			Transactions: []models.Transaction{},
		},
	}
}

// Run performs an initial refresh and then one per interval until ctx is cancelled.
// After Run returns no cycle commits or publishes.
func (p *Poller) Run(ctx context.Context) {
	defer p.closed.Store(true)

	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	p.trigger(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return
		case <-ticker.C:
			p.trigger(ctx)
		}
	}
}

func (p *Poller) trigger(ctx context.Context) {
	if _, err := p.Refresh(ctx); err != nil {
		switch {
		case errors.Is(err, ErrCycleInFlight):
			p.logger.Debug("skipping tick, cycle in flight")
		case errors.Is(err, ErrPollerStopped), ctx.Err() != nil:
		default:
			p.logger.Warn("poll cycle failed", zap.Error(err))
		}
	}
}

// Refresh runs one full cycle now and returns the resulting state. It fails with
// ErrCycleInFlight when another cycle is running; fetch failures return the error
// alongside the state that keeps the last good data.
func (p *Poller) Refresh(ctx context.Context) (models.DashboardState, error) {
	if p.closed.Load() {
		return p.State(), ErrPollerStopped
	}
	if !p.inFlight.CompareAndSwap(false, true) {
		p.record(ResultSkipped, 0)
		return p.State(), ErrCycleInFlight
	}
	defer p.inFlight.Store(false)

	start := time.Now()
	state, result, err := p.cycle(ctx)
	p.record(result, time.Since(start))
	return state, err
}

// State returns the latest committed state. Slices are shared and must not be modified.
func (p *Poller) State() models.DashboardState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Poller) cycle(ctx context.Context) (models.DashboardState, string, error) {
	cps, err := p.source.ChargePoints(ctx)
	if err != nil {
		return p.fail(ctx, fmt.Errorf("fetch charge points: %w", err))
	}

	txs, err := p.source.Transactions(ctx, 1, p.opts.TransactionLimit)
	if err != nil {
		return p.fail(ctx, fmt.Errorf("fetch transactions: %w", err))
	}

	forecast, err := p.source.AvailabilityForecast(ctx, p.opts.ForecastHours)
	if err != nil {
		p.logger.Warn("availability forecast unavailable, keeping previous series", zap.Error(err))
		if p.recorder != nil {
			p.recorder.ForecastFailed()
		}
		p.mu.RLock()
		forecast = p.forecast
		p.mu.RUnlock()
	}

	if cps == nil {
		cps = []models.ChargePoint{}
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	metrics := Derive(cps, txs, forecast)
	now := time.Now().UTC()

	p.mu.Lock()
	if p.stale(ctx) {
		state := p.state
		p.mu.Unlock()
		return state, ResultDiscarded, ErrPollerStopped
	}
	p.forecast = forecast
	p.state = models.DashboardState{
		Status:       models.StatusReady,
		LastSuccess:  &now,
		Metrics:      &metrics,
		ChargePoints: cps,
		Transactions: txs,
	}
	state := p.state
	p.mu.Unlock()

	if p.recorder != nil {
		p.recorder.FleetObserved(metrics)
	}
	p.publish(state)
	p.logger.Debug("poll cycle completed",
		zap.Int("stations", metrics.TotalStations),
		zap.Int("active_sessions", metrics.ActiveSessions),
		zap.Int("alerts", metrics.AlertCount),
	)
	return state, ResultSuccess, nil
}

func (p *Poller) fail(ctx context.Context, cause error) (models.DashboardState, string, error) {
	p.mu.Lock()
	if p.stale(ctx) {
		state := p.state
		p.mu.Unlock()
		return state, ResultDiscarded, ErrPollerStopped
	}
	p.state.Status = models.StatusError
	p.state.Error = cause.Error()
	state := p.state
	p.mu.Unlock()

	p.publish(state)
	return state, ResultError, cause
}

// stale reports whether the poller was torn down while the cycle ran. Caller holds mu.
func (p *Poller) stale(ctx context.Context) bool {
	return p.closed.Load() || ctx.Err() != nil
}

func (p *Poller) publish(state models.DashboardState) {
	if p.publisher != nil {
		p.publisher.Broadcast(state)
	}
}

func (p *Poller) record(result string, elapsed time.Duration) {
	if p.recorder != nil {
		p.recorder.CycleFinished(result, elapsed)
	}
}

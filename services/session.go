package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"sales-dashboard/models"
	"sales-dashboard/storage"
	"sales-dashboard/utils"
)

var (
	// ErrConnection wraps any failure or timeout of the full fetch.
	ErrConnection = errors.New("connection failed")
	// ErrNoData means the fetch succeeded but no usable sale remained.
	ErrNoData = errors.New("no sales data")
)

// Stage identifies the step a load is in, for status display.
type Stage string

const (
	StageIdle          Stage = "idle"
	StageConnecting    Stage = "connecting"
	StageNormalizing   Stage = "normalizing"
	StageDeduplicating Stage = "deduplicating"
	StageReady         Stage = "ready"
	StageEmpty         Stage = "empty"
	StageFailed        Stage = "failed"
)

// StatusFunc receives a stage change and a human-readable message.
type StatusFunc func(stage Stage, message string)

// SessionOptions configures a Session.
type SessionOptions struct {
	Collection   string
	FetchTimeout time.Duration
	Status       StatusFunc
}

// Session owns the working sale set and the filter state. Loads replace both
// wholesale; the set is never partially invalidated.
type Session struct {
	store    storage.DocumentStore
	cleaner  *Cleaner
	insights *InsightService
	logger   *utils.Logger
	opts     SessionOptions

	loadMu sync.Mutex

	mu       sync.RWMutex
	sales    []models.Sale
	filter   *FilterState
	stats    CleanStats
	loadedAt time.Time

	lastStage Stage
	lastErr   error
}

func NewSession(store storage.DocumentStore, cleaner *Cleaner, insights *InsightService, logger *utils.Logger, opts SessionOptions) *Session {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 15 * time.Second
	}
	return &Session{
		store:     store,
		cleaner:   cleaner,
		insights:  insights,
		logger:    logger,
		opts:      opts,
		filter:    NewFilterState(),
		lastStage: StageIdle,
	}
}

// Load fetches every stored sale, most recent first, normalizes and
// deduplicates them, then replaces the session's sale set and resets the
// filters to select everything. A fetch that does not finish within the
// fetch timeout fails with ErrConnection even if the store ignores ctx.
// Only one load runs at a time.
func (s *Session) Load(ctx context.Context) ([]models.Sale, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	s.emit(StageConnecting, "Connecting to the sales database...")
	docs, err := s.fetch(ctx)
	if err != nil {
		s.emit(StageFailed, err.Error())
		s.logger.Error("[session] Fetch failed: %v", err)
		err = fmt.Errorf("%w: %w", ErrConnection, err)
		s.mu.Lock()
		s.lastStage, s.lastErr = StageFailed, err
		s.mu.Unlock()
		return nil, err
	}

	s.emit(StageNormalizing, fmt.Sprintf("Normalizing %d records...", len(docs)))
	rows := make([]models.Row, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, d.Fields)
	}
	sales, stats := s.cleaner.NormalizeAll(rows)

	s.emit(StageDeduplicating, fmt.Sprintf("Removing duplicates from %d sales...", len(sales)))
	deduped := Dedupe(sales)
	stats.Duplicates = len(sales) - len(deduped)
	stats.Retained = len(deduped)

	filter := NewFilterState()
	filter.ResetToAll(deduped)

	s.mu.Lock()
	s.sales = deduped
	s.filter = filter
	s.stats = stats
	s.loadedAt = time.Now()
	if len(deduped) == 0 {
		s.lastStage, s.lastErr = StageEmpty, ErrNoData
	} else {
		s.lastStage, s.lastErr = StageReady, nil
	}
	s.mu.Unlock()

	s.logger.Info("[session] Loaded %d sales from %d documents (dropped %d invalid, %d duplicates)",
		len(deduped), len(docs), stats.Input-len(sales), stats.Duplicates)

	if len(deduped) == 0 {
		s.emit(StageEmpty, "No sales data found.")
		return nil, ErrNoData
	}
	s.emit(StageReady, fmt.Sprintf("Loaded %d sales.", len(deduped)))
	return deduped, nil
}

func (s *Session) fetch(ctx context.Context) ([]storage.Document, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()

	type result struct {
		docs []storage.Document
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		docs, err := s.store.QueryAll(fetchCtx, s.opts.Collection, storage.OrderBy{Field: "date", Desc: true})
		ch <- result{docs, err}
	}()

	select {
	case r := <-ch:
		return r.docs, r.err
	case <-fetchCtx.Done():
		if errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("no response within %v: %w", s.opts.FetchTimeout, fetchCtx.Err())
		}
		return nil, fetchCtx.Err()
	}
}

func (s *Session) emit(stage Stage, msg string) {
	if s.opts.Status != nil {
		s.opts.Status(stage, msg)
	}
}

// Sales returns a copy of the full working set.
func (s *Session) Sales() []models.Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Sale(nil), s.sales...)
}

// LastLoad reports the outcome of the most recent load: StageIdle before the
// first one, then StageReady, StageEmpty with ErrNoData, or StageFailed with
// an ErrConnection error. A failed load keeps the previous sales, but
// consumers should not show them while the stage is StageFailed.
func (s *Session) LastLoad() (Stage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastStage, s.lastErr
}

// Filtered returns the sales visible under the current filter state.
func (s *Session) Filtered() []models.Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter.Apply(s.sales)
}

// ApplyFilters returns the session's sales visible under state.
func (s *Session) ApplyFilters(state *FilterState) []models.Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return state.Apply(s.sales)
}

// Dashboard computes KPIs and charts over the filtered sales.
func (s *Session) Dashboard() models.Dashboard {
	return s.insights.Dashboard(s.Filtered())
}

// Filters returns a snapshot of the current filter state.
func (s *Session) Filters() *FilterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter.Clone()
}

// Toggle includes or excludes one value of a dimension.
func (s *Session) Toggle(dim Dimension, value string, included bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter.Toggle(dim, value, included)
}

// Clear deselects every value of a dimension.
func (s *Session) Clear(dim Dimension) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter.Clear(dim)
}

// ResetFilters selects every observed value again.
func (s *Session) ResetFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.ResetToAll(s.sales)
}

// Stats reports how the last load's input was cleaned.
func (s *Session) Stats() CleanStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// LoadedAt is the time of the last completed load, zero before the first.
func (s *Session) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

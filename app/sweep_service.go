package app

import (
	"context"
	"fmt"
	"time"

	"qastats/adapters/excel"
	"qastats/domain/core"
	"qastats/domain/stats"
	"qastats/internal"
	"qastats/internal/errors"
	"qastats/internal/metrics"

	"golang.org/x/sync/errgroup"
)

// SweepService runs the full battery against every numeric column of a sheet
type SweepService struct {
	comparisons *ComparisonService
	workers     int
	logger      *internal.Logger
}

// SweepRequest selects the groups to compare. Columns defaults to every
// header except the filter column.
type SweepRequest struct {
	Sheet           string   `json:"sheet"`
	FilterColumn    string   `json:"filter_column"`
	GroupA          string   `json:"group_a"`
	GroupB          string   `json:"group_b"`
	Columns         []string `json:"columns,omitempty"`
	ConfidenceLevel float64  `json:"confidence_level,omitempty"`
}

// SweepRow holds the battery results for one target column
type SweepRow struct {
	Column     string                          `json:"column"`
	N1         int                             `json:"n1"`
	N2         int                             `json:"n2"`
	Levene     *stats.TestResult               `json:"levene,omitempty"`
	Method     stats.Method                    `json:"method,omitempty"`
	Comparison *stats.TestResult               `json:"comparison,omitempty"`
	Interval   *stats.ConfidenceIntervalReport `json:"interval,omitempty"`
	Error      string                          `json:"error,omitempty"` // Engine failure for this column
}

// SweepResult contains one row per column with usable data in both groups
type SweepResult struct {
	SweepID   core.ID      `json:"sweep_id"`
	Request   SweepRequest `json:"request"`
	Rows      []SweepRow   `json:"rows"`
	Skipped   []string     `json:"skipped,omitempty"` // Columns with no numeric data in a group
	RuntimeMs int64        `json:"runtime_ms"`
}

// NewSweepService creates a sweep service running at most workers columns at once
func NewSweepService(comparisons *ComparisonService, workers int, logger *internal.Logger) *SweepService {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SweepService{
		comparisons: comparisons,
		workers:     workers,
		logger:      logger,
	}
}

// Sweep compares the two groups on every selected column. Per-column engine
// failures are recorded on the row. Only cancellation and request errors fail
// the sweep.
func (s *SweepService) Sweep(ctx context.Context, data *excel.ExcelData, req SweepRequest) (*SweepResult, error) {
	startTime := time.Now()

	if req.ConfidenceLevel == 0 {
		req.ConfidenceLevel = s.comparisons.defaultConfidence
	}
	if !(req.ConfidenceLevel > 0 && req.ConfidenceLevel < 100) {
		return nil, errors.InvalidInput(fmt.Sprintf("confidence level must lie strictly between 0 and 100, got %v", req.ConfidenceLevel))
	}
	if data == nil {
		return nil, errors.InvalidInput("no sheet loaded")
	}
	if req.GroupA == req.GroupB {
		return nil, errors.FromDomain(fmt.Errorf("%w: both groups are %q", core.ErrSameGroup, req.GroupA))
	}
	if !data.HasColumn(req.FilterColumn) {
		return nil, errors.FromDomain(core.NewNotFoundError(core.ErrColumnNotFound, req.FilterColumn))
	}

	columns := req.Columns
	if len(columns) == 0 {
		for _, h := range data.Headers {
			if h != req.FilterColumn {
				columns = append(columns, h)
			}
		}
	}
	for _, column := range columns {
		if !data.HasColumn(column) {
			return nil, errors.FromDomain(core.NewNotFoundError(core.ErrColumnNotFound, column))
		}
	}

	rows := make([]*SweepRow, len(columns))
	alpha := (100 - req.ConfidenceLevel) / 100

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, column := range columns {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows[i] = s.sweepColumn(data, req, column, alpha)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &SweepResult{
		SweepID: core.NewID(),
		Request: req,
		Rows:    []SweepRow{},
	}
	for i, row := range rows {
		if row == nil {
			result.Skipped = append(result.Skipped, columns[i])
			continue
		}
		result.Rows = append(result.Rows, *row)
	}
	result.RuntimeMs = time.Since(startTime).Milliseconds()

	s.logger.Info("sweep %s: %d columns tested, %d skipped in %dms",
		result.SweepID, len(result.Rows), len(result.Skipped), result.RuntimeMs)
	return result, nil
}

// sweepColumn returns nil when a group has no usable data in column
func (s *SweepService) sweepColumn(data *excel.ExcelData, req SweepRequest, column string, alpha float64) *SweepRow {
	a, err := groupSample(data, req.FilterColumn, req.GroupA, column)
	if err != nil {
		return nil
	}
	b, err := groupSample(data, req.FilterColumn, req.GroupB, column)
	if err != nil {
		return nil
	}
	metrics.ObserveSamples(a.Len(), b.Len())

	row := &SweepRow{Column: column, N1: a.Len(), N2: b.Len()}
	fail := func(err error) *SweepRow {
		row.Error = err.Error()
		metrics.ObserveComparison("sweep", metrics.OutcomeError)
		s.logger.Debug("sweep column %s: %v", column, err)
		return row
	}

	method, levene, err := stats.SelectMethod(a, b)
	if err != nil {
		return fail(err)
	}
	row.Levene = &levene
	row.Method = method

	comparison, err := stats.CompareMeans(method, a, b)
	if err != nil {
		return fail(err)
	}
	row.Comparison = &comparison

	interval, err := stats.ConfidenceInterval(a, b, alpha)
	if err != nil {
		return fail(err)
	}
	row.Interval = &interval

	outcome := metrics.OutcomeNotSignificant
	if comparison.Significant {
		outcome = metrics.OutcomeSignificant
	}
	metrics.ObserveComparison("sweep", outcome)
	return row
}

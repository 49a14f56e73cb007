package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"qastats/adapters/excel"
	"qastats/domain/core"
	"qastats/domain/stats"
	"qastats/internal"
	"qastats/internal/errors"
	"qastats/internal/metrics"
	"qastats/ports"
)

// ComparisonTest names one of the actions a caller can run on two groups
type ComparisonTest string

const (
	TestLevene   ComparisonTest = "levene"
	TestAuto     ComparisonTest = "ttest" // Levene decides pooled or Welch
	TestPooled   ComparisonTest = "pooled"
	TestWelch    ComparisonTest = "welch"
	TestInterval ComparisonTest = "ci"
)

// ComparisonTests lists every supported test in display order
var ComparisonTests = []ComparisonTest{TestLevene, TestAuto, TestPooled, TestWelch, TestInterval}

// ConfidenceLevels are the levels offered by the UI and CLI. Any level in (0, 100) is accepted.
var ConfidenceLevels = []float64{90, 95, 99}

// ParseComparisonTest validates a test name
func ParseComparisonTest(name string) (ComparisonTest, error) {
	test := ComparisonTest(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range ComparisonTests {
		if test == known {
			return test, nil
		}
	}
	return "", errors.InvalidInput(fmt.Sprintf("unknown test %q", name))
}

// ComparisonRequest carries every parameter of one comparison. Samples are
// rebuilt from the sheet on each run.
type ComparisonRequest struct {
	Sheet           string         `json:"sheet"`
	FilterColumn    string         `json:"filter_column"`
	GroupA          string         `json:"group_a"`
	GroupB          string         `json:"group_b"`
	Target          string         `json:"target"`
	Test            ComparisonTest `json:"test"`
	ConfidenceLevel float64        `json:"confidence_level,omitempty"` // Percent; only used by ci
}

// Alpha converts the confidence level into a significance level
func (r ComparisonRequest) Alpha() float64 {
	return (100 - r.ConfidenceLevel) / 100
}

// ComparisonService turns a parsed sheet and a request into a Report
type ComparisonService struct {
	logger            *internal.Logger
	defaultConfidence float64
}

// NewComparisonService creates a comparison service. defaultConfidence is
// applied to ci requests that leave ConfidenceLevel unset.
func NewComparisonService(logger *internal.Logger, defaultConfidence float64) *ComparisonService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if defaultConfidence <= 0 || defaultConfidence >= 100 {
		defaultConfidence = 95
	}
	return &ComparisonService{
		logger:            logger,
		defaultConfidence: defaultConfidence,
	}
}

// PrepareSamples filters the sheet into the two groups and cleans the target
// cells. Unparseable cells are dropped.
func (s *ComparisonService) PrepareSamples(data *excel.ExcelData, req ComparisonRequest) (stats.Sample, stats.Sample, error) {
	if data == nil {
		return nil, nil, errors.InvalidInput("no sheet loaded")
	}
	if req.GroupA == req.GroupB {
		return nil, nil, fmt.Errorf("%w: both groups are %q", core.ErrSameGroup, req.GroupA)
	}

	a, err := groupSample(data, req.FilterColumn, req.GroupA, req.Target)
	if err != nil {
		return nil, nil, err
	}
	b, err := groupSample(data, req.FilterColumn, req.GroupB, req.Target)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func groupSample(data *excel.ExcelData, filterColumn, group, target string) (stats.Sample, error) {
	cells, err := data.GroupValues(filterColumn, group, target)
	if err != nil {
		return nil, err
	}
	sample := stats.Usable(stats.CleanStrings(cells))
	if sample.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrEmptyGroup, group)
	}
	return sample, nil
}

// Compare reads the requested sheet from src and runs the comparison on it.
// An empty Sheet selects the first sheet.
func (s *ComparisonService) Compare(ctx context.Context, src ports.WorkbookSource, req ComparisonRequest) (*Report, error) {
	if req.Sheet == "" {
		sheets, err := src.Sheets()
		if err != nil {
			return nil, errors.FromDomain(err)
		}
		if len(sheets) == 0 {
			return nil, errors.InvalidInput("workbook has no sheets")
		}
		req.Sheet = sheets[0]
	}

	data, err := src.ReadSheet(req.Sheet)
	if err != nil {
		return nil, errors.FromDomain(err)
	}
	return s.Run(ctx, data, req)
}

// Run executes one comparison. Domain failures come back as AppErrors with
// the sentinel kept as the cause.
func (s *ComparisonService) Run(ctx context.Context, data *excel.ExcelData, req ComparisonRequest) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	test, err := ParseComparisonTest(string(req.Test))
	if err != nil {
		return nil, err
	}
	req.Test = test

	if req.Test == TestInterval {
		if req.ConfidenceLevel == 0 {
			req.ConfidenceLevel = s.defaultConfidence
		}
		if !(req.ConfidenceLevel > 0 && req.ConfidenceLevel < 100) {
			return nil, errors.InvalidInput(fmt.Sprintf("confidence level must lie strictly between 0 and 100, got %v", req.ConfidenceLevel))
		}
	}

	logger := s.logger.With("test", string(req.Test))

	a, b, err := s.PrepareSamples(data, req)
	if err != nil {
		metrics.ObserveComparison(string(req.Test), metrics.OutcomeError)
		logger.Debug("sample preparation failed: %v", err)
		return nil, errors.FromDomain(err)
	}
	metrics.ObserveSamples(a.Len(), b.Len())

	report := &Report{
		ID:        core.NewID(),
		Request:   req,
		CreatedAt: time.Now(),
	}
	if report.SummaryA, err = stats.Describe(a); err != nil {
		return nil, errors.FromDomain(err)
	}
	if report.SummaryB, err = stats.Describe(b); err != nil {
		return nil, errors.FromDomain(err)
	}

	if err := s.execute(report, a, b); err != nil {
		metrics.ObserveComparison(string(req.Test), metrics.OutcomeError)
		logger.Debug("comparison failed for %s vs %s on %s: %v", req.GroupA, req.GroupB, req.Target, err)
		return nil, errors.FromDomain(err)
	}

	metrics.ObserveComparison(string(req.Test), report.outcome())
	logger.Info("compared %s vs %s on %s (n=%d/%d)", req.GroupA, req.GroupB, req.Target, a.Len(), b.Len())
	return report, nil
}

func (s *ComparisonService) execute(report *Report, a, b stats.Sample) error {
	switch report.Request.Test {
	case TestLevene:
		result, err := stats.Levene(a, b)
		if err != nil {
			return err
		}
		report.Result = &result

	case TestAuto:
		method, levene, err := stats.SelectMethod(a, b)
		if err != nil {
			return err
		}
		result, err := stats.CompareMeans(method, a, b)
		if err != nil {
			return err
		}
		report.Levene = &levene
		report.Method = method
		report.Result = &result

	case TestPooled:
		result, err := stats.TTest(a, b)
		if err != nil {
			return err
		}
		report.Method = stats.MethodPooled
		report.Result = &result

	case TestWelch:
		result, err := stats.WelchTTest(a, b)
		if err != nil {
			return err
		}
		report.Method = stats.MethodWelch
		report.Result = &result

	case TestInterval:
		interval, err := stats.ConfidenceInterval(a, b, report.Request.Alpha())
		if err != nil {
			return err
		}
		report.Method = interval.Method
		report.Interval = &interval
	}
	return nil
}

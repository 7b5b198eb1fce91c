package dispatch

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smartcontractkit/domain-coordinator/operation"
	"github.com/smartcontractkit/domain-coordinator/value"
)

// Report is the record of executing one invocation's operation on one host.
// It keeps the raw host envelope so a failed finalization can be traced back to the host that
// caused it.
type Report struct {
	ID         string       `json:"id"`
	Invocation string       `json:"invocation"`
	Host       string       `json:"host"`
	Operation  string       `json:"operation"`
	Address    string       `json:"address"`
	Response   value.Node   `json:"response"`
	Attempts   uint         `json:"attempts"`
	Skipped    bool         `json:"skipped,omitempty"`
	Timestamp  *time.Time   `json:"timestamp"`
	Err        *ReportError `json:"error"`
}

// NewReport creates a new report.
func NewReport(invocation, host string, op operation.Descriptor, response value.Node, attempts uint, err error) Report {
	now := time.Now()
	r := Report{
		ID:         uuid.New().String(),
		Invocation: invocation,
		Host:       host,
		Operation:  op.Name,
		Address:    op.Address.String(),
		Response:   response,
		Attempts:   attempts,
		Timestamp:  &now,
	}
	if err != nil {
		r.Err = &ReportError{Message: err.Error()}
	}

	return r
}

// ReportError represents an error in the Report.
// Its purpose is to have an exported field `Message` for marshalling as the
// native error cant be marshaled to JSON.
type ReportError struct {
	Message string `json:"message"`
}

// Error implements the error interface.
func (o ReportError) Error() string {
	return o.Message
}

var ErrReportNotFound = errors.New("report not found")

// Reporter manages reports. It can store them in memory, in the FS, etc.
type Reporter interface {
	GetReport(id string) (Report, error)
	GetReports() ([]Report, error)
	AddReport(report Report) error
}

// MemoryReporter stores reports in memory.
// This is thread-safe and can be used in a multi-threaded environment.
type MemoryReporter struct {
	reports []Report
	mu      sync.RWMutex
}

type MemoryReporterOption func(*MemoryReporter)

// WithReports is an option to initialize the MemoryReporter with a list of reports.
func WithReports(reports []Report) MemoryReporterOption {
	return func(mr *MemoryReporter) {
		mr.reports = reports
	}
}

// NewMemoryReporter creates a new MemoryReporter.
func NewMemoryReporter(options ...MemoryReporterOption) *MemoryReporter {
	reporter := &MemoryReporter{}
	for _, opt := range options {
		opt(reporter)
	}

	return reporter
}

// AddReport adds a report to the memory reporter.
func (e *MemoryReporter) AddReport(report Report) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reports = append(e.reports, report)

	return nil
}

// GetReports returns all reports.
func (e *MemoryReporter) GetReports() ([]Report, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	reports := make([]Report, len(e.reports))
	copy(reports, e.reports)

	return reports, nil
}

// GetReport returns a report by ID.
// Returns ErrReportNotFound if the report is not found.
func (e *MemoryReporter) GetReport(id string) (Report, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, report := range e.reports {
		if report.ID == id {
			return report, nil
		}
	}

	return Report{}, fmt.Errorf("report_id %s: %w", id, ErrReportNotFound)
}

// RecentReporter is a wrapper around a Reporter that keeps track of the reports added through
// it. The dispatcher wraps its reporter in one per invocation.
type RecentReporter struct {
	Reporter
	recentReports []Report
	mu            sync.RWMutex
}

// AddReport adds a report to the underlying reporter, then to the recent reports.
func (e *RecentReporter) AddReport(report Report) error {
	if err := e.Reporter.AddReport(report); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.recentReports = append(e.recentReports, report)

	return nil
}

// GetRecentReports returns all the reports that were added since the construction of the
// RecentReporter.
func (e *RecentReporter) GetRecentReports() []Report {
	e.mu.RLock()
	defer e.mu.RUnlock()

	reports := make([]Report, len(e.recentReports))
	copy(reports, e.recentReports)

	return reports
}

// NewRecentMemoryReporter creates a new RecentReporter.
func NewRecentMemoryReporter(reporter Reporter) *RecentReporter {
	return &RecentReporter{
		Reporter:      reporter,
		recentReports: []Report{},
	}
}

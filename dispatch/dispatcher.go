package dispatch

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/avast/retry-go/v4"
	"golang.org/x/sync/errgroup"

	"github.com/smartcontractkit/domain-coordinator/coordination"
	"github.com/smartcontractkit/domain-coordinator/operation"
	"github.com/smartcontractkit/domain-coordinator/pkg/logger"
)

var (
	ErrUnknownHost        = errors.New("unknown host")
	ErrUnsupportedVersion = errors.New("host management version is below the minimum")
)

// Config controls how an operation is fanned out.
type Config struct {
	// Concurrency caps the hosts executing at the same time. Zero or less means no cap.
	Concurrency int
	// HostTimeout bounds a single attempt on one host. Zero means no timeout.
	HostTimeout time.Duration
	// MinHostVersion, when set, excludes hosts reporting an older management version.
	MinHostVersion *semver.Version
	Retry          RetryPolicy
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		Concurrency: 8,
		HostTimeout: 30 * time.Second,
		Retry: RetryPolicy{
			MaxAttempts: 3,
			Delay:       100 * time.Millisecond,
		},
	}
}

// HistoryRecorder stores finalized outcomes.
type HistoryRecorder interface {
	Record(ctx context.Context, invocationID string, op operation.Descriptor, exec *coordination.ExecutionContext) error
}

// Option is a functional option for configuring a Dispatcher.
type Option func(*Dispatcher)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(d *Dispatcher) {
		d.cfg = cfg
	}
}

// WithReporter sets the reporter every host execution is recorded in.
func WithReporter(r Reporter) Option {
	return func(d *Dispatcher) {
		d.reporter = r
	}
}

// WithHistory records every finalized outcome in h.
func WithHistory(h HistoryRecorder) Option {
	return func(d *Dispatcher) {
		d.history = h
	}
}

// Dispatcher runs operations across the domain and finalizes their results.
type Dispatcher struct {
	localHost string
	client    HostClient
	cfg       Config
	reporter  Reporter
	history   HistoryRecorder
	lggr      logger.Logger
}

// NewDispatcher returns a Dispatcher coordinating from localHost.
func NewDispatcher(localHost string, client HostClient, lggr logger.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		localHost: localHost,
		client:    client,
		cfg:       DefaultConfig(),
		reporter:  NewMemoryReporter(),
		lggr:      lggr.Named("dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Result is the outcome of one dispatched operation.
type Result struct {
	InvocationID string
	Execution    *coordination.ExecutionContext
	Context      *coordination.DomainOperationContext
	// Reports holds one report per host the operation was sent to or skipped on, by host name.
	Reports []Report
}

// Dispatch runs op on the coordinator and the hosts its address reaches, then finalizes the
// result exactly once.
//
// The coordinator runs first. When a domain operation fails there, the hosts are not
// contacted. Hosts are then executed concurrently, each attempt bounded by the host timeout and
// retried per the retry policy. A host that still fails is recorded with a stand-in failure
// response so the failure shows up in the final outcome. Hosts below the minimum management
// version are skipped and treated as not having answered.
//
// When the outcome cannot be recorded in the history, the finalized result is returned along
// with the error.
func (d *Dispatcher) Dispatch(ctx context.Context, op operation.Descriptor) (*Result, error) {
	hosts, err := d.client.Hosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hosts: %w", err)
	}
	target := coordination.ResolveTarget(op, d.localHost)
	local, remotes, err := d.selectHosts(target, hosts)
	if err != nil {
		return nil, err
	}

	dctx := coordination.NewDomainOperationContext(d.localHost)
	reporter := NewRecentMemoryReporter(d.reporter)
	lggr := d.lggr.With("invocation", dctx.ID())
	lggr.Infow("Dispatching operation",
		"operation", op.Name, "address", op.Address.String(), "scope", target.Scope.String(), "hosts", len(remotes))

	if local != nil {
		dctx.RegisterHost(local.Name)
		if err = d.executeHost(ctx, lggr, dctx, reporter, *local, op, true); err != nil {
			return nil, err
		}
		if coordinator, _ := dctx.CoordinatorResult(); coordination.IsDomainOperation(op) && isFailedEnvelope(coordinator) {
			lggr.Warnw("Operation failed on the coordinator, not contacting hosts")
			remotes = nil
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if d.cfg.Concurrency > 0 {
		g.SetLimit(d.cfg.Concurrency)
	}
	for _, host := range remotes {
		dctx.RegisterHost(host.Name)
		if !d.supported(host) {
			lggr.Warnw("Skipping host with unsupported management version",
				"host", host.Name, "version", host.ManagementVersion, "minVersion", d.cfg.MinHostVersion)
			report := NewReport(dctx.ID(), host.Name, op, failureEnvelope(ErrUnsupportedVersion), 0, ErrUnsupportedVersion)
			report.Skipped = true
			if err = reporter.AddReport(report); err != nil {
				return nil, err
			}

			continue
		}
		g.Go(func() error {
			return d.executeHost(gctx, lggr, dctx, reporter, host, op, false)
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}
	if err = ctx.Err(); err != nil {
		return nil, fmt.Errorf("dispatch %s: %w", op.Name, err)
	}

	exec := coordination.NewExecutionContext()
	if err = coordination.NewFinalResultHandler(dctx, lggr).Finalize(exec, op); err != nil {
		return nil, err
	}
	reports := reporter.GetRecentReports()
	slices.SortFunc(reports, func(a, b Report) int {
		return cmp.Compare(a.Host, b.Host)
	})
	res := &Result{
		InvocationID: dctx.ID(),
		Execution:    exec,
		Context:      dctx,
		Reports:      reports,
	}

	if d.history != nil {
		if err = d.history.Record(ctx, dctx.ID(), op, exec); err != nil {
			lggr.Errorw("Failed to record outcome", "err", err)

			return res, fmt.Errorf("record outcome: %w", err)
		}
	}

	return res, nil
}

// selectHosts picks the hosts op runs on: every host for domain-wide and all-hosts operations,
// the addressed host otherwise.
func (d *Dispatcher) selectHosts(target coordination.Target, hosts []HostInfo) (*HostInfo, []HostInfo, error) {
	local := &HostInfo{Name: d.localHost}
	var remotes []HostInfo
	for _, h := range hosts {
		if h.Name == d.localHost {
			local = &h

			continue
		}
		remotes = append(remotes, h)
	}
	slices.SortFunc(remotes, func(a, b HostInfo) int {
		return cmp.Compare(a.Name, b.Name)
	})

	switch target.Scope {
	case coordination.ScopeDomain, coordination.ScopeAllHosts:
		return local, remotes, nil
	default:
		if target.Host == d.localHost {
			return local, nil, nil
		}
		for _, h := range remotes {
			if h.Name == target.Host {
				return nil, []HostInfo{h}, nil
			}
		}

		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownHost, target.Host)
	}
}

func (d *Dispatcher) supported(host HostInfo) bool {
	if d.cfg.MinHostVersion == nil || host.ManagementVersion == nil {
		return true
	}

	return !host.ManagementVersion.LessThan(d.cfg.MinHostVersion)
}

// executeHost runs op on one host with retries and records the response, or a stand-in
// failure, in dctx. Only a reporter failure is returned.
func (d *Dispatcher) executeHost(
	ctx context.Context,
	lggr logger.Logger,
	dctx *coordination.DomainOperationContext,
	reporter Reporter,
	host HostInfo,
	op operation.Descriptor,
	local bool,
) error {
	var attempts uint
	retryOpts := append(d.cfg.Retry.options(),
		retry.Context(ctx),
		retry.OnRetry(func(attempt uint, err error) {
			lggr.Infow("Host execution failed. Retrying...",
				"host", host.Name, "attempt", attempt, "error", err)
		}),
	)
	resp, err := retry.DoWithData(
		func() (HostResponse, error) {
			attempts++
			actx, cancel := d.attemptContext(ctx)
			defer cancel()

			return d.client.Execute(actx, host, op)
		},
		retryOpts...,
	)
	if err != nil {
		lggr.Errorw("Host execution failed", "host", host.Name, "attempts", attempts, "error", err)
		resp = HostResponse{Envelope: failureEnvelope(err)}
	}

	if local {
		dctx.SetCoordinatorResult(resp.Envelope)
	} else {
		dctx.AddHostResult(host.Name, resp.Envelope)
	}
	for _, s := range resp.Servers {
		id := s.Identity
		if id.HostName == "" {
			id.HostName = host.Name
		}
		dctx.AddServerResult(id, s.Response)
	}
	for _, group := range resp.RolledBackGroups {
		dctx.SetServerGroupRollback(group, true)
	}

	return reporter.AddReport(NewReport(dctx.ID(), host.Name, op, resp.Envelope, attempts, err))
}

func (d *Dispatcher) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.cfg.HostTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, d.cfg.HostTimeout)
}

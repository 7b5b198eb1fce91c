package ops

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/smartcontractkit/domain-coordinator/coordination"
	"github.com/smartcontractkit/domain-coordinator/pkg/logger"
	"github.com/smartcontractkit/domain-coordinator/value"
)

// Snapshot is everything collected for one operation before it is finalized, as written by
// operators reproducing an outcome:
//
//	local-host: master
//	operation: {op: write-attribute, op-addr: []}
//	coordinator: {outcome: success, result: ...}
//	hosts:
//	  slave-a: {outcome: success, result: {domain-results: ...}}
//	servers:
//	  - {host: slave-a, server-group: main, server: s1, response: {outcome: success}}
//	rolled-back-groups: [main]
type Snapshot struct {
	LocalHost string `yaml:"local-host"`
	// Operation is the wire form of the descriptor.
	Operation   value.Node            `yaml:"operation"`
	Coordinator value.Node            `yaml:"coordinator"`
	Hosts       map[string]value.Node `yaml:"hosts"`
	// Registered lists hosts the operation was sent to, answered or not.
	Registered       []string         `yaml:"registered"`
	Servers          []SnapshotServer `yaml:"servers"`
	RolledBackGroups []string         `yaml:"rolled-back-groups"`
	FailureReported  bool             `yaml:"failure-reported"`
	// ContextFailure is a failure description an earlier stage left on the execution context.
	ContextFailure value.Node `yaml:"context-failure"`
}

// SnapshotServer is one server response of a Snapshot.
type SnapshotServer struct {
	coordination.ServerIdentity `yaml:",inline"`

	Response value.Node `yaml:"response"`
}

// ParseSnapshot decodes a snapshot from YAML or JSON.
func ParseSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return s, nil
}

// Context rebuilds the aggregation context the snapshot describes.
func (s Snapshot) Context() *coordination.DomainOperationContext {
	dctx := coordination.NewDomainOperationContext(s.LocalHost)
	if s.Coordinator.IsDefined() {
		dctx.SetCoordinatorResult(s.Coordinator)
	}
	dctx.RegisterHost(s.Registered...)
	for host, resp := range s.Hosts {
		dctx.AddHostResult(host, resp)
	}
	for _, srv := range s.Servers {
		dctx.AddServerResult(srv.ServerIdentity, srv.Response)
	}
	for _, group := range s.RolledBackGroups {
		dctx.SetServerGroupRollback(group, true)
	}
	dctx.SetFailureReported(s.FailureReported)

	return dctx
}

// Finalize runs the final result handler over the snapshot.
func (s Snapshot) Finalize(lggr logger.Logger) (*coordination.ExecutionContext, error) {
	exec := coordination.NewExecutionContext()
	if s.ContextFailure.IsDefined() {
		exec.SetFailureDescription(s.ContextFailure)
	}
	if err := coordination.NewFinalResultHandler(s.Context(), lggr).FinalizeNode(exec, s.Operation); err != nil {
		return nil, err
	}

	return exec, nil
}

package dispatch

import (
	"context"

	"github.com/Masterminds/semver/v3"

	"github.com/smartcontractkit/domain-coordinator/coordination"
	"github.com/smartcontractkit/domain-coordinator/operation"
	"github.com/smartcontractkit/domain-coordinator/value"
)

// HostInfo describes a host of the domain.
type HostInfo struct {
	Name string
	// ManagementVersion is the management API version the host speaks. Nil when unknown.
	ManagementVersion *semver.Version
}

// ServerResponse is the response of one managed server, forwarded by its host.
type ServerResponse struct {
	Identity coordination.ServerIdentity
	Response value.Node
}

// HostResponse is what a host returns for its part of an operation.
type HostResponse struct {
	// Envelope is the host's own response: {outcome, result: {domain-results: ...}} or
	// {outcome: failed, failure-description: ...}.
	Envelope value.Node
	// Servers holds the responses of the servers the host pushed the operation to.
	Servers []ServerResponse
	// RolledBackGroups names the server groups whose changes were rolled back.
	RolledBackGroups []string
}

// HostClient executes operations on the hosts of a domain, the coordinator included.
type HostClient interface {
	// Hosts lists every host of the domain.
	Hosts(ctx context.Context) ([]HostInfo, error)
	// Execute runs op on host. Errors are retried unless wrapped with NewUnrecoverableError.
	Execute(ctx context.Context, host HostInfo, op operation.Descriptor) (HostResponse, error)
}

// failureEnvelope is the stand-in response recorded for a host that could not be reached.
func failureEnvelope(err error) value.Node {
	return value.Object(
		value.Prop(operation.Outcome, value.String(operation.Failed)),
		value.Prop(operation.FailureDescription, value.String(err.Error())),
	)
}

func isFailedEnvelope(envelope value.Node) bool {
	return envelope.Has(operation.FailureDescription)
}

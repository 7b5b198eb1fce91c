package coordination

import (
	"github.com/smartcontractkit/domain-coordinator/operation"
	"github.com/smartcontractkit/domain-coordinator/value"
)

func successNode(result value.Node) value.Node {
	return value.Object(
		value.Prop(operation.Outcome, value.String(operation.Success)),
		value.Prop(operation.Result, result),
	)
}

func failedNode(desc value.Node) value.Node {
	return value.Object(
		value.Prop(operation.Outcome, value.String(operation.Failed)),
		value.Prop(operation.FailureDescription, desc),
	)
}

// hostEnvelope wraps domain results the way a host reports them to the coordinator.
func hostEnvelope(domainResults value.Node) value.Node {
	return successNode(value.Object(value.Prop(operation.DomainResults, domainResults)))
}

func failedHostEnvelope(desc value.Node) value.Node {
	return failedNode(desc)
}

func serverID(host, group, server string) ServerIdentity {
	return ServerIdentity{HostName: host, ServerGroupName: group, ServerName: server}
}

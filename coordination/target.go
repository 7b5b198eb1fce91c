package coordination

import (
	"github.com/smartcontractkit/domain-coordinator/operation"
)

// Scope is the routing scope of an operation, derived from its address.
type Scope int

const (
	// ScopeDomain operations are evaluated by the coordinator itself.
	ScopeDomain Scope = iota
	ScopeSingleHost
	ScopeAllHosts
	ScopeSingleHostSingleServer
	ScopeSingleHostAllServers
)

// String returns the scope name.
func (s Scope) String() string {
	switch s {
	case ScopeDomain:
		return "domain"
	case ScopeSingleHost:
		return "single-host"
	case ScopeAllHosts:
		return "all-hosts"
	case ScopeSingleHostSingleServer:
		return "single-host-single-server"
	case ScopeSingleHostAllServers:
		return "single-host-all-servers"
	default:
		return "unknown"
	}
}

// Target is the resolved routing of an operation: its scope, the host and server it reaches
// and, when the response keeps a per-step breakdown, the composite steps.
type Target struct {
	Scope Scope
	// Host is the addressed host, the local host for domain operations, or the wildcard.
	Host string
	// Server is the addressed server, the wildcard, or empty when no server is addressed.
	Server string

	composite bool
	steps     []operation.Descriptor
}

// IsLeaf reports whether the response for this target has no per-step breakdown.
func (t Target) IsLeaf() bool {
	return !t.composite
}

// Steps returns the composite steps, or nil for a leaf target.
func (t Target) Steps() []operation.Descriptor {
	if !t.composite {
		return nil
	}

	return append([]operation.Descriptor{}, t.steps...)
}

// ResolveTarget classifies the routing scope and response shape of op. It never fails: any
// unexpected address resolves to the most conservative reading, a leaf on the local host,
// because the resolution only shapes the response of an operation that has already run.
//
// A composite keeps its per-step shape for the domain root, a single host, and a single server
// addressed directly below its host. Wildcard targets are always leaves: their steps would have
// to be replicated per target.
func ResolveTarget(op operation.Descriptor, localHostName string) Target {
	composite := op.IsComposite()
	addr := op.Address

	var t Target
	switch {
	case len(addr) == 0:
		t = Target{Scope: ScopeDomain, Host: localHostName}
	case addr[0].Key == operation.Host && addr[0].IsWildcard():
		t = Target{Scope: ScopeAllHosts, Host: operation.Wildcard}
		composite = false
	case addr[0].Key == operation.Host:
		t = Target{Scope: ScopeSingleHost, Host: addr[0].Value}
		if len(addr) > 1 && addr[1].Key == operation.Server {
			t.Server = addr[1].Value
			if addr[1].IsWildcard() {
				t.Scope = ScopeSingleHostAllServers
				composite = false
			} else {
				t.Scope = ScopeSingleHostSingleServer
				composite = composite && len(addr) == 2
			}
		}
	default:
		t = Target{Scope: ScopeDomain, Host: localHostName}
		composite = false
	}

	if composite {
		t.composite = true
		t.steps = op.Steps
	}

	return t
}

// IsDomainOperation reports whether op is evaluated at domain level: its address is the root or
// does not start with a host segment.
func IsDomainOperation(op operation.Descriptor) bool {
	return len(op.Address) == 0 || op.Address[0].Key != operation.Host
}

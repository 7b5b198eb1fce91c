package coordination

import (
	"errors"
	"slices"
	"sort"
	"sync"

	"github.com/segmentio/ksuid"

	"github.com/smartcontractkit/domain-coordinator/value"
)

var ErrAlreadyFinalized = errors.New("domain operation has already been finalized")

// ServerResult is the response recorded for one server.
type ServerResult struct {
	Identity ServerIdentity
	Result   value.Node
}

// DomainOperationContext holds the partial results of one domain operation invocation.
//
// It is created when dispatch begins and written by the concurrent dispatch callbacks (one per
// host, one per server). All methods are safe for concurrent use. Once the fan-out has joined it
// is read by FinalResultHandler.Finalize, which may run only once per context.
//
// Absence is meaningful: a host with no recorded result never answered, which is different
// from a host that answered with an undefined value. Lookups therefore return a found flag.
type DomainOperationContext struct {
	id            ksuid.KSUID
	localHostName string

	mu                sync.RWMutex
	coordinatorResult *value.Node
	hostResults       map[string]value.Node
	knownHosts        map[string]struct{}
	serverResults     map[serverKey]ServerResult
	rolledBackGroups  map[string]bool
	failureReported   bool
	finalized         bool
}

// NewDomainOperationContext creates the context for one invocation coordinated by the host
// named localHostName.
func NewDomainOperationContext(localHostName string) *DomainOperationContext {
	return &DomainOperationContext{
		id:               ksuid.New(),
		localHostName:    localHostName,
		hostResults:      make(map[string]value.Node),
		knownHosts:       make(map[string]struct{}),
		serverResults:    make(map[serverKey]ServerResult),
		rolledBackGroups: make(map[string]bool),
	}
}

// ID returns the invocation id. Ids sort by creation time.
func (c *DomainOperationContext) ID() string {
	return c.id.String()
}

// LocalHostName returns the name of the coordinating host.
func (c *DomainOperationContext) LocalHostName() string {
	return c.localHostName
}

// RegisterHost records hosts the operation is expected to reach, whether or not they end up
// answering.
func (c *DomainOperationContext) RegisterHost(names ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, n := range names {
		c.knownHosts[n] = struct{}{}
	}
}

// SetCoordinatorResult records the result of running the operation on the coordinator itself.
// The local host becomes a known host.
func (c *DomainOperationContext) SetCoordinatorResult(v value.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.coordinatorResult = &v
	c.knownHosts[c.localHostName] = struct{}{}
}

// CoordinatorResult returns the coordinator's own result, if one was recorded.
func (c *DomainOperationContext) CoordinatorResult() (value.Node, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.coordinatorResult == nil {
		return value.Node{}, false
	}

	return *c.coordinatorResult, true
}

// AddHostResult records the response of a remote host. A later call for the same host replaces
// the earlier response.
func (c *DomainOperationContext) AddHostResult(host string, v value.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hostResults[host] = v
	c.knownHosts[host] = struct{}{}
}

// HostResult returns the response of a remote host, if it answered.
func (c *DomainOperationContext) HostResult(host string) (value.Node, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.hostResults[host]

	return v, ok
}

// HostResultNames returns the names of the hosts that answered, sorted.
func (c *DomainOperationContext) HostResultNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.hostResults))
	for n := range c.hostResults {
		names = append(names, n)
	}
	sort.Strings(names)

	return names
}

// KnownHosts returns every registered or answering host, sorted.
func (c *DomainOperationContext) KnownHosts() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.knownHosts))
	for n := range c.knownHosts {
		names = append(names, n)
	}
	sort.Strings(names)

	return names
}

// AddServerResult records the response of a managed server.
func (c *DomainOperationContext) AddServerResult(id ServerIdentity, v value.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.serverResults[id.key()] = ServerResult{Identity: id, Result: v}
}

// ServerResult returns the response recorded for the named server on host.
func (c *DomainOperationContext) ServerResult(host, server string) (ServerResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.serverResults[serverKey{host: host, server: server}]

	return r, ok
}

// ServerResults returns every recorded server response ordered by host then server name.
func (c *DomainOperationContext) ServerResults() []ServerResult {
	c.mu.RLock()
	defer c.mu.RUnlock()

	results := make([]ServerResult, 0, len(c.serverResults))
	for _, r := range c.serverResults {
		results = append(results, r)
	}
	slices.SortFunc(results, func(a, b ServerResult) int {
		return a.Identity.Compare(b.Identity)
	})

	return results
}

// HasServerResults reports whether any server response was recorded.
func (c *DomainOperationContext) HasServerResults() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.serverResults) > 0
}

// SetServerGroupRollback records whether the named group's changes were rolled back.
func (c *DomainOperationContext) SetServerGroupRollback(group string, rolledBack bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rolledBackGroups[group] = rolledBack
}

// IsServerGroupRollback reports whether the named group's changes were rolled back.
func (c *DomainOperationContext) IsServerGroupRollback(group string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.rolledBackGroups[group]
}

// SetFailureReported marks that an earlier stage already finalized the failure description.
func (c *DomainOperationContext) SetFailureReported(reported bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failureReported = reported
}

// IsFailureReported reports whether an earlier stage already finalized the failure description.
func (c *DomainOperationContext) IsFailureReported() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.failureReported
}

func (c *DomainOperationContext) markFinalized() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.finalized {
		return ErrAlreadyFinalized
	}
	c.finalized = true

	return nil
}

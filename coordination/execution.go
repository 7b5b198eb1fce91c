package coordination

import (
	"github.com/smartcontractkit/domain-coordinator/operation"
	"github.com/smartcontractkit/domain-coordinator/value"
)

// ExecutionContext is the caller's view of an operation's outcome. It has a result slot, a
// failure description slot and a server-groups slot. After finalization exactly one of result
// and failure description is populated.
type ExecutionContext struct {
	result          value.Node
	hasResult       bool
	failure         value.Node
	hasFailure      bool
	serverGroups    value.Node
	hasServerGroups bool
}

// NewExecutionContext returns an empty execution context.
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{}
}

// Result returns the result body. It is undefined when no result is set.
func (e *ExecutionContext) Result() value.Node {
	return e.result
}

// HasResult reports whether a result body is set.
func (e *ExecutionContext) HasResult() bool {
	return e.hasResult
}

// SetResult replaces the result body.
func (e *ExecutionContext) SetResult(v value.Node) {
	e.result = v
	e.hasResult = true
}

// ClearResult discards the result body.
func (e *ExecutionContext) ClearResult() {
	e.result = value.Node{}
	e.hasResult = false
}

// FailureDescription returns the failure description and whether one is set. A description can
// be set yet undefined, when an upstream stage flagged the failure without describing it.
func (e *ExecutionContext) FailureDescription() (value.Node, bool) {
	return e.failure, e.hasFailure
}

// HasFailureDescription reports whether a failure description is set.
func (e *ExecutionContext) HasFailureDescription() bool {
	return e.hasFailure
}

// SetFailureDescription replaces the failure description.
func (e *ExecutionContext) SetFailureDescription(v value.Node) {
	e.failure = v
	e.hasFailure = true
}

// ServerGroups returns the per server group results.
func (e *ExecutionContext) ServerGroups() (value.Node, bool) {
	return e.serverGroups, e.hasServerGroups
}

// SetServerGroup stores the result node of one server group.
func (e *ExecutionContext) SetServerGroup(name string, v value.Node) {
	e.serverGroups = e.serverGroups.With(name, v)
	e.hasServerGroups = true
}

// ensureServerGroups makes the server-groups slot present, leaving it undefined if nothing
// was stored.
func (e *ExecutionContext) ensureServerGroups() {
	e.hasServerGroups = true
}

// Outcome returns failed when a failure description is set and success otherwise.
func (e *ExecutionContext) Outcome() string {
	if e.hasFailure {
		return operation.Failed
	}

	return operation.Success
}

// Response renders the wire response: outcome, then result or failure-description, then
// server-groups when the slot is present.
func (e *ExecutionContext) Response() value.Node {
	resp := value.Object(value.Prop(operation.Outcome, value.String(e.Outcome())))
	if e.hasFailure {
		resp = resp.With(operation.FailureDescription, e.failure)
	} else {
		resp = resp.With(operation.Result, e.result)
	}
	if e.hasServerGroups {
		resp = resp.With(operation.ServerGroups, e.serverGroups)
	}

	return resp
}

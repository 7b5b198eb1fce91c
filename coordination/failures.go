package coordination

import (
	"github.com/smartcontractkit/domain-coordinator/operation"
	"github.com/smartcontractkit/domain-coordinator/value"
)

// failureOf returns the failure description carried by a response, substituting the
// unexplained failure text when the description is present but undefined. The boolean is false
// when the response reports no failure.
func failureOf(resp value.Node) (value.Node, bool) {
	if !resp.Has(operation.FailureDescription) {
		return value.Node{}, false
	}

	return describedOrUnexplained(resp.Get(operation.FailureDescription))
}

func describedOrUnexplained(desc value.Node, _ bool) (value.Node, bool) {
	if !desc.IsDefined() {
		return value.String(operation.UnexplainedFailure), true
	}

	return desc, true
}

// collectDomainFailure reports a failure of the coordinator's own execution of a domain
// operation. It returns false when it set the failure.
func (h *FinalResultHandler) collectDomainFailure(exec *ExecutionContext, isDomain bool) bool {
	if !isDomain {
		return true
	}
	coordinator, ok := h.ctx.CoordinatorResult()
	if !ok {
		return true
	}
	desc, failed := failureOf(coordinator)
	if !failed {
		return true
	}

	exec.SetFailureDescription(value.Object(value.Prop(operation.DomainFailureDescription, desc)))

	return false
}

// collectContextFailure surfaces a failure an upstream stage placed directly on the execution
// context, typically to force a rollback, unless that stage already reported it. It returns
// false when it set the failure.
func (h *FinalResultHandler) collectContextFailure(exec *ExecutionContext, isDomain bool) bool {
	if h.ctx.IsFailureReported() || !exec.HasFailureDescription() {
		return true
	}
	desc, _ := describedOrUnexplained(exec.FailureDescription())

	if isDomain {
		exec.SetFailureDescription(value.Object(value.Prop(operation.DomainFailureDescription, desc)))
	} else {
		hostFailures := value.Object(value.Prop(h.ctx.LocalHostName(), desc))
		exec.SetFailureDescription(value.Object(value.Prop(operation.HostFailureDescriptions, hostFailures)))
	}

	return false
}

// collectHostFailures reports the hosts whose responses carry a failure description, plus the
// coordinator itself for host-level operations. It returns false when any failure was found.
func (h *FinalResultHandler) collectHostFailures(exec *ExecutionContext, isDomain bool) bool {
	hostFailures := value.Undefined()
	for _, host := range h.ctx.HostResultNames() {
		resp, _ := h.ctx.HostResult(host)
		if desc, failed := failureOf(resp); failed {
			hostFailures = hostFailures.With(host, desc)
		}
	}

	if !isDomain {
		if coordinator, ok := h.ctx.CoordinatorResult(); ok {
			if desc, failed := failureOf(coordinator); failed {
				hostFailures = hostFailures.With(h.ctx.LocalHostName(), desc)
			}
		}
	}

	if !hostFailures.IsDefined() {
		return true
	}

	// Another failure path may already have put a plain-text description on the context. It
	// can be misleading, but replacing it here would break clients that parse it, so it is only
	// replaced when it is absent or already structured.
	existing, ok := exec.FailureDescription()
	if !ok || !existing.IsDefined() || existing.IsObject() {
		exec.SetFailureDescription(value.Object(value.Prop(operation.HostFailureDescriptions, hostFailures)))
	} else {
		h.lggr.Debugw("Keeping existing non-object failure description",
			"invocation", h.ctx.ID(), "failureDescription", existing.AsString(), "hostFailures", hostFailures.String())
	}

	return false
}

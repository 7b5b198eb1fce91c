package coordination

import (
	"sort"

	"github.com/smartcontractkit/domain-coordinator/operation"
	"github.com/smartcontractkit/domain-coordinator/value"
)

// populateServerGroupResults writes every server response into the server-groups slot, grouped
// by server group and ordered by host then server. It returns false, after setting the failure
// description, when every server group was rolled back.
func (h *FinalResultHandler) populateServerGroupResults(exec *ExecutionContext) bool {
	byGroup := make(map[string][]ServerResult)
	for _, sr := range h.ctx.ServerResults() {
		g := sr.Identity.ServerGroupName
		byGroup[g] = append(byGroup[g], sr)
	}
	groupNames := make([]string, 0, len(byGroup))
	for g := range byGroup {
		groupNames = append(groupNames, g)
	}
	sort.Strings(groupNames)

	groupSuccess := false
	failureReport := value.Undefined()
	for _, group := range groupNames {
		rolledBack := h.ctx.IsServerGroupRollback(group)
		if !rolledBack {
			groupSuccess = true
		}

		groupNode := value.Object()
		for _, sr := range byGroup[group] {
			id := sr.Identity
			groupNode = groupNode.WithPath(sr.Result, operation.Host, id.HostName, id.ServerName, operation.Response)

			if !rolledBack || !isFailedWithDescription(sr.Result) {
				continue
			}
			desc, _ := sr.Result.Get(operation.FailureDescription)
			if desc.AsString() == operation.CompositeRolledBack {
				// The server only rolled back because the rollout did; that says nothing about
				// the cause.
				h.lggr.Debugw("Omitting rollback-only server failure from the failure report",
					"invocation", h.ctx.ID(), "server", id.String())

				continue
			}
			failureReport = failureReport.WithPath(desc,
				operation.ServerGroup, group, operation.Host, id.HostName, id.ServerName)
		}
		exec.SetServerGroup(group, groupNode)
	}

	if groupSuccess {
		return true
	}

	if failureReport.IsDefined() {
		exec.SetFailureDescription(value.Object(value.Prop(operation.FailedOrRolledBackWithCause, failureReport)))
	} else {
		exec.SetFailureDescription(value.String(operation.FailedOrRolledBack))
	}

	return false
}

func isFailedWithDescription(resp value.Node) bool {
	outcome, _ := resp.Get(operation.Outcome)

	return outcome.Kind() == value.KindString &&
		outcome.AsString() == operation.Failed &&
		resp.HasDefined(operation.FailureDescription)
}

package coordination

import (
	"github.com/smartcontractkit/domain-coordinator/operation"
	"github.com/smartcontractkit/domain-coordinator/value"
)

// Assembler builds the response body of an operation from the results recorded in a
// DomainOperationContext. It only reads the context, so assembling twice over the same context
// yields identical output.
type Assembler struct {
	ctx *DomainOperationContext
}

// NewAssembler returns an Assembler reading from ctx.
func NewAssembler(ctx *DomainOperationContext) *Assembler {
	return &Assembler{ctx: ctx}
}

// Assemble returns the response body for op. A composite keeps one "step-N" entry per step, in
// order, down to the leaves; each leaf holds the result found for the target. Nested steps share
// the root's target, since all steps of a composite run against the same host or server. A
// composite without steps has an undefined result.
func (a *Assembler) Assemble(op operation.Descriptor) value.Node {
	root := ResolveTarget(op, a.ctx.LocalHostName())

	return a.assemble(root, root.steps, root.IsLeaf(), nil)
}

func (a *Assembler) assemble(root Target, steps []operation.Descriptor, leaf bool, path []string) value.Node {
	if !leaf {
		if len(steps) == 0 {
			return value.Undefined()
		}
		out := value.Object()
		for i, step := range steps {
			label := operation.StepLabel(i)
			childPath := append(append(make([]string, 0, len(path)+1), path...), label)
			out = out.With(label, a.assemble(root, step.Steps, !step.IsComposite(), childPath))
		}

		return out
	}

	switch root.Scope {
	case ScopeAllHosts:
		out := value.List()
		for _, host := range a.ctx.KnownHosts() {
			resp, ok := a.hostResponse(host)
			if !ok {
				continue
			}
			out = out.Append(extractHostResult(resp, path))
		}

		return out
	case ScopeSingleHostSingleServer:
		return a.serverResult(root.Host, root.Server, path)
	default:
		// Domain, single host, and every server of a single host: the host's envelope carries
		// the result.
		resp, ok := a.hostResponse(root.Host)
		if !ok {
			return value.Undefined()
		}

		return extractHostResult(resp, path)
	}
}

// hostResponse returns the coordinator's own result for the local host and the recorded host
// response otherwise.
func (a *Assembler) hostResponse(host string) (value.Node, bool) {
	if host == a.ctx.LocalHostName() {
		return a.ctx.CoordinatorResult()
	}

	return a.ctx.HostResult(host)
}

// serverResult returns the recorded response of a server. Composite steps are found under its
// result, keyed by step label.
func (a *Assembler) serverResult(host, server string, path []string) value.Node {
	sr, ok := a.ctx.ServerResult(host, server)
	if !ok {
		return value.Undefined()
	}
	if len(path) == 0 {
		return sr.Result
	}
	node, ok := sr.Result.Get(append([]string{operation.Result}, path...)...)
	if !ok {
		return value.Undefined()
	}

	return withOutcome(node, true)
}

// extractHostResult descends a host envelope, {outcome, result: {domain-results: ...}}, to the
// node at path.
func extractHostResult(envelope value.Node, path []string) value.Node {
	res, ok := envelope.Get(operation.Result)
	if !ok || !res.HasDefined(operation.DomainResults) {
		return value.Undefined()
	}
	domainResults, _ := res.Get(operation.DomainResults)
	node, ok := domainResults.Get(path...)
	if !ok {
		return value.Undefined()
	}

	return withOutcome(node, len(path) > 0)
}

// withOutcome fills in a missing outcome on a step node: failed if it carries a defined failure
// description, success otherwise. Outside a composite only an outcome key that is present but
// undefined is filled in, since a plain leaf result is not an outcome node.
func withOutcome(node value.Node, step bool) value.Node {
	if !node.IsObject() || node.HasDefined(operation.Outcome) {
		return node
	}
	if !step && !node.Has(operation.Outcome) {
		return node
	}
	if node.HasDefined(operation.FailureDescription) {
		return node.With(operation.Outcome, value.String(operation.Failed))
	}

	return node.With(operation.Outcome, value.String(operation.Success))
}

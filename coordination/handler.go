package coordination

import (
	"errors"
	"fmt"

	"github.com/smartcontractkit/domain-coordinator/operation"
	"github.com/smartcontractkit/domain-coordinator/pkg/logger"
	"github.com/smartcontractkit/domain-coordinator/value"
)

var ErrNilExecutionContext = errors.New("execution context is nil")

// FinalResultHandler turns the partial results of a fanned-out operation into its final
// outcome. Use NewFinalResultHandler to create one per DomainOperationContext.
type FinalResultHandler struct {
	ctx       *DomainOperationContext
	assembler *Assembler
	lggr      logger.Logger
}

// NewFinalResultHandler returns a handler finalizing operations recorded in ctx.
func NewFinalResultHandler(ctx *DomainOperationContext, lggr logger.Logger) *FinalResultHandler {
	return &FinalResultHandler{
		ctx:       ctx,
		assembler: NewAssembler(ctx),
		lggr:      lggr.Named("finalizer"),
	}
}

// Finalize writes the outcome of op into exec. It must be called once, after every dispatch
// callback has completed; a second call returns ErrAlreadyFinalized.
//
// Failures are picked in priority order and the first one found wins:
//  1. the coordinator's own failure on a domain operation,
//  2. a failure an upstream stage put on exec and has not reported yet,
//  3. failures reported by hosts,
//  4. every server group rolled back.
//
// When server results were recorded the host scan is skipped: hosts only forward server
// responses once their own part succeeded. On failure the result body is cleared.
func (h *FinalResultHandler) Finalize(exec *ExecutionContext, op operation.Descriptor) error {
	if exec == nil {
		return ErrNilExecutionContext
	}
	if err := h.ctx.markFinalized(); err != nil {
		return err
	}

	isDomain := IsDomainOperation(op)
	ok := h.collectDomainFailure(exec, isDomain) && h.collectContextFailure(exec, isDomain)
	if ok {
		exec.SetResult(h.assembler.Assemble(op))

		if h.ctx.HasServerResults() {
			ok = h.populateServerGroupResults(exec)
		} else {
			ok = h.collectHostFailures(exec, isDomain)
			if ok {
				exec.ensureServerGroups()
			}
		}
	}

	if !ok || exec.HasFailureDescription() {
		exec.ClearResult()
	}

	h.lggr.Infow("Domain operation finalized",
		"invocation", h.ctx.ID(),
		"operation", op.Name,
		"address", op.Address.String(),
		"outcome", exec.Outcome(),
	)

	return nil
}

// FinalizeNode decodes the wire form of the operation and finalizes it. A request without an
// address is rejected before the context is touched.
func (h *FinalResultHandler) FinalizeNode(exec *ExecutionContext, raw value.Node) error {
	op, err := operation.FromNode(raw)
	if err != nil {
		return fmt.Errorf("finalize operation: %w", err)
	}

	return h.Finalize(exec, op)
}

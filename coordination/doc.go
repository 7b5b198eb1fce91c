/*
Package coordination assembles the final response of an operation that the domain coordinator
fanned out to its hosts and servers.

The dispatch layer records every partial result in a DomainOperationContext while the fan-out
is running. Once all callbacks have completed, failed or timed out, it calls
FinalResultHandler.Finalize exactly once. Finalize

  - classifies the operation's target (ResolveTarget),
  - decides whether the operation failed, picking one failure description by priority
    (domain failure, context failure, host failures, server group rollback),
  - and otherwise builds the response body with an Assembler, mirroring the composite step
    structure of the request.

The outcome is written to the caller's ExecutionContext: either a result body or a failure
description, never both. Hosts and servers are always visited in name order so identical
contexts produce identical responses regardless of the order in which results arrived.
*/
package coordination

/*
Package operation describes the administrative operations a domain coordinator dispatches to
the hosts and servers it manages.

An operation is an Address plus an operation name. A composite operation carries an ordered
list of child operations ("steps") that are executed and reported as a unit; each step is
identified in responses by its 1-based label ("step-1", "step-2", ...).

Descriptors are usually decoded from their wire form:

	op, err := operation.FromNode(request)
	if errors.Is(err, operation.ErrMissingAddress) {
		// the request is malformed, reject it before dispatch
	}

The reserved wire strings used in requests and responses are declared in this package so that
every component agrees on them.
*/
package operation

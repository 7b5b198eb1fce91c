/*
Package dispatch fans a management operation out across a domain and hands the collected
responses to the final result handler.

# Dispatcher

The Dispatcher runs an operation on the coordinating host first, then on every host the
operation's address reaches:
  - executes hosts concurrently, up to a configured limit
  - retries failed attempts with exponential backoff, see RetryPolicy
  - records a failure stand-in for hosts that never answer
  - skips hosts whose management version is below the configured minimum
  - finalizes the result once every host has answered or given up

# Reporter

Every host execution produces a Report holding the raw host response, the attempts made and
the final error. Reports go to a Reporter; MemoryReporter keeps them in memory and
RecentReporter scopes them to one invocation.

# Basic Usage

	client, _ := dispatch.NewStaticClient(topology)
	d := dispatch.NewDispatcher("master", client, lggr,
		dispatch.WithConfig(cfg),
		dispatch.WithHistory(store),
	)
	res, err := d.Dispatch(ctx, op)
	fmt.Println(res.Execution.Response())
*/
package dispatch

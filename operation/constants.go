package operation

// Reserved wire strings. They must match exactly for compatibility with hosts and clients.
const (
	Composite                = "composite"
	Steps                    = "steps"
	Host                     = "host"
	Server                   = "server"
	ServerGroup              = "server-group"
	ServerGroups             = "server-groups"
	Outcome                  = "outcome"
	Success                  = "success"
	Failed                   = "failed"
	Result                   = "result"
	FailureDescription       = "failure-description"
	DomainFailureDescription = "domain-failure-description"
	DomainResults            = "domain-results"
	HostFailureDescriptions  = "host-failure-descriptions"
	Op                       = "op"
	OpAddr                   = "op-addr"
	Response                 = "response"
)

// Wildcard is the address segment value that matches every current target at its position.
const Wildcard = "*"

// Standard failure texts shared by the coordinator and the hosts.
const (
	// UnexplainedFailure stands in for a failure reported without a description.
	UnexplainedFailure = "Unexplained failure"
	// CompositeRolledBack is the description a server reports for a composite operation it
	// rolled back only because the domain-wide rollout was rolled back.
	CompositeRolledBack = "Composite operation was rolled back"
	// FailedOrRolledBack is reported when every server group rolled back.
	FailedOrRolledBack = "Operation failed or was rolled back on all servers."
	// FailedOrRolledBackWithCause keys the per-server failure report when every server group
	// rolled back.
	FailedOrRolledBackWithCause = "Operation failed or was rolled back on all servers. Server failures:"
)

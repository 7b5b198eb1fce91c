package coordination

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smartcontractkit/domain-coordinator/operation"
)

func Test_ResolveTarget(t *testing.T) {
	t.Parallel()

	steps := []operation.Descriptor{
		operation.New(operation.Address{}, "read-resource"),
		operation.New(operation.Address{}, "write-attribute"),
	}

	tests := []struct {
		name       string
		give       operation.Descriptor
		wantScope  Scope
		wantHost   string
		wantServer string
		wantLeaf   bool
		wantSteps  int
	}{
		{
			name:      "root leaf",
			give:      operation.New(operation.Address{}, "read-resource"),
			wantScope: ScopeDomain,
			wantHost:  "master",
			wantLeaf:  true,
		},
		{
			name:      "root composite",
			give:      operation.NewComposite(operation.Address{}, steps...),
			wantScope: ScopeDomain,
			wantHost:  "master",
			wantSteps: 2,
		},
		{
			name:      "composite with no steps keeps its shape",
			give:      operation.NewComposite(operation.Address{}),
			wantScope: ScopeDomain,
			wantHost:  "master",
		},
		{
			name:      "wildcard host forces a leaf",
			give:      operation.NewComposite(operation.NewAddress(operation.Host, operation.Wildcard), steps...),
			wantScope: ScopeAllHosts,
			wantHost:  operation.Wildcard,
			wantLeaf:  true,
		},
		{
			name:      "single host composite",
			give:      operation.NewComposite(operation.NewAddress(operation.Host, "slave"), steps...),
			wantScope: ScopeSingleHost,
			wantHost:  "slave",
			wantSteps: 2,
		},
		{
			name:      "single host below host",
			give:      operation.New(operation.NewAddress(operation.Host, "slave", "subsystem", "logging"), "add"),
			wantScope: ScopeSingleHost,
			wantHost:  "slave",
			wantLeaf:  true,
		},
		{
			name:       "single server composite",
			give:       operation.NewComposite(operation.NewAddress(operation.Host, "slave", operation.Server, "s1"), steps...),
			wantScope:  ScopeSingleHostSingleServer,
			wantHost:   "slave",
			wantServer: "s1",
			wantSteps:  2,
		},
		{
			name: "composite below a server is a leaf",
			give: operation.NewComposite(
				operation.NewAddress(operation.Host, "slave", operation.Server, "s1", "subsystem", "logging"), steps...),
			wantScope:  ScopeSingleHostSingleServer,
			wantHost:   "slave",
			wantServer: "s1",
			wantLeaf:   true,
		},
		{
			name:       "wildcard server forces a leaf",
			give:       operation.NewComposite(operation.NewAddress(operation.Host, "slave", operation.Server, operation.Wildcard), steps...),
			wantScope:  ScopeSingleHostAllServers,
			wantHost:   "slave",
			wantServer: operation.Wildcard,
			wantLeaf:   true,
		},
		{
			name:      "profile address is a domain leaf",
			give:      operation.NewComposite(operation.NewAddress("profile", "default"), steps...),
			wantScope: ScopeDomain,
			wantHost:  "master",
			wantLeaf:  true,
		},
		{
			name:      "server group address is a domain leaf",
			give:      operation.New(operation.NewAddress(operation.ServerGroup, "main"), "deploy"),
			wantScope: ScopeDomain,
			wantHost:  "master",
			wantLeaf:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ResolveTarget(tt.give, "master")

			assert.Equal(t, tt.wantScope, got.Scope, "scope %s", got.Scope)
			assert.Equal(t, tt.wantHost, got.Host)
			assert.Equal(t, tt.wantServer, got.Server)
			assert.Equal(t, tt.wantLeaf, got.IsLeaf())
			assert.Len(t, got.Steps(), tt.wantSteps)
		})
	}
}

func Test_IsDomainOperation(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDomainOperation(operation.New(operation.Address{}, "read-resource")))
	assert.True(t, IsDomainOperation(operation.New(operation.NewAddress("profile", "default"), "add")))
	assert.False(t, IsDomainOperation(operation.New(operation.NewAddress(operation.Host, "slave"), "add")))
	assert.False(t, IsDomainOperation(operation.New(operation.NewAddress(operation.Host, operation.Wildcard), "add")))
}

func Test_Scope_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "domain", ScopeDomain.String())
	assert.Equal(t, "all-hosts", ScopeAllHosts.String())
	assert.Equal(t, "single-host-all-servers", ScopeSingleHostAllServers.String())
	assert.Equal(t, "unknown", Scope(42).String())
}

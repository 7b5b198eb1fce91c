package coordination

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/domain-coordinator/operation"
	"github.com/smartcontractkit/domain-coordinator/pkg/logger"
	"github.com/smartcontractkit/domain-coordinator/value"
)

func Test_Assembler_Assemble(t *testing.T) {
	t.Parallel()

	hostOp := func(addr operation.Address) operation.Descriptor {
		return operation.New(addr, "read-attribute")
	}

	tests := []struct {
		name  string
		setup func(c *DomainOperationContext)
		give  operation.Descriptor
		want  string
	}{
		{
			name: "domain leaf reads the coordinator result",
			setup: func(c *DomainOperationContext) {
				c.SetCoordinatorResult(hostEnvelope(value.String("on")))
			},
			give: hostOp(operation.Address{}),
			want: `"on"`,
		},
		{
			name: "plain leaf object is not given an outcome",
			setup: func(c *DomainOperationContext) {
				c.SetCoordinatorResult(hostEnvelope(value.Object(value.Prop("name", value.String("x")))))
			},
			give: hostOp(operation.Address{}),
			want: `{"name":"x"}`,
		},
		{
			name: "leaf with an undefined outcome gets one",
			setup: func(c *DomainOperationContext) {
				c.SetCoordinatorResult(hostEnvelope(value.Object(
					value.Prop(operation.Outcome, value.Undefined()),
					value.Prop(operation.Result, value.Int(1)),
				)))
			},
			give: hostOp(operation.Address{}),
			want: `{"outcome":"success","result":1}`,
		},
		{
			name: "domain composite mirrors the steps",
			setup: func(c *DomainOperationContext) {
				c.SetCoordinatorResult(hostEnvelope(value.Object(
					value.Prop("step-1", successNode(value.Int(1))),
					value.Prop("step-2", value.Object(
						value.Prop("step-1", value.Object(value.Prop(operation.Result, value.Int(21)))),
						value.Prop("step-2", value.Object(value.Prop(operation.FailureDescription, value.String("boom")))),
					)),
				)))
			},
			give: operation.NewComposite(operation.Address{},
				hostOp(operation.NewAddress("profile", "default")),
				operation.NewComposite(operation.Address{},
					hostOp(operation.Address{}),
					hostOp(operation.Address{}),
				),
			),
			want: `{"step-1":{"outcome":"success","result":1},` +
				`"step-2":{"step-1":{"result":21,"outcome":"success"},` +
				`"step-2":{"failure-description":"boom","outcome":"failed"}}}`,
		},
		{
			name: "composite step missing from the response is undefined",
			setup: func(c *DomainOperationContext) {
				c.SetCoordinatorResult(hostEnvelope(value.Object(
					value.Prop("step-1", successNode(value.Int(1))),
				)))
			},
			give: operation.NewComposite(operation.Address{}, hostOp(operation.Address{}), hostOp(operation.Address{})),
			want: `{"step-1":{"outcome":"success","result":1},"step-2":null}`,
		},
		{
			name: "composite without steps is undefined",
			setup: func(c *DomainOperationContext) {
				c.SetCoordinatorResult(hostEnvelope(value.Object()))
			},
			give: operation.NewComposite(operation.Address{}),
			want: `null`,
		},
		{
			name: "nested composite without steps is undefined",
			setup: func(c *DomainOperationContext) {
				c.SetCoordinatorResult(hostEnvelope(value.Object(
					value.Prop("step-1", successNode(value.Int(1))),
				)))
			},
			give: operation.NewComposite(operation.Address{},
				hostOp(operation.Address{}),
				operation.NewComposite(operation.Address{}),
			),
			want: `{"step-1":{"outcome":"success","result":1},"step-2":null}`,
		},
		{
			name: "single host reads the host result",
			setup: func(c *DomainOperationContext) {
				c.SetCoordinatorResult(hostEnvelope(value.String("master")))
				c.AddHostResult("slave", hostEnvelope(value.String("slave")))
			},
			give: hostOp(operation.NewAddress(operation.Host, "slave")),
			want: `"slave"`,
		},
		{
			name: "single host that is the coordinator reads the coordinator result",
			setup: func(c *DomainOperationContext) {
				c.SetCoordinatorResult(hostEnvelope(value.String("master")))
				c.AddHostResult("slave", hostEnvelope(value.String("slave")))
			},
			give: hostOp(operation.NewAddress(operation.Host, "master")),
			want: `"master"`,
		},
		{
			name:  "single host without a response is undefined",
			setup: func(c *DomainOperationContext) {},
			give:  hostOp(operation.NewAddress(operation.Host, "slave")),
			want:  `null`,
		},
		{
			name: "host response without domain results is undefined",
			setup: func(c *DomainOperationContext) {
				c.AddHostResult("slave", successNode(value.Object(value.Prop("other", value.Int(1)))))
			},
			give: hostOp(operation.NewAddress(operation.Host, "slave")),
			want: `null`,
		},
		{
			name: "all hosts in name order skipping silent hosts",
			setup: func(c *DomainOperationContext) {
				c.RegisterHost("slave-b", "slave-a", "master")
				c.AddHostResult("slave-b", hostEnvelope(value.String("from slave-b")))
				c.SetCoordinatorResult(hostEnvelope(value.String("from master")))
			},
			give: hostOp(operation.NewAddress(operation.Host, operation.Wildcard)),
			want: `["from master","from slave-b"]`,
		},
		{
			name: "all hosts includes the coordinator without registration",
			setup: func(c *DomainOperationContext) {
				c.AddHostResult("slave-b", hostEnvelope(value.String("from slave-b")))
				c.SetCoordinatorResult(hostEnvelope(value.String("from master")))
			},
			give: hostOp(operation.NewAddress(operation.Host, operation.Wildcard)),
			want: `["from master","from slave-b"]`,
		},
		{
			name:  "all hosts with no responses is an empty list",
			setup: func(c *DomainOperationContext) { c.RegisterHost("slave-a") },
			give:  hostOp(operation.NewAddress(operation.Host, operation.Wildcard)),
			want:  `[]`,
		},
		{
			name: "single server leaf is the full server response",
			setup: func(c *DomainOperationContext) {
				c.AddServerResult(serverID("slave", "main", "s1"), successNode(value.String("up")))
			},
			give: hostOp(operation.NewAddress(operation.Host, "slave", operation.Server, "s1")),
			want: `{"outcome":"success","result":"up"}`,
		},
		{
			name: "single server composite descends the server result",
			setup: func(c *DomainOperationContext) {
				c.AddServerResult(serverID("slave", "main", "s1"), value.Object(
					value.Prop(operation.Outcome, value.String(operation.Success)),
					value.Prop(operation.Result, value.Object(
						value.Prop("step-1", value.Object(value.Prop(operation.Result, value.Int(1)))),
					)),
				))
			},
			give: operation.NewComposite(operation.NewAddress(operation.Host, "slave", operation.Server, "s1"),
				hostOp(operation.Address{}),
				hostOp(operation.Address{}),
			),
			want: `{"step-1":{"result":1,"outcome":"success"},"step-2":null}`,
		},
		{
			name:  "unknown server is undefined",
			setup: func(c *DomainOperationContext) {},
			give:  hostOp(operation.NewAddress(operation.Host, "slave", operation.Server, "s1")),
			want:  `null`,
		},
		{
			name: "all servers of a host read the host envelope",
			setup: func(c *DomainOperationContext) {
				c.AddHostResult("slave", hostEnvelope(value.List(value.String("s1"), value.String("s2"))))
			},
			give: hostOp(operation.NewAddress(operation.Host, "slave", operation.Server, operation.Wildcard)),
			want: `["s1","s2"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewDomainOperationContext("master")
			tt.setup(c)

			got := NewAssembler(c).Assemble(tt.give)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func Test_Assembler_Idempotent(t *testing.T) {
	t.Parallel()

	c := NewDomainOperationContext("master")
	c.RegisterHost("master", "slave-a", "slave-b")
	c.SetCoordinatorResult(hostEnvelope(value.Object(value.Prop("step-1", successNode(value.Int(1))))))
	c.AddHostResult("slave-a", hostEnvelope(value.Int(2)))
	op := operation.New(operation.NewAddress(operation.Host, operation.Wildcard), "read-resource")

	a := NewAssembler(c)
	first, err := a.Assemble(op).MarshalJSON()
	require.NoError(t, err)
	second, err := a.Assemble(op).MarshalJSON()
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func Test_Assembler_DeterministicUnderPermutation(t *testing.T) {
	t.Parallel()

	hosts := []string{"slave-c", "master", "slave-a", "slave-b"}
	servers := []ServerIdentity{
		serverID("slave-b", "main", "s2"),
		serverID("slave-a", "other", "s1"),
		serverID("slave-a", "main", "s1-bis"),
		serverID("slave-b", "main", "s1"),
	}

	build := func(hostOrder []int, serverOrder []int) string {
		c := NewDomainOperationContext("master")
		c.SetCoordinatorResult(hostEnvelope(value.String("master")))
		for _, i := range hostOrder {
			if hosts[i] != "master" {
				c.AddHostResult(hosts[i], hostEnvelope(value.String(hosts[i])))
			}
			c.RegisterHost(hosts[i])
		}
		for _, i := range serverOrder {
			c.AddServerResult(servers[i], successNode(value.String(servers[i].String())))
		}

		exec := NewExecutionContext()
		op := operation.New(operation.NewAddress(operation.Host, operation.Wildcard), "read-resource")
		require.NoError(t, NewFinalResultHandler(c, logger.Nop()).Finalize(exec, op))

		b, err := exec.Response().MarshalJSON()
		require.NoError(t, err)

		return string(b)
	}

	want := build([]int{0, 1, 2, 3}, []int{0, 1, 2, 3})
	for _, perm := range [][2][]int{
		{{3, 2, 1, 0}, {3, 2, 1, 0}},
		{{1, 3, 0, 2}, {2, 0, 3, 1}},
		{{2, 0, 3, 1}, {1, 3, 0, 2}},
	} {
		got := build(perm[0], perm[1])
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("response differs for insertion order %v (-want +got):\n%s", perm, diff)
		}
	}
}

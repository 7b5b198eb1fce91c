package history

import (
	"testing"
	"time"

	"github.com/rubenv/pgtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/domain-coordinator/coordination"
	"github.com/smartcontractkit/domain-coordinator/operation"
	"github.com/smartcontractkit/domain-coordinator/value"
)

// fakeClock returns a clock advancing one second on every reading.
func fakeClock() func() time.Time {
	now := time.UnixMilli(1_700_000_000_000)

	return func() time.Time {
		now = now.Add(time.Second)

		return now
	}
}

func openRamStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.Context(), "ramsql", t.Name(), WithClock(fakeClock()))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, s.Close())
	})

	return s
}

func successExec(result value.Node) *coordination.ExecutionContext {
	exec := coordination.NewExecutionContext()
	exec.SetResult(result)

	return exec
}

func failedExec(desc string) *coordination.ExecutionContext {
	exec := coordination.NewExecutionContext()
	exec.SetFailureDescription(value.String(desc))

	return exec
}

func Test_Store_RecordAndGet(t *testing.T) {
	t.Parallel()

	s := openRamStore(t)
	op := operation.New(operation.NewAddress(operation.Host, "slave-a"), "read-attribute")

	require.NoError(t, s.Record(t.Context(), "inv-1", op, successExec(value.Object(
		value.Prop("b", value.Int(2)),
		value.Prop("a", value.Int(1)),
	))))

	got, err := s.Get(t.Context(), "inv-1")
	require.NoError(t, err)
	assert.Equal(t, "inv-1", got.InvocationID)
	assert.Equal(t, "read-attribute", got.Operation)
	assert.Equal(t, "/host=slave-a", got.Address)
	assert.Equal(t, operation.Success, got.Outcome)
	assert.Equal(t, `{"outcome":"success","result":{"b":2,"a":1}}`, got.Response.String())
	assert.Equal(t, time.UnixMilli(1_700_000_001_000), got.RecordedAt)

	_, err = s.Get(t.Context(), "inv-2")
	require.ErrorIs(t, err, ErrEntryNotFound)
}

func Test_Store_List(t *testing.T) {
	t.Parallel()

	s := openRamStore(t)
	op := operation.New(operation.Address{}, "write-attribute")
	require.NoError(t, s.Record(t.Context(), "inv-1", op, successExec(value.Int(1))))
	require.NoError(t, s.Record(t.Context(), "inv-2", op, failedExec("boom")))
	require.NoError(t, s.Record(t.Context(), "inv-3", op, successExec(value.Int(3))))

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{name: "all", limit: 0, want: []string{"inv-3", "inv-2", "inv-1"}},
		{name: "limited", limit: 2, want: []string{"inv-3", "inv-2"}},
		{name: "limit above count", limit: 10, want: []string{"inv-3", "inv-2", "inv-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := s.List(t.Context(), tt.limit)
			require.NoError(t, err)

			ids := make([]string, 0, len(entries))
			for _, e := range entries {
				ids = append(ids, e.InvocationID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	entries, err := s.List(t.Context(), 0)
	require.NoError(t, err)
	assert.Equal(t, operation.Failed, entries[1].Outcome)
	assert.Equal(t, `{"outcome":"failed","failure-description":"boom"}`, entries[1].Response.String())
}

func Test_Store_SeparateDatabases(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	a, err := Open(ctx, "ramsql", t.Name()+"-a")
	require.NoError(t, err)
	defer a.Close()
	b, err := Open(ctx, "ramsql", t.Name()+"-b")
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Record(ctx, "inv-1", operation.New(operation.Address{}, "x"), successExec(value.Int(1))))

	entries, err := b.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func Test_Open_UnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := Open(t.Context(), "sqlite", "file.db")
	require.ErrorContains(t, err, "failed to open sqlite history store")
}

// Test_Store_Postgres runs against a throwaway postgres when the binaries are installed.
func Test_Store_Postgres(t *testing.T) {
	t.Parallel()

	pg, err := pgtest.Start()
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	t.Cleanup(func() {
		assert.NoError(t, pg.Stop())
	})

	s, err := New(t.Context(), pg.DB, WithClock(fakeClock()))
	require.NoError(t, err)

	op := operation.New(operation.NewAddress(operation.Host, operation.Wildcard), "read-resource")
	require.NoError(t, s.Record(t.Context(), "inv-1", op, successExec(value.List(value.String("a")))))
	require.NoError(t, s.Record(t.Context(), "inv-2", op, failedExec("boom")))

	entries, err := s.List(t.Context(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "inv-2", entries[0].InvocationID)
	assert.Equal(t, "/host=*", entries[0].Address)

	var count int
	require.NoError(t, pg.DB.QueryRowContext(t.Context(), "SELECT count(*) FROM domain_outcomes").Scan(&count))
	assert.Equal(t, 2, count)
}

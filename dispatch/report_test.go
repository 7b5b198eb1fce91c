package dispatch

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/domain-coordinator/value"
)

func Test_NewReport(t *testing.T) {
	t.Parallel()

	ok := NewReport("inv-1", "slave-a", domainOp, envelope(value.Int(1)), 1, nil)
	assert.NotEmpty(t, ok.ID)
	assert.Equal(t, "write-attribute", ok.Operation)
	assert.Equal(t, "/", ok.Address)
	assert.NotNil(t, ok.Timestamp)
	assert.Nil(t, ok.Err)

	bad := NewReport("inv-1", "slave-a", domainOp, value.Undefined(), 3, errors.New("timeout"))
	require.NotNil(t, bad.Err)
	assert.Equal(t, "timeout", bad.Err.Error())
	assert.NotEqual(t, ok.ID, bad.ID)

	b, err := json.Marshal(bad)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"response":null`)
	assert.Contains(t, string(b), `"error":{"message":"timeout"}`)
}

func Test_MemoryReporter(t *testing.T) {
	t.Parallel()

	existing := NewReport("inv-0", "master", domainOp, value.Undefined(), 1, nil)
	reporter := NewMemoryReporter(WithReports([]Report{existing}))

	added := NewReport("inv-1", "master", domainOp, value.Undefined(), 1, nil)
	require.NoError(t, reporter.AddReport(added))

	reports, err := reporter.GetReports()
	require.NoError(t, err)
	assert.Len(t, reports, 2)

	got, err := reporter.GetReport(added.ID)
	require.NoError(t, err)
	assert.Equal(t, "inv-1", got.Invocation)

	_, err = reporter.GetReport("nope")
	require.ErrorIs(t, err, ErrReportNotFound)
}

func Test_RecentReporter(t *testing.T) {
	t.Parallel()

	base := NewMemoryReporter(WithReports([]Report{
		NewReport("inv-0", "master", domainOp, value.Undefined(), 1, nil),
	}))
	recent := NewRecentMemoryReporter(base)
	assert.Empty(t, recent.GetRecentReports())

	require.NoError(t, recent.AddReport(NewReport("inv-1", "master", domainOp, value.Undefined(), 1, nil)))

	assert.Len(t, recent.GetRecentReports(), 1)
	all, err := base.GetReports()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

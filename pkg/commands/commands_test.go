package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/domain-coordinator/config"
	"github.com/smartcontractkit/domain-coordinator/dispatch"
	"github.com/smartcontractkit/domain-coordinator/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Coordinator: config.CoordinatorConfig{LocalHostName: "master"},
		Dispatch: config.DispatchConfig{
			MaxAttempts:    2,
			Concurrency:    4,
			MinHostVersion: "16.0.0",
		},
		History: config.HistoryConfig{Driver: config.DriverRamSQL, DSN: "commands-test"},
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	lggr := logger.Nop()
	cmds := New(lggr, testConfig())

	require.NotNil(t, cmds)
	assert.Equal(t, lggr, cmds.lggr)
	assert.Equal(t, "master", cmds.cfg.LocalHost)
	assert.Equal(t, 4, cmds.cfg.Dispatch.Concurrency)
	assert.Equal(t, uint(2), cmds.cfg.Dispatch.Retry.MaxAttempts)
	require.NotNil(t, cmds.cfg.Dispatch.MinHostVersion)
	assert.Equal(t, "16.0.0", cmds.cfg.Dispatch.MinHostVersion.String())
	assert.Equal(t, "commands-test", cmds.cfg.History.DSN)
}

func TestNew_InvalidDispatchConfigUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Dispatch.MinHostVersion = "sixteen"

	cmds := New(logger.Nop(), cfg)
	assert.Equal(t, dispatch.DefaultConfig(), cmds.cfg.Dispatch)
}

func TestCommands_Commands(t *testing.T) {
	t.Parallel()

	cmds := New(logger.Nop(), testConfig())

	tests := []struct {
		name    string
		give    func() string
		wantUse string
	}{
		{name: "resolve", give: func() string { return cmds.Resolve().Use }, wantUse: "resolve"},
		{name: "finalize", give: func() string { return cmds.Finalize().Use }, wantUse: "finalize"},
		{name: "run", give: func() string { return cmds.Run().Use }, wantUse: "run"},
		{name: "history", give: func() string { return cmds.History().Use }, wantUse: "history"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.wantUse, tt.give())
		})
	}

	subs := cmds.History().Commands()
	require.Len(t, subs, 1)
	assert.Equal(t, "list", subs[0].Use)
}

package reload_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidbyt.dev/transit/reload"
)

func TestLedgerLastReloadZeroWhenEmpty(t *testing.T) {
	l, err := reload.NewLedger(":memory:")
	require.NoError(t, err)
	defer l.Close()

	ts, err := l.LastReload()
	require.NoError(t, err)
	assert.True(t, ts.IsZero())
}

func TestLedgerRecordReloadThenLastReload(t *testing.T) {
	l, err := reload.NewLedger(":memory:")
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.RecordReload(42))

	ts, err := l.LastReload()
	require.NoError(t, err)
	assert.False(t, ts.IsZero())
}

func TestLedgerLastReloadReturnsMostRecent(t *testing.T) {
	l, err := reload.NewLedger(":memory:")
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.RecordReload(1))
	require.NoError(t, l.RecordReload(2))

	ts, err := l.LastReload()
	require.NoError(t, err)
	assert.False(t, ts.IsZero())
}

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Luismorlan/pow_ledger/config"
	"github.com/Luismorlan/pow_ledger/ledger"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestRunner(t *testing.T) (*runner, *bytes.Buffer) {
	pterm.DisableColor()
	out := &bytes.Buffer{}
	l := ledger.NewLedger(config.DefaultAppConfig(), zaptest.NewLogger(t).Sugar())
	return &runner{ledger: l, out: out, showDepth: 10}, out
}

func TestRunScript(t *testing.T) {
	r, out := newTestRunner(t)
	graphPath := filepath.Join(t.TempDir(), "chain.dot")

	err := r.runScript(context.Background(), []string{
		"transfer 0 Alice 1.0",
		"mine",
		"transfer Alice Bob 0.5",
		"show 1",
		"verify",
		"graph " + graphPath,
		"quit",
		"mine",
	})
	require.NoError(t, err)

	// The command after quit never runs.
	assert.Equal(t, 2, r.ledger.Height())
	pending, err := r.ledger.Pending()
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	s := out.String()
	assert.Contains(t, s, "Transfer will be added to block 1")
	assert.Contains(t, s, "New block forged:")
	assert.Contains(t, s, "Transfer will be added to block 2")
	assert.Contains(t, s, "Chain of 2 blocks is valid")
	_, err = os.Stat(graphPath)
	assert.NoError(t, err)
}

func TestRunScriptStopsOnInvalidLine(t *testing.T) {
	r, _ := newTestRunner(t)

	err := r.runScript(context.Background(), []string{"transfer 0 Alice 1.0", "transfer Alice"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script line 2")
}

func TestRunInteractive(t *testing.T) {
	r, out := newTestRunner(t)

	in := strings.NewReader("transfer 0 Alice 2\nbogus\nshow\n")
	r.runInteractive(context.Background(), in)

	s := out.String()
	assert.Contains(t, s, "Transfer will be added to block 1")
	assert.Contains(t, s, "invalid command")
	assert.Equal(t, 1, r.ledger.Height())
}

func TestMineInterruptedByContext(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.runScript(ctx, []string{"mine"})
	assert.Error(t, err)
	assert.Equal(t, 1, r.ledger.Height())
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger("debug")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = newLogger("loud")
	assert.Error(t, err)
}

func TestMineAgainAfterInterruption(t *testing.T) {
	r, out := newTestRunner(t)
	mines := 0
	r.interrupt = func(parent context.Context) (context.Context, context.CancelFunc) {
		mines++
		ctx, cancel := context.WithCancel(parent)
		if mines == 1 {
			// ctrl-c during the first mine only.
			cancel()
		}
		return ctx, cancel
	}

	in := strings.NewReader("mine\ntransfer a b 1\nmine\nmine\n")
	r.runInteractive(context.Background(), in)

	assert.Equal(t, 3, mines)
	assert.Equal(t, 3, r.ledger.Height())
	s := out.String()
	assert.Equal(t, 1, strings.Count(s, "context canceled"))
	assert.Equal(t, 2, strings.Count(s, "New block forged:"))

	chain, err := r.ledger.Chain()
	require.NoError(t, err)
	assert.Len(t, chain[1].Transactions, 1)
}

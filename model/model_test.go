package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBlockChain(t *testing.T) {
	bc := NewBlockChain(1234)

	require.Equal(t, 1, bc.Len())
	genesis := bc.Tail()
	require.NotNil(t, genesis)
	assert.True(t, genesis.IsGenesis())
	assert.Equal(t, uint64(0), genesis.Index)
	assert.Equal(t, int64(1234), genesis.Timestamp)
	assert.Equal(t, GENESIS_PROOF, genesis.Proof)
	assert.Equal(t, "0", genesis.PrevHash)
	assert.Empty(t, genesis.Transactions)
}

func TestTailOfEmptyChain(t *testing.T) {
	bc := Blockchain{}
	assert.Nil(t, bc.Tail())
}

func TestTransactionPoolDrain(t *testing.T) {
	p := NewTransactionPool()
	p.Add(Transaction{Sender: "0", Recipient: "Alice", Amount: decimal.NewFromInt(1)})
	p.Add(Transaction{Sender: "Alice", Recipient: "Bob", Amount: decimal.RequireFromString("0.5")})
	assert.Equal(t, 2, p.Len())

	txs := p.Drain()
	require.Len(t, txs, 2)
	assert.Equal(t, "Alice", txs[0].Recipient)
	assert.Equal(t, "Bob", txs[1].Recipient)
	assert.Equal(t, 0, p.Len())

	// Adding after a drain must not touch the drained slice.
	p.Add(Transaction{Sender: "Bob", Recipient: "Carol", Amount: decimal.NewFromInt(2)})
	assert.Equal(t, "Bob", txs[1].Recipient)
	assert.Equal(t, 1, p.Len())
}

package model

import "github.com/shopspring/decimal"

// Transaction moves Amount from Sender to Recipient. It is never modified after creation.
type Transaction struct {
	// Identifier of the party sending the value.
	Sender string
	// Identifier of the party receiving the value.
	Recipient string
	// How much value to transfer. Decimal keeps the hashed text form exact.
	Amount decimal.Decimal
}

type TransactionPool struct {
	// Pending transactions that haven't been committed into a block, in arrival order.
	TxPool []Transaction
}

// NewTransactionPool creates a new transaction pool with no transaction at all.
func NewTransactionPool() TransactionPool {
	return TransactionPool{
		TxPool: []Transaction{},
	}
}

// Add appends tx to the end of the pool.
func (p *TransactionPool) Add(tx Transaction) {
	p.TxPool = append(p.TxPool, tx)
}

func (p *TransactionPool) Len() int {
	return len(p.TxPool)
}

// Drain hands over every pending transaction and leaves the pool empty.
func (p *TransactionPool) Drain() []Transaction {
	txs := p.TxPool
	p.TxPool = []Transaction{}
	return txs
}

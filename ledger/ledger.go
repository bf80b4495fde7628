package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/Luismorlan/pow_ledger/config"
	"github.com/Luismorlan/pow_ledger/model"
	"github.com/Luismorlan/pow_ledger/utils"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// The chain has no block at all. A ledger built by NewLedger never gets here.
	ErrEmptyChain = errors.New("chain is empty")
	// The proof given to CommitBlock isn't valid against the latest block's proof.
	ErrInvalidProof = errors.New("invalid proof")
)

// Clock is the time source for block timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

type Option func(*Ledger)

// WithClock replaces the wall clock used for block timestamps.
func WithClock(c Clock) Option {
	return func(l *Ledger) {
		l.clock = c
	}
}

// A ledger owns the chain of committed blocks and the pool of pending transactions.
type Ledger struct {
	// The blockchain it needs to maintain.
	blockchain *model.Blockchain
	// Transaction pool it need to maintain. Incoming transactions are appended to this pool.
	txPool *model.TransactionPool
	config config.AppConfig
	clock  Clock
	logger *zap.SugaredLogger
	// A single mutex for changing internal state.
	m sync.RWMutex
	// A unique identifier of this ledger, only used in logs.
	uuid string
}

// Create a brand new ledger, which contains a genesis block in the chain.
func NewLedger(c config.AppConfig, logger *zap.SugaredLogger, opts ...Option) *Ledger {
	l := &Ledger{
		config: c,
		clock:  systemClock{},
		logger: logger,
		uuid:   uuid.NewV4().String(),
	}
	if l.logger == nil {
		l.logger = zap.NewNop().Sugar()
	}
	for _, opt := range opts {
		opt(l)
	}

	bc := model.NewBlockChain(l.clock.Now().Unix())
	pool := model.NewTransactionPool()
	l.blockchain = &bc
	l.txPool = &pool

	l.logger.Infow("Ledger initialized", "ledger", l.uuid, "genesis_proof", model.GENESIS_PROOF)
	return l
}

func (l *Ledger) ID() string {
	return l.uuid
}

// QueueTransfer adds a transaction to the pending pool. It returns the index of the block
// the transaction goes into if the next commit includes it.
func (l *Ledger) QueueTransfer(sender string, recipient string, amount decimal.Decimal) uint64 {
	l.m.Lock()
	defer l.m.Unlock()

	l.txPool.Add(model.Transaction{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
	})
	next := uint64(l.blockchain.Len())
	l.logger.Debugw("Transfer queued", "ledger", l.uuid, "sender", sender, "recipient", recipient,
		"amount", amount.String(), "block", next)
	return next
}

// Return a copy of the last block in the chain.
func (l *Ledger) LatestBlock() (model.Block, error) {
	l.m.RLock()
	defer l.m.RUnlock()

	tail := l.blockchain.Tail()
	if tail == nil {
		return model.Block{}, ErrEmptyChain
	}
	return copyBlock(tail)
}

// SearchProof finds the smallest proof valid against lastProof. It doesn't touch the ledger
// state, so it runs without holding the lock.
func (l *Ledger) SearchProof(ctx context.Context, lastProof uint64) (uint64, error) {
	start := time.Now()
	proof, err := utils.ParallelSearchProof(ctx, lastProof, l.config.MINING_WORKERS, l.config.MAX_PROOF_ATTEMPTS)
	if err != nil {
		return 0, err
	}
	l.logger.Debugw("Proof found", "ledger", l.uuid, "last_proof", lastProof, "proof", proof,
		"elapsed", time.Since(start))
	return proof, nil
}

// CommitBlock appends a new block holding every pending transaction. The pool is emptied.
// The proof must be valid against the latest block's proof, otherwise nothing changes.
func (l *Ledger) CommitBlock(proof uint64) (model.Block, error) {
	l.m.Lock()
	defer l.m.Unlock()

	tail := l.blockchain.Tail()
	if tail == nil {
		return model.Block{}, ErrEmptyChain
	}
	if !utils.IsValidProof(tail.Proof, proof) {
		l.logger.Warnw("Rejected block with invalid proof", "ledger", l.uuid, "last_proof", tail.Proof, "proof", proof)
		return model.Block{}, errors.Wrapf(ErrInvalidProof, "proof %d against last proof %d", proof, tail.Proof)
	}

	block := model.Block{
		Index:        uint64(l.blockchain.Len()),
		Timestamp:    l.clock.Now().Unix(),
		Transactions: l.txPool.Drain(),
		Proof:        proof,
		PrevHash:     utils.HashBlock(tail),
	}
	l.blockchain.Append(block)

	l.logger.Infow("Block committed", "ledger", l.uuid, "index", block.Index, "transactions", len(block.Transactions),
		"proof", block.Proof, "prev_hash", block.PrevHash)
	return copyBlock(&block)
}

// Mine searches a proof over the latest block and commits a block with it. If another caller
// commits in the meantime the proof is stale, and the search starts over on the new tail.
func (l *Ledger) Mine(ctx context.Context) (model.Block, error) {
	for {
		tail, err := l.LatestBlock()
		if err != nil {
			return model.Block{}, err
		}
		proof, err := l.SearchProof(ctx, tail.Proof)
		if err != nil {
			return model.Block{}, errors.Wrapf(err, "mining block %d", tail.Index+1)
		}
		block, err := l.CommitBlock(proof)
		if errors.Is(err, ErrInvalidProof) {
			l.logger.Infow("Tail changed while mining, restarting", "ledger", l.uuid, "index", tail.Index+1)
			continue
		}
		return block, err
	}
}

// Height is the number of blocks in the chain, genesis included.
func (l *Ledger) Height() int {
	l.m.RLock()
	defer l.m.RUnlock()
	return l.blockchain.Len()
}

// Chain returns a copy of every block, from genesis to tail.
func (l *Ledger) Chain() ([]model.Block, error) {
	l.m.RLock()
	defer l.m.RUnlock()

	blocks := make([]model.Block, 0, l.blockchain.Len())
	for i := range l.blockchain.Blocks {
		b, err := copyBlock(&l.blockchain.Blocks[i])
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// Pending returns a copy of the transactions waiting for the next block.
func (l *Ledger) Pending() ([]model.Transaction, error) {
	l.m.RLock()
	defer l.m.RUnlock()

	txs := []model.Transaction{}
	if err := copier.Copy(&txs, l.txPool.TxPool); err != nil {
		return nil, errors.Wrap(err, "copying pending transactions")
	}
	return txs, nil
}

// Validate checks the whole chain: genesis, dense indexes, hash links and proofs.
func (l *Ledger) Validate() error {
	l.m.RLock()
	defer l.m.RUnlock()
	return utils.ValidateChain(l.blockchain.Blocks)
}

// copyBlock returns b with its own transaction slice, so callers can't reach into the chain.
func copyBlock(b *model.Block) (model.Block, error) {
	c := *b
	c.Transactions = []model.Transaction{}
	if err := copier.Copy(&c.Transactions, b.Transactions); err != nil {
		return model.Block{}, errors.Wrapf(err, "copying block %d", b.Index)
	}
	return c, nil
}

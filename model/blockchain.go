package model

const (
	// Proof carried by the genesis block. It is fixed, the genesis block is never mined.
	GENESIS_PROOF uint64 = 100
	// Previous hash sentinel of the genesis block.
	GENESIS_PREV_HASH = "0"
)

type Block struct {
	// Position of this block in the chain, starting from 0.
	Index uint64
	// Creation time in seconds since the unix epoch.
	Timestamp int64
	// Transactions committed in this block, in the order they were queued.
	Transactions []Transaction
	// Proof of work relative to the previous block's proof.
	Proof uint64
	// Hash of the previous block in the hex format.
	PrevHash string
}

// IsGenesis reports whether b is the first block of a chain.
func (b *Block) IsGenesis() bool {
	return b.Index == 0
}

// Blockchain is an append only list of blocks. Blocks[i].Index is always i.
type Blockchain struct {
	Blocks []Block
}

// Create a new blockchain that contains only the genesis block created at timestamp.
func NewBlockChain(timestamp int64) Blockchain {
	genesisBlock := Block{
		Index:        0,
		Timestamp:    timestamp,
		Transactions: []Transaction{},
		Proof:        GENESIS_PROOF,
		PrevHash:     GENESIS_PREV_HASH,
	}
	return Blockchain{
		Blocks: []Block{genesisBlock},
	}
}

func (bc *Blockchain) Len() int {
	return len(bc.Blocks)
}

// Tail returns the last block, or nil when there is no block at all.
func (bc *Blockchain) Tail() *Block {
	if len(bc.Blocks) == 0 {
		return nil
	}
	return &bc.Blocks[len(bc.Blocks)-1]
}

func (bc *Blockchain) Append(b Block) {
	bc.Blocks = append(bc.Blocks, b)
}

package utils

import (
	"bytes"
	"context"
	"math"
	"strings"
	"sync/atomic"

	"github.com/Luismorlan/pow_ledger/model"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// A proof is valid when the hex digest of the guess starts with this prefix, i.e. the
// leading 16 bits are zero. Difficulty is fixed and not configurable.
const PROOF_PREFIX = "0000"

var (
	// Returned by a bounded proof search that used up all its attempts.
	ErrProofNotFound = errors.New("no valid proof found within the attempt budget")
	// Returned by ValidateChain when any link of the chain doesn't hold.
	ErrBrokenChain = errors.New("chain is broken")
)

// GetBlockBytes encodes the block in its canonical form. Field order is
// index, timestamp, transaction count, transactions, proof and previous hash.
// The hash of a block is the hash of these bytes, so the layout must never change.
func GetBlockBytes(block *model.Block) []byte {
	buf := &bytes.Buffer{}

	writeUint(buf, block.Index)
	writeInt(buf, block.Timestamp)

	writeUint(buf, uint64(len(block.Transactions)))
	for i := 0; i < len(block.Transactions); i++ {
		buf.Write(GetTransactionBytes(&block.Transactions[i]))
	}

	writeUint(buf, block.Proof)
	writeString(buf, block.PrevHash)

	return buf.Bytes()
}

// HashBlock returns the lowercase hex SHA256 digest of the block's canonical bytes.
func HashBlock(block *model.Block) string {
	return SHA256Hex(GetBlockBytes(block))
}

// GetProofBytes concatenates both proofs in decimal text without any separator.
func GetProofBytes(lastProof uint64, proof uint64) []byte {
	guess := Uint64ToText(lastProof)
	return append(guess, Uint64ToText(proof)...)
}

// IsValidProof checks whether hash(lastProof, proof) has 4 leading zero hex digits.
func IsValidProof(lastProof uint64, proof uint64) bool {
	return HexHasLeadingZeros(SHA256Hex(GetProofBytes(lastProof, proof)))
}

func HexHasLeadingZeros(digest string) bool {
	return strings.HasPrefix(digest, PROOF_PREFIX)
}

// SearchProof looks for the smallest proof, starting at 0, that is valid against lastProof.
// maxAttempts caps how many candidates are tried, 0 means no cap at all. The search can be
// interrupted at any time through ctx.
func SearchProof(ctx context.Context, lastProof uint64, maxAttempts uint64) (uint64, error) {
	for proof := uint64(0); ; proof++ {
		if maxAttempts > 0 && proof >= maxAttempts {
			return 0, ErrProofNotFound
		}
		select {
		case <-ctx.Done():
			return 0, errors.Wrapf(ctx.Err(), "searching proof after %d attempts", proof)
		default:
		}
		if IsValidProof(lastProof, proof) {
			return proof, nil
		}
		if proof == math.MaxUint64 {
			return 0, ErrProofNotFound
		}
	}
}

// ParallelSearchProof splits the candidates across workers, worker w trying w, w+workers,
// w+2*workers and so on. The result is always the smallest valid proof, the same one
// SearchProof returns, no matter which worker finds a proof first.
func ParallelSearchProof(ctx context.Context, lastProof uint64, workers int, maxAttempts uint64) (uint64, error) {
	if workers <= 1 {
		return SearchProof(ctx, lastProof, maxAttempts)
	}

	var best atomic.Uint64
	best.Store(math.MaxUint64)
	stride := uint64(workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		start := uint64(w)
		g.Go(func() error {
			for proof := start; ; proof += stride {
				if maxAttempts > 0 && proof >= maxAttempts {
					return nil
				}
				// A smaller proof is already known, nothing left to find here.
				if proof >= best.Load() {
					return nil
				}
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				if IsValidProof(lastProof, proof) {
					storeMin(&best, proof)
					return nil
				}
				if proof > math.MaxUint64-stride {
					return nil
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return 0, errors.Wrapf(err, "searching proof with %d workers", workers)
	}
	proof := best.Load()
	if proof == math.MaxUint64 {
		return 0, ErrProofNotFound
	}
	return proof, nil
}

func storeMin(best *atomic.Uint64, proof uint64) {
	for {
		current := best.Load()
		if proof >= current || best.CompareAndSwap(current, proof) {
			return
		}
	}
}

// ValidateChain verifies that:
// 1. The chain starts with the genesis block.
// 2. Every block sits at the index it claims.
// 3. Every block links to the hash of its predecessor.
// 4. Every proof is valid against its predecessor's proof.
func ValidateChain(blocks []model.Block) error {
	if len(blocks) == 0 {
		return errors.Wrap(ErrBrokenChain, "chain has no genesis block")
	}
	genesis := &blocks[0]
	if !genesis.IsGenesis() || genesis.Proof != model.GENESIS_PROOF ||
		genesis.PrevHash != model.GENESIS_PREV_HASH || len(genesis.Transactions) != 0 {
		return errors.Wrap(ErrBrokenChain, "invalid genesis block")
	}

	for i := 1; i < len(blocks); i++ {
		prev := &blocks[i-1]
		b := &blocks[i]
		if b.Index != uint64(i) {
			return errors.Wrapf(ErrBrokenChain, "block at position %d has index %d", i, b.Index)
		}
		if prevHash := HashBlock(prev); b.PrevHash != prevHash {
			return errors.Wrapf(ErrBrokenChain, "block %d links to %s, expected %s", i, b.PrevHash, prevHash)
		}
		if !IsValidProof(prev.Proof, b.Proof) {
			return errors.Wrapf(ErrBrokenChain, "block %d has invalid proof %d", i, b.Proof)
		}
	}
	return nil
}

package visualize

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"strconv"
	"time"

	"github.com/Luismorlan/pow_ledger/model"
	"github.com/Luismorlan/pow_ledger/utils"
	"github.com/bradleyjkemp/memviz"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
)

// We need to re-define the visualize model here because the graph only needs
// short strings, not the full hashes and decimals of the model.
type transfer struct {
	sender    string
	recipient string
	amount    string
}

type block struct {
	index    uint64
	hash     string
	prevHash string
	proof    uint64
	txs      []transfer
	next     *block
}

// The string of a hash is just too long to render, instead we take only first 3 and last 3
// characters and replace the middle part with '...'. E.g. "abcdefghi" will be rendered as "abc...ghi"
func shortenString(s string) string {
	if len(s) < 9 {
		return s
	}
	return fmt.Sprintf("%s...%s", s[0:3], s[len(s)-3:])
}

func formatTimestamp(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}

// lastBlocks returns the last d blocks, or every block when d is 0 or larger than the chain.
func lastBlocks(blocks []model.Block, d int) []model.Block {
	if d <= 0 || d >= len(blocks) {
		return blocks
	}
	return blocks[len(blocks)-d:]
}

// RenderBlock formats a single block with all its transfers in a box.
func RenderBlock(b model.Block) (string, error) {
	data := pterm.TableData{{"Sender", "Recipient", "Amount"}}
	for _, tx := range b.Transactions {
		data = append(data, []string{tx.Sender, tx.Recipient, tx.Amount.String()})
	}
	txTable, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", errors.Wrapf(err, "rendering transfers of block %d", b.Index)
	}

	content := pterm.Sprintfln("Timestamp: %s", formatTimestamp(b.Timestamp)) +
		pterm.Sprintfln("Proof:     %d", b.Proof) +
		pterm.Sprintfln("Prev hash: %s", b.PrevHash) +
		pterm.Sprintfln("Hash:      %s", utils.HashBlock(&b)) +
		txTable
	title := pterm.LightYellow(fmt.Sprintf("|BLOCK %d|", b.Index))
	return pterm.DefaultBox.WithTitle(title).WithTitleTopCenter().Sprint(content), nil
}

// RenderChain formats the last d blocks of the chain as a table, one block per row.
func RenderChain(blocks []model.Block, d int) (string, error) {
	data := pterm.TableData{{"Index", "Timestamp", "Transfers", "Proof", "Prev hash", "Hash"}}
	for _, b := range lastBlocks(blocks, d) {
		data = append(data, []string{
			strconv.FormatUint(b.Index, 10),
			formatTimestamp(b.Timestamp),
			strconv.Itoa(len(b.Transactions)),
			strconv.FormatUint(b.Proof, 10),
			shortenString(b.PrevHash),
			shortenString(utils.HashBlock(&b)),
		})
	}
	s, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		return "", errors.Wrap(err, "rendering chain")
	}
	return s, nil
}

// Build the linked graph model from the oldest of the given blocks.
func constructData(blocks []model.Block) *block {
	var head, prev *block
	for i := range blocks {
		b := &blocks[i]
		n := &block{
			index:    b.Index,
			hash:     shortenString(utils.HashBlock(b)),
			prevHash: shortenString(b.PrevHash),
			proof:    b.Proof,
		}
		for _, tx := range b.Transactions {
			n.txs = append(n.txs, transfer{sender: tx.Sender, recipient: tx.Recipient, amount: tx.Amount.String()})
		}
		if prev == nil {
			head = n
		} else {
			prev.next = n
		}
		prev = n
	}
	return head
}

// WriteGraph writes the last d blocks as a graphviz dot document.
func WriteGraph(w io.Writer, blocks []model.Block, d int) {
	chain := constructData(lastBlocks(blocks, d))
	memviz.Map(w, chain)
}

// SaveGraph writes the dot document of the last d blocks to path. Render it with
// `dot -Tpng <path> -o chain.png`.
func SaveGraph(path string, blocks []model.Block, d int) error {
	buf := &bytes.Buffer{}
	WriteGraph(buf, blocks, d)
	if err := ioutil.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, "writing graph to %s", path)
	}
	return nil
}

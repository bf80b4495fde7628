package commands

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type Operation int

const (
	DEFAULT = iota
	// Queue a transfer into the pending pool.
	TRANSFER
	// Search a proof and commit a block with every pending transfer.
	MINE
	// Show the last blocks of the chain.
	SHOW
	// Write the chain as a graphviz file.
	GRAPH
	// Verify the integrity of the whole chain.
	VERIFY
	// Stop reading commands.
	QUIT
)

// A command contains a operation and many arguments.
type Command struct {
	Op   Operation
	Args []string
}

func (c Command) IsValid() bool {
	switch c.Op {
	case TRANSFER:
		if len(c.Args) != 3 {
			return false
		}
		_, err := decimal.NewFromString(c.Args[2])
		return err == nil
	case MINE, VERIFY, QUIT:
		return len(c.Args) == 0
	case SHOW:
		if len(c.Args) == 0 {
			return true
		}
		if len(c.Args) != 1 {
			return false
		}
		// depth must be a non negative number.
		d, err := strconv.Atoi(c.Args[0])
		return err == nil && d >= 0
	case GRAPH:
		return len(c.Args) == 1
	default:
		return false
	}
}

// From string, create a command. Words are separated by any amount of white space.
func CreateCommand(s string) (Command, error) {
	ss := strings.Fields(s)
	if len(ss) == 0 {
		return Command{}, errors.New("command is empty")
	}
	cmd := Command{}
	switch ss[0] {
	case "transfer":
		cmd.Op = TRANSFER
	case "mine":
		cmd.Op = MINE
	case "show":
		cmd.Op = SHOW
	case "graph":
		cmd.Op = GRAPH
	case "verify":
		cmd.Op = VERIFY
	case "quit", "exit":
		cmd.Op = QUIT
	}
	cmd.Args = ss[1:]
	if !cmd.IsValid() {
		return Command{}, errors.Errorf("invalid command: %q", s)
	}
	return cmd, nil
}

// Amount parses the amount argument of a TRANSFER command.
func (c Command) Amount() (decimal.Decimal, error) {
	if c.Op != TRANSFER {
		return decimal.Decimal{}, errors.New("only transfer commands carry an amount")
	}
	return decimal.NewFromString(c.Args[2])
}

// Depth returns the depth argument of a SHOW command, or def when it has none.
func (c Command) Depth(def int) int {
	if c.Op != SHOW || len(c.Args) == 0 {
		return def
	}
	d, err := strconv.Atoi(c.Args[0])
	if err != nil {
		return def
	}
	return d
}

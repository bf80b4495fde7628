package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Luismorlan/pow_ledger/commands"
	"github.com/Luismorlan/pow_ledger/config"
	"github.com/Luismorlan/pow_ledger/ledger"
	"github.com/Luismorlan/pow_ledger/model"
	"github.com/Luismorlan/pow_ledger/utils"
	"github.com/Luismorlan/pow_ledger/visualize"
	"github.com/ardanlabs/conf"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const prefix = "POW_LEDGER"

func main() {
	if err := run(); err != nil {
		log.Fatalf("main: exited with error: %s", err.Error())
	}
}

func run() error {
	var cfg struct {
		ConfigPath string `conf:"default:ledger/cmd/config.yaml,help:path to the ledger YAML config"`
		ScriptPath string `conf:"help:command script to replay; commands are read from stdin when empty"`
	}
	if err := conf.Parse(os.Args[1:], prefix, &cfg); err != nil {
		if err == conf.ErrHelpWanted {
			usage, err := conf.Usage(prefix, &cfg)
			if err != nil {
				return errors.Wrap(err, "generating config usage")
			}
			fmt.Println(usage)
			return nil
		}
		return errors.Wrap(err, "parsing config")
	}

	appConfig, err := config.ParseAppConfig(cfg.ConfigPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(appConfig.LOG_LEVEL)
	if err != nil {
		return err
	}
	defer logger.Sync()
	sLogger := logger.Sugar()
	sLogger.Infow("Starting ledger", "config", appConfig, "script", cfg.ScriptPath)

	l := ledger.NewLedger(appConfig, sLogger)
	r := &runner{ledger: l, out: os.Stdout, showDepth: appConfig.SHOW_DEPTH}

	if cfg.ScriptPath != "" {
		lines, err := utils.ReadScriptLines(cfg.ScriptPath)
		if err != nil {
			return err
		}
		// Ctrl-c aborts the whole script.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		err = r.runScript(ctx, lines)
		if err != nil {
			return err
		}
	} else {
		// Ctrl-c only interrupts the running mine, the session goes on. Outside of
		// mining the signal keeps its default behavior and ends the process.
		r.interrupt = notifyInterrupt
		r.runInteractive(context.Background(), os.Stdin)
	}

	// Display the entire chain at the end.
	return r.show(-1)
}

func newLogger(level string) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	// this is just for sugar, to display a readable date instead of an epoch time
	zapConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.DateTime)
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "parsing log level")
	}
	zapConfig.Level = lvl
	logger, err := zapConfig.Build()
	if err != nil {
		return nil, errors.Wrap(err, "creating logger")
	}
	return logger, nil
}

func notifyInterrupt(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

type runner struct {
	ledger    *ledger.Ledger
	out       io.Writer
	showDepth int
	// Derives the context of a single mine command. Nil mines with the caller's context.
	interrupt func(parent context.Context) (context.Context, context.CancelFunc)
}

// mine runs one mine command. Its interruption ends only this command.
func (r *runner) mine(ctx context.Context) (model.Block, error) {
	if r.interrupt != nil {
		var stop context.CancelFunc
		ctx, stop = r.interrupt(ctx)
		defer stop()
	}
	return r.ledger.Mine(ctx)
}

// runScript replays every line and stops at the first failing command.
func (r *runner) runScript(ctx context.Context, lines []string) error {
	for i, line := range lines {
		c, err := commands.CreateCommand(line)
		if err != nil {
			return errors.Wrapf(err, "script line %d", i+1)
		}
		quit, err := r.handleCommand(ctx, c)
		if err != nil {
			return errors.Wrapf(err, "script line %d", i+1)
		}
		if quit {
			return nil
		}
	}
	return nil
}

// runInteractive reads commands until EOF or quit. A failing command is reported and skipped.
func (r *runner) runInteractive(ctx context.Context, in io.Reader) {
	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(r.out, "> ")
		text, readErr := reader.ReadString('\n')
		text = strings.TrimSpace(text)
		if text != "" {
			c, err := commands.CreateCommand(text)
			if err != nil {
				fmt.Fprintln(r.out, err)
			} else {
				quit, err := r.handleCommand(ctx, c)
				if err != nil {
					fmt.Fprintln(r.out, err)
				}
				if quit {
					return
				}
			}
		}
		if readErr != nil {
			fmt.Fprintln(r.out)
			return
		}
	}
}

// handleCommand executes c against the ledger. It returns true when c asks to stop.
func (r *runner) handleCommand(ctx context.Context, c commands.Command) (bool, error) {
	switch c.Op {
	case commands.TRANSFER:
		amount, err := c.Amount()
		if err != nil {
			return false, err
		}
		index := r.ledger.QueueTransfer(c.Args[0], c.Args[1], amount)
		fmt.Fprintf(r.out, "Transfer will be added to block %d\n", index)
	case commands.MINE:
		fmt.Fprintf(r.out, "Mining block %d...\n", r.ledger.Height())
		b, err := r.mine(ctx)
		if err != nil {
			return false, err
		}
		s, err := visualize.RenderBlock(b)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(r.out, "New block forged:")
		fmt.Fprintln(r.out, s)
	case commands.SHOW:
		return false, r.show(c.Depth(r.showDepth))
	case commands.GRAPH:
		blocks, err := r.ledger.Chain()
		if err != nil {
			return false, err
		}
		if err := visualize.SaveGraph(c.Args[0], blocks, 0); err != nil {
			return false, err
		}
		fmt.Fprintf(r.out, "Chain graph written to %s\n", c.Args[0])
	case commands.VERIFY:
		if err := r.ledger.Validate(); err != nil {
			return false, err
		}
		fmt.Fprintf(r.out, "Chain of %d blocks is valid\n", r.ledger.Height())
	case commands.QUIT:
		return true, nil
	default:
		return false, errors.Errorf("unrecognized command: %v", c)
	}
	return false, nil
}

// show renders the last d blocks, every block when d isn't positive.
func (r *runner) show(d int) error {
	blocks, err := r.ledger.Chain()
	if err != nil {
		return err
	}
	s, err := visualize.RenderChain(blocks, d)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, s)
	return nil
}

// This program performs administrative tasks against the chain of a node.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/powchain/app/tooling/admin/commands"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
	"github.com/ardanlabs/powchain/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg := struct {
		conf.Version
		Args        conf.Args
		Node        string        `conf:"default:localhost:9080"`
		GenesisPath string        `conf:"default:zblock/genesis.json"`
		Timeout     time.Duration `conf:"default:10s"`
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "proof of work ledger admin",
		},
	}

	const prefix = "ADMIN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	gen, err := genesis.Load(cfg.GenesisPath)
	if err != nil {
		return fmt.Errorf("loading genesis: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	log.Infow("admin", "status", "retrieving chain", "node", cfg.Node)

	chain, err := peer.NewClient(cfg.Timeout).RetrieveChain(ctx, peer.New(cfg.Node))
	if err != nil {
		return fmt.Errorf("retrieving chain: %w", err)
	}

	if len(chain) == 0 {
		return errors.New("node returned an empty chain")
	}

	return processCommands(cfg.Args, chain, gen)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args conf.Args, chain []database.Block, gen genesis.Genesis) error {
	switch args.Num(0) {
	case "bals":
		if err := commands.Balances(args.Num(1), chain, gen); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}
	case "trans":
		if err := commands.Transactions(args.Num(1), chain); err != nil {
			return fmt.Errorf("getting transactions: %w", err)
		}
	case "validate":
		if err := commands.Validate(chain, gen); err != nil {
			return fmt.Errorf("validating chain: %w", err)
		}
	default:
		return fmt.Errorf("unknown command %q: use bals, trans or validate", args.Num(0))
	}

	return nil
}

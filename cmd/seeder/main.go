package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"

	"github.com/bara-directory/seeder/internal/catalog"
	"github.com/bara-directory/seeder/internal/config"
	"github.com/bara-directory/seeder/internal/logger"
)

const usage = `usage: seeder <command> [flags]

commands:
  generate   fabricate businesses or events from a pools profile
  import     load a dataset file into the configured destination
  sql        render dataset files as a standalone SQL script
  images     assign category images to an events file
  verify     print stored business and event counts for a country
  profiles   list the available pools profiles

Run "seeder <command> -h" for the flags of a command.
`

// env is what every command needs besides its flags.
type env struct {
	cfg    *config.Config
	pools  *catalog.Pools
	stdout io.Writer
}

type command func(ctx context.Context, e *env, args []string) error

var commands = map[string]command{
	"generate": runGenerate,
	"import":   runImport,
	"sql":      runSQL,
	"images":   runImages,
	"verify":   runVerify,
	"profiles": runProfiles,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Error().Err(err).Msg("seeder failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return flag.ErrHelp
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}

	pools, err := catalog.Load(cfg.PoolsFile)
	if err != nil {
		return err
	}
	return cmd(ctx, &env{cfg: cfg, pools: pools, stdout: stdout}, args[1:])
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alright-hq/alright-client/internal/app"
	"github.com/alright-hq/alright-client/internal/config"
	"github.com/alright-hq/alright-client/internal/logger"
)

const usage = `usage: alright [-mode decode|stub] [-consumer id] <command> [args]

commands:
  menu [date|today|tomorrow|yesterday]
  entries | maincourses | sidedishes [date]
  dish <id>
  allergens <dish-id>
  order <dish-id>...
  orders [date]
  get-order <id>
  pending
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "alright: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("alright", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	mode := fs.String("mode", "", "response mode: decode or stub (default from API_RESPONSE_MODE)")
	consumer := fs.String("consumer", "", "consumer id for order (default from CONSUMER_ID)")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("missing command")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if _, err := logger.InitWriter(cfg, os.Stderr); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	client, err := app.NewAPIClient(cfg, *mode, logger.Std())
	if err != nil {
		return err
	}

	if *consumer == "" {
		*consumer = cfg.ConsumerID
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return execute(ctx, client, os.Stdout, *consumer, fs.Args())
}

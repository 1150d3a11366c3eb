package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/specialistvlad/modfactory/internal/cli"
	"github.com/specialistvlad/modfactory/internal/config"
	"github.com/specialistvlad/modfactory/internal/hcl"
	"github.com/specialistvlad/modfactory/internal/yaml"
)

// main is the entrypoint for the modfactory application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW, errW io.Writer, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return cli.Execute(ctx, cli.Options{
		Out:    outW,
		Err:    errW,
		Loader: config.Loaders{hcl.NewLoader(nil), yaml.NewLoader(nil)},
	}, args)
}

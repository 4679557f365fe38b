package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/taskpipe/internal/app"
	"github.com/vk/taskpipe/internal/cli"
	"github.com/vk/taskpipe/internal/hclloader"
	"github.com/vk/taskpipe/internal/scheduler"
)

// main is the entrypoint for the taskpipe application.
func main() {
	// A minimal logger until the configured one takes over.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the application logic for easier testing and error
// handling.
func run(outW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	ctx := context.Background()
	taskpipeApp, err := app.NewApp(ctx, outW, appConfig, hclloader.NewLoader())
	if err != nil {
		return err
	}

	res, err := taskpipeApp.Run(ctx)
	if err != nil {
		return err
	}
	if res.Status != scheduler.AllSucceeded {
		_, failed, skipped := res.Counts()
		return fmt.Errorf("run finished with partial failure: %d failed, %d skipped", failed, skipped)
	}
	return nil
}

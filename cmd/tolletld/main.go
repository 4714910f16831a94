package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ArmiaRomel/ETL-Pipeline-for-National-Highways-Traffic-Data-Analysis/pkg/pipeline"
)

func main() {
	configFile := flag.String("config", "", "path to pipeline config YAML (required)")
	once := flag.Bool("once", false, "run the pipeline once and exit, ignoring the schedule")
	flag.Parse()

	if *configFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: tolletld --config pipeline.yaml [--once]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fmt.Fprintln(os.Stderr, "  --config  path to YAML config file (required)")
		fmt.Fprintln(os.Stderr, "  --once    run once and exit instead of following the schedule")
		os.Exit(1)
	}

	config, err := pipeline.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler, err := NewScheduler(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scheduler error: %v\n", err)
		os.Exit(1)
	}

	if *once {
		scheduler.runOnce(ctx)
		return
	}

	if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Scheduler error: %v\n", err)
		os.Exit(1)
	}
	logf("Shutting down")
}

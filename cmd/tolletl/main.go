package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ArmiaRomel/ETL-Pipeline-for-National-Highways-Traffic-Data-Analysis/pkg/pipeline"
)

func main() {
	flags := ParseFlags()

	if *flags.Version {
		PrintVersion()
		os.Exit(0)
	}

	if *flags.Help {
		PrintHelp()
		os.Exit(0)
	}

	if *flags.CreateConfig {
		if err := createConfigTemplate(*flags.Config); err != nil {
			fatal("%v", err)
		}
		return
	}

	config, err := pipeline.LoadConfig(*flags.Config)
	if err != nil {
		fatal("Failed to load config: %v", err)
	}

	if *flags.Validate {
		fmt.Printf("Config %s is valid (pipeline %q)\n", *flags.Config, config.Name)
		return
	}

	if !*flags.Run && *flags.Stage == "" {
		PrintHelp()
		os.Exit(1)
	}

	// Ctrl+C прерывает запуск, включая ожидание retry задержки
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, err := pipeline.NewRunner(config)
	if err != nil {
		fatal("Failed to initialize pipeline: %v", err)
	}
	defer runner.Close()

	if *flags.Stage != "" {
		if err := runner.RunStage(ctx, *flags.Stage); err != nil {
			fatal("Stage %s failed: %v", *flags.Stage, err)
		}
		fmt.Printf("Stage %s completed\n", *flags.Stage)
		return
	}

	if err := runner.Execute(ctx); err != nil {
		fatal("Pipeline failed: %v", err)
	}

	stats := runner.GetStats()
	fmt.Printf("Pipeline %s completed: %d rows in %v (attempts: %d)\n",
		config.Name, stats.RowsExtracted, stats.Duration.Round(0), stats.Attempts)
	if stats.Artifact != "" {
		fmt.Printf("Artifact: %s\n", stats.Artifact)
	}
}

// fatal prints error and exits
func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

package main

import "fmt"

const version = "1.0.0"

// PrintVersion prints version information
func PrintVersion() {
	fmt.Printf("tolletl version %s\n", version)
	fmt.Println("National Highways Toll Traffic ETL")
}

// PrintHelp prints comprehensive help information
func PrintHelp() {
	fmt.Println("Toll Traffic ETL - Command Line Interface")
	fmt.Printf("Version: %s\n\n", version)

	fmt.Println("USAGE:")
	fmt.Println("  tolletl [command] [options]")
	fmt.Println()

	fmt.Println("COMMANDS:")
	fmt.Println("    --run                      Execute the full pipeline")
	fmt.Println("    --stage <name>             Run a single stage:")
	fmt.Println("                               fetch, unpack, extract, consolidate, transform, output")
	fmt.Println("    --validate                 Validate the config file and exit")
	fmt.Println("    --create-config            Create a sample pipeline.yaml")
	fmt.Println()

	fmt.Println("OPTIONS:")
	fmt.Println("    --config <file>            Pipeline configuration file (default: pipeline.yaml)")
	fmt.Println("    --version                  Show version information")
	fmt.Println("    --help                     Show this help")
	fmt.Println()

	fmt.Println("EXAMPLES:")
	fmt.Println("  # Create a config and run the pipeline")
	fmt.Println("  tolletl --create-config")
	fmt.Println("  tolletl --run --config pipeline.yaml")
	fmt.Println()
	fmt.Println("  # Re-run a single stage after a manual fix")
	fmt.Println("  tolletl --stage consolidate --config pipeline.yaml")
}

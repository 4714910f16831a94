package main

import "flag"

// Flags holds all command-line flags
type Flags struct {
	// Commands
	Run          *bool
	Stage        *string
	Validate     *bool
	CreateConfig *bool

	// Options
	Config *string

	// Misc
	Version *bool
	Help    *bool
}

// ParseFlags defines and parses all command-line flags
func ParseFlags() *Flags {
	f := &Flags{}

	// Commands
	f.Run = flag.Bool("run", false, "Execute the full pipeline from the YAML config")
	f.Stage = flag.String("stage", "", "Run a single stage: fetch, unpack, extract, consolidate, transform, output")
	f.Validate = flag.Bool("validate", false, "Validate the YAML config and exit")
	f.CreateConfig = flag.Bool("create-config", false, "Create a sample pipeline config file")

	// Options
	f.Config = flag.String("config", "pipeline.yaml", "Pipeline configuration file path")

	// Misc
	f.Version = flag.Bool("version", false, "Show version information")
	f.Help = flag.Bool("help", false, "Show detailed help with examples")

	flag.Parse()

	return f
}

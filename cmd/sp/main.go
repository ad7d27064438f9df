// Package main is the cycle-accurate pipelined SP simulator. It loads a
// memory image, runs it on the 6-stage pipeline to completion, and
// writes the trace and memory-dump files the external interface
// documents.
//
//	sp [--config path.json] <image_path>
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/foqara2001/sp/memimage"
	"github.com/foqara2001/sp/simconfig"
	"github.com/foqara2001/sp/timing/core"
	"github.com/foqara2001/sp/timing/pipeline"
)

// Distinct exit codes so a caller can tell a malformed invocation or a
// failed file write (1) apart from a program that never reached HLT.
const (
	exitOK            = 0
	exitIOOrArgsError = 1
	exitRunaway       = 2
)

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:           "sp <image_path>",
		Short:         "Run a memory image on the cycle-accurate pipelined SP simulator",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := simconfig.Default()
			if configPath != "" {
				loaded, err := simconfig.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return run(args[0], cfg)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a JSON simulator configuration file")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "sp: %v\n", err)
		if errors.Is(err, pipeline.ErrMaxCyclesExceeded) {
			os.Exit(exitRunaway)
		}
		os.Exit(exitIOOrArgsError)
	}
}

func run(imagePath string, cfg *simconfig.Config) error {
	image, err := memimage.Load(imagePath)
	if err != nil {
		return err
	}

	instTrace, err := os.Create(cfg.InstTracePath)
	if err != nil {
		return err
	}
	defer instTrace.Close()

	cycleTrace, err := os.Create(cfg.CycleTracePath)
	if err != nil {
		return err
	}
	defer cycleTrace.Close()

	c := core.NewCore(image,
		pipeline.WithMaxCycles(cfg.MaxCycles),
		pipeline.WithInstTraceWriter(instTrace),
		pipeline.WithCycleTraceWriter(cycleTrace),
	)

	runErr := c.Run()

	sramiOut, err := os.Create(cfg.SRAMIOutPath)
	if err != nil {
		return err
	}
	defer sramiOut.Close()

	sramdOut, err := os.Create(cfg.SRAMDOutPath)
	if err != nil {
		return err
	}
	defer sramdOut.Close()

	if err := c.DumpTraces(sramiOut, sramdOut); err != nil {
		return err
	}

	return runErr
}

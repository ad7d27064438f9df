// Package main is the functional instruction-set simulator: a plain
// sequential interpreter with the same command line as the pipelined
// simulator (cmd/sp), writing the same instruction trace and memory
// dumps (but no cycle trace), used as a reference oracle to check the
// pipeline's final memory state against.
//
//	iss [--config path.json] <image_path>
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/foqara2001/sp/memimage"
	"github.com/foqara2001/sp/simconfig"
	"github.com/foqara2001/sp/trace"
	"github.com/foqara2001/sp/vm"
)

const (
	exitOK            = 0
	exitIOOrArgsError = 1
	exitRunaway       = 2
)

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:           "iss <image_path>",
		Short:         "Run a memory image on the functional SP instruction-set simulator",
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
		fmt.Fprintf(os.Stderr, "iss: %v\n", err)
		if errors.Is(err, vm.ErrMaxInstructionsExceeded) {
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

	regs := vm.NewRegFile()
	srami := vm.NewMemory()
	sramd := vm.NewMemory()
	srami.LoadImage(image)
	sramd.LoadImage(image)

	e := vm.NewEmulator(regs, srami, sramd,
		vm.WithMaxInstructions(cfg.MaxCycles),
		vm.WithTraceWriter(instTrace),
	)

	runErr := e.Run()

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

	if err := trace.WriteMemoryDump(sramiOut, srami.Dump()); err != nil {
		return err
	}
	if err := trace.WriteMemoryDump(sramdOut, sramd.Dump()); err != nil {
		return err
	}

	return runErr
}

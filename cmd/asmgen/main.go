// Package main emits a named scenario's memory image to a file, for
// feeding into cmd/sp or cmd/iss.
//
//	asmgen <scenario> <out_path>
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/foqara2001/sp/memimage"
	"github.com/foqara2001/sp/scenarios"
)

func main() {
	var names []string
	for _, s := range scenarios.All() {
		names = append(names, s.Name)
	}

	cmd := &cobra.Command{
		Use:           "asmgen <scenario> <out_path>",
		Short:         "Emit a named test scenario's memory image",
		Long:          "Emit a named test scenario's memory image.\n\nscenarios:\n  " + strings.Join(names, "\n  "),
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := scenarios.Lookup(args[0])
			if err != nil {
				return err
			}
			return memimage.Save(args[1], s.Image)
		},
	}

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "asmgen: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"ProjectVTO/pkg/vto"

	"github.com/spf13/cobra"
)

func newFovCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fov [width...]",
		Short: "Print the camera field of view for viewport widths",
		RunE: func(cmd *cobra.Command, args []string) error {
			widths := vto.FOVBreakpoints()
			if len(args) > 0 {
				widths = make([]float64, 0, len(args))
				for _, arg := range args {
					w, err := strconv.ParseFloat(arg, 64)
					if err != nil {
						return fmt.Errorf("invalid width %q: %w", arg, err)
					}
					widths = append(widths, w)
				}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "WIDTH\tFOV")
			fmt.Fprintln(w, "-----\t---")
			for _, width := range widths {
				fmt.Fprintf(w, "%g\t%.2f\n", width, vto.FieldOfView(width))
			}
			return w.Flush()
		},
	}
}

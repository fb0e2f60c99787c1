package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xabinapal/ffpm/internal/version"
)

// newVersionCmd creates the version command.
func (cli *CLI) newVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print ffpm version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.outputWriter(cmd)
			if err != nil {
				return err
			}

			info := version.Get()
			out := cmd.OutOrStdout()
			return output.Write(info, func() {
				if short {
					fmt.Fprintln(out, info.Short())
					return
				}
				fmt.Fprintln(out, info.String())
			})
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")

	return cmd
}

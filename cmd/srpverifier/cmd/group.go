package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/korthochain/srpverifier/pkg/srp"
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Print the registration group parameters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g := srp.RFC5054Group3072
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "bits: %d\n", g.Bits())
		fmt.Fprintf(out, "g:    %s\n", g.G.Text(10))
		fmt.Fprintf(out, "N:    %s\n", g.NHex())
		return nil
	},
}

package cmd

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"
)

var modpowCmd = &cobra.Command{
	Use:   "modpow <base> <exponent> <modulus>",
	Short: "Compute base^exponent mod modulus (decimal) through the worker pool",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ops := make([]*big.Int, 3)
		for i, s := range args {
			v, ok := new(big.Int).SetString(s, 10)
			if !ok {
				return fmt.Errorf("invalid decimal %q", s)
			}
			ops[i] = v
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		v, err := a.pool.Compute(cmd.Context(), ops[0], ops[1], ops[2])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), v.Text(10))
		return nil
	},
}

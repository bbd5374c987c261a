package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/korthochain/srpverifier/pkg/verifier"
)

var (
	registerPassword string
	registerIdentity string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Print a fresh {salt, verifier} for a password",
	Long: `Derives x with PBKDF2 from a fresh salt and the password, then computes
v = g^x mod N over the RFC 5054 3072-bit group. The password is read from
--password or, when that is empty, from the first line of stdin.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := registerPassword
		if password == "" {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errors.New("no password given")
			}
			password = strings.TrimRight(line, "\r\n")
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		var rec *verifier.Record
		if registerIdentity != "" {
			rec, err = a.service.VerifierAndSaltFor(cmd.Context(), registerIdentity, password)
		} else {
			rec, err = a.service.VerifierAndSalt(cmd.Context(), password)
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

func init() {
	registerCmd.Flags().StringVarP(&registerPassword, "password", "p", "", "password (prefer stdin)")
	registerCmd.Flags().StringVarP(&registerIdentity, "identity", "i", "", "identity used for rate limiting and salt journaling")
}

package cli

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/spf13/cobra"
)

func reencryptCmd(e *env) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reencrypt",
		Short: "Re-encrypt every stored password under a new master passphrase",
		Long: `Decrypts every account password with the current master passphrase and
encrypts it again with a new one. All accounts are updated in a single
transaction: if any password fails, none is changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.ErrOrStderr()

			oldPass, err := GetPassword(w, "Current master passphrase")
			if err != nil {
				return err
			}
			defer common.WipeByteArray(oldPass)

			newPass, err := GetNewPassword(w, "New master passphrase")
			if err != nil {
				return err
			}
			defer common.WipeByteArray(newPass)

			if !yes {
				ok, err := Confirm(e.in, "Re-encrypt all stored passwords?", w)
				if err != nil {
					return err
				}
				if !ok {
					return errors.New("aborted")
				}
			}

			n, err := e.accounts.ReencryptAll(cmd.Context(), oldPass, newPass)
			if err != nil {
				return fmt.Errorf("re-encryption failed: %w", err)
			}
			fmt.Fprintf(e.out, "re-encrypted %d accounts\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

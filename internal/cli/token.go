package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/louisbranch/menagerie/internal/chain"
	"github.com/louisbranch/menagerie/internal/runtime"
)

var (
	tokenTarget   string
	tokenAtHeight uint64
	tokenAtTime   string
	tokenPayload  string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Transfer, approve, and burn collection tokens",
}

var tokenTransferCmd = &cobra.Command{
	Use:   "transfer <id> <recipient>",
	Short: "Transfer a token you control",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, err := requireFrom()
		if err != nil {
			return err
		}
		host, closeStore, err := openHost()
		if err != nil {
			return err
		}
		defer closeStore()

		attrs, err := host.Transfer(cmd.Context(), runtime.Target(tokenTarget), sender, args[1], args[0])
		if err != nil {
			return err
		}
		printAttributes(cmd, attrs)
		return nil
	},
}

var tokenSendCmd = &cobra.Command{
	Use:   "send <id> <contract>",
	Short: "Transfer a token to a contract and print its receive notification",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, err := requireFrom()
		if err != nil {
			return err
		}
		host, closeStore, err := openHost()
		if err != nil {
			return err
		}
		defer closeStore()

		var payload []byte
		if tokenPayload != "" {
			payload = []byte(tokenPayload)
		}
		receive, attrs, err := host.SendNFT(cmd.Context(), runtime.Target(tokenTarget), sender, args[1], args[0], payload)
		if err != nil {
			return err
		}
		printAttributes(cmd, attrs)
		return printJSON(cmd, receive)
	},
}

var tokenApproveCmd = &cobra.Command{
	Use:   "approve <id> <spender>",
	Short: "Grant a spender transfer rights over one token",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, err := requireFrom()
		if err != nil {
			return err
		}
		expires, err := parseExpiration()
		if err != nil {
			return err
		}
		host, closeStore, err := openHost()
		if err != nil {
			return err
		}
		defer closeStore()

		attrs, err := host.Approve(cmd.Context(), runtime.Target(tokenTarget), sender, args[1], args[0], expires)
		if err != nil {
			return err
		}
		printAttributes(cmd, attrs)
		return nil
	},
}

var tokenRevokeCmd = &cobra.Command{
	Use:   "revoke <id> <spender>",
	Short: "Remove a spender's approval on one token",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, err := requireFrom()
		if err != nil {
			return err
		}
		host, closeStore, err := openHost()
		if err != nil {
			return err
		}
		defer closeStore()

		attrs, err := host.Revoke(cmd.Context(), runtime.Target(tokenTarget), sender, args[1], args[0])
		if err != nil {
			return err
		}
		printAttributes(cmd, attrs)
		return nil
	},
}

var tokenApproveAllCmd = &cobra.Command{
	Use:   "approve-all <operator>",
	Short: "Grant an operator rights over all of your tokens",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, err := requireFrom()
		if err != nil {
			return err
		}
		expires, err := parseExpiration()
		if err != nil {
			return err
		}
		host, closeStore, err := openHost()
		if err != nil {
			return err
		}
		defer closeStore()

		attrs, err := host.ApproveAll(cmd.Context(), runtime.Target(tokenTarget), sender, args[0], expires)
		if err != nil {
			return err
		}
		printAttributes(cmd, attrs)
		return nil
	},
}

var tokenRevokeAllCmd = &cobra.Command{
	Use:   "revoke-all <operator>",
	Short: "Remove an operator grant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, err := requireFrom()
		if err != nil {
			return err
		}
		host, closeStore, err := openHost()
		if err != nil {
			return err
		}
		defer closeStore()

		attrs, err := host.RevokeAll(cmd.Context(), runtime.Target(tokenTarget), sender, args[0])
		if err != nil {
			return err
		}
		printAttributes(cmd, attrs)
		return nil
	},
}

var tokenBurnCmd = &cobra.Command{
	Use:   "burn <id>",
	Short: "Destroy a token you control",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, err := requireFrom()
		if err != nil {
			return err
		}
		host, closeStore, err := openHost()
		if err != nil {
			return err
		}
		defer closeStore()

		attrs, err := host.Burn(cmd.Context(), runtime.Target(tokenTarget), sender, args[0])
		if err != nil {
			return err
		}
		printAttributes(cmd, attrs)
		return nil
	},
}

func init() {
	tokenCmd.PersistentFlags().StringVar(&tokenTarget, "collection", string(runtime.TargetCharacters), "characters or traits")
	tokenSendCmd.Flags().StringVar(&tokenPayload, "payload", "", "opaque payload for the receiving contract")
	tokenApproveCmd.Flags().Uint64Var(&tokenAtHeight, "expires-at-height", 0, "approval expires at block height")
	tokenApproveCmd.Flags().StringVar(&tokenAtTime, "expires-at-time", "", "approval expires at RFC3339 time")
	tokenApproveAllCmd.Flags().Uint64Var(&tokenAtHeight, "expires-at-height", 0, "grant expires at block height")
	tokenApproveAllCmd.Flags().StringVar(&tokenAtTime, "expires-at-time", "", "grant expires at RFC3339 time")

	tokenCmd.AddCommand(tokenTransferCmd)
	tokenCmd.AddCommand(tokenSendCmd)
	tokenCmd.AddCommand(tokenApproveCmd)
	tokenCmd.AddCommand(tokenRevokeCmd)
	tokenCmd.AddCommand(tokenApproveAllCmd)
	tokenCmd.AddCommand(tokenRevokeAllCmd)
	tokenCmd.AddCommand(tokenBurnCmd)
}

func parseExpiration() (chain.Expiration, error) {
	if tokenAtHeight > 0 {
		return chain.AtHeight(tokenAtHeight), nil
	}
	if tokenAtTime != "" {
		at, err := time.Parse(time.RFC3339, tokenAtTime)
		if err != nil {
			return chain.Expiration{}, err
		}
		return chain.AtTime(at), nil
	}
	return chain.Never(), nil
}

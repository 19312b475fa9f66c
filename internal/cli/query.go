package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/louisbranch/menagerie/internal/runtime"
)

var (
	queryTarget     string
	queryStartAfter string
	queryLimit      int
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Read collection, manager, and ledger state",
}

var queryCharacterCmd = &cobra.Command{
	Use:   "character <id>",
	Short: "Show a character's owner, approvals, and metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		host, closeStore, err := openHost()
		if err != nil {
			return err
		}
		defer closeStore()

		info, err := host.CharacterInfo(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, info)
	},
}

var queryTraitCmd = &cobra.Command{
	Use:   "trait <id>",
	Short: "Show a trait's owner, approvals, and metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		host, closeStore, err := openHost()
		if err != nil {
			return err
		}
		defer closeStore()

		info, err := host.TraitInfo(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, info)
	},
}

var queryTokensCmd = &cobra.Command{
	Use:   "tokens [owner]",
	Short: "List token ids, all or per owner",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		host, closeStore, err := openHost()
		if err != nil {
			return err
		}
		defer closeStore()

		var ids []string
		if len(args) == 1 {
			ids, err = host.Tokens(cmd.Context(), runtime.Target(queryTarget), args[0], queryStartAfter, queryLimit)
		} else {
			ids, err = host.AllTokens(cmd.Context(), runtime.Target(queryTarget), queryStartAfter, queryLimit)
		}
		if err != nil {
			return err
		}
		for _, id := range ids {
			cmd.Println(id)
		}
		return nil
	},
}

var queryCollectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Show collection metadata, contract info, and minter",
	RunE: func(cmd *cobra.Command, args []string) error {
		host, closeStore, err := openHost()
		if err != nil {
			return err
		}
		defer closeStore()

		target := runtime.Target(queryTarget)
		contract, err := host.ContractInfo(cmd.Context(), target)
		if err != nil {
			return err
		}
		info, err := host.CollectionInfo(cmd.Context(), target)
		if err != nil {
			return err
		}
		minter, err := host.Minter(cmd.Context(), target)
		if err != nil {
			return err
		}
		count, err := host.NumTokens(cmd.Context(), target)
		if err != nil {
			return err
		}

		cmd.Printf("name: %s\nsymbol: %s\nminter: %s\ntokens: %d\n", contract.Name, contract.Symbol, minter, count)
		return printJSON(cmd, info)
	},
}

var queryConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show a manager's configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		host, closeStore, err := openHost()
		if err != nil {
			return err
		}
		defer closeStore()

		switch runtime.Target(queryTarget) {
		case runtime.TargetCharacters:
			cfg, err := host.CharacterManagerConfig(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, cfg)
		case runtime.TargetTraits:
			cfg, err := host.TraitManagerConfig(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, cfg)
		default:
			return fmt.Errorf("unknown collection %q", queryTarget)
		}
	},
}

var queryBalanceCmd = &cobra.Command{
	Use:   "balance <address> <denom>",
	Short: "Show a ledger balance",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		host, closeStore, err := openHost()
		if err != nil {
			return err
		}
		defer closeStore()

		balance, err := host.Balance(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		cmd.Printf("%d%s\n", balance, args[1])
		return nil
	},
}

func init() {
	queryCmd.PersistentFlags().StringVar(&queryTarget, "collection", string(runtime.TargetCharacters), "characters or traits")
	queryCmd.PersistentFlags().StringVar(&queryStartAfter, "start-after", "", "pagination cursor, exclusive")
	queryCmd.PersistentFlags().IntVar(&queryLimit, "limit", 0, "page size (default 10, max 100)")

	queryCmd.AddCommand(queryCharacterCmd)
	queryCmd.AddCommand(queryTraitCmd)
	queryCmd.AddCommand(queryTokensCmd)
	queryCmd.AddCommand(queryCollectionCmd)
	queryCmd.AddCommand(queryConfigCmd)
	queryCmd.AddCommand(queryBalanceCmd)
}

func printJSON(cmd *cobra.Command, value any) error {
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("render response: %w", err)
	}
	cmd.Println(string(out))
	return nil
}

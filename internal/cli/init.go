package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/louisbranch/menagerie/internal/runtime"
)

var genesisFile string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the state file from a genesis document",
	Long: `Initialize instantiates both collections, the catalog, and both
managers, and funds the genesis accounts, all in one transaction.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(genesisFile)
		if err != nil {
			return fmt.Errorf("read genesis file: %w", err)
		}
		genesis, err := runtime.ParseGenesis(raw)
		if err != nil {
			return err
		}

		host, closeStore, err := openHost()
		if err != nil {
			return err
		}
		defer closeStore()

		if err := host.InitGenesis(cmd.Context(), genesis); err != nil {
			return err
		}
		cmd.Printf("initialized state at %s\n", statePath)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&genesisFile, "genesis", "genesis.yaml", "genesis document path")
}

// Package cli implements the menagerie command line: genesis
// initialization, catalog imports, the manager mint flows, collection
// operations, and queries against a local state file.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/grpc/status"

	apperrors "github.com/louisbranch/menagerie/internal/errors"
	"github.com/louisbranch/menagerie/internal/platform/config"
	"github.com/louisbranch/menagerie/internal/runtime"
	"github.com/louisbranch/menagerie/internal/storage/bbolt"
)

// Env is the process configuration shared by every command.
type Env struct {
	StatePath            string `env:"MENAGERIE_STATE" envDefault:"menagerie.db"`
	NativeDenom          string `env:"MENAGERIE_DENOM" envDefault:"ucool"`
	CharacterManagerAddr string `env:"MENAGERIE_CHARACTER_MANAGER" envDefault:"charactermanager"`
	TraitManagerAddr     string `env:"MENAGERIE_TRAIT_MANAGER" envDefault:"traitmanager"`
}

var (
	envCfg    Env
	statePath string
	from      string
	version   = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "menagerie",
	Short: "Game-economy NFT collections over a local state file",
	Long: `Menagerie runs ownable, mintable, composable NFT collections
(characters and traits), the minting managers that sell them, and the
mintables catalog, all against a local durable state file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ParseEnv(&envCfg); err != nil {
			return err
		}
		if statePath == "" {
			statePath = envCfg.StatePath
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("menagerie %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&statePath, "state", "", "state file path (defaults to MENAGERIE_STATE)")
	rootCmd.PersistentFlags().StringVar(&from, "from", "", "sender address for transactions")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(mintCmd)
	rootCmd.AddCommand(characterCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(versionCmd)
}

// SetVersion overrides the reported version, set from the build.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// RenderError formats a failure for the terminal. Domain errors go through
// the same gRPC status conversion served to clients, so scripts see the
// stable code pair; anything else prints verbatim.
func RenderError(err error) string {
	if apperrors.GetCode(err) == apperrors.CodeUnknown {
		return fmt.Sprintf("Error: %v", err)
	}
	st, ok := status.FromError(apperrors.HandleError(err))
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	return fmt.Sprintf("Error: %s (%s/%s)", st.Message(), apperrors.GetCode(err), st.Code())
}

// openHost opens the state file and wires the contract runtime over it. The
// returned close function must be deferred.
func openHost() (*runtime.Host, func() error, error) {
	store, err := bbolt.Open(statePath)
	if err != nil {
		return nil, nil, err
	}
	host := runtime.New(store, runtime.Options{
		NativeDenom:          envCfg.NativeDenom,
		CharacterManagerAddr: envCfg.CharacterManagerAddr,
		TraitManagerAddr:     envCfg.TraitManagerAddr,
	})
	return host, store.Close, nil
}

func requireFrom() (string, error) {
	if from == "" {
		return "", fmt.Errorf("--from is required")
	}
	return from, nil
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/louisbranch/menagerie/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the mintables catalog",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Bulk-load catalog entries from a YAML document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, err := requireFrom()
		if err != nil {
			return err
		}
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read catalog file: %w", err)
		}
		doc, err := catalog.ParseDocument(raw)
		if err != nil {
			return err
		}

		host, closeStore, err := openHost()
		if err != nil {
			return err
		}
		defer closeStore()

		if err := host.ImportCatalog(cmd.Context(), sender, doc); err != nil {
			return err
		}
		cmd.Println("catalog imported")
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the catalog contents",
	RunE: func(cmd *cobra.Command, args []string) error {
		host, closeStore, err := openHost()
		if err != nil {
			return err
		}
		defer closeStore()

		doc, err := host.Catalog(cmd.Context(), "", queryLimit)
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("render catalog: %w", err)
		}
		cmd.Print(string(out))
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogShowCmd)
}

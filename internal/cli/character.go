package cli

import (
	"github.com/spf13/cobra"
)

var characterCmd = &cobra.Command{
	Use:   "character",
	Short: "Assemble, rename, and finalize characters",
}

var characterRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a character you own",
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

		attrs, err := host.ChangeName(cmd.Context(), sender, args[0], args[1])
		if err != nil {
			return err
		}
		printAttributes(cmd, attrs)
		return nil
	},
}

var characterModifyCmd = &cobra.Command{
	Use:   "modify <id> [trait-id...]",
	Short: "Equip a character with trait tokens you own",
	Args:  cobra.MinimumNArgs(1),
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

		attrs, err := host.ModifyCharacter(cmd.Context(), sender, args[0], args[1:])
		if err != nil {
			return err
		}
		printAttributes(cmd, attrs)
		return nil
	},
}

var characterLockCmd = &cobra.Command{
	Use:   "lock <id>",
	Short: "Finalize a character, burning its equipped traits",
	Long: `Lock burns every equipped trait token and sets the character's
irreversible lock flag, which makes it transferable. Burning the traits
requires the character manager to hold operator rights on the trait
collection (grant them with "menagerie token approve-all").`,
	Args: cobra.ExactArgs(1),
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

		attrs, err := host.LockCharacter(cmd.Context(), sender, args[0])
		if err != nil {
			return err
		}
		printAttributes(cmd, attrs)
		return nil
	},
}

func init() {
	characterCmd.AddCommand(characterRenameCmd)
	characterCmd.AddCommand(characterModifyCmd)
	characterCmd.AddCommand(characterLockCmd)
}

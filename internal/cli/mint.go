package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/louisbranch/menagerie/internal/chain"
	"github.com/louisbranch/menagerie/internal/collection"
	"github.com/louisbranch/menagerie/internal/runtime"
)

var (
	mintFunds   string
	mintTo      string
	mintTarget  string
	mintName    string
	mintRarity  string
	mintLocked  bool
	mintSlots   map[string]*string
	mintType    string
	mintValue   string
	mintTRarity string
)

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Buy tokens through the minting managers",
}

var mintCharacterCmd = &cobra.Command{
	Use:   "character",
	Short: "Buy a character (blank, or premade when a rarity is given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, err := requireFrom()
		if err != nil {
			return err
		}
		funds, err := parseFunds()
		if err != nil {
			return err
		}

		ext := collection.CharacterMetadata{
			Name:      mintName,
			Ears:      *mintSlots["ears"],
			Eyes:      *mintSlots["eyes"],
			Mouth:     *mintSlots["mouth"],
			FurType:   *mintSlots["fur_type"],
			FurColor:  *mintSlots["fur_color"],
			TailShape: *mintSlots["tail_shape"],
			Rarity:    mintRarity,
			Locked:    mintLocked,
		}

		host, closeStore, err := openHost()
		if err != nil {
			return err
		}
		defer closeStore()

		receiver := mintTo
		if receiver == "" {
			receiver = sender
		}
		attrs, err := host.MintCharacterTo(cmd.Context(), sender, receiver, funds, ext)
		if err != nil {
			return err
		}
		printAttributes(cmd, attrs)
		return nil
	},
}

var mintTraitCmd = &cobra.Command{
	Use:   "trait",
	Short: "Buy a trait priced by its rarity tier",
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, err := requireFrom()
		if err != nil {
			return err
		}
		funds, err := parseFunds()
		if err != nil {
			return err
		}

		ext := collection.TraitMetadata{Type: mintType, Value: mintValue, Rarity: mintTRarity}

		host, closeStore, err := openHost()
		if err != nil {
			return err
		}
		defer closeStore()

		receiver := mintTo
		if receiver == "" {
			receiver = sender
		}
		attrs, err := host.MintTraitTo(cmd.Context(), sender, receiver, funds, ext)
		if err != nil {
			return err
		}
		printAttributes(cmd, attrs)
		return nil
	},
}

var mintBundleCmd = &cobra.Command{
	Use:   "bundle <id>",
	Short: "Buy every token of a catalog bundle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, err := requireFrom()
		if err != nil {
			return err
		}
		funds, err := parseFunds()
		if err != nil {
			return err
		}

		host, closeStore, err := openHost()
		if err != nil {
			return err
		}
		defer closeStore()

		var attrs []chain.Attribute
		switch runtime.Target(mintTarget) {
		case runtime.TargetCharacters:
			attrs, err = host.MintCharacterBundle(cmd.Context(), sender, mintTo, funds, args[0])
		case runtime.TargetTraits:
			attrs, err = host.MintTraitBundle(cmd.Context(), sender, mintTo, funds, args[0])
		default:
			err = fmt.Errorf("unknown collection %q", mintTarget)
		}
		if err != nil {
			return err
		}
		printAttributes(cmd, attrs)
		return nil
	},
}

var mintLootboxCmd = &cobra.Command{
	Use:   "lootbox <id>",
	Short: "Open a catalog lootbox",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, err := requireFrom()
		if err != nil {
			return err
		}
		funds, err := parseFunds()
		if err != nil {
			return err
		}

		host, closeStore, err := openHost()
		if err != nil {
			return err
		}
		defer closeStore()

		var attrs []chain.Attribute
		switch runtime.Target(mintTarget) {
		case runtime.TargetCharacters:
			attrs, err = host.OpenCharacterLootbox(cmd.Context(), sender, mintTo, funds, args[0])
		case runtime.TargetTraits:
			attrs, err = host.OpenTraitLootbox(cmd.Context(), sender, mintTo, funds, args[0])
		default:
			err = fmt.Errorf("unknown collection %q", mintTarget)
		}
		if err != nil {
			return err
		}
		printAttributes(cmd, attrs)
		return nil
	},
}

func init() {
	mintCmd.PersistentFlags().StringVar(&mintFunds, "funds", "", "attached payment, e.g. 100ucool")
	mintCmd.PersistentFlags().StringVar(&mintTo, "to", "", "receiver address (defaults to sender)")

	mintSlots = make(map[string]*string, len(collection.TraitCategories))
	for _, category := range collection.TraitCategories {
		value := new(string)
		mintSlots[category] = value
		mintCharacterCmd.Flags().StringVar(value, category, "", category+" trait value")
	}
	mintCharacterCmd.Flags().StringVar(&mintName, "name", "", "character name")
	mintCharacterCmd.Flags().StringVar(&mintRarity, "rarity", "", "rarity of a premade character")
	mintCharacterCmd.Flags().BoolVar(&mintLocked, "locked", false, "premade character lock flag")

	mintTraitCmd.Flags().StringVar(&mintType, "type", "", "trait category")
	mintTraitCmd.Flags().StringVar(&mintValue, "value", "", "trait value")
	mintTraitCmd.Flags().StringVar(&mintTRarity, "rarity", "", "trait rarity tier")

	mintBundleCmd.Flags().StringVar(&mintTarget, "collection", string(runtime.TargetCharacters), "characters or traits")
	mintLootboxCmd.Flags().StringVar(&mintTarget, "collection", string(runtime.TargetCharacters), "characters or traits")

	mintCmd.AddCommand(mintCharacterCmd)
	mintCmd.AddCommand(mintTraitCmd)
	mintCmd.AddCommand(mintBundleCmd)
	mintCmd.AddCommand(mintLootboxCmd)
}

func parseFunds() ([]chain.Coin, error) {
	if mintFunds == "" {
		return nil, fmt.Errorf("--funds is required")
	}
	coin, err := chain.ParseCoin(mintFunds)
	if err != nil {
		return nil, err
	}
	return []chain.Coin{coin}, nil
}

func printAttributes(cmd *cobra.Command, attrs []chain.Attribute) {
	for _, attr := range attrs {
		cmd.Printf("%s: %s\n", attr.Key, attr.Value)
	}
}

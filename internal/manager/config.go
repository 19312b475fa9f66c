// Package manager implements the minting manager contracts: payment
// validation, the burn/forward split of proceeds, catalog-backed mint
// commands toward the collections, and the character assembly flows
// (equip, rename, lock).
package manager

import (
	"encoding/json"
	"fmt"

	"github.com/louisbranch/menagerie/internal/chain"
	apperrors "github.com/louisbranch/menagerie/internal/errors"
	"github.com/louisbranch/menagerie/internal/storage"
)

// Config is the manager's economic configuration. MintPrices is parallel to
// Rarities, one price per tier. EmptyMintPrice is only meaningful for the
// character manager, which sells blank characters to assemble from traits.
type Config struct {
	CollectionCodeID uint64       `json:"collection_code_id" yaml:"collection_code_id"`
	EmptyMintPrice   chain.Coin   `json:"empty_mint_price,omitzero" yaml:"empty_mint_price"`
	MintPrices       []chain.Coin `json:"mint_prices" yaml:"mint_prices"`
	Rarities         []string     `json:"rarities" yaml:"rarities"`
	// BurnRatio is the percentage of native-denomination payments
	// destroyed instead of forwarded.
	BurnRatio   uint64 `json:"burn_ratio" yaml:"burn_ratio"`
	Destination string `json:"destination,omitempty" yaml:"destination"`
}

func (c Config) validate(native string, sellsEmpty bool) error {
	if len(c.MintPrices) != len(c.Rarities) {
		return apperrors.New(apperrors.CodeMismatchedLengths, "mint prices must be parallel to rarities")
	}
	if c.BurnRatio > 100 {
		return apperrors.New(apperrors.CodeInvalidBurnRatio, "burn ratio must be between 0 and 100")
	}

	// Anything not fully burned needs somewhere to go, and non-native
	// denominations are never burned.
	needsDestination := c.BurnRatio != 100
	if sellsEmpty {
		if err := c.EmptyMintPrice.Validate(); err != nil {
			return err
		}
		if c.EmptyMintPrice.Denom != native {
			needsDestination = true
		}
	}
	for _, price := range c.MintPrices {
		if err := price.Validate(); err != nil {
			return err
		}
		if price.Denom != native {
			needsDestination = true
		}
	}
	if needsDestination {
		if c.Destination == "" {
			return apperrors.New(apperrors.CodeNoMintDestination, "destination address is required")
		}
		if err := chain.ValidateAddress(c.Destination); err != nil {
			return err
		}
	}
	return nil
}

// priceForRarity resolves the configured price for a rarity tier.
func (c Config) priceForRarity(rarity string) (chain.Coin, error) {
	for i, tier := range c.Rarities {
		if tier == rarity {
			return c.MintPrices[i], nil
		}
	}
	return chain.Coin{}, apperrors.WithMetadata(apperrors.CodeInvalidRarity, "no price configured for rarity", map[string]string{"rarity": rarity})
}

func loadConfig(ctx chain.Context, key []byte) (Config, error) {
	raw, err := ctx.State().Get(key)
	if err != nil {
		if err == storage.ErrNotFound {
			return Config{}, apperrors.New(apperrors.CodeNotFound, "manager is not configured")
		}
		return Config{}, fmt.Errorf("load manager config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal manager config: %w", err)
	}
	return cfg, nil
}

func saveConfig(ctx chain.Context, key []byte, cfg Config) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal manager config: %w", err)
	}
	return ctx.State().Put(key, raw)
}

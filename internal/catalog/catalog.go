// Package catalog implements the mintables catalog contract: the sellable
// traits, premade characters, bundles, and lootboxes that managers read
// prices and definitions from. Managers only consume the catalog; all writes
// go through the admin-gated registry.
package catalog

import (
	"strings"

	"github.com/louisbranch/menagerie/internal/chain"
	"github.com/louisbranch/menagerie/internal/collection"
	apperrors "github.com/louisbranch/menagerie/internal/errors"
)

// WeightTotal is the required sum of a lootbox's possibility weights.
const WeightTotal = 100

// Trait is a sellable trait definition.
type Trait struct {
	ID        string     `json:"id" yaml:"id"`
	Type      string     `json:"type" yaml:"type"`
	Value     string     `json:"value" yaml:"value"`
	Rarity    string     `json:"rarity" yaml:"rarity"`
	MintPrice chain.Coin `json:"mint_price" yaml:"mint_price"`
}

// Character is a sellable premade character definition.
type Character struct {
	ID        string     `json:"id" yaml:"id"`
	Ears      string     `json:"ears" yaml:"ears"`
	Eyes      string     `json:"eyes" yaml:"eyes"`
	Mouth     string     `json:"mouth" yaml:"mouth"`
	FurType   string     `json:"fur_type" yaml:"fur_type"`
	FurColor  string     `json:"fur_color" yaml:"fur_color"`
	TailShape string     `json:"tail_shape" yaml:"tail_shape"`
	Rarity    string     `json:"rarity" yaml:"rarity"`
	Locked    bool       `json:"locked" yaml:"locked"`
	MintPrice chain.Coin `json:"mint_price" yaml:"mint_price"`
}

// Bundle is an ordered list of catalog member ids sold at one price. The
// same shape serves trait and character bundles; the registry keeps the two
// families apart.
type Bundle struct {
	ID        string     `json:"id" yaml:"id"`
	Members   []string   `json:"members" yaml:"members"`
	MintPrice chain.Coin `json:"mint_price" yaml:"mint_price"`
}

// Lootbox is a weighted list of catalog member ids. Possibilities is
// parallel to Members; weights are positive and sum to WeightTotal.
type Lootbox struct {
	ID            string     `json:"id" yaml:"id"`
	Members       []string   `json:"members" yaml:"members"`
	Possibilities []uint32   `json:"possibilities" yaml:"possibilities"`
	MintPrice     chain.Coin `json:"mint_price" yaml:"mint_price"`
}

func (t Trait) validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return apperrors.New(apperrors.CodeInvalidTrait, "trait id is required")
	}
	if !collection.IsTraitCategory(t.Type) {
		return apperrors.WithMetadata(apperrors.CodeInvalidTrait, "unknown trait category", map[string]string{"type": t.Type})
	}
	if strings.TrimSpace(t.Value) == "" || strings.TrimSpace(t.Rarity) == "" {
		return apperrors.New(apperrors.CodeInvalidTrait, "trait value and rarity are required")
	}
	return t.MintPrice.Validate()
}

func (c Character) validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return apperrors.New(apperrors.CodeInvalidCharacter, "character id is required")
	}
	return c.MintPrice.Validate()
}

func (b Bundle) validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return apperrors.New(apperrors.CodeInvalidBundle, "bundle id is required")
	}
	if len(b.Members) == 0 {
		return apperrors.New(apperrors.CodeInvalidBundle, "bundle has no members")
	}
	return b.MintPrice.Validate()
}

func (l Lootbox) validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return apperrors.New(apperrors.CodeInvalidLootbox, "lootbox id is required")
	}
	if len(l.Members) == 0 {
		return apperrors.New(apperrors.CodeInvalidLootbox, "lootbox has no members")
	}
	if len(l.Possibilities) != len(l.Members) {
		return apperrors.WithMetadata(apperrors.CodeMismatchedLengths, "possibilities must be parallel to members", map[string]string{"id": l.ID})
	}
	var sum uint64
	for _, weight := range l.Possibilities {
		if weight == 0 {
			return apperrors.WithMetadata(apperrors.CodeInvalidPossibilities, "possibility weights must be positive", map[string]string{"id": l.ID})
		}
		sum += uint64(weight)
	}
	if sum != WeightTotal {
		return apperrors.WithMetadata(apperrors.CodeInvalidPossibilities, "possibility weights must sum to 100", map[string]string{"id": l.ID})
	}
	return l.MintPrice.Validate()
}

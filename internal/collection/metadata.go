package collection

import (
	"strings"

	apperrors "github.com/louisbranch/menagerie/internal/errors"
)

// Trait categories a character can equip, in display order. Any trait token
// whose Type is outside this list cannot be equipped.
var TraitCategories = []string{"ears", "eyes", "mouth", "fur_type", "fur_color", "tail_shape"}

// IsTraitCategory reports whether category is a known trait slot.
func IsTraitCategory(category string) bool {
	for _, c := range TraitCategories {
		if c == category {
			return true
		}
	}
	return false
}

// CharacterMetadata is the on-chain extension of a character token. A
// character sold pre-made carries a rarity; one assembled from traits tracks
// the equipped trait token ids so they can be burned when it is locked.
type CharacterMetadata struct {
	Name           string   `json:"name,omitempty"`
	Ears           string   `json:"ears,omitempty"`
	Eyes           string   `json:"eyes,omitempty"`
	Mouth          string   `json:"mouth,omitempty"`
	FurType        string   `json:"fur_type,omitempty"`
	FurColor       string   `json:"fur_color,omitempty"`
	TailShape      string   `json:"tail_shape,omitempty"`
	Rarity         string   `json:"rarity,omitempty"`
	TraitsEquipped []string `json:"traits_equipped,omitempty"`
	Locked         bool     `json:"locked"`
}

// Validate checks structural bounds on the metadata fields.
func (m CharacterMetadata) Validate() error {
	if len(m.Name) > 64 {
		return apperrors.New(apperrors.CodeDescriptionTooLong, "character name is too long")
	}
	return nil
}

// Frozen reports whether the character has been locked.
func (m CharacterMetadata) Frozen() bool {
	return m.Locked
}

// Freeze returns a copy with the lock flag set.
func (m CharacterMetadata) Freeze() CharacterMetadata {
	m.Locked = true
	return m
}

// HasTraitValues reports whether any trait slot carries a value.
func (m CharacterMetadata) HasTraitValues() bool {
	return m.Ears != "" || m.Eyes != "" || m.Mouth != "" ||
		m.FurType != "" || m.FurColor != "" || m.TailShape != ""
}

// TraitMetadata is the on-chain extension of a trait token.
type TraitMetadata struct {
	Type   string `json:"type"`
	Value  string `json:"value"`
	Rarity string `json:"rarity"`
}

// Validate checks the trait carries a type and a value.
func (m TraitMetadata) Validate() error {
	if strings.TrimSpace(m.Type) == "" || strings.TrimSpace(m.Value) == "" {
		return apperrors.New(apperrors.CodeInvalidTrait, "trait type and value are required")
	}
	return nil
}

// Frozen is always false: trait tokens have no lock lifecycle and transfer
// freely.
func (m TraitMetadata) Frozen() bool {
	return false
}

// Freeze is a no-op for traits.
func (m TraitMetadata) Freeze() TraitMetadata {
	return m
}

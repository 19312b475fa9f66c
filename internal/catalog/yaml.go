package catalog

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/louisbranch/menagerie/internal/chain"
)

// Document is a bulk catalog definition, usually loaded from a YAML file by
// the import command.
type Document struct {
	Traits             []Trait     `yaml:"traits"`
	Characters         []Character `yaml:"characters"`
	TraitBundles       []Bundle    `yaml:"trait_bundles"`
	CharacterBundles   []Bundle    `yaml:"character_bundles"`
	TraitLootboxes     []Lootbox   `yaml:"trait_lootboxes"`
	CharacterLootboxes []Lootbox   `yaml:"character_lootboxes"`
}

// ParseDocument decodes a YAML catalog document.
func ParseDocument(raw []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("parse catalog document: %w", err)
	}
	return doc, nil
}

// Import stores every entry of a document. Entries go through the same
// validation and duplicate checks as individual writes, and the first
// failure aborts the whole import.
func (r *Registry) Import(ctx chain.Context, sender string, doc Document) error {
	for _, t := range doc.Traits {
		if err := r.AddTrait(ctx, sender, t); err != nil {
			return err
		}
	}
	for _, c := range doc.Characters {
		if err := r.AddCharacter(ctx, sender, c); err != nil {
			return err
		}
	}
	for _, b := range doc.TraitBundles {
		if err := r.AddTraitBundle(ctx, sender, b); err != nil {
			return err
		}
	}
	for _, b := range doc.CharacterBundles {
		if err := r.AddCharacterBundle(ctx, sender, b); err != nil {
			return err
		}
	}
	for _, l := range doc.TraitLootboxes {
		if err := r.AddTraitLootbox(ctx, sender, l); err != nil {
			return err
		}
	}
	for _, l := range doc.CharacterLootboxes {
		if err := r.AddCharacterLootbox(ctx, sender, l); err != nil {
			return err
		}
	}
	return nil
}

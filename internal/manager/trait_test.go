package manager

import (
	"testing"

	"github.com/louisbranch/menagerie/internal/bank"
	"github.com/louisbranch/menagerie/internal/catalog"
	"github.com/louisbranch/menagerie/internal/chain"
	"github.com/louisbranch/menagerie/internal/collection"
	apperrors "github.com/louisbranch/menagerie/internal/errors"
)

func (f *fixture) addCatalogTrait(t *testing.T, id, traitType, value, rarity string) {
	t.Helper()

	entry := catalog.Trait{ID: id, Type: traitType, Value: value, Rarity: rarity, MintPrice: chain.NewCoin(100, native)}
	if err := f.catalog.AddTrait(f.ctx, "curator", entry); err != nil {
		t.Fatalf("add catalog trait %s: %v", id, err)
	}
}

func TestTraitMint(t *testing.T) {
	f := newFixture(t)
	f.addCatalogTrait(t, "fox-ears", "ears", "pointy", "common")

	ext := collection.TraitMetadata{Type: "ears", Value: "pointy", Rarity: "common"}
	instructions, attrs, err := f.traitMgr.Mint(f.ctx, player, []chain.Coin{chain.NewCoin(100, native)}, ext)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	// The trait manager burns everything at ratio 100.
	if len(instructions) != 1 || instructions[0].Op != bank.OpBurn || instructions[0].Amount.Amount != 100 {
		t.Fatalf("expected full burn, got %+v", instructions)
	}

	var id string
	for _, attr := range attrs {
		if attr.Key == "token_id" {
			id = attr.Value
		}
	}
	owner, err := f.traits.OwnerOf(f.ctx, id, false)
	if err != nil {
		t.Fatalf("owner of: %v", err)
	}
	if owner.Owner != player {
		t.Fatalf("expected owner %s, got %s", player, owner.Owner)
	}
}

func TestTraitMintUnknownRarity(t *testing.T) {
	f := newFixture(t)

	ext := collection.TraitMetadata{Type: "ears", Value: "pointy", Rarity: "mythic"}
	_, _, err := f.traitMgr.Mint(f.ctx, player, []chain.Coin{chain.NewCoin(100, native)}, ext)
	if !apperrors.IsCode(err, apperrors.CodeInvalidRarity) {
		t.Fatalf("expected INVALID_RARITY, got %v", err)
	}
}

func TestTraitMintNotInCatalog(t *testing.T) {
	f := newFixture(t)
	f.addCatalogTrait(t, "fox-ears", "ears", "pointy", "common")

	ext := collection.TraitMetadata{Type: "ears", Value: "round", Rarity: "common"}
	_, _, err := f.traitMgr.Mint(f.ctx, player, []chain.Coin{chain.NewCoin(100, native)}, ext)
	if !apperrors.IsCode(err, apperrors.CodeInvalidTraitMint) {
		t.Fatalf("expected INVALID_TRAIT_MINT, got %v", err)
	}
}

func TestTraitMintWrongFunds(t *testing.T) {
	f := newFixture(t)
	f.addCatalogTrait(t, "fox-ears", "ears", "pointy", "common")

	ext := collection.TraitMetadata{Type: "ears", Value: "pointy", Rarity: "common"}
	_, _, err := f.traitMgr.Mint(f.ctx, player, []chain.Coin{chain.NewCoin(99, native)}, ext)
	if !apperrors.IsCode(err, apperrors.CodeIncorrectMintFunds) {
		t.Fatalf("expected INCORRECT_MINT_FUNDS, got %v", err)
	}
}

func TestTraitMintBundle(t *testing.T) {
	f := newFixture(t)
	f.addCatalogTrait(t, "fox-ears", "ears", "pointy", "common")
	f.addCatalogTrait(t, "green-eyes", "eyes", "green", "common")

	bundle := catalog.Bundle{ID: "starter", Members: []string{"fox-ears", "green-eyes"}, MintPrice: chain.NewCoin(150, native)}
	if err := f.catalog.AddTraitBundle(f.ctx, "curator", bundle); err != nil {
		t.Fatalf("add bundle: %v", err)
	}

	_, _, err := f.traitMgr.MintBundle(f.ctx, player, "", []chain.Coin{chain.NewCoin(150, native)}, "starter")
	if err != nil {
		t.Fatalf("mint bundle: %v", err)
	}

	owned, err := f.traits.Tokens(f.ctx, player, "", 0)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	if len(owned) != 2 {
		t.Fatalf("expected 2 minted traits, got %v", owned)
	}
}

func TestTraitMintBundleUnknownID(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.traitMgr.MintBundle(f.ctx, player, "", []chain.Coin{chain.NewCoin(1, native)}, "missing")
	if !apperrors.IsCode(err, apperrors.CodeInvalidBundle) {
		t.Fatalf("expected INVALID_BUNDLE, got %v", err)
	}
}

func TestTraitOpenLootbox(t *testing.T) {
	f := newFixture(t)
	f.addCatalogTrait(t, "fox-ears", "ears", "pointy", "common")
	f.addCatalogTrait(t, "green-eyes", "eyes", "green", "common")

	lootbox := catalog.Lootbox{
		ID:            "mystery",
		Members:       []string{"fox-ears", "green-eyes"},
		Possibilities: []uint32{50, 50},
		MintPrice:     chain.NewCoin(80, native),
	}
	if err := f.catalog.AddTraitLootbox(f.ctx, "curator", lootbox); err != nil {
		t.Fatalf("add lootbox: %v", err)
	}

	_, attrs, err := f.traitMgr.OpenLootbox(f.ctx, player, "", []chain.Coin{chain.NewCoin(80, native)}, "mystery")
	if err != nil {
		t.Fatalf("open lootbox: %v", err)
	}

	var won string
	for _, attr := range attrs {
		if attr.Key == "won_element" {
			won = attr.Value
		}
	}
	if won != "fox-ears" && won != "green-eyes" {
		t.Fatalf("won element %q is not a lootbox member", won)
	}

	// Same block, same sender, same lootbox: the draw is deterministic.
	_, again, err := f.traitMgr.OpenLootbox(f.ctx, player, "", []chain.Coin{chain.NewCoin(80, native)}, "mystery")
	if err != nil {
		t.Fatalf("open lootbox again: %v", err)
	}
	var wonAgain string
	for _, attr := range again {
		if attr.Key == "won_element" {
			wonAgain = attr.Value
		}
	}
	if won != wonAgain {
		t.Fatalf("expected deterministic draw, got %q then %q", won, wonAgain)
	}
}

func TestTraitMintToReceiver(t *testing.T) {
	f := newFixture(t)
	f.addCatalogTrait(t, "fox-ears", "ears", "pointy", "common")

	ext := collection.TraitMetadata{Type: "ears", Value: "pointy", Rarity: "common"}
	_, _, err := f.traitMgr.MintTo(f.ctx, player, "friend", []chain.Coin{chain.NewCoin(100, native)}, ext)
	if err != nil {
		t.Fatalf("mint to: %v", err)
	}

	owned, err := f.traits.Tokens(f.ctx, "friend", "", 0)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	if len(owned) != 1 {
		t.Fatalf("expected friend to hold the trait, got %v", owned)
	}
}

func TestTraitUpdateConfigAdminGated(t *testing.T) {
	f := newFixture(t)

	cfg := Config{
		CollectionCodeID: 99,
		MintPrices:       []chain.Coin{chain.NewCoin(200, native)},
		Rarities:         []string{"common"},
		BurnRatio:        100,
	}
	if _, err := f.traitMgr.UpdateConfig(f.ctx, "stranger", cfg); !apperrors.IsCode(err, apperrors.CodeNotOwner) {
		t.Fatalf("expected NOT_OWNER, got %v", err)
	}
	if _, err := f.traitMgr.UpdateConfig(f.ctx, mgrOwner, cfg); err != nil {
		t.Fatalf("update config: %v", err)
	}

	got, err := f.traitMgr.Config(f.ctx)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if got.MintPrices[0].Amount != 200 {
		t.Fatalf("unexpected config %+v", got)
	}
	if got.CollectionCodeID != 8 {
		t.Fatalf("collection code id must survive updates, got %d", got.CollectionCodeID)
	}
}

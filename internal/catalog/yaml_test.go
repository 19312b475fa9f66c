package catalog

import (
	"testing"

	apperrors "github.com/louisbranch/menagerie/internal/errors"
)

const sampleDocument = `
traits:
  - id: fox-ears
    type: ears
    value: pointy
    rarity: common
    mint_price: 100ucool
  - id: green-eyes
    type: eyes
    value: green
    rarity: rare
    mint_price: 250ucool
characters:
  - id: sly-fox
    ears: pointy
    eyes: green
    mouth: grin
    fur_type: sleek
    fur_color: red
    tail_shape: bushy
    rarity: rare
    locked: true
    mint_price: 1000ucool
trait_bundles:
  - id: starter
    members: [fox-ears, green-eyes]
    mint_price: 300ucool
trait_lootboxes:
  - id: mystery
    members: [fox-ears, green-eyes]
    possibilities: [30, 70]
    mint_price: 150ucool
`

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleDocument))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	if len(doc.Traits) != 2 || len(doc.Characters) != 1 {
		t.Fatalf("unexpected document %+v", doc)
	}
	if doc.Traits[0].MintPrice.Amount != 100 || doc.Traits[0].MintPrice.Denom != "ucool" {
		t.Fatalf("unexpected price %+v", doc.Traits[0].MintPrice)
	}
	if doc.TraitLootboxes[0].Possibilities[1] != 70 {
		t.Fatalf("unexpected lootbox %+v", doc.TraitLootboxes[0])
	}
}

func TestImport(t *testing.T) {
	ctx := testCtx(t)
	reg := newRegistry(t, ctx)

	doc, err := ParseDocument([]byte(sampleDocument))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	if err := reg.Import(ctx, admin, doc); err != nil {
		t.Fatalf("import: %v", err)
	}

	if _, err := reg.Trait(ctx, "green-eyes"); err != nil {
		t.Fatalf("trait after import: %v", err)
	}
	if _, err := reg.Character(ctx, "sly-fox"); err != nil {
		t.Fatalf("character after import: %v", err)
	}
	if _, err := reg.TraitBundle(ctx, "starter"); err != nil {
		t.Fatalf("bundle after import: %v", err)
	}
	if _, err := reg.TraitLootbox(ctx, "mystery"); err != nil {
		t.Fatalf("lootbox after import: %v", err)
	}
}

func TestImportRejectsDuplicates(t *testing.T) {
	ctx := testCtx(t)
	reg := newRegistry(t, ctx)

	doc, err := ParseDocument([]byte(sampleDocument))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	if err := reg.Import(ctx, admin, doc); err != nil {
		t.Fatalf("import: %v", err)
	}
	if err := reg.Import(ctx, admin, doc); !apperrors.IsCode(err, apperrors.CodeIDExists) {
		t.Fatalf("expected ID_EXISTS on re-import, got %v", err)
	}
}

func TestImportAdminGated(t *testing.T) {
	ctx := testCtx(t)
	reg := newRegistry(t, ctx)

	doc, err := ParseDocument([]byte(sampleDocument))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	if err := reg.Import(ctx, "stranger", doc); !apperrors.IsCode(err, apperrors.CodeNotOwner) {
		t.Fatalf("expected NOT_OWNER, got %v", err)
	}
}

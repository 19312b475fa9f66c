package runtime

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/louisbranch/menagerie/internal/catalog"
	"github.com/louisbranch/menagerie/internal/chain"
	"github.com/louisbranch/menagerie/internal/collection"
	apperrors "github.com/louisbranch/menagerie/internal/errors"
	"github.com/louisbranch/menagerie/internal/ownable"
	"github.com/louisbranch/menagerie/internal/storage/bbolt"
)

const testGenesis = `
accounts:
  - address: player
    balances: [10000ucool]
  - address: collector
    balances: [5000ucool]
catalog_admin: curator
character_collection:
  name: Menagerie Characters
  symbol: MCHAR
  info:
    creator: creator
    description: Character tokens
    image: https://example.com/characters.png
trait_collection:
  name: Menagerie Traits
  symbol: MTRAIT
  info:
    creator: creator
    description: Trait tokens
    image: https://example.com/traits.png
character_manager:
  owner: owner
  config:
    collection_code_id: 7
    empty_mint_price: 50ucool
    mint_prices: [1000ucool]
    rarities: [rare]
    burn_ratio: 50
    destination: treasury
trait_manager:
  owner: owner
  config:
    collection_code_id: 8
    mint_prices: [100ucool]
    rarities: [common]
    burn_ratio: 100
`

const testCatalog = `
traits:
  - id: fox-ears
    type: ears
    value: pointy
    rarity: common
    mint_price: 100ucool
  - id: green-eyes
    type: eyes
    value: green
    rarity: common
    mint_price: 100ucool
`

func newTestHost(t *testing.T) *Host {
	t.Helper()

	store, err := bbolt.Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})

	host := New(store, Options{})
	genesis, err := ParseGenesis([]byte(testGenesis))
	if err != nil {
		t.Fatalf("parse genesis: %v", err)
	}
	if err := host.InitGenesis(context.Background(), genesis); err != nil {
		t.Fatalf("init genesis: %v", err)
	}
	return host
}

func importTestCatalog(t *testing.T, host *Host) {
	t.Helper()

	doc, err := catalog.ParseDocument([]byte(testCatalog))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	if err := host.ImportCatalog(context.Background(), "curator", doc); err != nil {
		t.Fatalf("import catalog: %v", err)
	}
}

func coins(amount uint64, denom string) []chain.Coin {
	return []chain.Coin{chain.NewCoin(amount, denom)}
}

func TestInitGenesis(t *testing.T) {
	host := newTestHost(t)
	ctx := context.Background()

	balance, err := host.Balance(ctx, "player", "ucool")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 10000 {
		t.Fatalf("expected 10000, got %d", balance)
	}

	minter, err := host.Minter(ctx, TargetCharacters)
	if err != nil {
		t.Fatalf("minter: %v", err)
	}
	if minter != "charactermanager" {
		t.Fatalf("expected charactermanager, got %s", minter)
	}

	info, err := host.ContractInfo(ctx, TargetTraits)
	if err != nil {
		t.Fatalf("contract info: %v", err)
	}
	if info.Symbol != "MTRAIT" {
		t.Fatalf("unexpected contract info %+v", info)
	}

	cfg, err := host.CharacterManagerConfig(ctx)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.EmptyMintPrice.Amount != 50 || cfg.BurnRatio != 50 || cfg.Destination != "treasury" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestMintTraitMovesFunds(t *testing.T) {
	host := newTestHost(t)
	importTestCatalog(t, host)
	ctx := context.Background()

	ext := collection.TraitMetadata{Type: "ears", Value: "pointy", Rarity: "common"}
	attrs, err := host.MintTrait(ctx, "player", coins(100, "ucool"), ext)
	if err != nil {
		t.Fatalf("mint trait: %v", err)
	}

	var id string
	for _, attr := range attrs {
		if attr.Key == "token_id" {
			id = attr.Value
		}
	}
	info, err := host.TraitInfo(ctx, id)
	if err != nil {
		t.Fatalf("trait info: %v", err)
	}
	if info.Access.Owner != "player" || info.Info.Extension.Value != "pointy" {
		t.Fatalf("unexpected trait info %+v", info)
	}

	// The trait manager burns the full price.
	balance, err := host.Balance(ctx, "player", "ucool")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 9900 {
		t.Fatalf("expected 9900, got %d", balance)
	}
	burned, err := host.Burned(ctx, "ucool")
	if err != nil {
		t.Fatalf("burned: %v", err)
	}
	if burned != 100 {
		t.Fatalf("expected 100 burned, got %d", burned)
	}
}

func TestMintCharacterSplitsProceeds(t *testing.T) {
	host := newTestHost(t)
	ctx := context.Background()

	_, err := host.MintCharacter(ctx, "player", coins(50, "ucool"), collection.CharacterMetadata{})
	if err != nil {
		t.Fatalf("mint character: %v", err)
	}

	burned, err := host.Burned(ctx, "ucool")
	if err != nil {
		t.Fatalf("burned: %v", err)
	}
	if burned != 25 {
		t.Fatalf("expected 25 burned, got %d", burned)
	}
	treasury, err := host.Balance(ctx, "treasury", "ucool")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if treasury != 25 {
		t.Fatalf("expected 25 forwarded, got %d", treasury)
	}
	player, err := host.Balance(ctx, "player", "ucool")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if player != 9950 {
		t.Fatalf("expected 9950, got %d", player)
	}
}

func TestFailedCallRollsBack(t *testing.T) {
	host := newTestHost(t)
	importTestCatalog(t, host)
	ctx := context.Background()

	// Funds are attached before the manager runs, but an unknown rarity
	// fails the call and the transaction discards the transfer too.
	ext := collection.TraitMetadata{Type: "ears", Value: "pointy", Rarity: "mythic"}
	_, err := host.MintTrait(ctx, "player", coins(100, "ucool"), ext)
	if !apperrors.IsCode(err, apperrors.CodeInvalidRarity) {
		t.Fatalf("expected INVALID_RARITY, got %v", err)
	}

	balance, err := host.Balance(ctx, "player", "ucool")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 10000 {
		t.Fatalf("expected untouched balance, got %d", balance)
	}

	count, err := host.NumTokens(ctx, TargetTraits)
	if err != nil {
		t.Fatalf("num tokens: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no tokens, got %d", count)
	}
}

func TestMintInsufficientFunds(t *testing.T) {
	host := newTestHost(t)
	importTestCatalog(t, host)
	ctx := context.Background()

	ext := collection.TraitMetadata{Type: "ears", Value: "pointy", Rarity: "common"}
	_, err := host.MintTrait(ctx, "pauper", coins(100, "ucool"), ext)
	if !apperrors.IsCode(err, apperrors.CodeInsufficientFunds) {
		t.Fatalf("expected INSUFFICIENT_FUNDS, got %v", err)
	}
}

func TestAssembleAndLockCharacter(t *testing.T) {
	host := newTestHost(t)
	importTestCatalog(t, host)
	ctx := context.Background()

	attrs, err := host.MintCharacter(ctx, "player", coins(50, "ucool"), collection.CharacterMetadata{})
	if err != nil {
		t.Fatalf("mint character: %v", err)
	}
	var charID string
	for _, attr := range attrs {
		if attr.Key == "token_id" {
			charID = attr.Value
		}
	}

	earsExt := collection.TraitMetadata{Type: "ears", Value: "pointy", Rarity: "common"}
	attrs, err = host.MintTrait(ctx, "player", coins(100, "ucool"), earsExt)
	if err != nil {
		t.Fatalf("mint trait: %v", err)
	}
	var traitID string
	for _, attr := range attrs {
		if attr.Key == "token_id" {
			traitID = attr.Value
		}
	}

	if _, err := host.ModifyCharacter(ctx, "player", charID, []string{traitID}); err != nil {
		t.Fatalf("modify character: %v", err)
	}
	info, err := host.CharacterInfo(ctx, charID)
	if err != nil {
		t.Fatalf("character info: %v", err)
	}
	if info.Info.Extension.Ears != "pointy" {
		t.Fatalf("expected ears equipped, got %+v", info.Info.Extension)
	}

	// The manager burns the equipped traits while locking, which needs an
	// operator grant on the trait collection.
	if _, err := host.ApproveAll(ctx, TargetTraits, "player", "charactermanager", chain.Never()); err != nil {
		t.Fatalf("approve all: %v", err)
	}
	if _, err := host.LockCharacter(ctx, "player", charID); err != nil {
		t.Fatalf("lock character: %v", err)
	}

	if _, err := host.TraitInfo(ctx, traitID); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected trait burned, got %v", err)
	}

	info, err = host.CharacterInfo(ctx, charID)
	if err != nil {
		t.Fatalf("character info: %v", err)
	}
	if !info.Info.Extension.Locked {
		t.Fatal("expected character locked")
	}

	// Locked characters transfer.
	if _, err := host.Transfer(ctx, TargetCharacters, "player", "collector", charID); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	owned, err := host.Tokens(ctx, TargetCharacters, "collector", "", 0)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	if len(owned) != 1 || owned[0] != charID {
		t.Fatalf("expected collector to hold %s, got %v", charID, owned)
	}
}

func TestUnlockedCharacterCannotTransfer(t *testing.T) {
	host := newTestHost(t)
	ctx := context.Background()

	attrs, err := host.MintCharacter(ctx, "player", coins(50, "ucool"), collection.CharacterMetadata{})
	if err != nil {
		t.Fatalf("mint character: %v", err)
	}
	var charID string
	for _, attr := range attrs {
		if attr.Key == "token_id" {
			charID = attr.Value
		}
	}

	_, err = host.Transfer(ctx, TargetCharacters, "player", "collector", charID)
	if !apperrors.IsCode(err, apperrors.CodeCharacterNotFrozen) {
		t.Fatalf("expected CHARACTER_NOT_FROZEN, got %v", err)
	}
}

func TestSendNFTPackagesReceiveMsg(t *testing.T) {
	host := newTestHost(t)
	importTestCatalog(t, host)
	ctx := context.Background()

	ext := collection.TraitMetadata{Type: "ears", Value: "pointy", Rarity: "common"}
	attrs, err := host.MintTrait(ctx, "player", coins(100, "ucool"), ext)
	if err != nil {
		t.Fatalf("mint trait: %v", err)
	}
	var id string
	for _, attr := range attrs {
		if attr.Key == "token_id" {
			id = attr.Value
		}
	}

	receive, _, err := host.SendNFT(ctx, TargetTraits, "player", "somecontract", id, []byte("equip"))
	if err != nil {
		t.Fatalf("send nft: %v", err)
	}
	if receive.Contract != "somecontract" || receive.Sender != "player" || receive.TokenID != id {
		t.Fatalf("unexpected receive msg %+v", receive)
	}
	if string(receive.Payload) != "equip" {
		t.Fatalf("unexpected payload %q", receive.Payload)
	}

	info, err := host.TraitInfo(ctx, id)
	if err != nil {
		t.Fatalf("trait info: %v", err)
	}
	if info.Access.Owner != "somecontract" {
		t.Fatalf("expected contract to own the token, got %s", info.Access.Owner)
	}
}

func TestUpdateMinterOwnership(t *testing.T) {
	host := newTestHost(t)
	ctx := context.Background()

	propose := ownable.Action{TransferTo: "newminter"}
	if _, err := host.UpdateMinterOwnership(ctx, TargetTraits, "stranger", propose); !apperrors.IsCode(err, apperrors.CodeNotOwner) {
		t.Fatalf("expected NOT_OWNER, got %v", err)
	}
	if _, err := host.UpdateMinterOwnership(ctx, TargetTraits, "traitmanager", propose); err != nil {
		t.Fatalf("propose: %v", err)
	}

	// The proposal alone changes nothing.
	minter, err := host.Minter(ctx, TargetTraits)
	if err != nil {
		t.Fatalf("minter: %v", err)
	}
	if minter != "traitmanager" {
		t.Fatalf("expected traitmanager until accepted, got %s", minter)
	}

	if _, err := host.UpdateMinterOwnership(ctx, TargetTraits, "newminter", ownable.Action{Accept: true}); err != nil {
		t.Fatalf("accept: %v", err)
	}
	minter, err = host.Minter(ctx, TargetTraits)
	if err != nil {
		t.Fatalf("minter: %v", err)
	}
	if minter != "newminter" {
		t.Fatalf("expected newminter, got %s", minter)
	}
}

func TestCatalogQuery(t *testing.T) {
	host := newTestHost(t)
	importTestCatalog(t, host)

	doc, err := host.Catalog(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if len(doc.Traits) != 2 {
		t.Fatalf("expected 2 traits, got %+v", doc.Traits)
	}
}

func TestImportCatalogAdminGated(t *testing.T) {
	host := newTestHost(t)

	doc, err := catalog.ParseDocument([]byte(testCatalog))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	if err := host.ImportCatalog(context.Background(), "stranger", doc); !apperrors.IsCode(err, apperrors.CodeNotOwner) {
		t.Fatalf("expected NOT_OWNER, got %v", err)
	}
}

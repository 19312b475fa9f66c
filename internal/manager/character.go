package manager

import (
	"github.com/louisbranch/menagerie/internal/bank"
	"github.com/louisbranch/menagerie/internal/catalog"
	"github.com/louisbranch/menagerie/internal/chain"
	"github.com/louisbranch/menagerie/internal/collection"
	apperrors "github.com/louisbranch/menagerie/internal/errors"
	"github.com/louisbranch/menagerie/internal/ownable"
	"github.com/louisbranch/menagerie/internal/selector"
	"github.com/louisbranch/menagerie/internal/storage"
)

// CharacterManager sells characters: blank ones to assemble from traits,
// premade ones from the catalog, bundles, and lootboxes. It is the minter
// of its character collection, so every mint, modify, and lock command it
// issues passes the collection's minter gate.
type CharacterManager struct {
	ns     string
	addr   string
	native string

	characters *collection.Collection[collection.CharacterMetadata]
	traits     *collection.Collection[collection.TraitMetadata]
	catalog    *catalog.Registry
	owner      *ownable.Ownable
}

// NewCharacterManager binds a character manager to its storage namespace,
// its own ledger address, and the contracts it talks to.
func NewCharacterManager(namespace, addr, native string, characters *collection.Collection[collection.CharacterMetadata], traits *collection.Collection[collection.TraitMetadata], cat *catalog.Registry) *CharacterManager {
	return &CharacterManager{
		ns:         namespace,
		addr:       addr,
		native:     native,
		characters: characters,
		traits:     traits,
		catalog:    cat,
		owner:      ownable.New(namespace + "/owner"),
	}
}

// Address is the manager's own ledger address.
func (m *CharacterManager) Address() string {
	return m.addr
}

func (m *CharacterManager) configKey() []byte {
	return storage.Join(m.ns, "config")
}

func (m *CharacterManager) tokenIndexKey() []byte {
	return storage.Join(m.ns, "token_index")
}

// Instantiate validates and stores the initial configuration and the
// manager's admin owner.
func (m *CharacterManager) Instantiate(ctx chain.Context, owner string, cfg Config) error {
	if err := cfg.validate(m.native, true); err != nil {
		return err
	}
	if err := m.owner.Initialize(ctx, owner); err != nil {
		return err
	}
	return saveConfig(ctx, m.configKey(), cfg)
}

// Mint sells a character to the sender.
func (m *CharacterManager) Mint(ctx chain.Context, sender string, funds []chain.Coin, ext collection.CharacterMetadata) ([]bank.Instruction, []chain.Attribute, error) {
	return m.MintTo(ctx, sender, sender, funds, ext)
}

// MintTo sells a character minted to receiver. A request with a rarity is a
// premade mint validated field by field against the catalog; one without is
// a blank mint at the configured empty price.
func (m *CharacterManager) MintTo(ctx chain.Context, sender, receiver string, funds []chain.Coin, ext collection.CharacterMetadata) ([]bank.Instruction, []chain.Attribute, error) {
	if err := chain.ValidateAddress(receiver); err != nil {
		return nil, nil, err
	}
	sent, err := oneCoin(funds)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := loadConfig(ctx, m.configKey())
	if err != nil {
		return nil, nil, err
	}

	// Equipped traits only ever appear on an existing character through
	// the modify flow, never on a fresh mint.
	if len(ext.TraitsEquipped) > 0 {
		return nil, nil, apperrors.New(apperrors.CodeInvalidMintTraits, "minted characters cannot have equipped traits")
	}

	var price chain.Coin
	if ext.Rarity != "" {
		entry, ok, err := m.catalog.FindCharacter(ctx, func(c catalog.Character) bool {
			return c.Ears == ext.Ears &&
				c.Eyes == ext.Eyes &&
				c.Mouth == ext.Mouth &&
				c.FurType == ext.FurType &&
				c.FurColor == ext.FurColor &&
				c.TailShape == ext.TailShape &&
				c.Locked == ext.Locked &&
				c.Rarity == ext.Rarity
		})
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, apperrors.New(apperrors.CodeInvalidCharacter, "character does not match any catalog entry")
		}
		price = entry.MintPrice
	} else {
		if ext.HasTraitValues() || ext.Locked {
			return nil, nil, apperrors.New(apperrors.CodeInvalidEmptyMint, "empty mints must have no trait values and must not be locked")
		}
		price = cfg.EmptyMintPrice
	}

	instructions, err := splitFunds(cfg, m.native, m.addr, sent, price)
	if err != nil {
		return nil, nil, err
	}

	id, err := nextTokenIndex(ctx, m.tokenIndexKey())
	if err != nil {
		return nil, nil, err
	}
	if _, err := m.characters.Mint(ctx, m.addr, id, receiver, "", ext); err != nil {
		return nil, nil, err
	}

	attrs := []chain.Attribute{
		chain.Attr("action", "mint"),
		chain.Attr("sender", sender),
		chain.Attr("receiver", receiver),
		chain.Attr("token_id", id),
	}
	return instructions, attrs, nil
}

// MintBundle sells every character of a bundle, minted in member order.
func (m *CharacterManager) MintBundle(ctx chain.Context, sender, receiver string, funds []chain.Coin, bundleID string) ([]bank.Instruction, []chain.Attribute, error) {
	sendTo, err := resolveReceiver(sender, receiver)
	if err != nil {
		return nil, nil, err
	}
	sent, err := oneCoin(funds)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := loadConfig(ctx, m.configKey())
	if err != nil {
		return nil, nil, err
	}

	bundle, err := m.catalog.CharacterBundle(ctx, bundleID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil, nil, apperrors.WithMetadata(apperrors.CodeInvalidBundle, "unknown character bundle", map[string]string{"id": bundleID})
		}
		return nil, nil, err
	}

	instructions, err := splitFunds(cfg, m.native, m.addr, sent, bundle.MintPrice)
	if err != nil {
		return nil, nil, err
	}

	for _, member := range bundle.Members {
		if err := m.mintCatalogCharacter(ctx, member, sendTo); err != nil {
			return nil, nil, err
		}
	}

	attrs := []chain.Attribute{
		chain.Attr("action", "mint_bundle"),
		chain.Attr("bundle_id", bundleID),
		chain.Attr("sender", sender),
		chain.Attr("receiver", sendTo),
	}
	return instructions, attrs, nil
}

// OpenLootbox sells one character selected deterministically from the
// lootbox's weighted member list.
func (m *CharacterManager) OpenLootbox(ctx chain.Context, sender, receiver string, funds []chain.Coin, lootboxID string) ([]bank.Instruction, []chain.Attribute, error) {
	sendTo, err := resolveReceiver(sender, receiver)
	if err != nil {
		return nil, nil, err
	}
	sent, err := oneCoin(funds)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := loadConfig(ctx, m.configKey())
	if err != nil {
		return nil, nil, err
	}

	lootbox, err := m.catalog.CharacterLootbox(ctx, lootboxID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil, nil, apperrors.WithMetadata(apperrors.CodeInvalidLootbox, "unknown character lootbox", map[string]string{"id": lootboxID})
		}
		return nil, nil, err
	}

	instructions, err := splitFunds(cfg, m.native, m.addr, sent, lootbox.MintPrice)
	if err != nil {
		return nil, nil, err
	}

	drawn := selector.Draw(sendTo, ctx.Height, ctx.TxIndex, len(lootbox.Members))
	position := selector.Pick(lootbox.Possibilities, drawn)
	if err := m.mintCatalogCharacter(ctx, lootbox.Members[position], sendTo); err != nil {
		return nil, nil, err
	}

	attrs := []chain.Attribute{
		chain.Attr("action", "open_lootbox"),
		chain.Attr("lootbox_id", lootboxID),
		chain.Attr("won_element", lootbox.Members[position]),
		chain.Attr("sender", sender),
		chain.Attr("receiver", sendTo),
	}
	return instructions, attrs, nil
}

// ChangeName renames a character. Only the current owner may rename; the
// manager relays the change through its minter-gated modify command.
func (m *CharacterManager) ChangeName(ctx chain.Context, sender, id, newName string) ([]chain.Attribute, error) {
	info, err := m.characters.AllNftInfo(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if info.Access.Owner != sender {
		return nil, apperrors.New(apperrors.CodeNotCharacterOwner, "sender does not own this character")
	}

	meta := info.Info.Extension
	meta.Name = newName
	if _, err := m.characters.Modify(ctx, m.addr, id, meta); err != nil {
		return nil, err
	}

	return []chain.Attribute{
		chain.Attr("action", "change_name"),
		chain.Attr("sender", sender),
		chain.Attr("character_id", id),
	}, nil
}

// ModifyCharacter re-derives the character's trait slots from the trait
// tokens the sender owns. Every referenced trait must be owned by the
// sender and carry a known category.
func (m *CharacterManager) ModifyCharacter(ctx chain.Context, sender, id string, traitIDs []string) ([]chain.Attribute, error) {
	info, err := m.characters.AllNftInfo(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if info.Access.Owner != sender {
		return nil, apperrors.New(apperrors.CodeNotCharacterOwner, "sender does not own this character")
	}
	if info.Info.Extension.Locked {
		return nil, apperrors.New(apperrors.CodeCharacterAlreadyLocked, "character is locked")
	}

	meta := collection.CharacterMetadata{
		Name:           info.Info.Extension.Name,
		Rarity:         info.Info.Extension.Rarity,
		TraitsEquipped: traitIDs,
	}

	for _, traitID := range traitIDs {
		trait, err := m.traits.Registry().Load(ctx, traitID)
		if err != nil {
			return nil, err
		}
		if trait.Owner != sender {
			return nil, apperrors.WithMetadata(apperrors.CodeNotTraitOwner, "sender does not own this trait", map[string]string{"trait_id": traitID})
		}
		switch trait.Extension.Type {
		case "ears":
			meta.Ears = trait.Extension.Value
		case "eyes":
			meta.Eyes = trait.Extension.Value
		case "mouth":
			meta.Mouth = trait.Extension.Value
		case "fur_type":
			meta.FurType = trait.Extension.Value
		case "fur_color":
			meta.FurColor = trait.Extension.Value
		case "tail_shape":
			meta.TailShape = trait.Extension.Value
		default:
			return nil, apperrors.WithMetadata(apperrors.CodeInvalidTrait, "unknown trait category", map[string]string{"trait_id": traitID})
		}
	}

	if _, err := m.characters.Modify(ctx, m.addr, id, meta); err != nil {
		return nil, err
	}

	return []chain.Attribute{
		chain.Attr("action", "modify_character"),
		chain.Attr("sender", sender),
		chain.Attr("character_id", id),
	}, nil
}

// LockCharacter finalizes a character: every equipped trait token is burned
// and the character's one-way lock flag is set, making it transferable.
// Burning the traits requires the sender to have granted this manager
// operator rights on the trait collection.
func (m *CharacterManager) LockCharacter(ctx chain.Context, sender, id string) ([]chain.Attribute, error) {
	info, err := m.characters.AllNftInfo(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if info.Access.Owner != sender {
		return nil, apperrors.New(apperrors.CodeNotCharacterOwner, "sender does not own this character")
	}
	if info.Info.Extension.Locked {
		return nil, apperrors.New(apperrors.CodeCharacterAlreadyLocked, "character is locked")
	}

	if equipped := info.Info.Extension.TraitsEquipped; len(equipped) > 0 {
		if _, err := m.traits.BurnMultiple(ctx, m.addr, equipped); err != nil {
			return nil, err
		}
	}
	if _, err := m.characters.FreezeToken(ctx, m.addr, id); err != nil {
		return nil, err
	}

	return []chain.Attribute{
		chain.Attr("action", "lock_character"),
		chain.Attr("sender", sender),
		chain.Attr("character_id", id),
	}, nil
}

// UpdateConfig replaces the manager configuration. Admin only. The
// collection code id is fixed at instantiation and survives updates.
func (m *CharacterManager) UpdateConfig(ctx chain.Context, sender string, cfg Config) ([]chain.Attribute, error) {
	if err := m.owner.AssertOwner(ctx, sender); err != nil {
		return nil, err
	}
	current, err := loadConfig(ctx, m.configKey())
	if err != nil {
		return nil, err
	}
	cfg.CollectionCodeID = current.CollectionCodeID
	if err := cfg.validate(m.native, true); err != nil {
		return nil, err
	}
	if err := saveConfig(ctx, m.configKey(), cfg); err != nil {
		return nil, err
	}
	return []chain.Attribute{
		chain.Attr("action", "update_config"),
		chain.Attr("sender", sender),
	}, nil
}

// UpdateOwnership applies an admin ownership action.
func (m *CharacterManager) UpdateOwnership(ctx chain.Context, sender string, action ownable.Action) (ownable.Ownership, error) {
	return m.owner.Update(ctx, sender, action)
}

// Config returns the current configuration.
func (m *CharacterManager) Config(ctx chain.Context) (Config, error) {
	return loadConfig(ctx, m.configKey())
}

// AllowedCollectionCodeID returns the collection code id mints are bound to.
func (m *CharacterManager) AllowedCollectionCodeID(ctx chain.Context) (uint64, error) {
	cfg, err := loadConfig(ctx, m.configKey())
	if err != nil {
		return 0, err
	}
	return cfg.CollectionCodeID, nil
}

func (m *CharacterManager) mintCatalogCharacter(ctx chain.Context, catalogID, receiver string) error {
	entry, err := m.catalog.Character(ctx, catalogID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return apperrors.WithMetadata(apperrors.CodeInvalidCharacter, "unknown catalog character", map[string]string{"id": catalogID})
		}
		return err
	}

	meta := collection.CharacterMetadata{
		Ears:      entry.Ears,
		Eyes:      entry.Eyes,
		Mouth:     entry.Mouth,
		FurType:   entry.FurType,
		FurColor:  entry.FurColor,
		TailShape: entry.TailShape,
		Rarity:    entry.Rarity,
		Locked:    entry.Locked,
	}
	id, err := nextTokenIndex(ctx, m.tokenIndexKey())
	if err != nil {
		return err
	}
	_, err = m.characters.Mint(ctx, m.addr, id, receiver, "", meta)
	return err
}

func resolveReceiver(sender, receiver string) (string, error) {
	if receiver == "" {
		return sender, nil
	}
	if err := chain.ValidateAddress(receiver); err != nil {
		return "", err
	}
	return receiver, nil
}

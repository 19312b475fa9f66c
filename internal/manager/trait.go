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

// TraitManager sells trait tokens priced by rarity tier, plus trait bundles
// and lootboxes. It is the minter of its trait collection.
type TraitManager struct {
	ns     string
	addr   string
	native string

	traits  *collection.Collection[collection.TraitMetadata]
	catalog *catalog.Registry
	owner   *ownable.Ownable
}

// NewTraitManager binds a trait manager to its storage namespace, its own
// ledger address, and the contracts it talks to.
func NewTraitManager(namespace, addr, native string, traits *collection.Collection[collection.TraitMetadata], cat *catalog.Registry) *TraitManager {
	return &TraitManager{
		ns:      namespace,
		addr:    addr,
		native:  native,
		traits:  traits,
		catalog: cat,
		owner:   ownable.New(namespace + "/owner"),
	}
}

// Address is the manager's own ledger address.
func (m *TraitManager) Address() string {
	return m.addr
}

func (m *TraitManager) configKey() []byte {
	return storage.Join(m.ns, "config")
}

func (m *TraitManager) tokenIndexKey() []byte {
	return storage.Join(m.ns, "token_index")
}

// Instantiate validates and stores the initial configuration and the
// manager's admin owner.
func (m *TraitManager) Instantiate(ctx chain.Context, owner string, cfg Config) error {
	if err := cfg.validate(m.native, false); err != nil {
		return err
	}
	if err := m.owner.Initialize(ctx, owner); err != nil {
		return err
	}
	return saveConfig(ctx, m.configKey(), cfg)
}

// Mint sells a trait to the sender.
func (m *TraitManager) Mint(ctx chain.Context, sender string, funds []chain.Coin, ext collection.TraitMetadata) ([]bank.Instruction, []chain.Attribute, error) {
	return m.MintTo(ctx, sender, sender, funds, ext)
}

// MintTo sells a trait minted to receiver. The price comes from the rarity
// tier table and the requested trait must exist in the catalog.
func (m *TraitManager) MintTo(ctx chain.Context, sender, receiver string, funds []chain.Coin, ext collection.TraitMetadata) ([]bank.Instruction, []chain.Attribute, error) {
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

	price, err := cfg.priceForRarity(ext.Rarity)
	if err != nil {
		return nil, nil, err
	}

	_, ok, err := m.catalog.FindTrait(ctx, func(t catalog.Trait) bool {
		return t.Type == ext.Type && t.Value == ext.Value && t.Rarity == ext.Rarity
	})
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, apperrors.New(apperrors.CodeInvalidTraitMint, "trait does not match any catalog entry")
	}

	instructions, err := splitFunds(cfg, m.native, m.addr, sent, price)
	if err != nil {
		return nil, nil, err
	}

	id, err := nextTokenIndex(ctx, m.tokenIndexKey())
	if err != nil {
		return nil, nil, err
	}
	if _, err := m.traits.Mint(ctx, m.addr, id, receiver, "", ext); err != nil {
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

// MintBundle sells every trait of a bundle, minted in member order.
func (m *TraitManager) MintBundle(ctx chain.Context, sender, receiver string, funds []chain.Coin, bundleID string) ([]bank.Instruction, []chain.Attribute, error) {
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

	bundle, err := m.catalog.TraitBundle(ctx, bundleID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil, nil, apperrors.WithMetadata(apperrors.CodeInvalidBundle, "unknown trait bundle", map[string]string{"id": bundleID})
		}
		return nil, nil, err
	}

	instructions, err := splitFunds(cfg, m.native, m.addr, sent, bundle.MintPrice)
	if err != nil {
		return nil, nil, err
	}

	for _, member := range bundle.Members {
		if err := m.mintCatalogTrait(ctx, member, sendTo); err != nil {
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

// OpenLootbox sells one trait selected deterministically from the lootbox's
// weighted member list.
func (m *TraitManager) OpenLootbox(ctx chain.Context, sender, receiver string, funds []chain.Coin, lootboxID string) ([]bank.Instruction, []chain.Attribute, error) {
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

	lootbox, err := m.catalog.TraitLootbox(ctx, lootboxID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil, nil, apperrors.WithMetadata(apperrors.CodeInvalidLootbox, "unknown trait lootbox", map[string]string{"id": lootboxID})
		}
		return nil, nil, err
	}

	instructions, err := splitFunds(cfg, m.native, m.addr, sent, lootbox.MintPrice)
	if err != nil {
		return nil, nil, err
	}

	drawn := selector.Draw(sendTo, ctx.Height, ctx.TxIndex, len(lootbox.Members))
	position := selector.Pick(lootbox.Possibilities, drawn)
	if err := m.mintCatalogTrait(ctx, lootbox.Members[position], sendTo); err != nil {
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

// UpdateConfig replaces the manager configuration. Admin only. The
// collection code id is fixed at instantiation and survives updates.
func (m *TraitManager) UpdateConfig(ctx chain.Context, sender string, cfg Config) ([]chain.Attribute, error) {
	if err := m.owner.AssertOwner(ctx, sender); err != nil {
		return nil, err
	}
	current, err := loadConfig(ctx, m.configKey())
	if err != nil {
		return nil, err
	}
	cfg.CollectionCodeID = current.CollectionCodeID
	if err := cfg.validate(m.native, false); err != nil {
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
func (m *TraitManager) UpdateOwnership(ctx chain.Context, sender string, action ownable.Action) (ownable.Ownership, error) {
	return m.owner.Update(ctx, sender, action)
}

// Config returns the current configuration.
func (m *TraitManager) Config(ctx chain.Context) (Config, error) {
	return loadConfig(ctx, m.configKey())
}

// AllowedCollectionCodeID returns the collection code id mints are bound to.
func (m *TraitManager) AllowedCollectionCodeID(ctx chain.Context) (uint64, error) {
	cfg, err := loadConfig(ctx, m.configKey())
	if err != nil {
		return 0, err
	}
	return cfg.CollectionCodeID, nil
}

func (m *TraitManager) mintCatalogTrait(ctx chain.Context, catalogID, receiver string) error {
	entry, err := m.catalog.Trait(ctx, catalogID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return apperrors.WithMetadata(apperrors.CodeInvalidTraitMint, "unknown catalog trait", map[string]string{"id": catalogID})
		}
		return err
	}

	meta := collection.TraitMetadata{Type: entry.Type, Value: entry.Value, Rarity: entry.Rarity}
	id, err := nextTokenIndex(ctx, m.tokenIndexKey())
	if err != nil {
		return err
	}
	_, err = m.traits.Mint(ctx, m.addr, id, receiver, "", meta)
	return err
}

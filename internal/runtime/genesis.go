package runtime

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/louisbranch/menagerie/internal/bank"
	"github.com/louisbranch/menagerie/internal/chain"
	"github.com/louisbranch/menagerie/internal/collection"
	"github.com/louisbranch/menagerie/internal/manager"
)

// Genesis is the initial chain state: funded accounts, the two collections,
// the catalog admin, and both manager configurations.
type Genesis struct {
	Accounts            []GenesisAccount  `yaml:"accounts"`
	CatalogAdmin        string            `yaml:"catalog_admin"`
	CharacterCollection GenesisCollection `yaml:"character_collection"`
	TraitCollection     GenesisCollection `yaml:"trait_collection"`
	CharacterManager    GenesisManager    `yaml:"character_manager"`
	TraitManager        GenesisManager    `yaml:"trait_manager"`
}

// GenesisAccount funds one address.
type GenesisAccount struct {
	Address  string       `yaml:"address"`
	Balances []chain.Coin `yaml:"balances"`
}

// GenesisCollection declares a collection. The minter is always the
// corresponding manager, never a genesis field.
type GenesisCollection struct {
	Name   string      `yaml:"name"`
	Symbol string      `yaml:"symbol"`
	Info   GenesisInfo `yaml:"info"`
}

// GenesisInfo is the collection metadata at genesis.
type GenesisInfo struct {
	Creator         string          `yaml:"creator"`
	Description     string          `yaml:"description"`
	Image           string          `yaml:"image"`
	ExternalLink    string          `yaml:"external_link"`
	ExplicitContent bool            `yaml:"explicit_content"`
	Royalty         *GenesisRoyalty `yaml:"royalty"`
}

// GenesisRoyalty is the optional royalty configuration at genesis.
type GenesisRoyalty struct {
	PaymentAddress string `yaml:"payment_address"`
	ShareBps       uint32 `yaml:"share_bps"`
}

// GenesisManager declares a manager's admin owner and configuration.
type GenesisManager struct {
	Owner  string         `yaml:"owner"`
	Config manager.Config `yaml:"config"`
}

// ParseGenesis decodes a YAML genesis document.
func ParseGenesis(raw []byte) (Genesis, error) {
	var g Genesis
	if err := yaml.Unmarshal(raw, &g); err != nil {
		return Genesis{}, fmt.Errorf("parse genesis: %w", err)
	}
	return g, nil
}

func (info GenesisInfo) collectionInfo() collection.CollectionInfo {
	out := collection.CollectionInfo{
		Creator:         info.Creator,
		Description:     info.Description,
		Image:           info.Image,
		ExternalLink:    info.ExternalLink,
		ExplicitContent: info.ExplicitContent,
	}
	if info.Royalty != nil {
		out.Royalty = &collection.RoyaltyInfo{
			PaymentAddress: info.Royalty.PaymentAddress,
			ShareBps:       info.Royalty.ShareBps,
		}
	}
	return out
}

// InitGenesis instantiates every contract and funds the genesis accounts in
// one transaction.
func (h *Host) InitGenesis(ctx context.Context, g Genesis) error {
	_, err := h.execute(ctx, "runtime.init_genesis", func(cctx chain.Context) ([]bank.Instruction, []chain.Attribute, error) {
		for _, account := range g.Accounts {
			if err := chain.ValidateAddress(account.Address); err != nil {
				return nil, nil, err
			}
			for _, coin := range account.Balances {
				if err := h.ledger.Fund(cctx, account.Address, coin); err != nil {
					return nil, nil, err
				}
			}
		}

		if _, err := h.characters.Instantiate(cctx, collection.InstantiateMsg{
			Name:   g.CharacterCollection.Name,
			Symbol: g.CharacterCollection.Symbol,
			Minter: h.charMgr.Address(),
			Info:   g.CharacterCollection.Info.collectionInfo(),
		}); err != nil {
			return nil, nil, fmt.Errorf("instantiate character collection: %w", err)
		}
		if _, err := h.traits.Instantiate(cctx, collection.InstantiateMsg{
			Name:   g.TraitCollection.Name,
			Symbol: g.TraitCollection.Symbol,
			Minter: h.traitMgr.Address(),
			Info:   g.TraitCollection.Info.collectionInfo(),
		}); err != nil {
			return nil, nil, fmt.Errorf("instantiate trait collection: %w", err)
		}

		if err := h.catalog.Instantiate(cctx, g.CatalogAdmin); err != nil {
			return nil, nil, fmt.Errorf("instantiate catalog: %w", err)
		}
		if err := h.charMgr.Instantiate(cctx, g.CharacterManager.Owner, g.CharacterManager.Config); err != nil {
			return nil, nil, fmt.Errorf("instantiate character manager: %w", err)
		}
		if err := h.traitMgr.Instantiate(cctx, g.TraitManager.Owner, g.TraitManager.Config); err != nil {
			return nil, nil, fmt.Errorf("instantiate trait manager: %w", err)
		}
		return nil, nil, nil
	})
	return err
}

package runtime

import (
	"context"
	"fmt"

	"github.com/louisbranch/menagerie/internal/bank"
	"github.com/louisbranch/menagerie/internal/catalog"
	"github.com/louisbranch/menagerie/internal/chain"
	"github.com/louisbranch/menagerie/internal/collection"
	"github.com/louisbranch/menagerie/internal/manager"
	"github.com/louisbranch/menagerie/internal/ownable"
	"github.com/louisbranch/menagerie/internal/token"
)

// none wraps a collection call that moves no funds.
func none(attrs []chain.Attribute, err error) ([]bank.Instruction, []chain.Attribute, error) {
	return nil, attrs, err
}

// MintCharacter buys a character for the sender.
func (h *Host) MintCharacter(ctx context.Context, sender string, funds []chain.Coin, ext collection.CharacterMetadata) ([]chain.Attribute, error) {
	return h.MintCharacterTo(ctx, sender, sender, funds, ext)
}

// MintCharacterTo buys a character minted to receiver.
func (h *Host) MintCharacterTo(ctx context.Context, sender, receiver string, funds []chain.Coin, ext collection.CharacterMetadata) ([]chain.Attribute, error) {
	return h.execute(ctx, "character_manager.mint", func(cctx chain.Context) ([]bank.Instruction, []chain.Attribute, error) {
		if err := h.attachFunds(cctx, sender, h.charMgr.Address(), funds); err != nil {
			return nil, nil, err
		}
		return h.charMgr.MintTo(cctx, sender, receiver, funds, ext)
	})
}

// MintCharacterBundle buys every character of a bundle.
func (h *Host) MintCharacterBundle(ctx context.Context, sender, receiver string, funds []chain.Coin, bundleID string) ([]chain.Attribute, error) {
	return h.execute(ctx, "character_manager.mint_bundle", func(cctx chain.Context) ([]bank.Instruction, []chain.Attribute, error) {
		if err := h.attachFunds(cctx, sender, h.charMgr.Address(), funds); err != nil {
			return nil, nil, err
		}
		return h.charMgr.MintBundle(cctx, sender, receiver, funds, bundleID)
	})
}

// OpenCharacterLootbox buys one character resolved from a lootbox.
func (h *Host) OpenCharacterLootbox(ctx context.Context, sender, receiver string, funds []chain.Coin, lootboxID string) ([]chain.Attribute, error) {
	return h.execute(ctx, "character_manager.open_lootbox", func(cctx chain.Context) ([]bank.Instruction, []chain.Attribute, error) {
		if err := h.attachFunds(cctx, sender, h.charMgr.Address(), funds); err != nil {
			return nil, nil, err
		}
		return h.charMgr.OpenLootbox(cctx, sender, receiver, funds, lootboxID)
	})
}

// ChangeName renames a character the sender owns.
func (h *Host) ChangeName(ctx context.Context, sender, id, newName string) ([]chain.Attribute, error) {
	return h.execute(ctx, "character_manager.change_name", func(cctx chain.Context) ([]bank.Instruction, []chain.Attribute, error) {
		return none(h.charMgr.ChangeName(cctx, sender, id, newName))
	})
}

// ModifyCharacter re-derives a character's trait slots from owned traits.
func (h *Host) ModifyCharacter(ctx context.Context, sender, id string, traitIDs []string) ([]chain.Attribute, error) {
	return h.execute(ctx, "character_manager.modify_character", func(cctx chain.Context) ([]bank.Instruction, []chain.Attribute, error) {
		return none(h.charMgr.ModifyCharacter(cctx, sender, id, traitIDs))
	})
}

// LockCharacter burns a character's equipped traits and locks it.
func (h *Host) LockCharacter(ctx context.Context, sender, id string) ([]chain.Attribute, error) {
	return h.execute(ctx, "character_manager.lock_character", func(cctx chain.Context) ([]bank.Instruction, []chain.Attribute, error) {
		return none(h.charMgr.LockCharacter(cctx, sender, id))
	})
}

// MintTrait buys a trait for the sender.
func (h *Host) MintTrait(ctx context.Context, sender string, funds []chain.Coin, ext collection.TraitMetadata) ([]chain.Attribute, error) {
	return h.MintTraitTo(ctx, sender, sender, funds, ext)
}

// MintTraitTo buys a trait minted to receiver.
func (h *Host) MintTraitTo(ctx context.Context, sender, receiver string, funds []chain.Coin, ext collection.TraitMetadata) ([]chain.Attribute, error) {
	return h.execute(ctx, "trait_manager.mint", func(cctx chain.Context) ([]bank.Instruction, []chain.Attribute, error) {
		if err := h.attachFunds(cctx, sender, h.traitMgr.Address(), funds); err != nil {
			return nil, nil, err
		}
		return h.traitMgr.MintTo(cctx, sender, receiver, funds, ext)
	})
}

// MintTraitBundle buys every trait of a bundle.
func (h *Host) MintTraitBundle(ctx context.Context, sender, receiver string, funds []chain.Coin, bundleID string) ([]chain.Attribute, error) {
	return h.execute(ctx, "trait_manager.mint_bundle", func(cctx chain.Context) ([]bank.Instruction, []chain.Attribute, error) {
		if err := h.attachFunds(cctx, sender, h.traitMgr.Address(), funds); err != nil {
			return nil, nil, err
		}
		return h.traitMgr.MintBundle(cctx, sender, receiver, funds, bundleID)
	})
}

// OpenTraitLootbox buys one trait resolved from a lootbox.
func (h *Host) OpenTraitLootbox(ctx context.Context, sender, receiver string, funds []chain.Coin, lootboxID string) ([]chain.Attribute, error) {
	return h.execute(ctx, "trait_manager.open_lootbox", func(cctx chain.Context) ([]bank.Instruction, []chain.Attribute, error) {
		if err := h.attachFunds(cctx, sender, h.traitMgr.Address(), funds); err != nil {
			return nil, nil, err
		}
		return h.traitMgr.OpenLootbox(cctx, sender, receiver, funds, lootboxID)
	})
}

// UpdateCharacterManagerConfig replaces the character manager configuration.
func (h *Host) UpdateCharacterManagerConfig(ctx context.Context, sender string, cfg manager.Config) ([]chain.Attribute, error) {
	return h.execute(ctx, "character_manager.update_config", func(cctx chain.Context) ([]bank.Instruction, []chain.Attribute, error) {
		return none(h.charMgr.UpdateConfig(cctx, sender, cfg))
	})
}

// UpdateTraitManagerConfig replaces the trait manager configuration.
func (h *Host) UpdateTraitManagerConfig(ctx context.Context, sender string, cfg manager.Config) ([]chain.Attribute, error) {
	return h.execute(ctx, "trait_manager.update_config", func(cctx chain.Context) ([]bank.Instruction, []chain.Attribute, error) {
		return none(h.traitMgr.UpdateConfig(cctx, sender, cfg))
	})
}

// ImportCatalog bulk-loads catalog entries. Catalog admin only.
func (h *Host) ImportCatalog(ctx context.Context, sender string, doc catalog.Document) error {
	_, err := h.execute(ctx, "catalog.import", func(cctx chain.Context) ([]bank.Instruction, []chain.Attribute, error) {
		return nil, nil, h.catalog.Import(cctx, sender, doc)
	})
	return err
}

// Transfer moves a token to recipient.
func (h *Host) Transfer(ctx context.Context, target Target, sender, recipient, id string) ([]chain.Attribute, error) {
	return h.execute(ctx, "collection.transfer_nft", func(cctx chain.Context) ([]bank.Instruction, []chain.Attribute, error) {
		switch target {
		case TargetCharacters:
			return none(h.characters.TransferNFT(cctx, sender, recipient, id))
		case TargetTraits:
			return none(h.traits.TransferNFT(cctx, sender, recipient, id))
		default:
			return nil, nil, fmt.Errorf("unknown collection %q", target)
		}
	})
}

// SendNFT transfers a token to a contract address and returns the packaged
// receiver notification alongside the transfer attributes. Delivering the
// notification is the caller's responsibility; no contract here consumes it.
func (h *Host) SendNFT(ctx context.Context, target Target, sender, contract, id string, payload []byte) (*collection.ReceiveMsg, []chain.Attribute, error) {
	var receive *collection.ReceiveMsg
	attrs, err := h.execute(ctx, "collection.send_nft", func(cctx chain.Context) ([]bank.Instruction, []chain.Attribute, error) {
		var (
			attrs []chain.Attribute
			err   error
		)
		switch target {
		case TargetCharacters:
			receive, attrs, err = h.characters.SendNFT(cctx, sender, contract, id, payload)
		case TargetTraits:
			receive, attrs, err = h.traits.SendNFT(cctx, sender, contract, id, payload)
		default:
			err = fmt.Errorf("unknown collection %q", target)
		}
		return nil, attrs, err
	})
	return receive, attrs, err
}

// UpdateMinterOwnership applies a minter ownership action on a collection:
// propose a new minter, accept a pending proposal, or renounce.
func (h *Host) UpdateMinterOwnership(ctx context.Context, target Target, sender string, action ownable.Action) ([]chain.Attribute, error) {
	return h.execute(ctx, "collection.update_ownership", func(cctx chain.Context) ([]bank.Instruction, []chain.Attribute, error) {
		switch target {
		case TargetCharacters:
			return none(h.characters.UpdateOwnership(cctx, sender, action))
		case TargetTraits:
			return none(h.traits.UpdateOwnership(cctx, sender, action))
		default:
			return nil, nil, fmt.Errorf("unknown collection %q", target)
		}
	})
}

// Approve grants spender transfer rights over one token.
func (h *Host) Approve(ctx context.Context, target Target, sender, spender, id string, expires chain.Expiration) ([]chain.Attribute, error) {
	return h.execute(ctx, "collection.approve", func(cctx chain.Context) ([]bank.Instruction, []chain.Attribute, error) {
		switch target {
		case TargetCharacters:
			return none(h.characters.Approve(cctx, sender, spender, id, expires))
		case TargetTraits:
			return none(h.traits.Approve(cctx, sender, spender, id, expires))
		default:
			return nil, nil, fmt.Errorf("unknown collection %q", target)
		}
	})
}

// Revoke removes a spender's approval on one token.
func (h *Host) Revoke(ctx context.Context, target Target, sender, spender, id string) ([]chain.Attribute, error) {
	return h.execute(ctx, "collection.revoke", func(cctx chain.Context) ([]bank.Instruction, []chain.Attribute, error) {
		switch target {
		case TargetCharacters:
			return none(h.characters.Revoke(cctx, sender, spender, id))
		case TargetTraits:
			return none(h.traits.Revoke(cctx, sender, spender, id))
		default:
			return nil, nil, fmt.Errorf("unknown collection %q", target)
		}
	})
}

// ApproveAll grants operator rights over every token of the sender.
func (h *Host) ApproveAll(ctx context.Context, target Target, sender, operator string, expires chain.Expiration) ([]chain.Attribute, error) {
	return h.execute(ctx, "collection.approve_all", func(cctx chain.Context) ([]bank.Instruction, []chain.Attribute, error) {
		switch target {
		case TargetCharacters:
			return none(h.characters.ApproveAll(cctx, sender, operator, expires))
		case TargetTraits:
			return none(h.traits.ApproveAll(cctx, sender, operator, expires))
		default:
			return nil, nil, fmt.Errorf("unknown collection %q", target)
		}
	})
}

// RevokeAll removes an operator grant of the sender.
func (h *Host) RevokeAll(ctx context.Context, target Target, sender, operator string) ([]chain.Attribute, error) {
	return h.execute(ctx, "collection.revoke_all", func(cctx chain.Context) ([]bank.Instruction, []chain.Attribute, error) {
		switch target {
		case TargetCharacters:
			return none(h.characters.RevokeAll(cctx, sender, operator))
		case TargetTraits:
			return none(h.traits.RevokeAll(cctx, sender, operator))
		default:
			return nil, nil, fmt.Errorf("unknown collection %q", target)
		}
	})
}

// Burn destroys a token the sender has rights over.
func (h *Host) Burn(ctx context.Context, target Target, sender, id string) ([]chain.Attribute, error) {
	return h.execute(ctx, "collection.burn", func(cctx chain.Context) ([]bank.Instruction, []chain.Attribute, error) {
		switch target {
		case TargetCharacters:
			return none(h.characters.Burn(cctx, sender, id))
		case TargetTraits:
			return none(h.traits.Burn(cctx, sender, id))
		default:
			return nil, nil, fmt.Errorf("unknown collection %q", target)
		}
	})
}

// UpdateCollectionInfo applies a partial collection metadata update.
func (h *Host) UpdateCollectionInfo(ctx context.Context, target Target, sender string, msg collection.UpdateCollectionInfoMsg) ([]chain.Attribute, error) {
	return h.execute(ctx, "collection.update_collection_info", func(cctx chain.Context) ([]bank.Instruction, []chain.Attribute, error) {
		switch target {
		case TargetCharacters:
			return none(h.characters.UpdateCollectionInfo(cctx, sender, msg))
		case TargetTraits:
			return none(h.traits.UpdateCollectionInfo(cctx, sender, msg))
		default:
			return nil, nil, fmt.Errorf("unknown collection %q", target)
		}
	})
}

// FreezeCollectionInfo permanently blocks collection metadata edits.
func (h *Host) FreezeCollectionInfo(ctx context.Context, target Target, sender string) ([]chain.Attribute, error) {
	return h.execute(ctx, "collection.freeze_collection_info", func(cctx chain.Context) ([]bank.Instruction, []chain.Attribute, error) {
		switch target {
		case TargetCharacters:
			return none(h.characters.FreezeCollectionInfo(cctx, sender))
		case TargetTraits:
			return none(h.traits.FreezeCollectionInfo(cctx, sender))
		default:
			return nil, nil, fmt.Errorf("unknown collection %q", target)
		}
	})
}

// CharacterInfo returns the ownership and metadata of one character.
func (h *Host) CharacterInfo(ctx context.Context, id string) (collection.AllNftInfoResponse[collection.CharacterMetadata], error) {
	var out collection.AllNftInfoResponse[collection.CharacterMetadata]
	err := h.view(func(cctx chain.Context) error {
		info, err := h.characters.AllNftInfo(cctx, id, false)
		if err != nil {
			return err
		}
		out = info
		return nil
	})
	return out, err
}

// TraitInfo returns the ownership and metadata of one trait.
func (h *Host) TraitInfo(ctx context.Context, id string) (collection.AllNftInfoResponse[collection.TraitMetadata], error) {
	var out collection.AllNftInfoResponse[collection.TraitMetadata]
	err := h.view(func(cctx chain.Context) error {
		info, err := h.traits.AllNftInfo(cctx, id, false)
		if err != nil {
			return err
		}
		out = info
		return nil
	})
	return out, err
}

// Tokens lists token ids held by owner in a collection.
func (h *Host) Tokens(ctx context.Context, target Target, owner, startAfter string, limit int) ([]string, error) {
	var out []string
	err := h.view(func(cctx chain.Context) error {
		var err error
		switch target {
		case TargetCharacters:
			out, err = h.characters.Tokens(cctx, owner, startAfter, limit)
		case TargetTraits:
			out, err = h.traits.Tokens(cctx, owner, startAfter, limit)
		default:
			err = fmt.Errorf("unknown collection %q", target)
		}
		return err
	})
	return out, err
}

// AllTokens lists every token id in a collection.
func (h *Host) AllTokens(ctx context.Context, target Target, startAfter string, limit int) ([]string, error) {
	var out []string
	err := h.view(func(cctx chain.Context) error {
		var err error
		switch target {
		case TargetCharacters:
			out, err = h.characters.AllTokens(cctx, startAfter, limit)
		case TargetTraits:
			out, err = h.traits.AllTokens(cctx, startAfter, limit)
		default:
			err = fmt.Errorf("unknown collection %q", target)
		}
		return err
	})
	return out, err
}

// NumTokens returns the live token count of a collection.
func (h *Host) NumTokens(ctx context.Context, target Target) (uint64, error) {
	var out uint64
	err := h.view(func(cctx chain.Context) error {
		var err error
		switch target {
		case TargetCharacters:
			out, err = h.characters.NumTokens(cctx)
		case TargetTraits:
			out, err = h.traits.NumTokens(cctx)
		default:
			err = fmt.Errorf("unknown collection %q", target)
		}
		return err
	})
	return out, err
}

// Operators lists operator grants for owner in a collection.
func (h *Host) Operators(ctx context.Context, target Target, owner string, includeExpired bool, startAfter string, limit int) ([]token.OperatorGrant, error) {
	var out []token.OperatorGrant
	err := h.view(func(cctx chain.Context) error {
		var err error
		switch target {
		case TargetCharacters:
			out, err = h.characters.AllOperators(cctx, owner, includeExpired, startAfter, limit)
		case TargetTraits:
			out, err = h.traits.AllOperators(cctx, owner, includeExpired, startAfter, limit)
		default:
			err = fmt.Errorf("unknown collection %q", target)
		}
		return err
	})
	return out, err
}

// CollectionInfo returns the collection-level metadata.
func (h *Host) CollectionInfo(ctx context.Context, target Target) (collection.CollectionInfo, error) {
	var out collection.CollectionInfo
	err := h.view(func(cctx chain.Context) error {
		var err error
		switch target {
		case TargetCharacters:
			out, err = h.characters.CollectionInfo(cctx)
		case TargetTraits:
			out, err = h.traits.CollectionInfo(cctx)
		default:
			err = fmt.Errorf("unknown collection %q", target)
		}
		return err
	})
	return out, err
}

// ContractInfo returns the collection's name and symbol.
func (h *Host) ContractInfo(ctx context.Context, target Target) (collection.ContractInfo, error) {
	var out collection.ContractInfo
	err := h.view(func(cctx chain.Context) error {
		var err error
		switch target {
		case TargetCharacters:
			out, err = h.characters.ContractInfo(cctx)
		case TargetTraits:
			out, err = h.traits.ContractInfo(cctx)
		default:
			err = fmt.Errorf("unknown collection %q", target)
		}
		return err
	})
	return out, err
}

// Minter returns the minting authority of a collection.
func (h *Host) Minter(ctx context.Context, target Target) (string, error) {
	var out string
	err := h.view(func(cctx chain.Context) error {
		var err error
		switch target {
		case TargetCharacters:
			out, err = h.characters.Minter(cctx)
		case TargetTraits:
			out, err = h.traits.Minter(cctx)
		default:
			err = fmt.Errorf("unknown collection %q", target)
		}
		return err
	})
	return out, err
}

// CharacterManagerConfig returns the character manager configuration.
func (h *Host) CharacterManagerConfig(ctx context.Context) (manager.Config, error) {
	var out manager.Config
	err := h.view(func(cctx chain.Context) error {
		cfg, err := h.charMgr.Config(cctx)
		if err != nil {
			return err
		}
		out = cfg
		return nil
	})
	return out, err
}

// TraitManagerConfig returns the trait manager configuration.
func (h *Host) TraitManagerConfig(ctx context.Context) (manager.Config, error) {
	var out manager.Config
	err := h.view(func(cctx chain.Context) error {
		cfg, err := h.traitMgr.Config(cctx)
		if err != nil {
			return err
		}
		out = cfg
		return nil
	})
	return out, err
}

// Balance returns the amount of denom held by addr.
func (h *Host) Balance(ctx context.Context, addr, denom string) (uint64, error) {
	var out uint64
	err := h.view(func(cctx chain.Context) error {
		balance, err := h.ledger.Balance(cctx, addr, denom)
		if err != nil {
			return err
		}
		out = balance
		return nil
	})
	return out, err
}

// Burned returns the total amount of denom destroyed so far.
func (h *Host) Burned(ctx context.Context, denom string) (uint64, error) {
	var out uint64
	err := h.view(func(cctx chain.Context) error {
		burned, err := h.ledger.Burned(cctx, denom)
		if err != nil {
			return err
		}
		out = burned
		return nil
	})
	return out, err
}

// Catalog lists the catalog families in one shot, paginated per family.
func (h *Host) Catalog(ctx context.Context, startAfter string, limit int) (catalog.Document, error) {
	var out catalog.Document
	err := h.view(func(cctx chain.Context) error {
		var err error
		if out.Traits, err = h.catalog.Traits(cctx, startAfter, limit); err != nil {
			return err
		}
		if out.Characters, err = h.catalog.Characters(cctx, startAfter, limit); err != nil {
			return err
		}
		if out.TraitBundles, err = h.catalog.TraitBundles(cctx, startAfter, limit); err != nil {
			return err
		}
		if out.CharacterBundles, err = h.catalog.CharacterBundles(cctx, startAfter, limit); err != nil {
			return err
		}
		if out.TraitLootboxes, err = h.catalog.TraitLootboxes(cctx, startAfter, limit); err != nil {
			return err
		}
		out.CharacterLootboxes, err = h.catalog.CharacterLootboxes(cctx, startAfter, limit)
		return err
	})
	return out, err
}

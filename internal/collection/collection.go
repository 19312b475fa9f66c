// Package collection implements the NFT collection contract: minting,
// transfers, approvals, burning, the one-way token freeze, and the
// collection metadata lifecycle.
//
// The contract never mutates the registry without passing the authorization
// engine first. Structural validation happens before any write, so a
// malformed request never partially mutates state.
package collection

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/louisbranch/menagerie/internal/chain"
	apperrors "github.com/louisbranch/menagerie/internal/errors"
	"github.com/louisbranch/menagerie/internal/ownable"
	"github.com/louisbranch/menagerie/internal/storage"
	"github.com/louisbranch/menagerie/internal/token"
)

// ContractInfo is the immutable name/symbol pair of a collection.
type ContractInfo struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// InstantiateMsg configures a new collection.
type InstantiateMsg struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	// Minter is the only address allowed to mint, usually a manager
	// contract.
	Minter string         `json:"minter"`
	Info   CollectionInfo `json:"collection_info"`
}

// ReceiveMsg is the receiver notification produced by SendNFT. Delivery and
// interpretation are the receiving contract's responsibility.
type ReceiveMsg struct {
	Contract string `json:"contract"`
	Sender   string `json:"sender"`
	TokenID  string `json:"token_id"`
	Payload  []byte `json:"payload,omitempty"`
}

// Collection orchestrates requests against its token registry.
type Collection[X token.Extension[X]] struct {
	ns     string
	reg    *token.Registry[X]
	minter *ownable.Ownable
}

// New creates a collection bound to a storage namespace. requireFrozenTransfer
// installs the character rule that tokens transfer only once frozen.
func New[X token.Extension[X]](namespace string, requireFrozenTransfer bool) *Collection[X] {
	var opts []token.Option[X]
	if requireFrozenTransfer {
		opts = append(opts, token.WithTransferGuard[X](func(ext X) error {
			if !ext.Frozen() {
				return apperrors.New(apperrors.CodeCharacterNotFrozen, "character is not frozen")
			}
			return nil
		}))
	}
	return &Collection[X]{
		ns:     namespace,
		reg:    token.NewRegistry[X](namespace, opts...),
		minter: ownable.New(namespace + "/minter"),
	}
}

// Registry exposes the underlying token registry, mainly for queries.
func (c *Collection[X]) Registry() *token.Registry[X] {
	return c.reg
}

func (c *Collection[X]) contractInfoKey() []byte {
	return storage.Join(c.ns, "contract_info")
}

func (c *Collection[X]) collectionInfoKey() []byte {
	return storage.Join(c.ns, "collection_info")
}

func (c *Collection[X]) frozenInfoKey() []byte {
	return storage.Join(c.ns, "frozen_info")
}

// Instantiate validates and stores the initial collection state.
func (c *Collection[X]) Instantiate(ctx chain.Context, msg InstantiateMsg) ([]chain.Attribute, error) {
	if err := chain.ValidateAddress(msg.Minter); err != nil {
		return nil, err
	}
	if err := msg.Info.validate(); err != nil {
		return nil, err
	}

	if err := c.putJSON(ctx, c.contractInfoKey(), ContractInfo{Name: msg.Name, Symbol: msg.Symbol}); err != nil {
		return nil, err
	}
	if err := c.putJSON(ctx, c.collectionInfoKey(), msg.Info); err != nil {
		return nil, err
	}
	if err := ctx.State().Put(c.frozenInfoKey(), []byte{0}); err != nil {
		return nil, fmt.Errorf("store frozen flag: %w", err)
	}
	if err := c.minter.Initialize(ctx, msg.Minter); err != nil {
		return nil, err
	}

	return []chain.Attribute{
		chain.Attr("action", "instantiate"),
		chain.Attr("collection_name", msg.Name),
		chain.Attr("minter", msg.Minter),
	}, nil
}

// Mint creates a new token. Only the minter may call it.
func (c *Collection[X]) Mint(ctx chain.Context, sender, id, owner, uri string, ext X) ([]chain.Attribute, error) {
	if err := c.minter.AssertOwner(ctx, sender); err != nil {
		return nil, err
	}
	if err := chain.ValidateAddress(owner); err != nil {
		return nil, err
	}
	if err := ext.Validate(); err != nil {
		return nil, err
	}

	tok := token.Token[X]{Owner: owner, Approvals: nil, URI: uri, Extension: ext}
	if err := c.reg.Create(ctx, id, tok); err != nil {
		return nil, err
	}

	return []chain.Attribute{
		chain.Attr("action", "mint"),
		chain.Attr("minter", sender),
		chain.Attr("owner", owner),
		chain.Attr("token_id", id),
	}, nil
}

// TransferNFT moves a token to recipient and clears its approvals.
func (c *Collection[X]) TransferNFT(ctx chain.Context, sender, recipient, id string) ([]chain.Attribute, error) {
	if _, err := c.transfer(ctx, sender, recipient, id); err != nil {
		return nil, err
	}
	return []chain.Attribute{
		chain.Attr("action", "transfer_nft"),
		chain.Attr("sender", sender),
		chain.Attr("recipient", recipient),
		chain.Attr("token_id", id),
	}, nil
}

// SendNFT transfers a token to a contract and packages the receiver
// notification for the host to deliver.
func (c *Collection[X]) SendNFT(ctx chain.Context, sender, contract, id string, payload []byte) (*ReceiveMsg, []chain.Attribute, error) {
	if _, err := c.transfer(ctx, sender, contract, id); err != nil {
		return nil, nil, err
	}
	receive := &ReceiveMsg{
		Contract: contract,
		Sender:   sender,
		TokenID:  id,
		Payload:  payload,
	}
	attrs := []chain.Attribute{
		chain.Attr("action", "send_nft"),
		chain.Attr("sender", sender),
		chain.Attr("recipient", contract),
		chain.Attr("token_id", id),
	}
	return receive, attrs, nil
}

// Approve grants spender transfer rights over one token. An existing entry
// for the same spender is replaced. Already-expired expiries are rejected.
func (c *Collection[X]) Approve(ctx chain.Context, sender, spender, id string, expires chain.Expiration) ([]chain.Attribute, error) {
	if err := c.updateApprovals(ctx, sender, spender, id, true, expires); err != nil {
		return nil, err
	}
	return []chain.Attribute{
		chain.Attr("action", "approve"),
		chain.Attr("sender", sender),
		chain.Attr("spender", spender),
		chain.Attr("token_id", id),
	}, nil
}

// Revoke removes a previously granted approval. Absent entries are a no-op.
func (c *Collection[X]) Revoke(ctx chain.Context, sender, spender, id string) ([]chain.Attribute, error) {
	if err := c.updateApprovals(ctx, sender, spender, id, false, chain.Expiration{}); err != nil {
		return nil, err
	}
	return []chain.Attribute{
		chain.Attr("action", "revoke"),
		chain.Attr("sender", sender),
		chain.Attr("spender", spender),
		chain.Attr("token_id", id),
	}, nil
}

// ApproveAll grants operator rights over every token of the sender.
func (c *Collection[X]) ApproveAll(ctx chain.Context, sender, operator string, expires chain.Expiration) ([]chain.Attribute, error) {
	if expires.IsExpired(ctx) {
		return nil, apperrors.New(apperrors.CodeExpired, "cannot set approval that is already expired")
	}
	if err := chain.ValidateAddress(operator); err != nil {
		return nil, err
	}
	if err := c.reg.SetOperator(ctx, sender, operator, expires); err != nil {
		return nil, err
	}
	return []chain.Attribute{
		chain.Attr("action", "approve_all"),
		chain.Attr("sender", sender),
		chain.Attr("operator", operator),
	}, nil
}

// RevokeAll removes an operator grant of the sender.
func (c *Collection[X]) RevokeAll(ctx chain.Context, sender, operator string) ([]chain.Attribute, error) {
	if err := chain.ValidateAddress(operator); err != nil {
		return nil, err
	}
	if err := c.reg.RemoveOperator(ctx, sender, operator); err != nil {
		return nil, err
	}
	return []chain.Attribute{
		chain.Attr("action", "revoke_all"),
		chain.Attr("sender", sender),
		chain.Attr("operator", operator),
	}, nil
}

// Burn destroys a token the sender has rights over.
func (c *Collection[X]) Burn(ctx chain.Context, sender, id string) ([]chain.Attribute, error) {
	tok, err := c.reg.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.reg.CanBurnOrFreeze(ctx, tok, sender); err != nil {
		return nil, err
	}
	if err := c.reg.Remove(ctx, id); err != nil {
		return nil, err
	}
	return []chain.Attribute{
		chain.Attr("action", "burn"),
		chain.Attr("sender", sender),
		chain.Attr("token_id", id),
	}, nil
}

// BurnMultiple destroys several tokens in order, stopping at the first
// failure.
func (c *Collection[X]) BurnMultiple(ctx chain.Context, sender string, ids []string) ([]chain.Attribute, error) {
	for _, id := range ids {
		if _, err := c.Burn(ctx, sender, id); err != nil {
			return nil, err
		}
	}
	return []chain.Attribute{
		chain.Attr("action", "burn_multiple"),
		chain.Attr("sender", sender),
		chain.Attr("count", strconv.Itoa(len(ids))),
	}, nil
}

// FreezeToken sets the token's one-way frozen flag. The owner, an approved
// spender, an operator, or the minter may freeze. There is no unfreeze.
func (c *Collection[X]) FreezeToken(ctx chain.Context, sender, id string) ([]chain.Attribute, error) {
	tok, err := c.reg.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.minter.AssertOwner(ctx, sender); err != nil {
		if err := c.reg.CanBurnOrFreeze(ctx, tok, sender); err != nil {
			return nil, err
		}
	}
	tok.Extension = tok.Extension.Freeze()
	if err := c.reg.Save(ctx, id, tok); err != nil {
		return nil, err
	}
	return []chain.Attribute{
		chain.Attr("action", "freeze_token"),
		chain.Attr("sender", sender),
		chain.Attr("token_id", id),
	}, nil
}

// Modify replaces the token's extension. Only the minter may call it; the
// manager enforces ownership before issuing the command.
func (c *Collection[X]) Modify(ctx chain.Context, sender, id string, ext X) ([]chain.Attribute, error) {
	if err := c.minter.AssertOwner(ctx, sender); err != nil {
		return nil, err
	}
	if err := ext.Validate(); err != nil {
		return nil, err
	}
	tok, err := c.reg.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	tok.Extension = ext
	if err := c.reg.Save(ctx, id, tok); err != nil {
		return nil, err
	}
	return []chain.Attribute{
		chain.Attr("action", "modify"),
		chain.Attr("sender", sender),
		chain.Attr("token_id", id),
	}, nil
}

// UpdateCollectionInfo applies a partial metadata update. Only the creator
// may update, never after the info is frozen, and the royalty share may only
// decrease.
func (c *Collection[X]) UpdateCollectionInfo(ctx chain.Context, sender string, msg UpdateCollectionInfoMsg) ([]chain.Attribute, error) {
	frozen, err := c.infoFrozen(ctx)
	if err != nil {
		return nil, err
	}
	if frozen {
		return nil, apperrors.New(apperrors.CodeCollectionInfoFrozen, "collection info is frozen")
	}

	info, err := c.CollectionInfo(ctx)
	if err != nil {
		return nil, err
	}
	if info.Creator != sender {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "only the creator can update collection info")
	}

	if msg.Description != nil {
		info.Description = *msg.Description
	}
	if msg.Image != nil {
		info.Image = *msg.Image
	}
	if msg.ExternalLink != nil {
		info.ExternalLink = *msg.ExternalLink
	}
	if msg.ExplicitContent != nil {
		info.ExplicitContent = *msg.ExplicitContent
	}

	switch {
	case msg.ClearRoyalty:
		info.Royalty = nil
	case msg.Royalty != nil:
		if info.Royalty == nil || msg.Royalty.ShareBps > info.Royalty.ShareBps {
			return nil, apperrors.New(apperrors.CodeRoyaltyShareIncreased, "royalty share may only decrease")
		}
		info.Royalty = msg.Royalty
	}

	if err := info.validate(); err != nil {
		return nil, err
	}
	if err := c.putJSON(ctx, c.collectionInfoKey(), info); err != nil {
		return nil, err
	}
	return []chain.Attribute{
		chain.Attr("action", "update_collection_info"),
		chain.Attr("sender", sender),
	}, nil
}

// FreezeCollectionInfo permanently blocks metadata edits. Creator only.
func (c *Collection[X]) FreezeCollectionInfo(ctx chain.Context, sender string) ([]chain.Attribute, error) {
	info, err := c.CollectionInfo(ctx)
	if err != nil {
		return nil, err
	}
	if info.Creator != sender {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "only the creator can freeze collection info")
	}
	if err := ctx.State().Put(c.frozenInfoKey(), []byte{1}); err != nil {
		return nil, fmt.Errorf("store frozen flag: %w", err)
	}
	return []chain.Attribute{
		chain.Attr("action", "freeze_collection_info"),
		chain.Attr("sender", sender),
	}, nil
}

// UpdateOwnership applies a minter ownership action (propose, accept,
// renounce).
func (c *Collection[X]) UpdateOwnership(ctx chain.Context, sender string, action ownable.Action) ([]chain.Attribute, error) {
	own, err := c.minter.Update(ctx, sender, action)
	if err != nil {
		return nil, err
	}
	return []chain.Attribute{
		chain.Attr("action", "update_ownership"),
		chain.Attr("owner", own.Owner),
		chain.Attr("pending_owner", own.PendingOwner),
	}, nil
}

func (c *Collection[X]) transfer(ctx chain.Context, sender, recipient, id string) (token.Token[X], error) {
	if err := chain.ValidateAddress(recipient); err != nil {
		return token.Token[X]{}, err
	}
	tok, err := c.reg.Load(ctx, id)
	if err != nil {
		return token.Token[X]{}, err
	}
	if err := c.reg.CanTransfer(ctx, tok, sender); err != nil {
		return token.Token[X]{}, err
	}
	tok.Owner = recipient
	tok.Approvals = nil
	if err := c.reg.Save(ctx, id, tok); err != nil {
		return token.Token[X]{}, err
	}
	return tok, nil
}

func (c *Collection[X]) updateApprovals(ctx chain.Context, sender, spender, id string, add bool, expires chain.Expiration) error {
	if err := chain.ValidateAddress(spender); err != nil {
		return err
	}
	tok, err := c.reg.Load(ctx, id)
	if err != nil {
		return err
	}
	if err := c.reg.CanApprove(ctx, tok, sender); err != nil {
		return err
	}

	// Remove any entry for the same spender before adding.
	kept := tok.Approvals[:0]
	for _, approval := range tok.Approvals {
		if approval.Spender != spender {
			kept = append(kept, approval)
		}
	}
	tok.Approvals = kept

	if add {
		if expires.IsExpired(ctx) {
			return apperrors.New(apperrors.CodeExpired, "cannot set approval that is already expired")
		}
		tok.Approvals = append(tok.Approvals, token.Approval{Spender: spender, Expires: expires})
	}

	return c.reg.Save(ctx, id, tok)
}

func (c *Collection[X]) infoFrozen(ctx chain.Context) (bool, error) {
	raw, err := ctx.State().Get(c.frozenInfoKey())
	if err != nil {
		if err == storage.ErrNotFound {
			return false, nil
		}
		return false, fmt.Errorf("load frozen flag: %w", err)
	}
	return len(raw) == 1 && raw[0] == 1, nil
}

func (c *Collection[X]) putJSON(ctx chain.Context, key []byte, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", key, err)
	}
	return ctx.State().Put(key, raw)
}

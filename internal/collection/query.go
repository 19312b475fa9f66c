package collection

import (
	"encoding/json"
	"fmt"

	"github.com/louisbranch/menagerie/internal/chain"
	apperrors "github.com/louisbranch/menagerie/internal/errors"
	"github.com/louisbranch/menagerie/internal/ownable"
	"github.com/louisbranch/menagerie/internal/storage"
	"github.com/louisbranch/menagerie/internal/token"
)

// OwnerOfResponse reports the owner of a token plus its live approvals.
type OwnerOfResponse struct {
	Owner     string           `json:"owner"`
	Approvals []token.Approval `json:"approvals"`
}

// NftInfoResponse is the public view of one token record.
type NftInfoResponse[X token.Extension[X]] struct {
	URI       string `json:"uri,omitempty"`
	Extension X      `json:"extension"`
}

// AllNftInfoResponse bundles ownership and metadata in one lookup.
type AllNftInfoResponse[X token.Extension[X]] struct {
	Access OwnerOfResponse    `json:"access"`
	Info   NftInfoResponse[X] `json:"info"`
}

// OwnerOf returns the owner of a token. Expired approvals are filtered out
// unless includeExpired is set.
func (c *Collection[X]) OwnerOf(ctx chain.Context, id string, includeExpired bool) (OwnerOfResponse, error) {
	tok, err := c.reg.Load(ctx, id)
	if err != nil {
		return OwnerOfResponse{}, err
	}
	return OwnerOfResponse{
		Owner:     tok.Owner,
		Approvals: filterApprovals(ctx, tok.Approvals, includeExpired),
	}, nil
}

// Approval returns the approval granted to spender on a token, or NOT_FOUND
// when none exists or it has expired and includeExpired is false.
func (c *Collection[X]) Approval(ctx chain.Context, id, spender string, includeExpired bool) (token.Approval, error) {
	tok, err := c.reg.Load(ctx, id)
	if err != nil {
		return token.Approval{}, err
	}
	for _, approval := range tok.Approvals {
		if approval.Spender != spender {
			continue
		}
		if !includeExpired && approval.Expires.IsExpired(ctx) {
			break
		}
		return approval, nil
	}
	return token.Approval{}, apperrors.WithMetadata(apperrors.CodeNotFound, "approval not found", map[string]string{
		"token_id": id,
		"spender":  spender,
	})
}

// Approvals lists every approval on a token, filtering expired ones unless
// includeExpired is set.
func (c *Collection[X]) Approvals(ctx chain.Context, id string, includeExpired bool) ([]token.Approval, error) {
	tok, err := c.reg.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return filterApprovals(ctx, tok.Approvals, includeExpired), nil
}

// Operator returns the grant owner gave operator, or NOT_FOUND when absent
// or expired and includeExpired is false.
func (c *Collection[X]) Operator(ctx chain.Context, owner, operator string, includeExpired bool) (token.OperatorGrant, error) {
	exp, err := c.reg.Operator(ctx, owner, operator)
	if err != nil {
		return token.OperatorGrant{}, err
	}
	if !includeExpired && exp.IsExpired(ctx) {
		return token.OperatorGrant{}, apperrors.WithMetadata(apperrors.CodeNotFound, "operator grant not found", map[string]string{
			"owner":    owner,
			"operator": operator,
		})
	}
	return token.OperatorGrant{Operator: operator, Expires: exp}, nil
}

// AllOperators lists operator grants for owner, paginated.
func (c *Collection[X]) AllOperators(ctx chain.Context, owner string, includeExpired bool, startAfter string, limit int) ([]token.OperatorGrant, error) {
	grants, err := c.reg.OperatorsByOwner(ctx, owner, startAfter, limit)
	if err != nil {
		return nil, err
	}
	if includeExpired {
		return grants, nil
	}
	live := grants[:0]
	for _, grant := range grants {
		if !grant.Expires.IsExpired(ctx) {
			live = append(live, grant)
		}
	}
	return live, nil
}

// NumTokens returns the live token count.
func (c *Collection[X]) NumTokens(ctx chain.Context) (uint64, error) {
	return c.reg.Count(ctx)
}

// ContractInfo returns the collection's name and symbol.
func (c *Collection[X]) ContractInfo(ctx chain.Context) (ContractInfo, error) {
	var info ContractInfo
	if err := c.getJSON(ctx, c.contractInfoKey(), &info); err != nil {
		return ContractInfo{}, err
	}
	return info, nil
}

// NftInfo returns a token's URI and extension.
func (c *Collection[X]) NftInfo(ctx chain.Context, id string) (NftInfoResponse[X], error) {
	tok, err := c.reg.Load(ctx, id)
	if err != nil {
		return NftInfoResponse[X]{}, err
	}
	return NftInfoResponse[X]{URI: tok.URI, Extension: tok.Extension}, nil
}

// AllNftInfo combines OwnerOf and NftInfo for one token.
func (c *Collection[X]) AllNftInfo(ctx chain.Context, id string, includeExpired bool) (AllNftInfoResponse[X], error) {
	tok, err := c.reg.Load(ctx, id)
	if err != nil {
		return AllNftInfoResponse[X]{}, err
	}
	return AllNftInfoResponse[X]{
		Access: OwnerOfResponse{
			Owner:     tok.Owner,
			Approvals: filterApprovals(ctx, tok.Approvals, includeExpired),
		},
		Info: NftInfoResponse[X]{URI: tok.URI, Extension: tok.Extension},
	}, nil
}

// Tokens lists token ids owned by owner, paginated.
func (c *Collection[X]) Tokens(ctx chain.Context, owner, startAfter string, limit int) ([]string, error) {
	return c.reg.TokensByOwner(ctx, owner, startAfter, limit)
}

// AllTokens lists every token id in the collection, paginated.
func (c *Collection[X]) AllTokens(ctx chain.Context, startAfter string, limit int) ([]string, error) {
	return c.reg.AllTokens(ctx, startAfter, limit)
}

// Minter returns the current minting authority.
func (c *Collection[X]) Minter(ctx chain.Context) (string, error) {
	own, err := c.minter.Get(ctx)
	if err != nil {
		return "", err
	}
	return own.Owner, nil
}

// Ownership returns the full minter ownership record, including any pending
// transfer.
func (c *Collection[X]) Ownership(ctx chain.Context) (ownable.Ownership, error) {
	return c.minter.Get(ctx)
}

// CollectionInfo returns the collection-level metadata.
func (c *Collection[X]) CollectionInfo(ctx chain.Context) (CollectionInfo, error) {
	var info CollectionInfo
	if err := c.getJSON(ctx, c.collectionInfoKey(), &info); err != nil {
		return CollectionInfo{}, err
	}
	return info, nil
}

// InfoFrozen reports whether collection metadata edits are blocked.
func (c *Collection[X]) InfoFrozen(ctx chain.Context) (bool, error) {
	return c.infoFrozen(ctx)
}

func (c *Collection[X]) getJSON(ctx chain.Context, key []byte, out any) error {
	raw, err := ctx.State().Get(key)
	if err != nil {
		if err == storage.ErrNotFound {
			return apperrors.WithMetadata(apperrors.CodeNotFound, "record not found", map[string]string{"key": string(key)})
		}
		return fmt.Errorf("load %q: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal %q: %w", key, err)
	}
	return nil
}

func filterApprovals(ctx chain.Context, approvals []token.Approval, includeExpired bool) []token.Approval {
	if includeExpired {
		return approvals
	}
	var live []token.Approval
	for _, approval := range approvals {
		if !approval.Expires.IsExpired(ctx) {
			live = append(live, approval)
		}
	}
	return live
}

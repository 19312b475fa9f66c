// Package ownable implements the two-step admin ownership shared by the
// manager, catalog, and collection contracts: the current owner proposes a
// transfer with an optional expiry, and the new owner must accept it.
package ownable

import (
	"encoding/json"
	"fmt"

	"github.com/louisbranch/menagerie/internal/chain"
	apperrors "github.com/louisbranch/menagerie/internal/errors"
	"github.com/louisbranch/menagerie/internal/storage"
)

// Ownership is the persisted admin ownership record of a contract.
type Ownership struct {
	Owner         string           `json:"owner,omitempty"`
	PendingOwner  string           `json:"pending_owner,omitempty"`
	PendingExpiry chain.Expiration `json:"pending_expiry,omitzero"`
}

// Action is a requested ownership change.
type Action struct {
	// TransferTo proposes a new owner when non-empty.
	TransferTo string
	// Expiry optionally bounds how long the proposal stays open.
	Expiry chain.Expiration
	// Accept accepts a pending proposal.
	Accept bool
	// Renounce clears ownership permanently.
	Renounce bool
}

// Ownable persists ownership under a contract namespace.
type Ownable struct {
	ns string
}

// New creates an Ownable bound to a storage namespace.
func New(namespace string) *Ownable {
	return &Ownable{ns: namespace}
}

func (o *Ownable) key() []byte {
	return storage.Join(o.ns, "ownership")
}

// Initialize records the initial owner. An empty owner leaves the contract
// ownerless from the start.
func (o *Ownable) Initialize(ctx chain.Context, owner string) error {
	if owner != "" {
		if err := chain.ValidateAddress(owner); err != nil {
			return err
		}
	}
	return o.save(ctx, Ownership{Owner: owner})
}

// Get loads the current ownership record.
func (o *Ownable) Get(ctx chain.Context) (Ownership, error) {
	raw, err := ctx.State().Get(o.key())
	if err != nil {
		if err == storage.ErrNotFound {
			return Ownership{}, nil
		}
		return Ownership{}, fmt.Errorf("load ownership: %w", err)
	}
	var own Ownership
	if err := json.Unmarshal(raw, &own); err != nil {
		return Ownership{}, fmt.Errorf("unmarshal ownership: %w", err)
	}
	return own, nil
}

// AssertOwner fails with NOT_OWNER unless caller is the current owner.
func (o *Ownable) AssertOwner(ctx chain.Context, caller string) error {
	own, err := o.Get(ctx)
	if err != nil {
		return err
	}
	if own.Owner == "" || own.Owner != caller {
		return apperrors.New(apperrors.CodeNotOwner, "caller is not the contract owner")
	}
	return nil
}

// Update applies an ownership action on behalf of caller and returns the
// resulting record.
func (o *Ownable) Update(ctx chain.Context, caller string, action Action) (Ownership, error) {
	own, err := o.Get(ctx)
	if err != nil {
		return Ownership{}, err
	}

	switch {
	case action.TransferTo != "":
		if own.Owner != caller {
			return Ownership{}, apperrors.New(apperrors.CodeNotOwner, "caller is not the contract owner")
		}
		if err := chain.ValidateAddress(action.TransferTo); err != nil {
			return Ownership{}, err
		}
		if action.Expiry.IsExpired(ctx) {
			return Ownership{}, apperrors.New(apperrors.CodeExpired, "ownership transfer expiry already passed")
		}
		own.PendingOwner = action.TransferTo
		own.PendingExpiry = action.Expiry

	case action.Accept:
		if own.PendingOwner == "" {
			return Ownership{}, apperrors.New(apperrors.CodeNoPendingOwner, "no pending ownership transfer")
		}
		if own.PendingOwner != caller {
			return Ownership{}, apperrors.New(apperrors.CodeNotOwner, "caller is not the pending owner")
		}
		if own.PendingExpiry.IsExpired(ctx) {
			return Ownership{}, apperrors.New(apperrors.CodeExpired, "ownership transfer expired")
		}
		own = Ownership{Owner: caller}

	case action.Renounce:
		if own.Owner != caller {
			return Ownership{}, apperrors.New(apperrors.CodeNotOwner, "caller is not the contract owner")
		}
		own = Ownership{}

	default:
		return Ownership{}, apperrors.New(apperrors.CodeUnknown, "empty ownership action")
	}

	if err := o.save(ctx, own); err != nil {
		return Ownership{}, err
	}
	return own, nil
}

func (o *Ownable) save(ctx chain.Context, own Ownership) error {
	raw, err := json.Marshal(own)
	if err != nil {
		return fmt.Errorf("marshal ownership: %w", err)
	}
	return ctx.State().Put(o.key(), raw)
}

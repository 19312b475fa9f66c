package token

import (
	"github.com/louisbranch/menagerie/internal/chain"
	apperrors "github.com/louisbranch/menagerie/internal/errors"
)

// ErrNotOwner is the single authorization failure returned by every denied
// branch. Callers learn nothing about which check failed.
var ErrNotOwner = apperrors.New(apperrors.CodeNotOwner, "caller has no rights over this token")

// CanApprove reports whether caller may grant or revoke approvals on the
// token: the owner, or a holder of a live operator grant for the owner.
func (r *Registry[X]) CanApprove(ctx chain.Context, tok Token[X], caller string) error {
	if tok.Owner == caller {
		return nil
	}
	return r.checkOperator(ctx, tok.Owner, caller)
}

// CanTransfer reports whether caller may transfer or send the token. The
// collection's transfer guard runs first; then the owner, a live per-token
// approval, or a live operator grant all qualify.
func (r *Registry[X]) CanTransfer(ctx chain.Context, tok Token[X], caller string) error {
	if r.transferGuard != nil {
		if err := r.transferGuard(tok.Extension); err != nil {
			return err
		}
	}
	return r.CanBurnOrFreeze(ctx, tok, caller)
}

// CanBurnOrFreeze is the transfer check without the collection guard.
func (r *Registry[X]) CanBurnOrFreeze(ctx chain.Context, tok Token[X], caller string) error {
	if tok.Owner == caller {
		return nil
	}
	for _, approval := range tok.Approvals {
		if approval.Spender == caller && !approval.Expires.IsExpired(ctx) {
			return nil
		}
	}
	return r.checkOperator(ctx, tok.Owner, caller)
}

func (r *Registry[X]) checkOperator(ctx chain.Context, owner, caller string) error {
	exp, err := r.Operator(ctx, owner, caller)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return ErrNotOwner
		}
		return err
	}
	if exp.IsExpired(ctx) {
		return ErrNotOwner
	}
	return nil
}

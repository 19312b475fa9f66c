package token

import (
	"errors"
	"testing"

	"github.com/louisbranch/menagerie/internal/chain"
	apperrors "github.com/louisbranch/menagerie/internal/errors"
)

func TestCanTransferOwner(t *testing.T) {
	reg := NewRegistry[testExt]("test")
	ctx := testCtx(10)

	tok := Token[testExt]{Owner: "alice"}
	if err := reg.CanTransfer(ctx, tok, "alice"); err != nil {
		t.Fatalf("owner must transfer: %v", err)
	}
	if err := reg.CanTransfer(ctx, tok, "bob"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestCanTransferApproval(t *testing.T) {
	reg := NewRegistry[testExt]("test")
	ctx := testCtx(10)

	live := Token[testExt]{
		Owner:     "alice",
		Approvals: []Approval{{Spender: "bob", Expires: chain.AtHeight(100)}},
	}
	if err := reg.CanTransfer(ctx, live, "bob"); err != nil {
		t.Fatalf("live approval must transfer: %v", err)
	}

	expired := Token[testExt]{
		Owner:     "alice",
		Approvals: []Approval{{Spender: "bob", Expires: chain.AtHeight(10)}},
	}
	if err := reg.CanTransfer(ctx, expired, "bob"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expired approval must be ignored, got %v", err)
	}
}

func TestCanTransferOperator(t *testing.T) {
	reg := NewRegistry[testExt]("test")
	ctx := testCtx(10)

	tok := Token[testExt]{Owner: "alice"}

	if err := reg.SetOperator(ctx, "alice", "bob", chain.AtHeight(100)); err != nil {
		t.Fatalf("set operator: %v", err)
	}
	if err := reg.CanTransfer(ctx, tok, "bob"); err != nil {
		t.Fatalf("live operator must transfer: %v", err)
	}

	if err := reg.SetOperator(ctx, "alice", "carol", chain.AtHeight(10)); err != nil {
		t.Fatalf("set operator: %v", err)
	}
	if err := reg.CanTransfer(ctx, tok, "carol"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expired operator must be ignored, got %v", err)
	}
}

func TestTransferGuard(t *testing.T) {
	guardErr := apperrors.New(apperrors.CodeCharacterNotFrozen, "token must be frozen first")
	reg := NewRegistry[testExt]("test", WithTransferGuard[testExt](func(ext testExt) error {
		if !ext.Frozen() {
			return guardErr
		}
		return nil
	}))
	ctx := testCtx(10)

	unsealed := Token[testExt]{Owner: "alice"}
	if err := reg.CanTransfer(ctx, unsealed, "alice"); !apperrors.IsCode(err, apperrors.CodeCharacterNotFrozen) {
		t.Fatalf("guard must run before ownership, got %v", err)
	}

	sealed := Token[testExt]{Owner: "alice", Extension: testExt{Sealed: true}}
	if err := reg.CanTransfer(ctx, sealed, "alice"); err != nil {
		t.Fatalf("frozen token must transfer: %v", err)
	}

	// Burn and freeze bypass the guard.
	if err := reg.CanBurnOrFreeze(ctx, unsealed, "alice"); err != nil {
		t.Fatalf("guard must not gate burns: %v", err)
	}
}

func TestCanApprove(t *testing.T) {
	reg := NewRegistry[testExt]("test")
	ctx := testCtx(10)

	tok := Token[testExt]{
		Owner:     "alice",
		Approvals: []Approval{{Spender: "bob", Expires: chain.Never()}},
	}

	if err := reg.CanApprove(ctx, tok, "alice"); err != nil {
		t.Fatalf("owner must approve: %v", err)
	}
	// A per-token approval does not carry approval-granting rights.
	if err := reg.CanApprove(ctx, tok, "bob"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("spender must not approve, got %v", err)
	}

	if err := reg.SetOperator(ctx, "alice", "carol", chain.Never()); err != nil {
		t.Fatalf("set operator: %v", err)
	}
	if err := reg.CanApprove(ctx, tok, "carol"); err != nil {
		t.Fatalf("operator must approve: %v", err)
	}
}

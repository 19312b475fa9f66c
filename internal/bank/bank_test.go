package bank

import (
	"testing"
	"time"

	"github.com/louisbranch/menagerie/internal/chain"
	apperrors "github.com/louisbranch/menagerie/internal/errors"
	"github.com/louisbranch/menagerie/internal/storage/memory"
)

func testCtx(t *testing.T) chain.Context {
	t.Helper()
	return chain.NewContext(memory.New().KV(), 1, time.Unix(1_700_000_000, 0).UTC(), 0)
}

func TestFundAndBalance(t *testing.T) {
	ctx := testCtx(t)
	ledger := NewLedger("bank")

	balance, err := ledger.Balance(ctx, "alice", "ucool")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 0 {
		t.Fatalf("expected zero balance, got %d", balance)
	}

	if err := ledger.Fund(ctx, "alice", chain.NewCoin(1000, "ucool")); err != nil {
		t.Fatalf("fund: %v", err)
	}
	balance, err = ledger.Balance(ctx, "alice", "ucool")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 1000 {
		t.Fatalf("expected 1000, got %d", balance)
	}
}

func TestTransfer(t *testing.T) {
	ctx := testCtx(t)
	ledger := NewLedger("bank")

	if err := ledger.Fund(ctx, "alice", chain.NewCoin(1000, "ucool")); err != nil {
		t.Fatalf("fund: %v", err)
	}
	if err := ledger.Transfer(ctx, "alice", "bob", chain.NewCoin(400, "ucool")); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	aliceBal, _ := ledger.Balance(ctx, "alice", "ucool")
	bobBal, _ := ledger.Balance(ctx, "bob", "ucool")
	if aliceBal != 600 || bobBal != 400 {
		t.Fatalf("expected 600/400, got %d/%d", aliceBal, bobBal)
	}
}

func TestTransferInsufficientFunds(t *testing.T) {
	ctx := testCtx(t)
	ledger := NewLedger("bank")

	if err := ledger.Fund(ctx, "alice", chain.NewCoin(100, "ucool")); err != nil {
		t.Fatalf("fund: %v", err)
	}
	err := ledger.Transfer(ctx, "alice", "bob", chain.NewCoin(200, "ucool"))
	if !apperrors.IsCode(err, apperrors.CodeInsufficientFunds) {
		t.Fatalf("expected INSUFFICIENT_FUNDS, got %v", err)
	}
}

func TestApplyBurn(t *testing.T) {
	ctx := testCtx(t)
	ledger := NewLedger("bank")

	if err := ledger.Fund(ctx, "manager", chain.NewCoin(1000, "ucool")); err != nil {
		t.Fatalf("fund: %v", err)
	}

	instructions := []Instruction{
		Burn("manager", chain.NewCoin(400, "ucool")),
		Send("manager", "treasury", chain.NewCoin(600, "ucool")),
	}
	if err := ledger.Apply(ctx, instructions); err != nil {
		t.Fatalf("apply: %v", err)
	}

	burned, err := ledger.Burned(ctx, "ucool")
	if err != nil {
		t.Fatalf("burned: %v", err)
	}
	if burned != 400 {
		t.Fatalf("expected 400 burned, got %d", burned)
	}

	managerBal, _ := ledger.Balance(ctx, "manager", "ucool")
	treasuryBal, _ := ledger.Balance(ctx, "treasury", "ucool")
	if managerBal != 0 || treasuryBal != 600 {
		t.Fatalf("expected 0/600, got %d/%d", managerBal, treasuryBal)
	}
}

func TestCreditRejectsEmptyAddress(t *testing.T) {
	ctx := testCtx(t)
	ledger := NewLedger("bank")

	if err := ledger.Fund(ctx, "", chain.NewCoin(100, "ucool")); !apperrors.IsCode(err, apperrors.CodeInvalidAddress) {
		t.Fatalf("expected INVALID_ADDRESS, got %v", err)
	}

	if err := ledger.Fund(ctx, "alice", chain.NewCoin(100, "ucool")); err != nil {
		t.Fatalf("fund: %v", err)
	}
	err := ledger.Apply(ctx, []Instruction{Send("alice", "", chain.NewCoin(100, "ucool"))})
	if !apperrors.IsCode(err, apperrors.CodeInvalidAddress) {
		t.Fatalf("expected INVALID_ADDRESS for empty send target, got %v", err)
	}
}

func TestApplyUnknownOp(t *testing.T) {
	ctx := testCtx(t)
	ledger := NewLedger("bank")

	err := ledger.Apply(ctx, []Instruction{{Op: "mint", From: "a", Amount: chain.NewCoin(1, "ucool")}})
	if err == nil {
		t.Fatal("expected error for unknown op")
	}
}

func TestBurnAccumulates(t *testing.T) {
	ctx := testCtx(t)
	ledger := NewLedger("bank")

	if err := ledger.Fund(ctx, "manager", chain.NewCoin(300, "ucool")); err != nil {
		t.Fatalf("fund: %v", err)
	}
	if err := ledger.Apply(ctx, []Instruction{Burn("manager", chain.NewCoin(100, "ucool"))}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := ledger.Apply(ctx, []Instruction{Burn("manager", chain.NewCoin(150, "ucool"))}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	burned, err := ledger.Burned(ctx, "ucool")
	if err != nil {
		t.Fatalf("burned: %v", err)
	}
	if burned != 250 {
		t.Fatalf("expected 250 burned, got %d", burned)
	}
}

// Package bank is the host ledger: per-address, per-denomination balances
// with the atomic all-or-nothing transfer semantics contracts rely on. A
// failed call rolls back the surrounding storage transaction, so no partial
// fund movement can ever be observed.
package bank

import (
	"encoding/binary"
	"fmt"

	"github.com/louisbranch/menagerie/internal/chain"
	apperrors "github.com/louisbranch/menagerie/internal/errors"
	"github.com/louisbranch/menagerie/internal/storage"
)

// Op distinguishes the fund movements a contract can emit.
type Op string

const (
	// OpSend moves funds from one address to another.
	OpSend Op = "send"
	// OpBurn destroys funds, removing them from circulation.
	OpBurn Op = "burn"
)

// Instruction is a single fund movement emitted by a contract and applied
// by the host after the contract call returns.
type Instruction struct {
	Op     Op         `json:"op"`
	From   string     `json:"from"`
	To     string     `json:"to,omitempty"`
	Amount chain.Coin `json:"amount"`
}

// Send builds a transfer instruction.
func Send(from, to string, amount chain.Coin) Instruction {
	return Instruction{Op: OpSend, From: from, To: to, Amount: amount}
}

// Burn builds a burn instruction.
func Burn(from string, amount chain.Coin) Instruction {
	return Instruction{Op: OpBurn, From: from, Amount: amount}
}

// Ledger tracks balances in a storage namespace.
type Ledger struct {
	ns string
}

// NewLedger creates a ledger bound to a storage namespace.
func NewLedger(namespace string) *Ledger {
	return &Ledger{ns: namespace}
}

func (l *Ledger) balanceKey(addr, denom string) []byte {
	return storage.Join(l.ns, "balance", addr, denom)
}

func (l *Ledger) burnedKey(denom string) []byte {
	return storage.Join(l.ns, "burned", denom)
}

// Balance returns the amount of denom held by addr. Absent records are zero.
func (l *Ledger) Balance(ctx chain.Context, addr, denom string) (uint64, error) {
	return l.readCounter(ctx, l.balanceKey(addr, denom))
}

// Burned returns the total amount of denom destroyed so far.
func (l *Ledger) Burned(ctx chain.Context, denom string) (uint64, error) {
	return l.readCounter(ctx, l.burnedKey(denom))
}

// Fund credits addr with amount. Used at genesis and in tests; there is no
// authorization because funding only happens through the host.
func (l *Ledger) Fund(ctx chain.Context, addr string, amount chain.Coin) error {
	if err := amount.Validate(); err != nil {
		return err
	}
	return l.credit(ctx, addr, amount)
}

// Transfer moves amount from one address to another, failing with
// INSUFFICIENT_FUNDS when the sender's balance does not cover it.
func (l *Ledger) Transfer(ctx chain.Context, from, to string, amount chain.Coin) error {
	if err := l.debit(ctx, from, amount); err != nil {
		return err
	}
	return l.credit(ctx, to, amount)
}

// Apply executes a contract's fund movements in order. The caller runs it
// inside the call's storage transaction, so a failing instruction discards
// every earlier one.
func (l *Ledger) Apply(ctx chain.Context, instructions []Instruction) error {
	for _, ins := range instructions {
		var err error
		switch ins.Op {
		case OpSend:
			err = l.Transfer(ctx, ins.From, ins.To, ins.Amount)
		case OpBurn:
			err = l.burn(ctx, ins.From, ins.Amount)
		default:
			err = fmt.Errorf("unknown bank op %q", ins.Op)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (l *Ledger) burn(ctx chain.Context, from string, amount chain.Coin) error {
	if err := l.debit(ctx, from, amount); err != nil {
		return err
	}
	burned, err := l.Burned(ctx, amount.Denom)
	if err != nil {
		return err
	}
	return l.writeCounter(ctx, l.burnedKey(amount.Denom), burned+amount.Amount)
}

func (l *Ledger) debit(ctx chain.Context, addr string, amount chain.Coin) error {
	if amount.IsZero() {
		return nil
	}
	balance, err := l.Balance(ctx, addr, amount.Denom)
	if err != nil {
		return err
	}
	if balance < amount.Amount {
		return apperrors.WithMetadata(apperrors.CodeInsufficientFunds, "balance does not cover transfer", map[string]string{
			"address": addr,
			"denom":   amount.Denom,
		})
	}
	return l.writeCounter(ctx, l.balanceKey(addr, amount.Denom), balance-amount.Amount)
}

func (l *Ledger) credit(ctx chain.Context, addr string, amount chain.Coin) error {
	if addr == "" {
		return apperrors.New(apperrors.CodeInvalidAddress, "credit to empty address")
	}
	if amount.IsZero() {
		return nil
	}
	balance, err := l.Balance(ctx, addr, amount.Denom)
	if err != nil {
		return err
	}
	return l.writeCounter(ctx, l.balanceKey(addr, amount.Denom), balance+amount.Amount)
}

func (l *Ledger) readCounter(ctx chain.Context, key []byte) (uint64, error) {
	raw, err := ctx.State().Get(key)
	if err != nil {
		if err == storage.ErrNotFound {
			return 0, nil
		}
		return 0, fmt.Errorf("load balance %q: %w", key, err)
	}
	return binary.BigEndian.Uint64(raw), nil
}

func (l *Ledger) writeCounter(ctx chain.Context, key []byte, value uint64) error {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, value)
	return ctx.State().Put(key, raw)
}

package manager

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"strconv"

	"github.com/louisbranch/menagerie/internal/bank"
	"github.com/louisbranch/menagerie/internal/chain"
	apperrors "github.com/louisbranch/menagerie/internal/errors"
	"github.com/louisbranch/menagerie/internal/storage"
)

// oneCoin extracts the single payment coin attached to a call. Zero or more
// than one attached coin is a payment error.
func oneCoin(funds []chain.Coin) (chain.Coin, error) {
	if len(funds) != 1 {
		return chain.Coin{}, apperrors.New(apperrors.CodePayment, "exactly one payment coin must be attached")
	}
	coin := funds[0]
	if coin.IsZero() {
		return chain.Coin{}, apperrors.New(apperrors.CodePayment, "payment amount must be positive")
	}
	return coin, nil
}

// splitFunds validates the attached payment against the resolved price and
// produces the fund movements: a burn of the configured ratio for native
// payments, the remainder forwarded to the destination. A ratio of 100
// burns everything with no forward; non-native denominations are always
// forwarded in full. Any forward without a configured destination fails.
func splitFunds(cfg Config, native, from string, sent, price chain.Coin) ([]bank.Instruction, error) {
	if !sent.Equal(price) {
		return nil, apperrors.WithMetadata(apperrors.CodeIncorrectMintFunds, "attached funds do not match the mint price", map[string]string{
			"sent":  sent.String(),
			"price": price.String(),
		})
	}

	if sent.Denom != native {
		if cfg.Destination == "" {
			return nil, apperrors.New(apperrors.CodeNoMintDestination, "no destination for forwarded proceeds")
		}
		return []bank.Instruction{bank.Send(from, cfg.Destination, sent)}, nil
	}

	var instructions []bank.Instruction
	burnAmount := mulDiv100(sent.Amount, cfg.BurnRatio)
	if burnAmount > 0 {
		instructions = append(instructions, bank.Burn(from, chain.NewCoin(burnAmount, native)))
	}
	if forward := sent.Amount - burnAmount; forward > 0 {
		if cfg.Destination == "" {
			return nil, apperrors.New(apperrors.CodeNoMintDestination, "no destination for forwarded proceeds")
		}
		instructions = append(instructions, bank.Send(from, cfg.Destination, chain.NewCoin(forward, native)))
	}
	return instructions, nil
}

// mulDiv100 computes amount*ratio/100 through a 128-bit intermediate, so the
// split stays exact over the full uint64 amount range. Ratio is at most 100,
// keeping the quotient within uint64.
func mulDiv100(amount, ratio uint64) uint64 {
	hi, lo := bits.Mul64(amount, ratio)
	quo, _ := bits.Div64(hi, lo, 100)
	return quo
}

// nextTokenIndex increments and returns the monotonically increasing token
// index. Indexes start at 1 and are never reused, even after burns.
func nextTokenIndex(ctx chain.Context, key []byte) (string, error) {
	var current uint64
	raw, err := ctx.State().Get(key)
	if err == nil {
		current = binary.BigEndian.Uint64(raw)
	} else if err != storage.ErrNotFound {
		return "", fmt.Errorf("load token index: %w", err)
	}

	next := current + 1
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	if err := ctx.State().Put(key, buf); err != nil {
		return "", fmt.Errorf("store token index: %w", err)
	}
	return strconv.FormatUint(next, 10), nil
}

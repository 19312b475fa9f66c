package manager

import (
	"strconv"
	"testing"

	"github.com/louisbranch/menagerie/internal/bank"
	"github.com/louisbranch/menagerie/internal/chain"
	apperrors "github.com/louisbranch/menagerie/internal/errors"
)

func TestOneCoin(t *testing.T) {
	if _, err := oneCoin(nil); !apperrors.IsCode(err, apperrors.CodePayment) {
		t.Fatalf("expected PAYMENT for no funds, got %v", err)
	}

	two := []chain.Coin{chain.NewCoin(1, "ucool"), chain.NewCoin(1, "uother")}
	if _, err := oneCoin(two); !apperrors.IsCode(err, apperrors.CodePayment) {
		t.Fatalf("expected PAYMENT for two coins, got %v", err)
	}

	if _, err := oneCoin([]chain.Coin{{Denom: "ucool"}}); !apperrors.IsCode(err, apperrors.CodePayment) {
		t.Fatalf("expected PAYMENT for zero amount, got %v", err)
	}

	coin, err := oneCoin([]chain.Coin{chain.NewCoin(100, "ucool")})
	if err != nil {
		t.Fatalf("one coin: %v", err)
	}
	if coin.Amount != 100 || coin.Denom != "ucool" {
		t.Fatalf("unexpected coin %s", coin)
	}
}

func TestSplitFundsMismatch(t *testing.T) {
	cfg := Config{BurnRatio: 50, Destination: "treasury"}

	_, err := splitFunds(cfg, "ucool", "manager", chain.NewCoin(99, "ucool"), chain.NewCoin(100, "ucool"))
	if !apperrors.IsCode(err, apperrors.CodeIncorrectMintFunds) {
		t.Fatalf("expected INCORRECT_MINT_FUNDS for amount, got %v", err)
	}

	_, err = splitFunds(cfg, "ucool", "manager", chain.NewCoin(100, "uother"), chain.NewCoin(100, "ucool"))
	if !apperrors.IsCode(err, apperrors.CodeIncorrectMintFunds) {
		t.Fatalf("expected INCORRECT_MINT_FUNDS for denom, got %v", err)
	}
}

func TestSplitFundsBurnAndForward(t *testing.T) {
	cfg := Config{BurnRatio: 40, Destination: "treasury"}
	price := chain.NewCoin(100, "ucool")

	instructions, err := splitFunds(cfg, "ucool", "manager", price, price)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(instructions) != 2 {
		t.Fatalf("expected burn and send, got %+v", instructions)
	}
	if instructions[0].Op != bank.OpBurn || instructions[0].Amount.Amount != 40 {
		t.Fatalf("unexpected burn %+v", instructions[0])
	}
	if instructions[1].Op != bank.OpSend || instructions[1].To != "treasury" || instructions[1].Amount.Amount != 60 {
		t.Fatalf("unexpected forward %+v", instructions[1])
	}
}

func TestSplitFundsFullBurn(t *testing.T) {
	cfg := Config{BurnRatio: 100}
	price := chain.NewCoin(100, "ucool")

	instructions, err := splitFunds(cfg, "ucool", "manager", price, price)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(instructions) != 1 {
		t.Fatalf("full burn must not forward, got %+v", instructions)
	}
	if instructions[0].Op != bank.OpBurn || instructions[0].Amount.Amount != 100 {
		t.Fatalf("unexpected burn %+v", instructions[0])
	}
}

func TestSplitFundsZeroBurn(t *testing.T) {
	cfg := Config{BurnRatio: 0, Destination: "treasury"}
	price := chain.NewCoin(100, "ucool")

	instructions, err := splitFunds(cfg, "ucool", "manager", price, price)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(instructions) != 1 || instructions[0].Op != bank.OpSend || instructions[0].Amount.Amount != 100 {
		t.Fatalf("expected single full forward, got %+v", instructions)
	}
}

func TestSplitFundsRoundsBurnDown(t *testing.T) {
	cfg := Config{BurnRatio: 33, Destination: "treasury"}
	price := chain.NewCoin(10, "ucool")

	instructions, err := splitFunds(cfg, "ucool", "manager", price, price)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	// 10 * 33 / 100 = 3 burned, 7 forwarded; nothing is lost.
	if instructions[0].Amount.Amount != 3 || instructions[1].Amount.Amount != 7 {
		t.Fatalf("expected 3 burned and 7 forwarded, got %+v", instructions)
	}
}

func TestSplitFundsNonNativeForwardedInFull(t *testing.T) {
	cfg := Config{BurnRatio: 100, Destination: "treasury"}
	price := chain.NewCoin(100, "uother")

	instructions, err := splitFunds(cfg, "ucool", "manager", price, price)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(instructions) != 1 || instructions[0].Op != bank.OpSend || instructions[0].Amount.Amount != 100 {
		t.Fatalf("non-native payments must be forwarded in full, got %+v", instructions)
	}
}

func TestSplitFundsRequiresDestination(t *testing.T) {
	// Catalog prices are not part of the config, so a non-native price can
	// reach the split even though the stored config validated. The split
	// must fail instead of sending to an empty address.
	cfg := Config{BurnRatio: 100}
	price := chain.NewCoin(500, "uother")

	_, err := splitFunds(cfg, "ucool", "manager", price, price)
	if !apperrors.IsCode(err, apperrors.CodeNoMintDestination) {
		t.Fatalf("expected NO_MINT_DESTINATION for non-native price, got %v", err)
	}

	native := chain.NewCoin(100, "ucool")
	_, err = splitFunds(Config{BurnRatio: 50}, "ucool", "manager", native, native)
	if !apperrors.IsCode(err, apperrors.CodeNoMintDestination) {
		t.Fatalf("expected NO_MINT_DESTINATION for partial burn, got %v", err)
	}
}

func TestSplitFundsLargeAmounts(t *testing.T) {
	cfg := Config{BurnRatio: 50, Destination: "treasury"}
	price := chain.NewCoin(1<<62, "ucool")

	instructions, err := splitFunds(cfg, "ucool", "manager", price, price)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if instructions[0].Amount.Amount != 1<<61 {
		t.Fatalf("expected %d burned, got %d", uint64(1)<<61, instructions[0].Amount.Amount)
	}
	if instructions[1].Amount.Amount != 1<<61 {
		t.Fatalf("expected %d forwarded, got %d", uint64(1)<<61, instructions[1].Amount.Amount)
	}

	cfg.BurnRatio = 33
	max := chain.NewCoin(^uint64(0), "ucool")
	instructions, err = splitFunds(cfg, "ucool", "manager", max, max)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	burn := instructions[0].Amount.Amount
	forward := instructions[1].Amount.Amount
	if burn+forward != ^uint64(0) {
		t.Fatalf("split must conserve funds, got burn=%d forward=%d", burn, forward)
	}
	if burn != 6087425544324152032 {
		t.Fatalf("expected 33%% of max to burn 6087425544324152032, got %d", burn)
	}
}

func TestConfigValidate(t *testing.T) {
	native := "ucool"

	mismatched := Config{
		MintPrices: []chain.Coin{chain.NewCoin(1, native)},
		Rarities:   []string{"common", "rare"},
		BurnRatio:  100,
	}
	if err := mismatched.validate(native, false); !apperrors.IsCode(err, apperrors.CodeMismatchedLengths) {
		t.Fatalf("expected MISMATCHED_LENGTHS, got %v", err)
	}

	badRatio := Config{BurnRatio: 101}
	if err := badRatio.validate(native, false); !apperrors.IsCode(err, apperrors.CodeInvalidBurnRatio) {
		t.Fatalf("expected INVALID_BURN_RATIO, got %v", err)
	}

	noDestination := Config{
		MintPrices: []chain.Coin{chain.NewCoin(1, native)},
		Rarities:   []string{"common"},
		BurnRatio:  50,
	}
	if err := noDestination.validate(native, false); !apperrors.IsCode(err, apperrors.CodeNoMintDestination) {
		t.Fatalf("expected NO_MINT_DESTINATION, got %v", err)
	}

	fullBurnNoDestination := Config{
		MintPrices: []chain.Coin{chain.NewCoin(1, native)},
		Rarities:   []string{"common"},
		BurnRatio:  100,
	}
	if err := fullBurnNoDestination.validate(native, false); err != nil {
		t.Fatalf("full burn needs no destination: %v", err)
	}

	// A non-native price is never burned, so a destination is required even
	// at full burn ratio.
	nonNative := Config{
		MintPrices: []chain.Coin{chain.NewCoin(1, "uother")},
		Rarities:   []string{"common"},
		BurnRatio:  100,
	}
	if err := nonNative.validate(native, false); !apperrors.IsCode(err, apperrors.CodeNoMintDestination) {
		t.Fatalf("expected NO_MINT_DESTINATION for non-native price, got %v", err)
	}

	sellsEmpty := Config{
		EmptyMintPrice: chain.NewCoin(50, native),
		BurnRatio:      100,
	}
	if err := sellsEmpty.validate(native, true); err != nil {
		t.Fatalf("empty mint config: %v", err)
	}
}

func TestPriceForRarity(t *testing.T) {
	cfg := Config{
		MintPrices: []chain.Coin{chain.NewCoin(100, "ucool"), chain.NewCoin(500, "ucool")},
		Rarities:   []string{"common", "rare"},
	}

	price, err := cfg.priceForRarity("rare")
	if err != nil {
		t.Fatalf("price for rarity: %v", err)
	}
	if price.Amount != 500 {
		t.Fatalf("expected 500, got %d", price.Amount)
	}

	if _, err := cfg.priceForRarity("mythic"); !apperrors.IsCode(err, apperrors.CodeInvalidRarity) {
		t.Fatalf("expected INVALID_RARITY, got %v", err)
	}
}

func TestNextTokenIndex(t *testing.T) {
	ctx := testCtx(t)
	key := []byte("mgr/test/token_index")

	for want := 1; want <= 3; want++ {
		id, err := nextTokenIndex(ctx, key)
		if err != nil {
			t.Fatalf("next token index: %v", err)
		}
		if id != strconv.Itoa(want) {
			t.Fatalf("expected %d, got %s", want, id)
		}
	}
}

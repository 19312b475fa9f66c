package chain

import (
	"testing"

	apperrors "github.com/louisbranch/menagerie/internal/errors"
)

func TestParseCoin(t *testing.T) {
	coin, err := ParseCoin("100ucool")
	if err != nil {
		t.Fatalf("parse coin: %v", err)
	}
	if coin.Denom != "ucool" || coin.Amount != 100 {
		t.Fatalf("expected 100ucool, got %s", coin)
	}
}

func TestParseCoinRejectsMalformed(t *testing.T) {
	cases := []string{"", "ucool", "100", "100UCOOL", "100u", "-5ucool"}
	for _, input := range cases {
		if _, err := ParseCoin(input); !apperrors.IsCode(err, apperrors.CodeInvalidCoin) {
			t.Fatalf("input %q: expected INVALID_COIN, got %v", input, err)
		}
	}
}

func TestCoinString(t *testing.T) {
	coin := NewCoin(42, "uvial")
	if got := coin.String(); got != "42uvial" {
		t.Fatalf("expected 42uvial, got %s", got)
	}
}

func TestCoinEqual(t *testing.T) {
	a := NewCoin(10, "ucool")
	if !a.Equal(NewCoin(10, "ucool")) {
		t.Fatal("expected equal coins")
	}
	if a.Equal(NewCoin(11, "ucool")) {
		t.Fatal("amount mismatch must not be equal")
	}
	if a.Equal(NewCoin(10, "uvial")) {
		t.Fatal("denom mismatch must not be equal")
	}
}

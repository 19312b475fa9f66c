package chain

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/menagerie/internal/errors"
)

// Coin is an amount of a single denomination. Amounts are integers; there is
// no fractional unit.
type Coin struct {
	Denom  string `json:"denom"`
	Amount uint64 `json:"amount"`
}

// NewCoin builds a coin.
func NewCoin(amount uint64, denom string) Coin {
	return Coin{Denom: denom, Amount: amount}
}

// Equal reports denomination and amount equality.
func (c Coin) Equal(other Coin) bool {
	return c.Denom == other.Denom && c.Amount == other.Amount
}

// IsZero reports whether the coin has no amount.
func (c Coin) IsZero() bool {
	return c.Amount == 0
}

// String renders the coin in "123udenom" form.
func (c Coin) String() string {
	return fmt.Sprintf("%d%s", c.Amount, c.Denom)
}

// Validate checks the coin is well-formed.
func (c Coin) Validate() error {
	if err := validateDenom(c.Denom); err != nil {
		return err
	}
	return nil
}

// ParseCoin parses a coin in "123udenom" form.
func ParseCoin(s string) (Coin, error) {
	s = strings.TrimSpace(s)
	split := len(s)
	for i, r := range s {
		if r < '0' || r > '9' {
			split = i
			break
		}
	}
	if split == 0 || split == len(s) {
		return Coin{}, apperrors.WithMetadata(apperrors.CodeInvalidCoin, "coin must be <amount><denom>", map[string]string{"input": s})
	}
	amount, err := strconv.ParseUint(s[:split], 10, 64)
	if err != nil {
		return Coin{}, apperrors.Wrap(apperrors.CodeInvalidCoin, "parse coin amount", err)
	}
	coin := Coin{Denom: s[split:], Amount: amount}
	if err := coin.Validate(); err != nil {
		return Coin{}, err
	}
	return coin, nil
}

// MarshalYAML renders the "123udenom" scalar form.
func (c Coin) MarshalYAML() (any, error) {
	return c.String(), nil
}

// UnmarshalYAML accepts either the "123udenom" scalar form or an explicit
// denom/amount mapping.
func (c *Coin) UnmarshalYAML(unmarshal func(any) error) error {
	var scalar string
	if err := unmarshal(&scalar); err == nil {
		coin, err := ParseCoin(scalar)
		if err != nil {
			return err
		}
		*c = coin
		return nil
	}

	var fields struct {
		Denom  string `yaml:"denom"`
		Amount uint64 `yaml:"amount"`
	}
	if err := unmarshal(&fields); err != nil {
		return err
	}
	*c = Coin{Denom: fields.Denom, Amount: fields.Amount}
	return c.Validate()
}

func validateDenom(denom string) error {
	if len(denom) < 3 || len(denom) > 16 {
		return apperrors.New(apperrors.CodeInvalidCoin, "denom length must be between 3 and 16")
	}
	for _, r := range denom {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return apperrors.New(apperrors.CodeInvalidCoin, "denom must be lowercase alphanumeric")
		}
	}
	return nil
}

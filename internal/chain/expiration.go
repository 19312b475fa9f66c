package chain

import "time"

// Expiration bounds a grant in time. The zero value never expires. When
// Height is set the grant expires at that block height; when Time is set it
// expires at that block time. The height bound wins when both are set.
type Expiration struct {
	Height uint64    `json:"at_height,omitempty"`
	Time   time.Time `json:"at_time,omitzero"`
}

// Never returns an expiration that never expires.
func Never() Expiration {
	return Expiration{}
}

// AtHeight returns an expiration at the given block height.
func AtHeight(height uint64) Expiration {
	return Expiration{Height: height}
}

// AtTime returns an expiration at the given block time.
func AtTime(t time.Time) Expiration {
	return Expiration{Time: t}
}

// IsExpired reports whether the expiration has passed in the given block
// context. The threshold itself counts as expired.
func (e Expiration) IsExpired(ctx Context) bool {
	if e.Height != 0 {
		return ctx.Height >= e.Height
	}
	if !e.Time.IsZero() {
		return !ctx.Time.Before(e.Time)
	}
	return false
}

// IsNever reports whether the expiration is unbounded.
func (e Expiration) IsNever() bool {
	return e.Height == 0 && e.Time.IsZero()
}

// Package token implements the per-collection token registry and the
// authorization engine gating every mutation.
//
// A Registry is generic over the collection's extension metadata. Records,
// operator grants, the owner index, and the supply counter live under the
// registry's key namespace in the shared ordered store.
package token

import "github.com/louisbranch/menagerie/internal/chain"

// Extension is the constraint for per-token metadata. Freeze returns a copy
// with the one-way frozen flag set; it is irreversible by construction since
// no operation clears it.
type Extension[X any] interface {
	Validate() error
	Frozen() bool
	Freeze() X
}

// Approval grants one spender transfer rights over a single token until it
// expires or is revoked. Approvals keep insertion order.
type Approval struct {
	Spender string           `json:"spender"`
	Expires chain.Expiration `json:"expires,omitzero"`
}

// Token is one token record.
type Token[X Extension[X]] struct {
	Owner     string     `json:"owner"`
	Approvals []Approval `json:"approvals"`
	URI       string     `json:"uri,omitempty"`
	Extension X          `json:"extension"`
}

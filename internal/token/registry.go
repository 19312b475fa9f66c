package token

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/louisbranch/menagerie/internal/chain"
	apperrors "github.com/louisbranch/menagerie/internal/errors"
	"github.com/louisbranch/menagerie/internal/storage"
)

// Pagination bounds for token and operator enumeration.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ClampLimit applies the default and maximum page size.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Option configures a Registry.
type Option[X Extension[X]] func(*Registry[X])

// WithTransferGuard installs a collection precondition checked before any
// transfer or send authorization. Character collections use it to require
// the token to be frozen first.
func WithTransferGuard[X Extension[X]](guard func(X) error) Option[X] {
	return func(r *Registry[X]) {
		r.transferGuard = guard
	}
}

// Registry is the keyed store of token records for one collection.
type Registry[X Extension[X]] struct {
	ns            string
	transferGuard func(X) error
}

// NewRegistry creates a registry bound to a storage namespace.
func NewRegistry[X Extension[X]](namespace string, opts ...Option[X]) *Registry[X] {
	r := &Registry[X]{ns: namespace}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry[X]) tokenKey(id string) []byte {
	return storage.Join(r.ns, "token", id)
}

func (r *Registry[X]) tokenPrefix() []byte {
	return storage.Join(r.ns, "token", "")
}

func (r *Registry[X]) ownerIdxKey(owner, id string) []byte {
	return storage.Join(r.ns, "idx", "owner", owner, id)
}

func (r *Registry[X]) ownerIdxPrefix(owner string) []byte {
	return storage.Join(r.ns, "idx", "owner", owner, "")
}

func (r *Registry[X]) operatorKey(owner, operator string) []byte {
	return storage.Join(r.ns, "op", owner, operator)
}

func (r *Registry[X]) operatorPrefix(owner string) []byte {
	return storage.Join(r.ns, "op", owner, "")
}

func (r *Registry[X]) supplyKey() []byte {
	return storage.Join(r.ns, "supply")
}

// Load fetches a token record by id.
func (r *Registry[X]) Load(ctx chain.Context, id string) (Token[X], error) {
	raw, err := ctx.State().Get(r.tokenKey(id))
	if err != nil {
		if err == storage.ErrNotFound {
			return Token[X]{}, apperrors.WithMetadata(apperrors.CodeNotFound, "token not found", map[string]string{"token_id": id})
		}
		return Token[X]{}, fmt.Errorf("load token %q: %w", id, err)
	}
	var tok Token[X]
	if err := json.Unmarshal(raw, &tok); err != nil {
		return Token[X]{}, fmt.Errorf("unmarshal token %q: %w", id, err)
	}
	return tok, nil
}

// Create inserts a new token record and bumps the supply counter. It fails
// with CLAIMED when the id is already taken.
func (r *Registry[X]) Create(ctx chain.Context, id string, tok Token[X]) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.New(apperrors.CodeNotFound, "token id is required")
	}
	if _, err := ctx.State().Get(r.tokenKey(id)); err == nil {
		return apperrors.WithMetadata(apperrors.CodeClaimed, "token id already claimed", map[string]string{"token_id": id})
	} else if err != storage.ErrNotFound {
		return fmt.Errorf("check token %q: %w", id, err)
	}

	if err := r.write(ctx, id, tok); err != nil {
		return err
	}
	if err := ctx.State().Put(r.ownerIdxKey(tok.Owner, id), []byte{1}); err != nil {
		return fmt.Errorf("index token %q: %w", id, err)
	}
	return r.bumpSupply(ctx, 1)
}

// Save overwrites an existing record, keeping the owner index consistent
// when ownership changed.
func (r *Registry[X]) Save(ctx chain.Context, id string, tok Token[X]) error {
	old, err := r.Load(ctx, id)
	if err != nil {
		return err
	}
	if old.Owner != tok.Owner {
		if err := ctx.State().Delete(r.ownerIdxKey(old.Owner, id)); err != nil {
			return fmt.Errorf("unindex token %q: %w", id, err)
		}
		if err := ctx.State().Put(r.ownerIdxKey(tok.Owner, id), []byte{1}); err != nil {
			return fmt.Errorf("index token %q: %w", id, err)
		}
	}
	return r.write(ctx, id, tok)
}

// Remove deletes a record and decrements the supply counter.
func (r *Registry[X]) Remove(ctx chain.Context, id string) error {
	tok, err := r.Load(ctx, id)
	if err != nil {
		return err
	}
	if err := ctx.State().Delete(r.tokenKey(id)); err != nil {
		return fmt.Errorf("delete token %q: %w", id, err)
	}
	if err := ctx.State().Delete(r.ownerIdxKey(tok.Owner, id)); err != nil {
		return fmt.Errorf("unindex token %q: %w", id, err)
	}
	return r.bumpSupply(ctx, -1)
}

// Count returns the number of live tokens.
func (r *Registry[X]) Count(ctx chain.Context) (uint64, error) {
	raw, err := ctx.State().Get(r.supplyKey())
	if err != nil {
		if err == storage.ErrNotFound {
			return 0, nil
		}
		return 0, fmt.Errorf("load supply: %w", err)
	}
	return binary.BigEndian.Uint64(raw), nil
}

// TokensByOwner lists token ids held by owner in lexicographic order.
// startAfter is exclusive; limit is clamped to the page bounds.
func (r *Registry[X]) TokensByOwner(ctx chain.Context, owner, startAfter string, limit int) ([]string, error) {
	prefix := r.ownerIdxPrefix(owner)
	var after []byte
	if startAfter != "" {
		after = r.ownerIdxKey(owner, startAfter)
	}
	var ids []string
	err := ctx.State().Scan(prefix, after, ClampLimit(limit), func(key, _ []byte) error {
		ids = append(ids, string(key[len(prefix):]))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan tokens by owner: %w", err)
	}
	return ids, nil
}

// AllTokens lists every token id in lexicographic order.
func (r *Registry[X]) AllTokens(ctx chain.Context, startAfter string, limit int) ([]string, error) {
	prefix := r.tokenPrefix()
	var after []byte
	if startAfter != "" {
		after = r.tokenKey(startAfter)
	}
	var ids []string
	err := ctx.State().Scan(prefix, after, ClampLimit(limit), func(key, _ []byte) error {
		ids = append(ids, string(key[len(prefix):]))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan all tokens: %w", err)
	}
	return ids, nil
}

// Operator returns the operator grant for (owner, operator), or NOT_FOUND.
func (r *Registry[X]) Operator(ctx chain.Context, owner, operator string) (chain.Expiration, error) {
	raw, err := ctx.State().Get(r.operatorKey(owner, operator))
	if err != nil {
		if err == storage.ErrNotFound {
			return chain.Expiration{}, apperrors.WithMetadata(apperrors.CodeNotFound, "operator grant not found", map[string]string{"owner": owner, "operator": operator})
		}
		return chain.Expiration{}, fmt.Errorf("load operator grant: %w", err)
	}
	var exp chain.Expiration
	if err := json.Unmarshal(raw, &exp); err != nil {
		return chain.Expiration{}, fmt.Errorf("unmarshal operator grant: %w", err)
	}
	return exp, nil
}

// OperatorGrant pairs an operator with its expiry for enumeration.
type OperatorGrant struct {
	Operator string           `json:"operator"`
	Expires  chain.Expiration `json:"expires,omitzero"`
}

// OperatorsByOwner lists operator grants for owner in lexicographic order.
func (r *Registry[X]) OperatorsByOwner(ctx chain.Context, owner, startAfter string, limit int) ([]OperatorGrant, error) {
	prefix := r.operatorPrefix(owner)
	var after []byte
	if startAfter != "" {
		after = r.operatorKey(owner, startAfter)
	}
	var grants []OperatorGrant
	err := ctx.State().Scan(prefix, after, ClampLimit(limit), func(key, value []byte) error {
		var exp chain.Expiration
		if err := json.Unmarshal(value, &exp); err != nil {
			return fmt.Errorf("unmarshal operator grant: %w", err)
		}
		grants = append(grants, OperatorGrant{Operator: string(key[len(prefix):]), Expires: exp})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan operators: %w", err)
	}
	return grants, nil
}

// SetOperator stores or overwrites an operator grant.
func (r *Registry[X]) SetOperator(ctx chain.Context, owner, operator string, expires chain.Expiration) error {
	raw, err := json.Marshal(expires)
	if err != nil {
		return fmt.Errorf("marshal operator grant: %w", err)
	}
	return ctx.State().Put(r.operatorKey(owner, operator), raw)
}

// RemoveOperator deletes an operator grant. Absent grants are a no-op.
func (r *Registry[X]) RemoveOperator(ctx chain.Context, owner, operator string) error {
	return ctx.State().Delete(r.operatorKey(owner, operator))
}

func (r *Registry[X]) write(ctx chain.Context, id string, tok Token[X]) error {
	raw, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("marshal token %q: %w", id, err)
	}
	return ctx.State().Put(r.tokenKey(id), raw)
}

func (r *Registry[X]) bumpSupply(ctx chain.Context, delta int64) error {
	count, err := r.Count(ctx)
	if err != nil {
		return err
	}
	next := uint64(int64(count) + delta)
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, next)
	return ctx.State().Put(r.supplyKey(), raw)
}

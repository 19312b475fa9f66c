// Package runtime is the host executing contract calls. It owns the durable
// store and the contract instances, runs every mutating call inside a single
// writable transaction, applies the fund movements contracts emit, and rolls
// everything back on the first error. Queries run in read-only transactions.
package runtime

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/menagerie/internal/bank"
	"github.com/louisbranch/menagerie/internal/catalog"
	"github.com/louisbranch/menagerie/internal/chain"
	"github.com/louisbranch/menagerie/internal/collection"
	"github.com/louisbranch/menagerie/internal/manager"
	"github.com/louisbranch/menagerie/internal/storage"
)

// Target selects which collection an operation addresses.
type Target string

const (
	// TargetCharacters addresses the character collection.
	TargetCharacters Target = "characters"
	// TargetTraits addresses the trait collection.
	TargetTraits Target = "traits"
)

// Storage namespaces for the contract instances.
const (
	nsCharacters       = "col/character"
	nsTraits           = "col/trait"
	nsCatalog          = "catalog"
	nsCharacterManager = "mgr/character"
	nsTraitManager     = "mgr/trait"
	nsBank             = "bank"
)

var heightKey = storage.Join("chain", "height")

// Options configures a host.
type Options struct {
	// NativeDenom is the burnable denomination.
	NativeDenom string
	// CharacterManagerAddr and TraitManagerAddr are the manager
	// contracts' own ledger addresses. Defaults are used when empty.
	CharacterManagerAddr string
	TraitManagerAddr     string
}

// Host wires the contract instances over one durable store.
type Host struct {
	db     storage.DB
	tracer trace.Tracer
	native string

	ledger     *bank.Ledger
	characters *collection.Collection[collection.CharacterMetadata]
	traits     *collection.Collection[collection.TraitMetadata]
	catalog    *catalog.Registry
	charMgr    *manager.CharacterManager
	traitMgr   *manager.TraitManager
}

// New builds a host over an open store.
func New(db storage.DB, opts Options) *Host {
	if opts.NativeDenom == "" {
		opts.NativeDenom = "ucool"
	}
	if opts.CharacterManagerAddr == "" {
		opts.CharacterManagerAddr = "charactermanager"
	}
	if opts.TraitManagerAddr == "" {
		opts.TraitManagerAddr = "traitmanager"
	}

	characters := collection.New[collection.CharacterMetadata](nsCharacters, true)
	traits := collection.New[collection.TraitMetadata](nsTraits, false)
	cat := catalog.New(nsCatalog)

	return &Host{
		db:         db,
		tracer:     otel.Tracer("menagerie/runtime"),
		native:     opts.NativeDenom,
		ledger:     bank.NewLedger(nsBank),
		characters: characters,
		traits:     traits,
		catalog:    cat,
		charMgr:    manager.NewCharacterManager(nsCharacterManager, opts.CharacterManagerAddr, opts.NativeDenom, characters, traits, cat),
		traitMgr:   manager.NewTraitManager(nsTraitManager, opts.TraitManagerAddr, opts.NativeDenom, traits, cat),
	}
}

// NativeDenom returns the burnable denomination.
func (h *Host) NativeDenom() string {
	return h.native
}

// execute runs one mutating contract call. The block height advances once
// per call; the fund movements the contract emits are applied inside the
// same transaction, so a failing instruction discards the whole call.
func (h *Host) execute(ctx context.Context, op string, fn func(chain.Context) ([]bank.Instruction, []chain.Attribute, error)) ([]chain.Attribute, error) {
	_, span := h.tracer.Start(ctx, op)
	defer span.End()

	var attrs []chain.Attribute
	err := h.db.Update(func(kv storage.KV) error {
		height, err := nextHeight(kv)
		if err != nil {
			return err
		}
		cctx := chain.NewContext(kv, height, time.Now().UTC(), 0)

		instructions, result, err := fn(cctx)
		if err != nil {
			return err
		}
		if err := h.ledger.Apply(cctx, instructions); err != nil {
			return err
		}
		attrs = result
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return attrs, nil
}

// view runs a read-only query against the current height.
func (h *Host) view(fn func(chain.Context) error) error {
	return h.db.View(func(kv storage.KV) error {
		height, err := currentHeight(kv)
		if err != nil {
			return err
		}
		return fn(chain.NewContext(kv, height, time.Now().UTC(), 0))
	})
}

// attachFunds moves the coins a caller attached to a call into the target
// contract's ledger account before the contract runs.
func (h *Host) attachFunds(cctx chain.Context, sender, to string, funds []chain.Coin) error {
	for _, coin := range funds {
		if err := h.ledger.Transfer(cctx, sender, to, coin); err != nil {
			return err
		}
	}
	return nil
}

func currentHeight(kv storage.KV) (uint64, error) {
	raw, err := kv.Get(heightKey)
	if err != nil {
		if err == storage.ErrNotFound {
			return 0, nil
		}
		return 0, fmt.Errorf("load chain height: %w", err)
	}
	return binary.BigEndian.Uint64(raw), nil
}

func nextHeight(kv storage.KV) (uint64, error) {
	height, err := currentHeight(kv)
	if err != nil {
		return 0, err
	}
	height++
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, height)
	if err := kv.Put(heightKey, raw); err != nil {
		return 0, fmt.Errorf("store chain height: %w", err)
	}
	return height, nil
}

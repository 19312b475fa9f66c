package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/louisbranch/menagerie/internal/chain"
	apperrors "github.com/louisbranch/menagerie/internal/errors"
	"github.com/louisbranch/menagerie/internal/ownable"
	"github.com/louisbranch/menagerie/internal/storage"
	"github.com/louisbranch/menagerie/internal/token"
)

// Storage family segments. Bundles and lootboxes keep trait and character
// variants in separate key spaces so ids only need to be unique per family.
const (
	familyTrait            = "trait"
	familyCharacter        = "character"
	familyTraitBundle      = "bundle/trait"
	familyCharacterBundle  = "bundle/character"
	familyTraitLootbox     = "lootbox/trait"
	familyCharacterLootbox = "lootbox/character"
)

// Registry is the catalog contract. Writes require the admin; reads are
// open to anyone.
type Registry struct {
	ns    string
	admin *ownable.Ownable
}

// New creates a catalog registry bound to a storage namespace.
func New(namespace string) *Registry {
	return &Registry{ns: namespace, admin: ownable.New(namespace + "/admin")}
}

// Instantiate records the admin address allowed to edit the catalog.
func (r *Registry) Instantiate(ctx chain.Context, admin string) error {
	if err := chain.ValidateAddress(admin); err != nil {
		return err
	}
	return r.admin.Initialize(ctx, admin)
}

// UpdateOwnership applies an admin ownership action.
func (r *Registry) UpdateOwnership(ctx chain.Context, sender string, action ownable.Action) (ownable.Ownership, error) {
	return r.admin.Update(ctx, sender, action)
}

// AddTrait stores a new trait definition.
func (r *Registry) AddTrait(ctx chain.Context, sender string, t Trait) error {
	if err := r.admin.AssertOwner(ctx, sender); err != nil {
		return err
	}
	if err := t.validate(); err != nil {
		return err
	}
	return addEntry(ctx, r.ns, familyTrait, t.ID, t)
}

// RemoveTrait deletes a trait definition.
func (r *Registry) RemoveTrait(ctx chain.Context, sender, id string) error {
	if err := r.admin.AssertOwner(ctx, sender); err != nil {
		return err
	}
	return removeEntry(ctx, r.ns, familyTrait, id)
}

// AddCharacter stores a new premade character definition.
func (r *Registry) AddCharacter(ctx chain.Context, sender string, c Character) error {
	if err := r.admin.AssertOwner(ctx, sender); err != nil {
		return err
	}
	if err := c.validate(); err != nil {
		return err
	}
	return addEntry(ctx, r.ns, familyCharacter, c.ID, c)
}

// RemoveCharacter deletes a premade character definition.
func (r *Registry) RemoveCharacter(ctx chain.Context, sender, id string) error {
	if err := r.admin.AssertOwner(ctx, sender); err != nil {
		return err
	}
	return removeEntry(ctx, r.ns, familyCharacter, id)
}

// AddTraitBundle stores a new trait bundle.
func (r *Registry) AddTraitBundle(ctx chain.Context, sender string, b Bundle) error {
	return r.addBundle(ctx, sender, familyTraitBundle, b)
}

// AddCharacterBundle stores a new character bundle.
func (r *Registry) AddCharacterBundle(ctx chain.Context, sender string, b Bundle) error {
	return r.addBundle(ctx, sender, familyCharacterBundle, b)
}

// RemoveTraitBundle deletes a trait bundle.
func (r *Registry) RemoveTraitBundle(ctx chain.Context, sender, id string) error {
	if err := r.admin.AssertOwner(ctx, sender); err != nil {
		return err
	}
	return removeEntry(ctx, r.ns, familyTraitBundle, id)
}

// RemoveCharacterBundle deletes a character bundle.
func (r *Registry) RemoveCharacterBundle(ctx chain.Context, sender, id string) error {
	if err := r.admin.AssertOwner(ctx, sender); err != nil {
		return err
	}
	return removeEntry(ctx, r.ns, familyCharacterBundle, id)
}

// AddTraitLootbox stores a new trait lootbox. The weight list is validated
// here, at write time, so selection can trust stored entries.
func (r *Registry) AddTraitLootbox(ctx chain.Context, sender string, l Lootbox) error {
	return r.addLootbox(ctx, sender, familyTraitLootbox, l)
}

// AddCharacterLootbox stores a new character lootbox.
func (r *Registry) AddCharacterLootbox(ctx chain.Context, sender string, l Lootbox) error {
	return r.addLootbox(ctx, sender, familyCharacterLootbox, l)
}

// RemoveTraitLootbox deletes a trait lootbox.
func (r *Registry) RemoveTraitLootbox(ctx chain.Context, sender, id string) error {
	if err := r.admin.AssertOwner(ctx, sender); err != nil {
		return err
	}
	return removeEntry(ctx, r.ns, familyTraitLootbox, id)
}

// RemoveCharacterLootbox deletes a character lootbox.
func (r *Registry) RemoveCharacterLootbox(ctx chain.Context, sender, id string) error {
	if err := r.admin.AssertOwner(ctx, sender); err != nil {
		return err
	}
	return removeEntry(ctx, r.ns, familyCharacterLootbox, id)
}

func (r *Registry) addBundle(ctx chain.Context, sender, family string, b Bundle) error {
	if err := r.admin.AssertOwner(ctx, sender); err != nil {
		return err
	}
	if err := b.validate(); err != nil {
		return err
	}
	return addEntry(ctx, r.ns, family, b.ID, b)
}

func (r *Registry) addLootbox(ctx chain.Context, sender, family string, l Lootbox) error {
	if err := r.admin.AssertOwner(ctx, sender); err != nil {
		return err
	}
	if err := l.validate(); err != nil {
		return err
	}
	return addEntry(ctx, r.ns, family, l.ID, l)
}

// Trait looks up one trait definition.
func (r *Registry) Trait(ctx chain.Context, id string) (Trait, error) {
	return getEntry[Trait](ctx, r.ns, familyTrait, id)
}

// Traits lists trait definitions in id order, paginated.
func (r *Registry) Traits(ctx chain.Context, startAfter string, limit int) ([]Trait, error) {
	return listEntries[Trait](ctx, r.ns, familyTrait, startAfter, limit)
}

// Character looks up one premade character definition.
func (r *Registry) Character(ctx chain.Context, id string) (Character, error) {
	return getEntry[Character](ctx, r.ns, familyCharacter, id)
}

// Characters lists premade character definitions in id order, paginated.
func (r *Registry) Characters(ctx chain.Context, startAfter string, limit int) ([]Character, error) {
	return listEntries[Character](ctx, r.ns, familyCharacter, startAfter, limit)
}

// FindCharacter scans every premade character and returns the first one
// match accepts. Managers use it for field-by-field mint validation.
func (r *Registry) FindCharacter(ctx chain.Context, match func(Character) bool) (Character, bool, error) {
	var (
		found Character
		ok    bool
	)
	err := eachEntry(ctx, r.ns, familyCharacter, func(c Character) error {
		if match(c) {
			found, ok = c, true
			return storage.ErrStopScan
		}
		return nil
	})
	if err != nil {
		return Character{}, false, err
	}
	return found, ok, nil
}

// FindTrait scans every trait definition and returns the first one match
// accepts.
func (r *Registry) FindTrait(ctx chain.Context, match func(Trait) bool) (Trait, bool, error) {
	var (
		found Trait
		ok    bool
	)
	err := eachEntry(ctx, r.ns, familyTrait, func(t Trait) error {
		if match(t) {
			found, ok = t, true
			return storage.ErrStopScan
		}
		return nil
	})
	if err != nil {
		return Trait{}, false, err
	}
	return found, ok, nil
}

// TraitBundle looks up one trait bundle.
func (r *Registry) TraitBundle(ctx chain.Context, id string) (Bundle, error) {
	return getEntry[Bundle](ctx, r.ns, familyTraitBundle, id)
}

// TraitBundles lists trait bundles in id order, paginated.
func (r *Registry) TraitBundles(ctx chain.Context, startAfter string, limit int) ([]Bundle, error) {
	return listEntries[Bundle](ctx, r.ns, familyTraitBundle, startAfter, limit)
}

// CharacterBundle looks up one character bundle.
func (r *Registry) CharacterBundle(ctx chain.Context, id string) (Bundle, error) {
	return getEntry[Bundle](ctx, r.ns, familyCharacterBundle, id)
}

// CharacterBundles lists character bundles in id order, paginated.
func (r *Registry) CharacterBundles(ctx chain.Context, startAfter string, limit int) ([]Bundle, error) {
	return listEntries[Bundle](ctx, r.ns, familyCharacterBundle, startAfter, limit)
}

// TraitLootbox looks up one trait lootbox.
func (r *Registry) TraitLootbox(ctx chain.Context, id string) (Lootbox, error) {
	return getEntry[Lootbox](ctx, r.ns, familyTraitLootbox, id)
}

// TraitLootboxes lists trait lootboxes in id order, paginated.
func (r *Registry) TraitLootboxes(ctx chain.Context, startAfter string, limit int) ([]Lootbox, error) {
	return listEntries[Lootbox](ctx, r.ns, familyTraitLootbox, startAfter, limit)
}

// CharacterLootbox looks up one character lootbox.
func (r *Registry) CharacterLootbox(ctx chain.Context, id string) (Lootbox, error) {
	return getEntry[Lootbox](ctx, r.ns, familyCharacterLootbox, id)
}

// CharacterLootboxes lists character lootboxes in id order, paginated.
func (r *Registry) CharacterLootboxes(ctx chain.Context, startAfter string, limit int) ([]Lootbox, error) {
	return listEntries[Lootbox](ctx, r.ns, familyCharacterLootbox, startAfter, limit)
}

func entryKey(ns, family, id string) []byte {
	return storage.Join(ns, family, id)
}

func entryPrefix(ns, family string) []byte {
	return storage.Join(ns, family, "")
}

func addEntry[T any](ctx chain.Context, ns, family, id string, entry T) error {
	key := entryKey(ns, family, id)
	if _, err := ctx.State().Get(key); err == nil {
		return apperrors.WithMetadata(apperrors.CodeIDExists, "catalog id already exists", map[string]string{"id": id})
	} else if err != storage.ErrNotFound {
		return fmt.Errorf("check catalog entry %q: %w", id, err)
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal catalog entry %q: %w", id, err)
	}
	return ctx.State().Put(key, raw)
}

func removeEntry(ctx chain.Context, ns, family, id string) error {
	key := entryKey(ns, family, id)
	if _, err := ctx.State().Get(key); err != nil {
		if err == storage.ErrNotFound {
			return apperrors.WithMetadata(apperrors.CodeNotFound, "catalog entry not found", map[string]string{"id": id})
		}
		return fmt.Errorf("check catalog entry %q: %w", id, err)
	}
	return ctx.State().Delete(key)
}

func getEntry[T any](ctx chain.Context, ns, family, id string) (T, error) {
	var entry T
	raw, err := ctx.State().Get(entryKey(ns, family, id))
	if err != nil {
		if err == storage.ErrNotFound {
			return entry, apperrors.WithMetadata(apperrors.CodeNotFound, "catalog entry not found", map[string]string{"id": id})
		}
		return entry, fmt.Errorf("load catalog entry %q: %w", id, err)
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return entry, fmt.Errorf("unmarshal catalog entry %q: %w", id, err)
	}
	return entry, nil
}

func listEntries[T any](ctx chain.Context, ns, family, startAfter string, limit int) ([]T, error) {
	var after []byte
	if startAfter != "" {
		after = entryKey(ns, family, startAfter)
	}
	var entries []T
	err := ctx.State().Scan(entryPrefix(ns, family), after, token.ClampLimit(limit), func(_, value []byte) error {
		var entry T
		if err := json.Unmarshal(value, &entry); err != nil {
			return fmt.Errorf("unmarshal catalog entry: %w", err)
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan catalog %s entries: %w", family, err)
	}
	return entries, nil
}

func eachEntry[T any](ctx chain.Context, ns, family string, fn func(T) error) error {
	err := ctx.State().Scan(entryPrefix(ns, family), nil, 0, func(_, value []byte) error {
		var entry T
		if err := json.Unmarshal(value, &entry); err != nil {
			return fmt.Errorf("unmarshal catalog entry: %w", err)
		}
		return fn(entry)
	})
	if err != nil && err != storage.ErrStopScan {
		return fmt.Errorf("scan catalog %s entries: %w", family, err)
	}
	return nil
}

package catalog

import (
	"fmt"
	"sync"

	"studio/internal/domain"
)

// OrderStore persists the user's preferred transformation ordering. Both
// operations are best-effort collaborators; failures must not block the
// registry.
type OrderStore interface {
	LoadOrder() ([]string, bool)
	SaveOrder(order []string) error
}

// Registry is the static transformation catalog plus the user-customizable
// display order layered on top of it.
type Registry struct {
	mu        sync.RWMutex
	byKey     map[string]Transformation
	canonical []string
	order     []string
	store     OrderStore
}

// NewRegistry validates the catalog and applies any persisted ordering read
// once at startup. A nil store disables persistence.
func NewRegistry(items []Transformation, store OrderStore) (*Registry, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	byKey := make(map[string]Transformation, len(items))
	canonical := make([]string, 0, len(items))
	for _, t := range items {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := byKey[t.Key]; dup {
			return nil, fmt.Errorf("duplicate transformation key %q", t.Key)
		}
		byKey[t.Key] = t
		canonical = append(canonical, t.Key)
	}

	order := canonical
	if store != nil {
		if saved, ok := store.LoadOrder(); ok {
			order = MergeSavedOrder(saved, canonical)
		}
	}

	return &Registry{byKey: byKey, canonical: canonical, order: order, store: store}, nil
}

// List returns the catalog in the current display order.
func (r *Registry) List() []Transformation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Transformation, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.byKey[key])
	}
	return out
}

// Resolve looks a transformation up by key.
func (r *Registry) Resolve(key string) (Transformation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byKey[key]
	if !ok {
		return Transformation{}, fmt.Errorf("transformation %q: %w", key, domain.ErrNotFound)
	}
	return t, nil
}

// Reorder applies a new display order and persists it best-effort. The input
// is reconciled against the canonical catalog first, so unknown keys are
// dropped and omitted keys keep their canonical position at the end.
func (r *Registry) Reorder(newOrder []string) ([]string, error) {
	r.mu.Lock()
	merged := MergeSavedOrder(newOrder, r.canonical)
	r.order = merged
	store := r.store
	r.mu.Unlock()

	if store != nil {
		if err := store.SaveOrder(merged); err != nil {
			return merged, err
		}
	}
	return merged, nil
}

// MergeSavedOrder reconciles a persisted ordering with the canonical catalog:
// saved keys keep their saved order, keys unknown to the catalog are dropped,
// and catalog keys missing from the saved order are appended canonically so a
// newly shipped transformation is never silently hidden.
func MergeSavedOrder(saved, canonical []string) []string {
	known := make(map[string]struct{}, len(canonical))
	for _, key := range canonical {
		known[key] = struct{}{}
	}

	merged := make([]string, 0, len(canonical))
	seen := make(map[string]struct{}, len(canonical))
	for _, key := range saved {
		if _, ok := known[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, key)
	}
	for _, key := range canonical {
		if _, ok := seen[key]; !ok {
			merged = append(merged, key)
		}
	}
	return merged
}

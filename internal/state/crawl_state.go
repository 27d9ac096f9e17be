package state

import (
	"context"
	"encoding/json"
	"fmt"
)

// CrawlState is the snapshot of a walk read at the start of every page load.
type CrawlState struct {
	Active          bool
	AccumulatedCSV  string
	FailedSnapshots []string
}

// Keys names the three values making up a CrawlState.
type Keys struct {
	Active string
	CSV    string
	Failed string
}

// NamespacedKeys returns the keys used under namespace.
func NamespacedKeys(namespace string) Keys {
	return Keys{
		Active: namespace + ":active",
		CSV:    namespace + ":csv",
		Failed: namespace + ":failed",
	}
}

// Repository reads and writes CrawlState over a Store.
type Repository struct {
	store Store
	keys  Keys
}

// NewRepository creates a repository for namespace on store
func NewRepository(store Store, namespace string) *Repository {
	return &Repository{store: store, keys: NamespacedKeys(namespace)}
}

// Keys returns the store keys the repository uses.
func (r *Repository) Keys() Keys {
	return r.keys
}

// Load reads all three keys. Absent keys load as their zero value.
func (r *Repository) Load(ctx context.Context) (CrawlState, error) {
	var st CrawlState

	active, _, err := r.store.Get(ctx, r.keys.Active)
	if err != nil {
		return st, err
	}
	st.Active = active == "true"

	st.AccumulatedCSV, _, err = r.store.Get(ctx, r.keys.CSV)
	if err != nil {
		return st, err
	}

	failed, ok, err := r.store.Get(ctx, r.keys.Failed)
	if err != nil {
		return st, err
	}
	if ok && failed != "" {
		if err := json.Unmarshal([]byte(failed), &st.FailedSnapshots); err != nil {
			return st, fmt.Errorf("failed to decode %s: %w", r.keys.Failed, err)
		}
	}
	return st, nil
}

// Begin clears any previous walk and marks a new one active.
func (r *Repository) Begin(ctx context.Context) error {
	if err := r.Clear(ctx); err != nil {
		return err
	}
	if err := r.store.Set(ctx, r.keys.CSV, ""); err != nil {
		return err
	}
	if err := r.store.Set(ctx, r.keys.Failed, "[]"); err != nil {
		return err
	}
	return r.store.Set(ctx, r.keys.Active, "true")
}

// SaveProgress writes the accumulated CSV and the failed snapshot list.
func (r *Repository) SaveProgress(ctx context.Context, st CrawlState) error {
	if err := r.store.Set(ctx, r.keys.CSV, st.AccumulatedCSV); err != nil {
		return err
	}
	snapshots := st.FailedSnapshots
	if snapshots == nil {
		snapshots = []string{}
	}
	encoded, err := json.Marshal(snapshots)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", r.keys.Failed, err)
	}
	return r.store.Set(ctx, r.keys.Failed, string(encoded))
}

// Deactivate clears the active flag and leaves the accumulated data in place.
func (r *Repository) Deactivate(ctx context.Context) error {
	return r.store.Remove(ctx, r.keys.Active)
}

// Clear removes all three keys.
func (r *Repository) Clear(ctx context.Context) error {
	for _, key := range []string{r.keys.Active, r.keys.CSV, r.keys.Failed} {
		if err := r.store.Remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

package pgpolicy

import (
	"context"
)

// LoadAll is a convenience function that opens an adapter, loads every
// stored rule into a fresh model, and closes the adapter.
func LoadAll(ctx context.Context, cfg Config) (*Model, error) {
	a, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	m := NewModel()
	if err := a.LoadPolicy(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// ReplaceAll is a convenience function that opens an adapter, atomically
// replaces the stored rule set with the model's contents, and closes the
// adapter.
func ReplaceAll(ctx context.Context, cfg Config, m *Model) error {
	a, err := Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.SavePolicy(ctx, m)
}

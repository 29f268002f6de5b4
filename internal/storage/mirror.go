package storage

import (
	"context"
	"errors"

	"evalia/internal/observe"
)

// MirrorStore writes to a primary store and copies every save to secondary
// stores. Reads only hit the primary.
type MirrorStore struct {
	primary   ResultStore
	secondary []ResultStore
}

// NewMirrorStore returns a store fanning saves out to every secondary.
func NewMirrorStore(primary ResultStore, secondary ...ResultStore) *MirrorStore {
	return &MirrorStore{primary: primary, secondary: secondary}
}

// Save fails only when the primary fails; mirror errors are logged.
func (m *MirrorStore) Save(ctx context.Context, r *Results) error {
	if err := m.primary.Save(ctx, r); err != nil {
		return err
	}
	for _, s := range m.secondary {
		if err := s.Save(ctx, r); err != nil {
			observe.Logger(ctx).Warn("storage: mirror save failed", "err", err)
		}
	}
	return nil
}

// Load reads from the primary.
func (m *MirrorStore) Load(ctx context.Context) (*Results, error) {
	return m.primary.Load(ctx)
}

// Ping pings every store that supports it.
func (m *MirrorStore) Ping(ctx context.Context) error {
	var errs []error
	for _, s := range append([]ResultStore{m.primary}, m.secondary...) {
		if p, ok := s.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

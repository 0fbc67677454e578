package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/DoyleJ11/live-draft-backend/internal/engine"
)

// Memory keeps clones so callers never share slices with the store.
type Memory struct {
	mu     sync.RWMutex
	drafts map[string]engine.Draft
}

func NewMemory() *Memory {
	return &Memory{drafts: make(map[string]engine.Draft)}
}

func (m *Memory) Create(ctx context.Context, d engine.Draft) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drafts[d.ID]; ok {
		return fmt.Errorf("create draft %s: already exists", d.ID)
	}
	m.drafts[d.ID] = d.Clone()
	return nil
}

func (m *Memory) FindByID(ctx context.Context, id string) (engine.Draft, error) {
	if err := ctx.Err(); err != nil {
		return engine.Draft{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drafts[id]
	if !ok {
		return engine.Draft{}, ErrDraftNotFound
	}
	return d.Clone(), nil
}

func (m *Memory) Save(ctx context.Context, d engine.Draft) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drafts[d.ID]; !ok {
		return ErrDraftNotFound
	}
	m.drafts[d.ID] = d.Clone()
	return nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drafts[id]; !ok {
		return ErrDraftNotFound
	}
	delete(m.drafts, id)
	return nil
}

func (m *Memory) ListByStatus(ctx context.Context, status engine.Status) ([]engine.Draft, error) {
	return m.list(ctx, func(d engine.Draft) bool { return d.Status == status })
}

func (m *Memory) ListStaleLobbies(ctx context.Context, cutoff time.Time) ([]engine.Draft, error) {
	return m.list(ctx, func(d engine.Draft) bool {
		return d.Status == engine.StatusLobby && d.CreatedAt.Before(cutoff)
	})
}

// list returns matches newest first.
func (m *Memory) list(ctx context.Context, keep func(engine.Draft) bool) ([]engine.Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := make([]engine.Draft, 0)
	for _, d := range m.drafts {
		if keep(d) {
			out = append(out, d.Clone())
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b engine.Draft) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

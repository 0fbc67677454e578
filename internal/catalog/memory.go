package catalog

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

type Memory struct {
	mu      sync.RWMutex
	players map[int64]Player
}

func NewMemory(players ...Player) *Memory {
	m := &Memory{players: make(map[int64]Player, len(players))}
	for _, p := range players {
		m.players[p.ID] = p
	}
	return m
}

type seedFile struct {
	Players []Player `yaml:"players"`
}

// ParseYAML reads a document of the form
//
//	players:
//	  - id: 1
//	    name: Caleb Williams
//	    verified: true
func ParseYAML(data []byte) ([]Player, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse players: %w", err)
	}
	seen := make(map[int64]bool, len(f.Players))
	for _, p := range f.Players {
		if p.ID <= 0 {
			return nil, fmt.Errorf("parse players: %q has no id", p.Name)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("parse players: duplicate id %d", p.ID)
		}
		seen[p.ID] = true
	}
	return f.Players, nil
}

func LoadYAML(path string) ([]Player, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read players file: %w", err)
	}
	return ParseYAML(data)
}

func (m *Memory) Put(p Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[p.ID] = p
}

func (m *Memory) GetByID(ctx context.Context, id int64) (Player, error) {
	if err := ctx.Err(); err != nil {
		return Player{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[id]
	if !ok {
		return Player{}, ErrPlayerNotFound
	}
	return p, nil
}

func (m *Memory) ListVerified(ctx context.Context) ([]Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := make([]Player, 0, len(m.players))
	for _, p := range m.players {
		if p.Verified {
			out = append(out, p)
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b Player) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

package game

import (
	"fmt"
	"slices"

	"github.com/zintix-labs/dartlab/errs"
	"github.com/zintix-labs/dartlab/sdk/dart"
)

// Params everything a Builder needs to construct a session engine.
//
// Level is the resolved game difficulty (after level mapping). Settings is only
// consulted when Training is true. Seed drives every random draw the engine makes
// at construction time, so the same Params always yield the same session.
type Params struct {
	Level    int
	Training bool
	Settings dart.Settings
	Seed     int64
}

// Builder builds a fresh Engine for one match.
type Builder func(p Params) (Engine, error)

// Registry maps game ids to builders.
type Registry struct {
	builders map[string]Builder
}

func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]Builder, 16),
	}
}

func (r *Registry) Register(gameID string, b Builder) error {
	if gameID == "" {
		return errs.NewFatal("empty game id")
	}
	if b == nil {
		return errs.NewFatal(fmt.Sprintf("nil builder for game %s", gameID))
	}
	if _, ok := r.builders[gameID]; ok {
		return errs.NewFatal(fmt.Sprintf("duplicate game builder: %s", gameID))
	}
	r.builders[gameID] = b
	return nil
}

func (r *Registry) Build(gameID string, p Params) (Engine, error) {
	b, ok := r.builders[gameID]
	if !ok {
		return nil, errs.Warnf("game is not exist: %s", gameID)
	}
	return b(p)
}

func (r *Registry) IsExist(gameID string) bool {
	_, ok := r.builders[gameID]
	return ok
}

// Keys returns the registered game ids, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.builders))
	for k := range r.builders {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// MergeRegistry merges multiple registries into a new one.
//
// Function values are not comparable, so a duplicate id is always an error
// rather than "last one wins".
func MergeRegistry(regs ...*Registry) (*Registry, error) {
	out := NewRegistry()
	origin := make(map[string]int, 16)
	for i, r := range regs {
		if r == nil {
			continue
		}
		for id, b := range r.builders {
			if _, ok := out.builders[id]; ok {
				return nil, errs.NewFatal(fmt.Sprintf("duplicate game id %s (registry #%d and #%d)", id, origin[id], i))
			}
			out.builders[id] = b
			origin[id] = i
		}
	}
	return out, nil
}

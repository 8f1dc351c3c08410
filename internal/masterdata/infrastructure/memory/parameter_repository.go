package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	masterdata "aquaculture-cloud/internal/masterdata/domain"
)

// ParameterRepository is the in-memory parameter definition table.
type ParameterRepository struct {
	mu   sync.RWMutex
	defs map[string]masterdata.ParameterDefinition
}

// NewParameterRepository constructs a repository seeded with defs.
func NewParameterRepository(defs ...masterdata.ParameterDefinition) (*ParameterRepository, error) {
	repo := &ParameterRepository{defs: make(map[string]masterdata.ParameterDefinition)}
	for _, def := range defs {
		if err := repo.Save(context.Background(), def); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

// Get returns a copy of the definition for id.
func (r *ParameterRepository) Get(ctx context.Context, id string) (*masterdata.ParameterDefinition, error) {
	_ = ctx
	if id == "" {
		return nil, errors.New("memory parameter repo: empty id")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[id]
	if !ok {
		return nil, masterdata.ErrParameterNotFound
	}
	return &def, nil
}

// List returns all definitions ordered by id.
func (r *ParameterRepository) List(ctx context.Context) ([]masterdata.ParameterDefinition, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]masterdata.ParameterDefinition, 0, len(r.defs))
	for _, def := range r.defs {
		result = append(result, def)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Save inserts or replaces a definition.
func (r *ParameterRepository) Save(ctx context.Context, def masterdata.ParameterDefinition) error {
	_ = ctx
	if err := def.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[def.ID] = def
	return nil
}

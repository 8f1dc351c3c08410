package memory

import (
	"context"
	"sort"
	"sync"

	alerts "aquaculture-cloud/internal/alerts/domain"
)

// RuleRepository is the in-memory alert rule table.
type RuleRepository struct {
	mu    sync.RWMutex
	rules map[string]alerts.AlertRule
}

// NewRuleRepository constructs a repository seeded with rules.
func NewRuleRepository(rules ...alerts.AlertRule) (*RuleRepository, error) {
	repo := &RuleRepository{rules: make(map[string]alerts.AlertRule)}
	for _, rule := range rules {
		if err := repo.Save(context.Background(), rule); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

// Get returns a rule by id.
func (r *RuleRepository) Get(ctx context.Context, id string) (*alerts.AlertRule, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[id]
	if !ok {
		return nil, alerts.ErrRuleNotFound
	}
	return &rule, nil
}

// List returns every rule ordered by id.
func (r *RuleRepository) List(ctx context.Context) ([]alerts.AlertRule, error) {
	return r.list(ctx, false)
}

// ListActive returns active rules ordered by id.
func (r *RuleRepository) ListActive(ctx context.Context) ([]alerts.AlertRule, error) {
	return r.list(ctx, true)
}

// Save inserts or replaces a rule.
func (r *RuleRepository) Save(ctx context.Context, rule alerts.AlertRule) error {
	_ = ctx
	if err := rule.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.ID] = rule
	return nil
}

func (r *RuleRepository) list(ctx context.Context, activeOnly bool) ([]alerts.AlertRule, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]alerts.AlertRule, 0, len(r.rules))
	for _, rule := range r.rules {
		if activeOnly && !rule.Active {
			continue
		}
		result = append(result, rule)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

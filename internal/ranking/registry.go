package ranking

import (
	"fmt"

	"WikiAnswers/internal/ports"
)

// Registry keeps a mapping from strategy names to their implementations.
// Exactly one strategy is resolved at wiring time; a run never mixes two.
type Registry struct {
	strategies map[string]ports.RankingStrategy
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: map[string]ports.RankingStrategy{}}
}

// Register adds or replaces a strategy implementation.
func (r *Registry) Register(strategy ports.RankingStrategy) {
	if r.strategies == nil {
		r.strategies = map[string]ports.RankingStrategy{}
	}
	r.strategies[strategy.Name()] = strategy
}

// Resolve returns a strategy by name or an error if it is absent.
func (r *Registry) Resolve(name string) (ports.RankingStrategy, error) {
	if strategy, ok := r.strategies[name]; ok {
		return strategy, nil
	}
	return nil, fmt.Errorf("ranking strategy %s is not registered", name)
}

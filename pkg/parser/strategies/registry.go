// Package strategies provides the strategy pattern implementation for feature detection.
// Each web source language (HTML, CSS, JavaScript) has its own strategy.
package strategies

import (
	"context"
	"sort"
	"sync"

	"github.com/specvital/webcompat/pkg/domain"
)

// DefaultPriority is the default priority for strategies.
// Higher priority strategies are checked first.
const DefaultPriority = 100

var defaultRegistry = &Registry{}

// Strategy defines the interface for language-specific feature detectors.
type Strategy interface {
	// Name returns the strategy identifier (e.g., "html", "css").
	Name() string
	// Priority returns the strategy priority (higher = checked first).
	Priority() int
	// Language returns the primary language of the strategy.
	Language() domain.Language
	// Languages returns every language this strategy handles.
	Languages() []domain.Language
	// CanHandle returns true if this strategy can parse the given file.
	CanHandle(filename string) bool
	// Parse scans the source and returns a fresh detection result.
	Parse(ctx context.Context, source []byte, filename string) (*domain.DetectionResult, error)
	// Validate reports whether the source is acceptable input.
	// Malformed markup is still acceptable.
	Validate(source []byte) bool
}

// Registry manages registered strategies.
type Registry struct {
	mu         sync.RWMutex
	strategies []Strategy
}

// NewRegistry creates a new empty strategy registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry returns the global default registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds a strategy to the default registry.
func Register(s Strategy) {
	defaultRegistry.Register(s)
}

// GetStrategies returns all registered strategies from the default registry.
func GetStrategies() []Strategy {
	return defaultRegistry.GetStrategies()
}

// FindStrategy returns the first matching strategy for the given file.
func FindStrategy(filename string) Strategy {
	return defaultRegistry.FindStrategy(filename)
}

// FindByLanguage returns the first strategy handling lang from the default registry.
func FindByLanguage(lang domain.Language) Strategy {
	return defaultRegistry.FindByLanguage(lang)
}

// Register adds a strategy to the registry.
func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies = append(r.strategies, s)
	r.sortByPriority()
}

func (r *Registry) sortByPriority() {
	sort.SliceStable(r.strategies, func(i, j int) bool {
		return r.strategies[i].Priority() > r.strategies[j].Priority()
	})
}

// GetStrategies returns a copy of all registered strategies.
func (r *Registry) GetStrategies() []Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Strategy, len(r.strategies))
	copy(result, r.strategies)
	return result
}

// FindStrategy returns the first strategy that can handle the given file.
func (r *Registry) FindStrategy(filename string) Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.strategies {
		if s.CanHandle(filename) {
			return s
		}
	}
	return nil
}

// FindByLanguage returns the first strategy that handles lang.
func (r *Registry) FindByLanguage(lang domain.Language) Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.strategies {
		for _, l := range s.Languages() {
			if l == lang {
				return s
			}
		}
	}
	return nil
}

// Clear removes all registered strategies.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies = nil
}

// FindByName returns the strategy with the given name.
func (r *Registry) FindByName(name string) Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.strategies {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// FindStrategyByName returns the strategy with the given name from the default registry.
func FindStrategyByName(name string) Strategy {
	return defaultRegistry.FindByName(name)
}

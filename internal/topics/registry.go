// Package topics is the plugin-style registry of economics topics. Each
// topic bundles its lesson metadata with a closed-form curve evaluator; the
// evaluators produce point data only, rendering belongs to the client.
package topics

import (
	"fmt"
	"sync"

	"github.com/starford/oikos/internal/apperr"
)

// Point is one sample of an evaluated curve.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Series is a named sequence of points. A topic curve may produce several
// series (e.g. supply and demand lines plus the equilibrium point).
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// CurveFunc evaluates a topic's curve for the given parameters. Missing
// parameters fall back to the topic's documented defaults.
type CurveFunc func(params map[string]float64) []Series

// Topic describes one registered economics topic.
type Topic struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Formula     string    `json:"formula"`
	Theory      string    `json:"theory"`
	Curve       CurveFunc `json:"-"`
}

// Registry holds topics in registration order.
type Registry struct {
	mu     sync.RWMutex
	topics map[string]Topic
	order  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{topics: make(map[string]Topic)}
}

// Register adds a topic. Registering a duplicate slug is a programming error.
func (r *Registry) Register(t Topic) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.topics[t.Slug]; dup {
		return fmt.Errorf("topics: duplicate slug %q", t.Slug)
	}
	r.topics[t.Slug] = t
	r.order = append(r.order, t.Slug)
	return nil
}

// Get returns the topic registered under slug.
func (r *Registry) Get(slug string) (Topic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.topics[slug]
	if !ok {
		return Topic{}, apperr.ErrNotFound
	}
	return t, nil
}

// List returns all topics in registration order.
func (r *Registry) List() []Topic {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Topic, 0, len(r.order))
	for _, slug := range r.order {
		out = append(out, r.topics[slug])
	}
	return out
}

// Default returns a registry seeded with the built-in topics.
func Default() *Registry {
	r := NewRegistry()
	for _, t := range builtins() {
		// Slugs are compile-time constants; a duplicate is a bug.
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
	return r
}

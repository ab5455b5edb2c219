package model

import (
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/celestialized/neuralmonkey/pkg/tensor"
)

// Variable is a learnable parameter owned by a model part.
type Variable struct {
	Name      string
	Value     *tensor.Tensor
	Trainable bool
}

// Graph is the registry of the parts that make up one model. Part and
// variable names are unique within a graph.
type Graph struct {
	mu        sync.Mutex
	parts     map[string]ModelPart
	variables map[string]Variable
	logger    *slog.Logger
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger parts use while the graph is built.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGraph creates an empty graph. Without WithLogger, log output is
// discarded.
func NewGraph(opts ...Option) *Graph {
	g := &Graph{
		parts:     make(map[string]ModelPart),
		variables: make(map[string]Variable),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Logger returns the graph logger.
func (g *Graph) Logger() *slog.Logger {
	return g.logger
}

// Register adds a part to the graph together with the variables it owns.
//
// Parameters:
//   - part: the part to add; its name must be non-empty and unused
//   - vars: learnable parameters owned by part; their names must be unused
//
// Returns:
//   - ErrConfiguration for an empty name, ErrDuplicatePart for a taken part
//     or variable name. On error the graph is left unchanged.
func (g *Graph) Register(part ModelPart, vars ...Variable) error {
	name := part.Name()
	if name == "" {
		return errors.Wrap(ErrConfiguration, "model part name must not be empty")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.parts[name]; exists {
		return errors.Wrapf(ErrDuplicatePart, "name %q is already registered", name)
	}
	pending := make(map[string]struct{}, len(vars))
	for _, v := range vars {
		if _, exists := g.variables[v.Name]; exists {
			return errors.Wrapf(ErrDuplicatePart, "variable %q is already registered", v.Name)
		}
		if _, dup := pending[v.Name]; dup {
			return errors.Wrapf(ErrDuplicatePart, "variable %q is given twice", v.Name)
		}
		pending[v.Name] = struct{}{}
	}

	g.parts[name] = part
	for _, v := range vars {
		g.variables[v.Name] = v
	}
	g.logger.Debug("registered model part", "component", name, "parts", len(g.parts), "variables", len(vars))
	return nil
}

// Part looks up a registered part by name.
func (g *Graph) Part(name string) (ModelPart, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.parts[name]
	return p, ok
}

// Parts returns every registered part ordered by name.
func (g *Graph) Parts() []ModelPart {
	g.mu.Lock()
	defer g.mu.Unlock()
	parts := make([]ModelPart, 0, len(g.parts))
	for _, p := range g.parts {
		parts = append(parts, p)
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].Name() < parts[j].Name() })
	return parts
}

// Variables returns every recorded parameter ordered by name, the order
// used when enumerating parameters for initialization or checkpoints.
func (g *Graph) Variables() []Variable {
	g.mu.Lock()
	defer g.mu.Unlock()
	vars := make([]Variable, 0, len(g.variables))
	for _, v := range g.variables {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	return vars
}

// FeedDict merges the feed dicts of root and all of its dependencies.
func (g *Graph) FeedDict(root ModelPart, ds *Dataset, train bool) (FeedDict, error) {
	merged := FeedDict{}
	owners := make(map[string]string)
	for _, part := range root.Dependencies().Sorted() {
		for key, value := range part.FeedDict(ds, train) {
			if owner, taken := owners[key]; taken {
				return nil, errors.Errorf("feed key %q provided by both %q and %q", key, owner, part.Name())
			}
			owners[key] = part.Name()
			merged[key] = value
		}
	}
	return merged, nil
}

// Package pipeline runs verification stages as a dependency graph over a typed state.
//
// Stages are grouped into topological layers. Stages in the same layer run concurrently
// against one snapshot of the state and return reducers that are applied in declaration
// order once the layer finishes.
package pipeline

import (
	"context"
	"fmt"
	"strings"
)

// Update is a reducer produced by a stage. It assigns scalar fields and appends to accumulators.
type Update[S any] func(*S)

// Stage is one named unit of work in a Graph
type Stage[S any] struct {
	Name      string
	DependsOn []string
	// Optional stages may fail without aborting the run
	Optional bool
	Run      func(ctx context.Context, state S) (Update[S], error)
}

// Graph is a validated, immutable stage DAG. It is safe to Invoke concurrently.
type Graph[S any] struct {
	name   string
	stages []Stage[S]
	layers [][]int
}

// New validates stages and builds their layering. Stage names must be unique, every
// dependency must name a declared stage and the dependencies must not form a cycle.
func New[S any](name string, stages ...Stage[S]) (*Graph[S], error) {
	if name == "" {
		return nil, fmt.Errorf("pipeline name is required")
	}
	if len(stages) == 0 {
		return nil, fmt.Errorf("pipeline %s has no stages", name)
	}

	index := make(map[string]int, len(stages))
	for i, s := range stages {
		if s.Name == "" {
			return nil, fmt.Errorf("pipeline %s: stage %d has no name", name, i)
		}
		if s.Run == nil {
			return nil, fmt.Errorf("pipeline %s: stage %s has no run function", name, s.Name)
		}
		if _, dup := index[s.Name]; dup {
			return nil, fmt.Errorf("pipeline %s: duplicate stage %s", name, s.Name)
		}
		index[s.Name] = i
	}
	for _, s := range stages {
		for _, dep := range s.DependsOn {
			if _, ok := index[dep]; !ok {
				return nil, &DependencyError{Stage: s.Name, MissingDependencies: []string{dep}}
			}
		}
	}

	layers, err := layer(stages, index)
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", name, err)
	}

	return &Graph[S]{
		name:   name,
		stages: append([]Stage[S](nil), stages...),
		layers: layers,
	}, nil
}

// layer groups stage indexes so that every stage sits after all of its dependencies.
// Within a layer, stages keep declaration order.
func layer[S any](stages []Stage[S], index map[string]int) ([][]int, error) {
	placed := make([]bool, len(stages))
	remaining := len(stages)

	var layers [][]int
	for remaining > 0 {
		var current []int
		for i, s := range stages {
			if placed[i] {
				continue
			}
			ready := true
			for _, dep := range s.DependsOn {
				if !placed[index[dep]] {
					ready = false
					break
				}
			}
			if ready {
				current = append(current, i)
			}
		}
		if len(current) == 0 {
			var stuck []string
			for i, s := range stages {
				if !placed[i] {
					stuck = append(stuck, s.Name)
				}
			}
			return nil, fmt.Errorf("dependency cycle among stages: %s", strings.Join(stuck, ", "))
		}
		for _, i := range current {
			placed[i] = true
		}
		remaining -= len(current)
		layers = append(layers, current)
	}
	return layers, nil
}

// Name returns the pipeline name
func (g *Graph[S]) Name() string {
	return g.name
}

// Layers returns the stage names grouped by execution layer
func (g *Graph[S]) Layers() [][]string {
	out := make([][]string, len(g.layers))
	for i, l := range g.layers {
		names := make([]string, len(l))
		for j, idx := range l {
			names[j] = g.stages[idx].Name
		}
		out[i] = names
	}
	return out
}

// DependencyError reports a stage that depends on an undeclared stage
type DependencyError struct {
	Stage               string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("stage %s has missing dependencies: %s", e.Stage, strings.Join(e.MissingDependencies, ", "))
}

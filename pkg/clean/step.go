package clean

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"reportpipe/pkg/dataset"
)

// Step is a cleaning operation applied to a Frame. Steps may mutate the frame
// in place, but the returned frame is the only valid handoff to the next step.
type Step interface {
	Name() string
	Apply(ctx context.Context, f *dataset.Frame) (*dataset.Frame, error)
}

// Spec is one entry of a job's cleaning list: a step name plus an optional
// parameter bag.
type Spec struct {
	Name   string
	Params map[string]any
}

// ParseSpecs converts a decoded cleaning list (from YAML or TOML) into Specs.
// Each entry is either a bare step name or a single-key mapping of step name
// to its parameters.
func ParseSpecs(raw []any) ([]Spec, error) {
	specs := make([]Spec, 0, len(raw))
	for i, entry := range raw {
		switch e := entry.(type) {
		case string:
			specs = append(specs, Spec{Name: e})
		case map[string]any:
			if len(e) != 1 {
				return nil, &ConfigError{Msg: fmt.Sprintf("cleaning entry %d must have exactly one step name, got %d", i, len(e))}
			}
			for name, params := range e {
				p, err := paramMap(params)
				if err != nil {
					return nil, &ConfigError{Step: name, Msg: err.Error()}
				}
				specs = append(specs, Spec{Name: name, Params: p})
			}
		default:
			return nil, &ConfigError{Msg: fmt.Sprintf("cleaning entry %d: expected step name or mapping, got %T", i, entry)}
		}
	}
	return specs, nil
}

func paramMap(v any) (map[string]any, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parameters must be a mapping, got %T", v)
	}
	return m, nil
}

// Factory builds a Step from its parameter bag, validating the parameters.
type Factory func(params map[string]any) (Step, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a step factory available under name. Built-in steps register
// themselves from init; adapters may add their own.
func Register(name string, fn Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = fn
}

// Steps returns the registered step names, sorted.
func Steps() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve binds every spec against the registry, validating parameters before
// any data is touched. An unknown step or a bad parameter bag fails the whole
// list with a ConfigError.
func Resolve(specs []Spec) ([]Step, error) {
	steps := make([]Step, 0, len(specs))
	for _, s := range specs {
		registryMu.RLock()
		fn, ok := registry[s.Name]
		registryMu.RUnlock()
		if !ok {
			return nil, &ConfigError{Step: s.Name, Msg: "unknown cleaning step"}
		}
		step, err := fn(s.Params)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// Apply runs the bound steps strictly in order, stopping at the first error.
// An empty step list returns the frame unchanged.
func Apply(ctx context.Context, f *dataset.Frame, steps []Step) (*dataset.Frame, error) {
	cur := f
	var err error
	for _, s := range steps {
		cur, err = s.Apply(ctx, cur)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

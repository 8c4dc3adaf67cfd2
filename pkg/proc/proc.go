package proc

import (
	"fmt"
	"sort"
	"sync"

	"reportpipe/pkg/dataset"
)

// Processor reads one downloaded file into a Frame. The job definition
// selects a processor by name and supplies its parameters; multi-file
// downloads are read one by one and concatenated by ReadAll.
type Processor interface {
	Name() string
	Read(path string, params map[string]any) (*dataset.Frame, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Processor{}
)

// Register registers a processor under its name.
func Register(p Processor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[p.Name()] = p
}

// Get returns a registered processor by name.
func Get(name string) (Processor, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unsupported processor: %s", name)
	}
	return p, nil
}

// List returns the registered processor names, sorted.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ReadAll reads every path with the processor and concatenates the frames.
// Files must agree on column names and kinds.
func ReadAll(p Processor, paths []string, params map[string]any) (*dataset.Frame, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("processor %s: nothing to read", p.Name())
	}
	total, err := p.Read(paths[0], params)
	if err != nil {
		return nil, fmt.Errorf("processor %s: read %s: %w", p.Name(), paths[0], err)
	}
	for _, path := range paths[1:] {
		f, err := p.Read(path, params)
		if err != nil {
			return nil, fmt.Errorf("processor %s: read %s: %w", p.Name(), path, err)
		}
		if err := total.Append(f); err != nil {
			return nil, fmt.Errorf("processor %s: concat %s: %w", p.Name(), path, err)
		}
	}
	return total, nil
}

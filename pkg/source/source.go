package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Request is everything a downloader needs for one fetch: the job labels
// (used to build the download folder), the root data directory, and the raw
// downloader parameters from the job definition.
type Request struct {
	Service string
	Report  string
	DataDir string
	Params  map[string]any
}

// Dir returns the download folder for the request, creating it.
func (r Request) Dir() (string, error) {
	dir := filepath.Join(r.DataDir, r.Service, r.Report)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// Downloader fetches source material into local files. Implementations
// register themselves by name; the job definition selects one.
type Downloader interface {
	Name() string
	Fetch(ctx context.Context, req Request) ([]string, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Downloader{}
)

// Register registers a downloader under its name. Called from init in each
// implementation file.
func Register(d Downloader) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.Name()] = d
}

// Get returns a registered downloader by name.
func Get(name string) (Downloader, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unsupported downloader: %s", name)
	}
	return d, nil
}

// List returns the registered downloader names, sorted.
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

package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"
)

// Storage is the injected handle to job-definition storage. Names are base
// names including extension and raw tag characters; Rename must be atomic.
type Storage interface {
	List() ([]string, error)
	Read(name string) ([]byte, error)
	Rename(oldName, newName string) error
}

// Dir is job-definition storage backed by a directory of YAML/TOML files.
type Dir struct {
	Path string
}

func (d Dir) List() ([]string, error) {
	entries, err := os.ReadDir(d.Path)
	if err != nil {
		return nil, fmt.Errorf("scan job storage %s: %w", d.Path, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".toml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (d Dir) Read(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(d.Path, name))
}

func (d Dir) Rename(oldName, newName string) error {
	return os.Rename(filepath.Join(d.Path, oldName), filepath.Join(d.Path, newName))
}

// Mem is an in-memory Storage used by tests and embedding callers.
type Mem struct {
	Files map[string][]byte
}

func NewMem() *Mem { return &Mem{Files: map[string][]byte{}} }

func (m *Mem) List() ([]string, error) {
	names := make([]string, 0, len(m.Files))
	for n := range m.Files {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (m *Mem) Read(name string) ([]byte, error) {
	b, ok := m.Files[name]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", name)
	}
	return b, nil
}

func (m *Mem) Rename(oldName, newName string) error {
	b, ok := m.Files[oldName]
	if !ok {
		return fmt.Errorf("no such file: %s", oldName)
	}
	delete(m.Files, oldName)
	m.Files[newName] = b
	return nil
}

// Catalog scans job-definition storage and applies the priority-tag side
// effects of a completed run.
type Catalog struct {
	store Storage
	log   *slog.Logger
}

func New(store Storage, log *slog.Logger) *Catalog {
	if log == nil {
		log = slog.Default()
	}
	return &Catalog{store: store, log: log}
}

// Scan materializes every job definition. A storage listing failure is fatal;
// a file that fails to decode yields a single job carrying the decode error
// so the failure is reported per job without aborting the run.
func (c *Catalog) Scan() ([]Job, error) {
	names, err := c.store.List()
	if err != nil {
		return nil, err
	}
	var jobs []Job
	for _, name := range names {
		id := name
		tag, malformed := DetectTag(id)
		if malformed {
			c.log.Warn("unrecognized priority token, treating as normal", "file", name)
		}
		records, err := c.decodeFile(name)
		if err != nil {
			jobs = append(jobs, Job{ID: id, File: name, Tag: tag, Err: err})
			continue
		}
		for _, raw := range records {
			jobs = append(jobs, decodeJob(id, name, tag, raw))
		}
	}
	return jobs, nil
}

func (c *Catalog) decodeFile(name string) ([]map[string]any, error) {
	b, err := c.store.Read(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	var records []map[string]any
	switch strings.ToLower(filepath.Ext(name)) {
	case ".toml":
		// TOML files hold the list under a top-level jobs key.
		var doc struct {
			Jobs []map[string]any `toml:"jobs"`
		}
		if err := toml.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		records = doc.Jobs
	default:
		if err := yaml.Unmarshal(b, &records); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
	}
	return records, nil
}

// Commit applies the tag mutation after a run: every distinct file whose tag
// was Priority has the [P] token dropped from its stored name, regardless of
// whether its jobs succeeded. Permanent-priority files are never rewritten.
func (c *Catalog) Commit(ran []Job) error {
	done := map[string]bool{}
	for _, j := range ran {
		if j.Tag != TagPriority || done[j.File] {
			continue
		}
		done[j.File] = true
		newName := strings.TrimPrefix(j.File, TagPriority.token())
		if newName == j.File {
			continue
		}
		if err := c.store.Rename(j.File, newName); err != nil {
			return fmt.Errorf("drop priority tag from %s: %w", j.File, err)
		}
		c.log.Info("priority tag consumed", "file", j.File, "renamed_to", newName)
	}
	return nil
}

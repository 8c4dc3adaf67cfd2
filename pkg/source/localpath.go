package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cast"
)

func init() {
	Register(LocalPath{})
	Register(LocalFolder{})
}

// LocalPath copies a single file into the download folder.
//
// Parameters: path (required).
type LocalPath struct{}

func (LocalPath) Name() string { return "localpath" }

func (LocalPath) Fetch(ctx context.Context, req Request) ([]string, error) {
	src := cast.ToString(req.Params["path"])
	if src == "" {
		return nil, fmt.Errorf("localpath: path must be provided")
	}
	dir, err := req.Dir()
	if err != nil {
		return nil, err
	}
	dst := filepath.Join(dir, filepath.Base(src))
	if err := copyFile(src, dst); err != nil {
		return nil, fmt.Errorf("localpath: %w", err)
	}
	return []string{dst}, nil
}

// LocalFolder copies every regular file in a folder into the download folder.
//
// Parameters: path (required), pattern (optional glob on base names).
type LocalFolder struct{}

func (LocalFolder) Name() string { return "localfolder" }

func (LocalFolder) Fetch(ctx context.Context, req Request) ([]string, error) {
	src := cast.ToString(req.Params["path"])
	if src == "" {
		return nil, fmt.Errorf("localfolder: path must be provided")
	}
	pattern := cast.ToString(req.Params["pattern"])
	entries, err := os.ReadDir(src)
	if err != nil {
		return nil, fmt.Errorf("localfolder: %w", err)
	}
	dir, err := req.Dir()
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if pattern != "" {
			ok, err := filepath.Match(pattern, e.Name())
			if err != nil {
				return nil, fmt.Errorf("localfolder: pattern: %w", err)
			}
			if !ok {
				continue
			}
		}
		dst := filepath.Join(dir, e.Name())
		if err := copyFile(filepath.Join(src, e.Name()), dst); err != nil {
			return nil, fmt.Errorf("localfolder: %w", err)
		}
		paths = append(paths, dst)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("localfolder: no files matched in %s", src)
	}
	return paths, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

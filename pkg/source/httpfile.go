package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"
)

func init() {
	Register(&HTTPFile{Client: &http.Client{}})
}

// HTTPFile downloads a report over HTTP into the download folder.
//
// Parameters: url (required), token_env (optional env variable holding a
// bearer token), extension (optional, default csv), timeout_seconds
// (optional, default 660; report endpoints can take minutes to render).
type HTTPFile struct {
	Client *http.Client
}

func (*HTTPFile) Name() string { return "httpfile" }

func (d *HTTPFile) Fetch(ctx context.Context, req Request) ([]string, error) {
	url := cast.ToString(req.Params["url"])
	if url == "" {
		return nil, fmt.Errorf("httpfile: url must be provided")
	}
	timeout := 660 * time.Second
	if v, ok := req.Params["timeout_seconds"]; ok {
		timeout = time.Duration(cast.ToInt(v)) * time.Second
	}
	ext := cast.ToString(req.Params["extension"])
	if ext == "" {
		ext = "csv"
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("httpfile: %w", err)
	}
	if env := cast.ToString(req.Params["token_env"]); env != "" {
		token := os.Getenv(env)
		if token == "" {
			return nil, fmt.Errorf("httpfile: %s must be set", env)
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := d.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("httpfile: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpfile: %s returned %s", url, resp.Status)
	}

	dir, err := req.Dir()
	if err != nil {
		return nil, err
	}
	dst := filepath.Join(dir, fmt.Sprintf("httpfile_%s.%s", uuid.NewString(), ext))
	out, err := os.Create(dst)
	if err != nil {
		return nil, fmt.Errorf("httpfile: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		return nil, fmt.Errorf("httpfile: %w", err)
	}
	if err := out.Close(); err != nil {
		return nil, err
	}
	return []string{dst}, nil
}
